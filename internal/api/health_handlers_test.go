package api

import (
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[HealthResponse](t, resp)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.NotEmpty(t, env.Data.Components["database"].Latency)
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.store.Close())

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", env.Data.Status)
	assert.Equal(t, "database ping failed", env.Data.Components["database"].Message)
}

func TestHealthCheck_NoStore(t *testing.T) {
	s := NewServer(nil, &Services{}, Options{}, nil)
	api := humatest.Wrap(t, s.API())

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "degraded", decode[HealthResponse](t, resp).Data.Status)
}
