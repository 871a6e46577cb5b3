package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/readlog/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{Code: http.StatusNotFound, Message: "not found"}
	assert.Equal(t, "not found", err.Error())

	cause := errors.New("no such row")
	wrapped := err.WithCause(cause)
	assert.Equal(t, "not found: no such row", wrapped.Error())
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestError_WithMessageKeepsCode(t *testing.T) {
	modified := store.ErrNotFound.WithMessage("completed book 4 not found")

	assert.Equal(t, http.StatusNotFound, modified.HTTPCode())
	assert.Equal(t, "completed book 4 not found", modified.Message)
	assert.ErrorIs(t, modified, store.ErrNotFound)
}

func TestError_IsMatchesSentinelThroughWrapping(t *testing.T) {
	err := fmt.Errorf("get library book: %w", store.ErrAlreadyExists.WithCause(errors.New("UNIQUE constraint failed")))

	assert.ErrorIs(t, err, store.ErrAlreadyExists)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      *store.Error
		wantCode int
	}{
		{name: "not found", err: store.ErrNotFound, wantCode: http.StatusNotFound},
		{name: "already exists", err: store.ErrAlreadyExists, wantCode: http.StatusConflict},
		{name: "invalid input", err: store.ErrInvalidInput, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.HTTPCode())
			assert.Equal(t, tt.wantCode, tt.err.GetStatus())
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
