package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readlog/internal/domain"
	"github.com/listenupapp/readlog/internal/lookup"
	"github.com/listenupapp/readlog/internal/resolve"
	"github.com/listenupapp/readlog/internal/service"
	"github.com/listenupapp/readlog/internal/store/sqlstore"
)

const (
	testUser   = "X-User-ID: u1"
	otherUser  = "X-User-ID: u2"
	duneISBN   = "9780441172716"
	testUserID = "u1"
)

// testEnvelope mirrors the response envelope for decoding.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlstore.Store
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlstore.Open(context.Background(), sqlstore.Config{
		Driver: sqlstore.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "api.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	provider := lookup.NewStatic(lookup.Metadata{
		ISBN:   "9780593135204",
		Title:  "Project Hail Mary",
		Author: "Andy Weir",
	})

	logger := slog.New(slog.DiscardHandler)
	finished := service.NewFinishedService(st, logger)
	services := &Services{
		Finished: finished,
		Imports:  service.NewImportService(st, resolve.New(provider, logger, resolve.Options{}), logger),
		Exports:  service.NewExportService(finished, logger),
	}

	s := NewServer(st, services, Options{}, logger)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
	}
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	return env
}

func (ts *testServer) seedLibrary(t *testing.T, status domain.ReadingStatus, d domain.BookDetails) *domain.LibraryBook {
	t.Helper()
	book := &domain.LibraryBook{BookDetails: d, OwnerID: testUserID, ReadingStatus: status}
	require.NoError(t, ts.store.CreateLibraryBook(context.Background(), book))
	return book
}

func (ts *testServer) seedCompleted(t *testing.T, d domain.BookDetails) *domain.CompletedBook {
	t.Helper()
	book := &domain.CompletedBook{BookDetails: d, UserID: testUserID}
	require.NoError(t, ts.store.CreateCompletedBook(context.Background(), book))
	return book
}
