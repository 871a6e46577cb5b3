package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readlog/internal/domain"
	"github.com/listenupapp/readlog/internal/store/sqlstore"
)

const (
	testUser = "u1"
	duneISBN = "9780441172716"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()

	st, err := sqlstore.Open(context.Background(), sqlstore.Config{
		Driver: sqlstore.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "readlog.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func seedLibrary(t *testing.T, st *sqlstore.Store, status domain.ReadingStatus, d domain.BookDetails) *domain.LibraryBook {
	t.Helper()
	book := &domain.LibraryBook{BookDetails: d, OwnerID: testUser, ReadingStatus: status}
	require.NoError(t, st.CreateLibraryBook(context.Background(), book))
	return book
}

func seedCompleted(t *testing.T, st *sqlstore.Store, owned bool, d domain.BookDetails) *domain.CompletedBook {
	t.Helper()
	book := &domain.CompletedBook{BookDetails: d, UserID: testUser, Owned: owned}
	require.NoError(t, st.CreateCompletedBook(context.Background(), book))
	return book
}

func rate(t *testing.T, st *sqlstore.Store, source domain.EntrySource, bookID int64, value int) {
	t.Helper()
	require.NoError(t, st.UpsertRating(context.Background(), source, &domain.Rating{BookID: bookID, UserID: testUser, Value: value}))
}
