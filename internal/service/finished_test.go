package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readlog/internal/domain"
	domainerrors "github.com/listenupapp/readlog/internal/errors"
	"github.com/listenupapp/readlog/internal/ingest"
	"github.com/listenupapp/readlog/internal/store"
	"github.com/listenupapp/readlog/internal/store/sqlstore"
)

func TestFinished_ListComposesBothSources(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	seedLibrary(t, st, domain.StatusRead, domain.BookDetails{ISBN: duneISBN, Title: "Dune", DateFinished: "2024-02-01"})
	seedLibrary(t, st, domain.StatusUnread, domain.BookDetails{Title: "Unread Book", Author: "Someone"})
	seedCompleted(t, st, false, domain.BookDetails{Title: "Piranesi", Author: "Susanna Clarke", DateFinished: "2024-03-01"})
	// Same work as the library copy; the library entry wins.
	seedCompleted(t, st, false, domain.BookDetails{ISBN: duneISBN, Title: "Dune"})

	entries, err := svc.List(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	titles := []string{entries[0].Title, entries[1].Title}
	assert.ElementsMatch(t, []string{"Dune", "Piranesi"}, titles)
	for _, e := range entries {
		if e.Title == "Dune" {
			assert.True(t, e.Ref.IsLibrary())
			assert.True(t, e.Owned)
		}
	}

	other, err := svc.List(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFinished_GetIncludesRating(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	c := seedCompleted(t, st, false, domain.BookDetails{Title: "Piranesi", Author: "Susanna Clarke"})
	rate(t, st, domain.SourceCompleted, c.ID, 4)

	got, err := svc.Get(ctx, testUser, domain.CompletedRef(c.ID))
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "Piranesi", got.Title)

	_, err = svc.Get(ctx, testUser, domain.CompletedRef(c.ID+100))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	unread := seedLibrary(t, st, domain.StatusUnread, domain.BookDetails{Title: "Later"})
	_, err = svc.Get(ctx, testUser, domain.LibraryRef(unread.ID))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound, "unread library books are not in the view")
}

func TestFinished_AddCompleted(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	got, err := svc.AddCompleted(ctx, testUser, ingest.Row{Title: "Piranesi", Author: "Susanna Clarke", DateFinished: "2024-03-01", Rating: 5})
	require.NoError(t, err)
	assert.True(t, got.Ref.IsCompleted())
	assert.Equal(t, 5, got.Rating)
	assert.False(t, got.Owned)

	_, err = svc.AddCompleted(ctx, testUser, ingest.Row{Title: "piranesi", Author: "SUSANNA CLARKE"})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)

	seedLibrary(t, st, domain.StatusRead, domain.BookDetails{ISBN: duneISBN, Title: "Dune"})
	_, err = svc.AddCompleted(ctx, testUser, ingest.Row{Title: "Dune", ISBN: duneISBN})
	assert.ErrorIs(t, err, domainerrors.ErrConflict, "read library books count as logged")

	_, err = svc.AddCompleted(ctx, testUser, ingest.Row{Author: "Nobody"})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = svc.AddCompleted(ctx, testUser, ingest.Row{Title: "Bad Rating", Rating: 9})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestFinished_AddOwnedMirrorsIntoLibrary(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	unread := seedLibrary(t, st, domain.StatusUnread, domain.BookDetails{ISBN: duneISBN, Title: "Dune"})

	_, err := svc.AddCompleted(ctx, testUser, ingest.Row{Title: "Dune", ISBN: duneISBN, Owned: true, DateFinished: "2024-05-05", Rating: 3})
	require.NoError(t, err)

	lib, err := st.GetLibraryBook(ctx, testUser, unread.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, lib.ReadingStatus)
	assert.Equal(t, "2024-05-05", lib.DateFinished)

	r, err := st.GetRating(ctx, domain.SourceLibrary, unread.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Value)

	all, err := st.ListLibraryBooks(ctx, testUser)
	require.NoError(t, err)
	assert.Len(t, all, 1, "the existing copy is reused")
}

func TestFinished_Update(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	lib := seedLibrary(t, st, domain.StatusRead, domain.BookDetails{Title: "Dune", DateFinished: "2024-01-01"})
	c := seedCompleted(t, st, false, domain.BookDetails{Title: "Piranesi", Author: "Susanna Clarke"})

	date := "2024-06-30"
	owned := true

	got, err := svc.Update(ctx, testUser, domain.LibraryRef(lib.ID), EntryUpdate{DateFinished: &date})
	require.NoError(t, err)
	assert.Equal(t, date, got.DateFinished)

	_, err = svc.Update(ctx, testUser, domain.LibraryRef(lib.ID), EntryUpdate{Owned: &owned})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	got, err = svc.Update(ctx, testUser, domain.CompletedRef(c.ID), EntryUpdate{DateFinished: &date, Owned: &owned})
	require.NoError(t, err)
	assert.Equal(t, date, got.DateFinished)
	assert.True(t, got.Owned)

	_, err = svc.Update(ctx, testUser, domain.CompletedRef(999), EntryUpdate{DateFinished: &date})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestFinished_Delete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	lib := seedLibrary(t, st, domain.StatusRead, domain.BookDetails{Title: "Dune", DateFinished: "2024-01-01"})
	c := seedCompleted(t, st, false, domain.BookDetails{Title: "Piranesi", Author: "Susanna Clarke"})

	t.Run("completed entry is removed", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, testUser, domain.CompletedRef(c.ID)))
		_, err := st.GetCompletedBook(ctx, testUser, c.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("library entry stays owned but unread", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, testUser, domain.LibraryRef(lib.ID)))
		got, err := st.GetLibraryBook(ctx, testUser, lib.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusUnread, got.ReadingStatus)
		assert.Empty(t, got.DateFinished)
	})

	t.Run("missing entries", func(t *testing.T) {
		assert.ErrorIs(t, svc.Delete(ctx, testUser, domain.CompletedRef(c.ID)), domainerrors.ErrNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, testUser, domain.LibraryRef(lib.ID)), domainerrors.ErrNotFound)
	})

	entries, err := svc.List(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFinished_SetRating(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	lib := seedLibrary(t, st, domain.StatusRead, domain.BookDetails{Title: "Dune"})

	_, err := svc.SetRating(ctx, testUser, domain.LibraryRef(lib.ID), 2)
	require.NoError(t, err)
	_, err = svc.SetRating(ctx, testUser, domain.LibraryRef(lib.ID), 5)
	require.NoError(t, err)

	got, err := svc.Get(ctx, testUser, domain.LibraryRef(lib.ID))
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)

	_, err = svc.SetRating(ctx, testUser, domain.LibraryRef(lib.ID), 0)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
	_, err = svc.SetRating(ctx, testUser, domain.CompletedRef(42), 3)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestFinished_PromoteCreatesLibraryBook(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	c := seedCompleted(t, st, true, domain.BookDetails{
		Title:        "Piranesi",
		Author:       "Susanna Clarke",
		DateFinished: "2024-03-01",
		Tags:         []string{"fantasy"},
		PageCount:    272,
	})
	rate(t, st, domain.SourceCompleted, c.ID, 5)

	res, err := svc.Promote(ctx, testUser, domain.CompletedRef(c.ID))
	require.NoError(t, err)
	assert.False(t, res.Merged)
	assert.True(t, res.RatingMigrated)
	assert.Equal(t, domain.LibraryRef(res.LibraryBookID), res.Entry.Ref)

	lib, err := st.GetLibraryBook(ctx, testUser, res.LibraryBookID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, lib.ReadingStatus)
	assert.Equal(t, "2024-03-01", lib.DateFinished)
	assert.Equal(t, []string{"fantasy"}, lib.Tags)
	assert.Equal(t, 272, lib.PageCount)

	r, err := st.GetRating(ctx, domain.SourceLibrary, res.LibraryBookID, testUser)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Value)

	_, err = st.GetCompletedBook(ctx, testUser, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFinished_PromoteMergesIntoExisting(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewFinishedService(st, testLogger())

	existing := seedLibrary(t, st, domain.StatusUnread, domain.BookDetails{ISBN: duneISBN, Title: "Dune", DateFinished: "2023-12-24"})
	rate(t, st, domain.SourceLibrary, existing.ID, 2)

	c := seedCompleted(t, st, false, domain.BookDetails{ISBN: duneISBN, Title: "Dune", Author: "Frank Herbert", DateFinished: "2024-03-01"})
	rate(t, st, domain.SourceCompleted, c.ID, 5)

	res, err := svc.Promote(ctx, testUser, domain.CompletedRef(c.ID))
	require.NoError(t, err)
	assert.True(t, res.Merged)
	assert.Equal(t, existing.ID, res.LibraryBookID)
	assert.False(t, res.RatingMigrated, "an existing library rating is never overwritten")

	all, err := st.ListLibraryBooks(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, domain.StatusRead, all[0].ReadingStatus)
	assert.Equal(t, "2023-12-24", all[0].DateFinished)

	r, err := st.GetRating(ctx, domain.SourceLibrary, existing.ID, testUser)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Value)

	completed, err := st.ListCompletedBooks(ctx, testUser)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestFinished_PromoteRejectsLibraryEntry(t *testing.T) {
	svc := NewFinishedService(newTestStore(t), testLogger())

	_, err := svc.Promote(context.Background(), testUser, domain.LibraryRef(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrInvariantViolation)

	_, err = svc.Promote(context.Background(), testUser, domain.CompletedRef(1))
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestFinished_PromoteRollsBackOnDeleteFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339Nano)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM completed_books").
		WithArgs(int64(5), testUser).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "owned", "isbn", "title", "author", "date_finished", "series_name",
			"series_position", "genre", "synopsis", "tags", "page_count", "created_at", "updated_at",
		}).AddRow(5, testUser, false, duneISBN, "Dune", "Frank Herbert", "2024-03-01", "", "", "", "", "[]", 0, ts, ts))
	mock.ExpectQuery("FROM library_books").
		WithArgs(testUser).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("INSERT INTO library_books").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery("FROM completed_ratings").
		WithArgs(int64(5), testUser).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "user_id", "rating"}))
	mock.ExpectExec("DELETE FROM completed_books").
		WithArgs(int64(5), testUser).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	svc := NewFinishedService(sqlstore.New(sqlx.NewDb(db, sqlstore.DriverSQLite), nil), testLogger())

	_, err = svc.Promote(context.Background(), testUser, domain.CompletedRef(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.NoError(t, mock.ExpectationsWereMet())
}
