package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/listenupapp/readlog/internal/domain"
	"github.com/listenupapp/readlog/internal/store"
)

func ratingTable(source domain.EntrySource) (string, error) {
	switch source {
	case domain.SourceLibrary:
		return "library_ratings", nil
	case domain.SourceCompleted:
		return "completed_ratings", nil
	default:
		return "", store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown rating source %q", source))
	}
}

type ratingRow struct {
	BookID int64  `db:"book_id"`
	UserID string `db:"user_id"`
	Rating int    `db:"rating"`
}

// GetRating returns store.ErrNotFound when the user has not rated the book.
func (q *queries) GetRating(ctx context.Context, source domain.EntrySource, bookID int64, userID string) (*domain.Rating, error) {
	table, err := ratingTable(source)
	if err != nil {
		return nil, err
	}

	var r ratingRow
	query := `SELECT book_id, user_id, rating FROM ` + table + ` WHERE book_id = ? AND user_id = ?`
	err = sqlx.GetContext(ctx, q.ext, &r, q.ext.Rebind(query), bookID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("rating not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get %s rating: %w", source, err)
	}
	return &domain.Rating{BookID: r.BookID, UserID: r.UserID, Value: r.Rating}, nil
}

// InsertRatingIfAbsent stores rating unless one already exists. It reports
// whether a row was written.
func (q *queries) InsertRatingIfAbsent(ctx context.Context, source domain.EntrySource, rating *domain.Rating) (bool, error) {
	table, err := ratingTable(source)
	if err != nil {
		return false, err
	}

	query := `INSERT INTO ` + table + ` (book_id, user_id, rating) VALUES (?, ?, ?)
		ON CONFLICT (book_id, user_id) DO NOTHING`
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), rating.BookID, rating.UserID, rating.Value)
	if err != nil {
		return false, fmt.Errorf("insert %s rating: %w", source, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// UpsertRating stores rating, replacing any previous value.
func (q *queries) UpsertRating(ctx context.Context, source domain.EntrySource, rating *domain.Rating) error {
	table, err := ratingTable(source)
	if err != nil {
		return err
	}

	query := `INSERT INTO ` + table + ` (book_id, user_id, rating) VALUES (?, ?, ?)
		ON CONFLICT (book_id, user_id) DO UPDATE SET rating = excluded.rating`
	if _, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), rating.BookID, rating.UserID, rating.Value); err != nil {
		return fmt.Errorf("upsert %s rating: %w", source, err)
	}
	return nil
}
