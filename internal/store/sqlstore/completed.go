package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/listenupapp/readlog/internal/dedup"
	"github.com/listenupapp/readlog/internal/domain"
	"github.com/listenupapp/readlog/internal/store"
)

const completedColumns = `id, user_id, owned, ` + detailsColumns + `, created_at, updated_at`

type completedRow struct {
	ID     int64  `db:"id"`
	UserID string `db:"user_id"`
	Owned  bool   `db:"owned"`
	detailsRow
}

func (r completedRow) toDomain() (*domain.CompletedBook, error) {
	details, createdAt, updatedAt, err := r.detailsRow.toDomain()
	if err != nil {
		return nil, fmt.Errorf("completed book %d: %w", r.ID, err)
	}
	return &domain.CompletedBook{
		BookDetails: details,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		ID:          r.ID,
		UserID:      r.UserID,
		Owned:       r.Owned,
	}, nil
}

// ListCompletedBooks returns the user's completed books in id order.
func (q *queries) ListCompletedBooks(ctx context.Context, userID string) ([]*domain.CompletedBook, error) {
	var rows []completedRow
	query := `SELECT ` + completedColumns + ` FROM completed_books WHERE user_id = ? ORDER BY id`
	if err := sqlx.SelectContext(ctx, q.ext, &rows, q.ext.Rebind(query), userID); err != nil {
		return nil, fmt.Errorf("select completed books: %w", err)
	}

	books := make([]*domain.CompletedBook, 0, len(rows))
	for _, r := range rows {
		b, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

// GetCompletedBook returns store.ErrNotFound when the book does not exist or
// belongs to someone else.
func (q *queries) GetCompletedBook(ctx context.Context, userID string, id int64) (*domain.CompletedBook, error) {
	var r completedRow
	query := `SELECT ` + completedColumns + ` FROM completed_books WHERE id = ? AND user_id = ?`
	err := sqlx.GetContext(ctx, q.ext, &r, q.ext.Rebind(query), id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("completed book %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get completed book %d: %w", id, err)
	}
	return r.toDomain()
}

// CreateCompletedBook inserts book and sets its ID.
func (q *queries) CreateCompletedBook(ctx context.Context, book *domain.CompletedBook) error {
	book.ISBN = dedup.NormalizeISBN(book.ISBN)
	stamp(&book.CreatedAt, &book.UpdatedAt)

	details, err := detailArgs(book.BookDetails)
	if err != nil {
		return err
	}
	args := append([]any{book.UserID, book.Owned}, details...)
	args = append(args, formatTime(book.CreatedAt), formatTime(book.UpdatedAt))

	query := `INSERT INTO completed_books (user_id, owned, ` + detailsColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	if err := q.ext.QueryRowxContext(ctx, q.ext.Rebind(query), args...).Scan(&book.ID); err != nil {
		return fmt.Errorf("insert completed book: %w", err)
	}
	return nil
}

// UpdateCompletedBook overwrites every mutable column of book.
func (q *queries) UpdateCompletedBook(ctx context.Context, book *domain.CompletedBook) error {
	book.ISBN = dedup.NormalizeISBN(book.ISBN)
	book.UpdatedAt = time.Now().UTC()

	details, err := detailArgs(book.BookDetails)
	if err != nil {
		return err
	}
	args := append([]any{book.Owned}, details...)
	args = append(args, formatTime(book.UpdatedAt), book.ID, book.UserID)

	query := `UPDATE completed_books SET owned = ?, ` + detailsAssignments + `, updated_at = ?
		WHERE id = ? AND user_id = ?`
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("update completed book %d: %w", book.ID, err)
	}
	return expectOne(res, fmt.Sprintf("completed book %d not found", book.ID))
}

// DeleteCompletedBook removes the book. Its rating goes with it.
func (q *queries) DeleteCompletedBook(ctx context.Context, userID string, id int64) error {
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(`DELETE FROM completed_books WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete completed book %d: %w", id, err)
	}
	return expectOne(res, fmt.Sprintf("completed book %d not found", id))
}
