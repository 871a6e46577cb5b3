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

const libraryColumns = `id, owner_id, reading_status, ` + detailsColumns + `, created_at, updated_at`

type libraryRow struct {
	ID            int64  `db:"id"`
	OwnerID       string `db:"owner_id"`
	ReadingStatus string `db:"reading_status"`
	detailsRow
}

func (r libraryRow) toDomain() (*domain.LibraryBook, error) {
	details, createdAt, updatedAt, err := r.detailsRow.toDomain()
	if err != nil {
		return nil, fmt.Errorf("library book %d: %w", r.ID, err)
	}
	status, err := domain.ParseReadingStatus(r.ReadingStatus)
	if err != nil {
		return nil, fmt.Errorf("library book %d: %w", r.ID, err)
	}
	return &domain.LibraryBook{
		BookDetails:   details,
		CreatedAt:     createdAt,
		UpdatedAt:     updatedAt,
		ID:            r.ID,
		OwnerID:       r.OwnerID,
		ReadingStatus: status,
	}, nil
}

func (q *queries) selectLibrary(ctx context.Context, where string, args ...any) ([]*domain.LibraryBook, error) {
	var rows []libraryRow
	query := `SELECT ` + libraryColumns + ` FROM library_books WHERE ` + where + ` ORDER BY id`
	if err := sqlx.SelectContext(ctx, q.ext, &rows, q.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("select library books: %w", err)
	}

	books := make([]*domain.LibraryBook, 0, len(rows))
	for _, r := range rows {
		b, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

// ListLibraryBooks returns every library book of the owner, in id order.
func (q *queries) ListLibraryBooks(ctx context.Context, ownerID string) ([]*domain.LibraryBook, error) {
	return q.selectLibrary(ctx, `owner_id = ?`, ownerID)
}

// ListReadLibraryBooks returns the owner's library books marked read.
func (q *queries) ListReadLibraryBooks(ctx context.Context, ownerID string) ([]*domain.LibraryBook, error) {
	return q.selectLibrary(ctx, `owner_id = ? AND reading_status = ?`, ownerID, string(domain.StatusRead))
}

// GetLibraryBook returns store.ErrNotFound when the book does not exist or
// belongs to someone else.
func (q *queries) GetLibraryBook(ctx context.Context, ownerID string, id int64) (*domain.LibraryBook, error) {
	var r libraryRow
	query := `SELECT ` + libraryColumns + ` FROM library_books WHERE id = ? AND owner_id = ?`
	err := sqlx.GetContext(ctx, q.ext, &r, q.ext.Rebind(query), id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage(fmt.Sprintf("library book %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("get library book %d: %w", id, err)
	}
	return r.toDomain()
}

// CreateLibraryBook inserts book and sets its ID. A second book with the
// same owner and ISBN returns store.ErrAlreadyExists.
func (q *queries) CreateLibraryBook(ctx context.Context, book *domain.LibraryBook) error {
	if book.ReadingStatus == "" {
		book.ReadingStatus = domain.StatusUnread
	}
	book.ISBN = dedup.NormalizeISBN(book.ISBN)
	stamp(&book.CreatedAt, &book.UpdatedAt)

	details, err := detailArgs(book.BookDetails)
	if err != nil {
		return err
	}
	args := append([]any{book.OwnerID, string(book.ReadingStatus)}, details...)
	args = append(args, formatTime(book.CreatedAt), formatTime(book.UpdatedAt))

	query := `INSERT INTO library_books (owner_id, reading_status, ` + detailsColumns + `, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`
	if err := q.ext.QueryRowxContext(ctx, q.ext.Rebind(query), args...).Scan(&book.ID); err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("library book with this ISBN already exists").WithCause(err)
		}
		return fmt.Errorf("insert library book: %w", err)
	}
	return nil
}

// UpdateLibraryBook overwrites every mutable column of book.
func (q *queries) UpdateLibraryBook(ctx context.Context, book *domain.LibraryBook) error {
	book.ISBN = dedup.NormalizeISBN(book.ISBN)
	book.UpdatedAt = time.Now().UTC()

	details, err := detailArgs(book.BookDetails)
	if err != nil {
		return err
	}
	args := append([]any{string(book.ReadingStatus)}, details...)
	args = append(args, formatTime(book.UpdatedAt), book.ID, book.OwnerID)

	query := `UPDATE library_books SET reading_status = ?, ` + detailsAssignments + `, updated_at = ?
		WHERE id = ? AND owner_id = ?`
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query), args...)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("library book with this ISBN already exists").WithCause(err)
		}
		return fmt.Errorf("update library book %d: %w", book.ID, err)
	}
	return expectOne(res, fmt.Sprintf("library book %d not found", book.ID))
}

// MarkLibraryBookRead sets the book to read with the given finish date. It
// never creates rows.
func (q *queries) MarkLibraryBookRead(ctx context.Context, ownerID string, id int64, dateFinished string) error {
	query := `UPDATE library_books SET reading_status = ?, date_finished = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`
	res, err := q.ext.ExecContext(ctx, q.ext.Rebind(query),
		string(domain.StatusRead), nullString(dateFinished), formatTime(time.Now()), id, ownerID)
	if err != nil {
		return fmt.Errorf("mark library book %d read: %w", id, err)
	}
	return expectOne(res, fmt.Sprintf("library book %d not found", id))
}

func expectOne(res sql.Result, notFound string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(notFound)
	}
	return nil
}
