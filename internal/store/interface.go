// Package store defines the persistence interface for reading logs.
package store

import (
	"context"

	"github.com/listenupapp/readlog/internal/domain"
)

// Querier holds the book and rating operations. It is implemented both by
// the store itself and by the handle passed to WithTx.
type Querier interface {
	// Library books
	ListLibraryBooks(ctx context.Context, ownerID string) ([]*domain.LibraryBook, error)
	ListReadLibraryBooks(ctx context.Context, ownerID string) ([]*domain.LibraryBook, error)
	GetLibraryBook(ctx context.Context, ownerID string, id int64) (*domain.LibraryBook, error)
	CreateLibraryBook(ctx context.Context, book *domain.LibraryBook) error
	UpdateLibraryBook(ctx context.Context, book *domain.LibraryBook) error
	MarkLibraryBookRead(ctx context.Context, ownerID string, id int64, dateFinished string) error

	// Completed books
	ListCompletedBooks(ctx context.Context, userID string) ([]*domain.CompletedBook, error)
	GetCompletedBook(ctx context.Context, userID string, id int64) (*domain.CompletedBook, error)
	CreateCompletedBook(ctx context.Context, book *domain.CompletedBook) error
	UpdateCompletedBook(ctx context.Context, book *domain.CompletedBook) error
	DeleteCompletedBook(ctx context.Context, userID string, id int64) error

	// Ratings, kept per source table.
	GetRating(ctx context.Context, source domain.EntrySource, bookID int64, userID string) (*domain.Rating, error)
	InsertRatingIfAbsent(ctx context.Context, source domain.EntrySource, rating *domain.Rating) (bool, error)
	UpsertRating(ctx context.Context, source domain.EntrySource, rating *domain.Rating) error
}

// Store is the persistence layer.
type Store interface {
	Querier

	// WithTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error

	Ping(ctx context.Context) error
	Close() error
}
