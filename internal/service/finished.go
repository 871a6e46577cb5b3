package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/readlog/internal/dedup"
	"github.com/listenupapp/readlog/internal/domain"
	domainerrors "github.com/listenupapp/readlog/internal/errors"
	"github.com/listenupapp/readlog/internal/ingest"
	"github.com/listenupapp/readlog/internal/store"
	"github.com/listenupapp/readlog/internal/unified"
)

// EntryDetail is a unified entry plus the user's rating of it (0 when unrated).
type EntryDetail struct {
	domain.UnifiedEntry
	Rating int `json:"rating,omitempty"`
}

// EntryUpdate holds the editable fields of an entry. Nil means unchanged.
type EntryUpdate struct {
	DateFinished *string
	Owned        *bool
}

// PromotionResult describes where a promoted book ended up.
type PromotionResult struct {
	LibraryBookID  int64               `json:"libraryBookId"`
	Merged         bool                `json:"merged"`
	RatingMigrated bool                `json:"ratingMigrated"`
	Entry          domain.UnifiedEntry `json:"entry"`
}

// FinishedService manages the unified finished-books list.
type FinishedService struct {
	store  store.Store
	logger *slog.Logger
}

// NewFinishedService creates a new finished-books service.
func NewFinishedService(st store.Store, logger *slog.Logger) *FinishedService {
	return &FinishedService{store: st, logger: logger}
}

// List returns the user's unified view.
func (s *FinishedService) List(ctx context.Context, userID string) ([]domain.UnifiedEntry, error) {
	library, err := s.store.ListReadLibraryBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list read library books: %w", err)
	}
	completed, err := s.store.ListCompletedBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed books: %w", err)
	}
	return unified.Compose(library, completed), nil
}

// Get returns one entry with its rating. Library books that are not read
// are not part of the view and read as not found.
func (s *FinishedService) Get(ctx context.Context, userID string, ref domain.EntryRef) (*EntryDetail, error) {
	entry, err := s.entry(ctx, s.store, userID, ref)
	if err != nil {
		return nil, err
	}

	detail := &EntryDetail{UnifiedEntry: entry}
	rating, err := s.store.GetRating(ctx, ref.Source, ref.ID, userID)
	switch {
	case err == nil:
		detail.Rating = rating.Value
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return detail, nil
}

// AddCompleted records a finished book by hand. Adding a work already in
// the view is a conflict.
func (s *FinishedService) AddCompleted(ctx context.Context, userID string, row ingest.Row) (*EntryDetail, error) {
	if !row.HasTitle() {
		return nil, domainerrors.Validation("title is required")
	}
	if row.Rating != 0 && !domain.ValidRating(row.Rating) {
		return nil, domainerrors.Validationf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}

	var book *domain.CompletedBook
	err := s.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		library, err := q.ListReadLibraryBooks(ctx, userID)
		if err != nil {
			return fmt.Errorf("list read library books: %w", err)
		}
		if dedup.NewSet(library...).Intersects(dedup.Compute(row)) {
			return errAlreadyLogged
		}

		book, _, err = recordCompleted(ctx, q, userID, row)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("completed book added",
		"user_id", userID,
		"completed_id", book.ID,
		"title", book.Title,
		"owned", book.Owned,
	)
	return s.Get(ctx, userID, domain.CompletedRef(book.ID))
}

// Update edits an entry. Finish dates can change for both sources; the
// owned flag only exists on completed books.
func (s *FinishedService) Update(ctx context.Context, userID string, ref domain.EntryRef, upd EntryUpdate) (*EntryDetail, error) {
	switch ref.Source {
	case domain.SourceLibrary:
		if upd.Owned != nil {
			return nil, domainerrors.Validation("owned cannot be changed on a library entry")
		}
		book, err := s.readLibraryBook(ctx, s.store, userID, ref)
		if err != nil {
			return nil, err
		}
		if upd.DateFinished != nil {
			book.DateFinished = *upd.DateFinished
		}
		if err := s.store.UpdateLibraryBook(ctx, book); err != nil {
			return nil, fmt.Errorf("update library book: %w", err)
		}

	default:
		book, err := s.store.GetCompletedBook(ctx, userID, ref.ID)
		if err != nil {
			return nil, entryNotFound(ref, err)
		}
		if upd.DateFinished != nil {
			book.DateFinished = *upd.DateFinished
		}
		if upd.Owned != nil {
			book.Owned = *upd.Owned
		}
		if err := s.store.UpdateCompletedBook(ctx, book); err != nil {
			return nil, fmt.Errorf("update completed book: %w", err)
		}
	}

	return s.Get(ctx, userID, ref)
}

// Delete removes an entry from the view. A completed book is deleted; a
// library book stays in the library but goes back to unread with no date.
func (s *FinishedService) Delete(ctx context.Context, userID string, ref domain.EntryRef) error {
	if ref.IsCompleted() {
		if err := s.store.DeleteCompletedBook(ctx, userID, ref.ID); err != nil {
			return entryNotFound(ref, err)
		}
		s.logger.Info("completed book deleted", "user_id", userID, "completed_id", ref.ID)
		return nil
	}

	book, err := s.readLibraryBook(ctx, s.store, userID, ref)
	if err != nil {
		return err
	}
	book.ReadingStatus = domain.StatusUnread
	book.DateFinished = ""
	if err := s.store.UpdateLibraryBook(ctx, book); err != nil {
		return fmt.Errorf("reset library book: %w", err)
	}
	s.logger.Info("library book marked unread", "user_id", userID, "library_book_id", ref.ID)
	return nil
}

// SetRating stores the user's rating of an entry, replacing any earlier one.
func (s *FinishedService) SetRating(ctx context.Context, userID string, ref domain.EntryRef, value int) (*domain.Rating, error) {
	if !domain.ValidRating(value) {
		return nil, domainerrors.Validationf("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	if _, err := s.entry(ctx, s.store, userID, ref); err != nil {
		return nil, err
	}

	rating := &domain.Rating{BookID: ref.ID, UserID: userID, Value: value}
	if err := s.store.UpsertRating(ctx, ref.Source, rating); err != nil {
		return nil, fmt.Errorf("set rating: %w", err)
	}
	return rating, nil
}

// Promote moves a completed book into the library. If the library already
// holds the same work it is marked read instead (a merge), keeping its own
// finish date when it has one. The rating moves only when the library book
// has none. The completed row is deleted. All of it happens in one
// transaction.
func (s *FinishedService) Promote(ctx context.Context, userID string, ref domain.EntryRef) (*PromotionResult, error) {
	if ref.IsLibrary() {
		return nil, domainerrors.InvariantViolation("entry is already in the library")
	}

	var result *PromotionResult
	err := s.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
		completed, err := q.GetCompletedBook(ctx, userID, ref.ID)
		if err != nil {
			return entryNotFound(ref, err)
		}

		library, err := q.ListLibraryBooks(ctx, userID)
		if err != nil {
			return fmt.Errorf("list library books: %w", err)
		}
		idx := dedup.NewIndex[*domain.LibraryBook]()
		for _, b := range library {
			idx.Add(b.BookDetails, b)
		}

		target, merged := idx.Find(dedup.Compute(completed.BookDetails))
		if merged {
			target.MarkRead(completed.DateFinished, false)
			if err := q.UpdateLibraryBook(ctx, target); err != nil {
				return fmt.Errorf("mark library book read: %w", err)
			}
		} else {
			target = completed.ToLibraryBook()
			if err := q.CreateLibraryBook(ctx, target); err != nil {
				return fmt.Errorf("create library book: %w", err)
			}
		}

		migrated, err := migrateRating(ctx, q, userID, completed.ID, target.ID)
		if err != nil {
			return err
		}

		if err := q.DeleteCompletedBook(ctx, userID, completed.ID); err != nil {
			return fmt.Errorf("delete completed book: %w", err)
		}

		result = &PromotionResult{
			LibraryBookID:  target.ID,
			Merged:         merged,
			RatingMigrated: migrated,
			Entry:          domain.EntryFromLibrary(target),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("completed book promoted",
		"user_id", userID,
		"completed_id", ref.ID,
		"library_book_id", result.LibraryBookID,
		"merged", result.Merged,
		"rating_migrated", result.RatingMigrated,
	)
	return result, nil
}

// migrateRating copies the completed book's rating to the library book
// unless the library book is already rated.
func migrateRating(ctx context.Context, q store.Querier, userID string, completedID, libraryID int64) (bool, error) {
	rating, err := q.GetRating(ctx, domain.SourceCompleted, completedID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get completed rating: %w", err)
	}

	inserted, err := q.InsertRatingIfAbsent(ctx, domain.SourceLibrary, &domain.Rating{
		BookID: libraryID,
		UserID: userID,
		Value:  rating.Value,
	})
	if err != nil {
		return false, fmt.Errorf("migrate rating: %w", err)
	}
	return inserted, nil
}

// entry loads the unified projection of ref.
func (s *FinishedService) entry(ctx context.Context, q store.Querier, userID string, ref domain.EntryRef) (domain.UnifiedEntry, error) {
	if ref.IsLibrary() {
		book, err := s.readLibraryBook(ctx, q, userID, ref)
		if err != nil {
			return domain.UnifiedEntry{}, err
		}
		return domain.EntryFromLibrary(book), nil
	}

	book, err := q.GetCompletedBook(ctx, userID, ref.ID)
	if err != nil {
		return domain.UnifiedEntry{}, entryNotFound(ref, err)
	}
	return domain.EntryFromCompleted(book), nil
}

func (s *FinishedService) readLibraryBook(ctx context.Context, q store.Querier, userID string, ref domain.EntryRef) (*domain.LibraryBook, error) {
	book, err := q.GetLibraryBook(ctx, userID, ref.ID)
	if err != nil {
		return nil, entryNotFound(ref, err)
	}
	if !book.IsRead() {
		return nil, domainerrors.NotFoundf("entry %s not found", ref)
	}
	return book, nil
}

func entryNotFound(ref domain.EntryRef, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFoundf("entry %s not found", ref).WithCause(err)
	}
	return err
}
