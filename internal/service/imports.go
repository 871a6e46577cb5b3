package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/listenupapp/readlog/internal/dedup"
	"github.com/listenupapp/readlog/internal/domain"
	domainerrors "github.com/listenupapp/readlog/internal/errors"
	"github.com/listenupapp/readlog/internal/ingest"
	"github.com/listenupapp/readlog/internal/resolve"
	"github.com/listenupapp/readlog/internal/store"
)

// errAlreadyLogged marks a row whose work is already in the reading log.
var errAlreadyLogged = domainerrors.Conflict("already in reading log")

// LibraryUpdate completes an existing library book during commit.
type LibraryUpdate struct {
	LibraryBookID   int64
	NewDateFinished string
}

// CommitRequest is the operator-approved part of a preview.
type CommitRequest struct {
	BooksToImport  []ingest.Row
	LibraryUpdates []LibraryUpdate
}

// CommitResult summarises a commit. Failed rows are described in Errors.
type CommitResult struct {
	Imported       int      `json:"imported"`
	OwnedMirrored  int      `json:"ownedMirrored"`
	LibraryUpdated int      `json:"libraryUpdated"`
	Failed         int      `json:"failed"`
	Errors         []string `json:"errors"`
}

// ImportService parses uploads into previews and commits approved rows.
type ImportService struct {
	store    store.Store
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// NewImportService creates a new import service.
func NewImportService(st store.Store, resolver *resolve.Resolver, logger *slog.Logger) *ImportService {
	return &ImportService{store: st, resolver: resolver, logger: logger}
}

// Parse normalizes an upload and classifies every row against the user's
// current books. Nothing is written. Only an unreadable upload is an error.
func (s *ImportService) Parse(ctx context.Context, userID, data, format string) (*resolve.Preview, error) {
	start := time.Now()

	f, err := ingest.ParseFormat(format)
	if err != nil {
		return nil, parseError(err)
	}
	raw, err := ingest.DecodePayload(data, f)
	if err != nil {
		return nil, parseError(err)
	}
	parsed, err := ingest.Parse(raw, f)
	if err != nil {
		return nil, parseError(err)
	}

	completed, err := s.store.ListCompletedBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list completed books: %w", err)
	}
	library, err := s.store.ListLibraryBooks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list library books: %w", err)
	}

	preview, err := s.resolver.Resolve(ctx, parsed, resolve.State{Completed: completed, Library: library})
	if err != nil {
		return nil, err
	}

	s.logger.Info("import parsed",
		"user_id", userID,
		"preview_id", preview.ID,
		"format", f,
		"rows", preview.Counts.Total,
		"duration", time.Since(start),
	)
	return preview, nil
}

// Commit applies approved library updates and rows. Each unit commits on
// its own, so one failing row never undoes another. Every row is checked
// against the completed books as they are at that moment, which catches
// books added since the preview.
func (s *ImportService) Commit(ctx context.Context, userID string, req CommitRequest) (*CommitResult, error) {
	res := &CommitResult{Errors: []string{}}

	for _, u := range req.LibraryUpdates {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := s.store.MarkLibraryBookRead(ctx, userID, u.LibraryBookID, u.NewDateFinished); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("Library book %d: %s", u.LibraryBookID, failureReason(err)))
			continue
		}
		res.LibraryUpdated++
	}

	for i, row := range req.BooksToImport {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		var mirrored bool
		err := s.store.WithTx(ctx, func(ctx context.Context, q store.Querier) error {
			if !row.HasTitle() {
				return domainerrors.Validation("missing title")
			}
			var err error
			_, mirrored, err = recordCompleted(ctx, q, userID, row)
			return err
		})
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("Row %d %q: %s", i+1, row.Title, failureReason(err)))
			if !errors.Is(err, errAlreadyLogged) {
				s.logger.Warn("import row failed", "user_id", userID, "row", i+1, "error", err)
			}
			continue
		}
		res.Imported++
		if mirrored {
			res.OwnedMirrored++
		}
	}

	s.logger.Info("import committed",
		"user_id", userID,
		"imported", res.Imported,
		"owned_mirrored", res.OwnedMirrored,
		"library_updated", res.LibraryUpdated,
		"failed", res.Failed,
	)
	return res, nil
}

// recordCompleted inserts row as a completed book unless the user already
// has it, storing its rating. An owned row is mirrored into the library:
// an existing library copy is marked read, otherwise a read copy is
// created. It reports whether a library mirror was written.
func recordCompleted(ctx context.Context, q store.Querier, userID string, row ingest.Row) (*domain.CompletedBook, bool, error) {
	existing, err := q.ListCompletedBooks(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("list completed books: %w", err)
	}
	if dedup.NewSet(existing...).Intersects(dedup.Compute(row)) {
		return nil, false, errAlreadyLogged
	}

	book := &domain.CompletedBook{
		BookDetails: detailsFromRow(row),
		UserID:      userID,
		Owned:       row.IsOwned(),
	}
	if err := q.CreateCompletedBook(ctx, book); err != nil {
		return nil, false, fmt.Errorf("create completed book: %w", err)
	}

	if domain.ValidRating(row.Rating) {
		if _, err := q.InsertRatingIfAbsent(ctx, domain.SourceCompleted, &domain.Rating{
			BookID: book.ID,
			UserID: userID,
			Value:  row.Rating,
		}); err != nil {
			return nil, false, fmt.Errorf("store rating: %w", err)
		}
	}

	if !book.Owned {
		return book, false, nil
	}

	library, err := q.ListLibraryBooks(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("list library books: %w", err)
	}
	idx := dedup.NewIndex[*domain.LibraryBook]()
	for _, b := range library {
		idx.Add(b.BookDetails, b)
	}

	mirror, found := idx.Find(dedup.Compute(row))
	switch {
	case found && mirror.IsRead() && mirror.DateFinished != "":
		// Already complete; only the rating may still be missing.
	case found:
		mirror.MarkRead(book.DateFinished, false)
		if err := q.UpdateLibraryBook(ctx, mirror); err != nil {
			return nil, false, fmt.Errorf("mark library copy read: %w", err)
		}
	default:
		mirror = book.ToLibraryBook()
		if err := q.CreateLibraryBook(ctx, mirror); err != nil {
			return nil, false, fmt.Errorf("create library copy: %w", err)
		}
	}

	if domain.ValidRating(row.Rating) {
		if _, err := q.InsertRatingIfAbsent(ctx, domain.SourceLibrary, &domain.Rating{
			BookID: mirror.ID,
			UserID: userID,
			Value:  row.Rating,
		}); err != nil {
			return nil, false, fmt.Errorf("store library rating: %w", err)
		}
	}
	return book, true, nil
}

func detailsFromRow(row ingest.Row) domain.BookDetails {
	tags := append([]string{}, row.Tags...)
	return domain.BookDetails{
		ISBN:           row.ISBN,
		Title:          row.Title,
		Author:         row.Author,
		DateFinished:   row.DateFinished,
		SeriesName:     row.SeriesName,
		SeriesPosition: row.SeriesPosition,
		Genre:          row.Genre,
		Synopsis:       row.Synopsis,
		Tags:           tags,
		PageCount:      row.PageCount,
	}
}

// failureReason is the per-row message shown to the operator.
func failureReason(err error) string {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		return storeErr.Message
	}
	return err.Error()
}

// parseError converts a normalizer failure into a request error.
func parseError(err error) error {
	var pe *ingest.ParseError
	if errors.As(err, &pe) {
		return domainerrors.Parse(pe.Reason, err)
	}
	return err
}
