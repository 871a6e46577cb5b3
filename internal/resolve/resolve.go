// Package resolve classifies parsed import rows against the user's existing
// books and an external metadata catalog. Resolution is read-only: it builds
// a Preview and never writes.
package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/listenupapp/readlog/internal/dedup"
	"github.com/listenupapp/readlog/internal/domain"
	"github.com/listenupapp/readlog/internal/id"
	"github.com/listenupapp/readlog/internal/ingest"
	"github.com/listenupapp/readlog/internal/lookup"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultConcurrency = 4
	DefaultTimeout     = 10 * time.Second
)

// Options tunes catalog lookups.
type Options struct {
	// Concurrency caps in-flight rows.
	Concurrency int
	// Timeout bounds the catalog calls of a single row.
	Timeout time.Duration
}

// State is the snapshot of the user's books a batch is resolved against.
// It is read once per batch; rows never see each other.
type State struct {
	Completed []*domain.CompletedBook
	Library   []*domain.LibraryBook
}

// Resolver runs the resolution pipeline.
type Resolver struct {
	provider lookup.Provider
	logger   *slog.Logger
	tracer   trace.Tracer
	opts     Options
}

// New creates a Resolver. A nil provider disables catalog lookups.
func New(provider lookup.Provider, logger *slog.Logger, opts Options) *Resolver {
	if provider == nil {
		provider = lookup.None{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Resolver{
		provider: provider,
		logger:   logger,
		tracer:   otel.Tracer("readlog/resolve"),
		opts:     opts,
	}
}

// Resolve classifies every row of parsed. Rows are processed concurrently
// but each list of the returned Preview is in input order, so the same input
// and state always produce the same preview apart from its ID.
//
// Cancelling ctx does not fail the batch: rows not yet resolved land in
// NeedsReview. The only error is failure to allocate a preview ID.
func (r *Resolver) Resolve(ctx context.Context, parsed *ingest.Result, state State) (*Preview, error) {
	previewID, err := id.NewPreviewID()
	if err != nil {
		return nil, fmt.Errorf("allocate preview id: %w", err)
	}

	ctx, span := r.tracer.Start(ctx, "resolve.batch", trace.WithAttributes(
		attribute.String("preview.id", previewID),
		attribute.String("import.dialect", string(parsed.Dialect)),
		attribute.Int("import.rows", len(parsed.Rows)),
	))
	defer span.End()

	start := time.Now()
	snap := newSnapshot(state)
	outcomes := make([]Outcome, len(parsed.Rows))

	var g errgroup.Group
	g.SetLimit(r.opts.Concurrency)
	for i, row := range parsed.Rows {
		g.Go(func() error {
			outcomes[i] = r.resolveRow(ctx, snap, i, row)
			return nil
		})
	}
	_ = g.Wait()

	preview := newPreview(previewID, parsed.Dialect, parsed.SkippedShelves)
	for _, o := range outcomes {
		preview.add(o)
	}

	c := preview.Counts
	span.SetAttributes(
		attribute.Int("import.found", c.Found),
		attribute.Int("import.needs_review", c.NotFound),
		attribute.Int("import.duplicates", c.Duplicates),
	)
	r.logger.Info("import resolved",
		"preview_id", previewID,
		"dialect", parsed.Dialect,
		"total", c.Total,
		"found", c.Found,
		"library_updates", c.LibraryUpdates,
		"duplicates", c.Duplicates,
		"needs_review", c.NotFound,
		"invalid", c.Invalid,
		"skipped_shelves", c.SkippedShelves,
		"duration", time.Since(start),
	)
	return preview, nil
}

func (r *Resolver) resolveRow(ctx context.Context, snap *snapshot, i int, row ingest.Row) Outcome {
	ctx, span := r.tracer.Start(ctx, "resolve.row", trace.WithAttributes(attribute.Int("row.index", i)))
	defer span.End()

	o := r.classify(ctx, snap, i, row)
	span.SetAttributes(attribute.String("row.outcome", string(o.Kind)))
	if o.Reason != "" {
		span.AddEvent(o.Reason)
	}
	return o
}

// classify applies the checks in order: validity, local duplicates, library
// completion, then the catalog.
func (r *Resolver) classify(ctx context.Context, snap *snapshot, i int, row ingest.Row) Outcome {
	if !row.HasTitle() {
		return Outcome{Kind: KindInvalid, Index: i, Row: row, Reason: ReasonMissingTitle}
	}
	if o, ok := snap.match(i, row, row.ISBN); ok {
		return o
	}
	if ctx.Err() != nil {
		return review(i, row, ReasonLookupFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	hasAuthor := strings.TrimSpace(row.Author) != ""
	switch {
	case hasAuthor:
		return r.searchRow(ctx, snap, i, row)
	case row.ISBN != "":
		meta, err := r.provider.LookupByISBN(ctx, row.ISBN)
		if err != nil {
			return r.lookupFailed(ctx, i, row, err)
		}
		if meta == nil {
			return review(i, row, ReasonNoMatch)
		}
		return found(i, row, meta)
	default:
		return review(i, row, ReasonInsufficient)
	}
}

// searchRow resolves a row by title and author. A catalog ISBN gets a second
// pass through the local checks before the full record is fetched.
func (r *Resolver) searchRow(ctx context.Context, snap *snapshot, i int, row ingest.Row) Outcome {
	hit, err := r.provider.SearchByTitleAuthor(ctx, row.Title, row.Author, row.ISBN)
	if err != nil {
		return r.lookupFailed(ctx, i, row, err)
	}
	if hit == nil {
		return review(i, row, ReasonNoMatch)
	}
	isbn := dedup.NormalizeISBN(hit.ISBN)
	if isbn == "" {
		return review(i, row, ReasonNoMatch)
	}

	if row.ISBN == "" {
		row.ISBN = isbn
	}
	if o, ok := snap.match(i, row, isbn); ok {
		return o
	}

	meta, err := r.provider.LookupByISBN(ctx, isbn)
	if err != nil {
		r.logger.Warn("isbn lookup failed, using search result", "row", i, "isbn", isbn, "error", err)
	}
	if meta == nil {
		meta = hit
	}
	if meta.ISBN == "" {
		m := *meta
		m.ISBN = isbn
		meta = &m
	}
	return found(i, row, meta)
}

func (r *Resolver) lookupFailed(ctx context.Context, i int, row ingest.Row, err error) Outcome {
	trace.SpanFromContext(ctx).SetStatus(codes.Error, err.Error())
	r.logger.Warn("metadata lookup failed",
		"row", i,
		"title", row.Title,
		"author", row.Author,
		"isbn", row.ISBN,
		"error", err,
	)
	return review(i, row, ReasonLookupFailed)
}

func review(i int, row ingest.Row, reason string) Outcome {
	return Outcome{Kind: KindNeedsReview, Index: i, Row: row, Reason: reason}
}

func found(i int, row ingest.Row, meta *lookup.Metadata) Outcome {
	return Outcome{Kind: KindFound, Index: i, Row: mergeRow(row, meta), Metadata: meta}
}

// mergeRow overlays catalog fields onto row. Personal fields (finish date,
// ownership, tags, rating) always come from the upload.
func mergeRow(row ingest.Row, m *lookup.Metadata) ingest.Row {
	out := row
	overlay(&out.Title, m.Title)
	overlay(&out.Author, m.Author)
	overlay(&out.Genre, m.Genre)
	overlay(&out.Synopsis, m.Synopsis)
	overlay(&out.SeriesName, m.SeriesName)
	overlay(&out.SeriesPosition, m.SeriesPosition)
	if isbn := dedup.NormalizeISBN(m.ISBN); isbn != "" {
		out.ISBN = isbn
	}
	if m.PageCount > 0 {
		out.PageCount = m.PageCount
	}
	return out
}

func overlay(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

// snapshot indexes State for the local checks.
type snapshot struct {
	completed     *dedup.Index[int64]
	libraryByISBN map[string]int64
}

func newSnapshot(state State) *snapshot {
	s := &snapshot{
		completed:     dedup.NewIndex[int64](),
		libraryByISBN: make(map[string]int64, len(state.Library)),
	}
	for _, c := range state.Completed {
		s.completed.Add(c.BookDetails, c.ID)
	}
	for _, b := range state.Library {
		isbn := dedup.NormalizeISBN(b.ISBN)
		if isbn == "" {
			continue
		}
		if _, exists := s.libraryByISBN[isbn]; !exists {
			s.libraryByISBN[isbn] = b.ID
		}
	}
	return s
}

// match runs the duplicate and library checks for row, identified by isbn.
func (s *snapshot) match(i int, row ingest.Row, isbn string) (Outcome, bool) {
	if existing, ok := s.completed.Find(dedup.Of(isbn, row.Title, row.Author)); ok {
		return Outcome{Kind: KindDuplicate, Index: i, Row: row, ExistingID: existing}, true
	}
	if n := dedup.NormalizeISBN(isbn); n != "" {
		if bookID, ok := s.libraryByISBN[n]; ok {
			return Outcome{
				Kind:            KindLibraryUpdate,
				Index:           i,
				Row:             row,
				LibraryBookID:   bookID,
				NewDateFinished: row.DateFinished,
			}, true
		}
	}
	return Outcome{}, false
}
