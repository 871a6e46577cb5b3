// Package lookup defines the metadata provider consulted while resolving
// import rows, plus two in-process implementations.
package lookup

import (
	"context"
	"strings"

	"github.com/listenupapp/readlog/internal/dedup"
)

//go:generate mockgen -source=lookup.go -destination=../mocks/lookup/mock_provider.go -package=mock_lookup

// Provider resolves book metadata from an external catalog.
// Both methods return (nil, nil) when the catalog has no match; an error
// means the catalog could not be asked.
type Provider interface {
	LookupByISBN(ctx context.Context, isbn string) (*Metadata, error)
	SearchByTitleAuthor(ctx context.Context, title, author, isbn string) (*Metadata, error)
}

// Metadata is a catalog record.
type Metadata struct {
	ISBN           string `json:"isbn,omitempty"`
	Title          string `json:"title"`
	Author         string `json:"author,omitempty"`
	PageCount      int    `json:"pageCount,omitempty"`
	Genre          string `json:"genre,omitempty"`
	Synopsis       string `json:"synopsis,omitempty"`
	SeriesName     string `json:"seriesName,omitempty"`
	SeriesPosition string `json:"seriesPosition,omitempty"`
}

// DedupFields implements dedup.Record.
func (m Metadata) DedupFields() (isbn, title, author string) {
	return m.ISBN, m.Title, m.Author
}

// None is the provider used when lookups are disabled. It never finds anything.
type None struct{}

// LookupByISBN implements Provider.
func (None) LookupByISBN(context.Context, string) (*Metadata, error) { return nil, nil }

// SearchByTitleAuthor implements Provider.
func (None) SearchByTitleAuthor(context.Context, string, string, string) (*Metadata, error) {
	return nil, nil
}

// Static serves metadata from memory. Search matches on the same
// case-insensitive title/author key the dedup engine uses.
type Static struct {
	byISBN map[string]Metadata
	byKey  *dedup.Index[Metadata]
}

// NewStatic builds a Static provider from records.
func NewStatic(records ...Metadata) *Static {
	s := &Static{
		byISBN: make(map[string]Metadata, len(records)),
		byKey:  dedup.NewIndex[Metadata](),
	}
	for _, m := range records {
		if isbn := dedup.NormalizeISBN(m.ISBN); isbn != "" {
			s.byISBN[isbn] = m
		}
		s.byKey.AddKeys(dedup.Of("", m.Title, m.Author), m)
	}
	return s
}

// LookupByISBN implements Provider.
func (s *Static) LookupByISBN(ctx context.Context, isbn string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, ok := s.byISBN[dedup.NormalizeISBN(isbn)]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// SearchByTitleAuthor implements Provider.
func (s *Static) SearchByTitleAuthor(ctx context.Context, title, author, isbn string) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(isbn) != "" {
		if m, _ := s.LookupByISBN(ctx, isbn); m != nil {
			return m, nil
		}
	}
	m, ok := s.byKey.Find(dedup.Of("", title, author))
	if !ok {
		return nil, nil
	}
	return &m, nil
}
