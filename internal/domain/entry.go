package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntrySource identifies which table a unified entry came from.
type EntrySource string

// Entry sources.
const (
	SourceLibrary   EntrySource = "library"
	SourceCompleted EntrySource = "completed"
)

// EntryRef addresses one row behind the unified finished-books view.
// It is only rendered as a string at the API and CLI boundary.
type EntryRef struct {
	Source EntrySource
	ID     int64
}

// LibraryRef returns a reference to a library book.
func LibraryRef(id int64) EntryRef {
	return EntryRef{Source: SourceLibrary, ID: id}
}

// CompletedRef returns a reference to a completed book.
func CompletedRef(id int64) EntryRef {
	return EntryRef{Source: SourceCompleted, ID: id}
}

// IsLibrary reports whether the ref points at a library book.
func (r EntryRef) IsLibrary() bool { return r.Source == SourceLibrary }

// IsCompleted reports whether the ref points at a completed book.
func (r EntryRef) IsCompleted() bool { return r.Source == SourceCompleted }

// String renders the ref as "library_N" or "completed_N".
func (r EntryRef) String() string {
	return string(r.Source) + "_" + strconv.FormatInt(r.ID, 10)
}

// MarshalText implements encoding.TextMarshaler.
func (r EntryRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *EntryRef) UnmarshalText(b []byte) error {
	ref, err := ParseEntryRef(string(b))
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// ErrInvalidEntryRef is returned for identifiers that cannot address an entry.
var ErrInvalidEntryRef = errors.New("invalid entry id")

// ParseEntryRef parses "library_N" or "completed_N". Identifiers without a
// known prefix predate library entries and are read as completed. N must be >= 1.
func ParseEntryRef(s string) (EntryRef, error) {
	ref := EntryRef{Source: SourceCompleted}
	raw := strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(raw, string(SourceLibrary)+"_"):
		ref.Source = SourceLibrary
		raw = strings.TrimPrefix(raw, string(SourceLibrary)+"_")
	case strings.HasPrefix(raw, string(SourceCompleted)+"_"):
		raw = strings.TrimPrefix(raw, string(SourceCompleted)+"_")
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return EntryRef{}, fmt.Errorf("%w: %q", ErrInvalidEntryRef, s)
	}
	ref.ID = id
	return ref, nil
}

// UnifiedEntry is the display projection of a finished book, whichever table holds it.
type UnifiedEntry struct {
	BookDetails
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Ref       EntryRef    `json:"id"`
	Source    EntrySource `json:"source"`
	Owned     bool        `json:"owned"`
}

// EntryFromLibrary projects a library book. Library entries are always owned.
func EntryFromLibrary(b *LibraryBook) UnifiedEntry {
	return UnifiedEntry{
		BookDetails: b.BookDetails,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Ref:         LibraryRef(b.ID),
		Source:      SourceLibrary,
		Owned:       true,
	}
}

// EntryFromCompleted projects a completed book.
func EntryFromCompleted(c *CompletedBook) UnifiedEntry {
	return UnifiedEntry{
		BookDetails: c.BookDetails,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
		Ref:         CompletedRef(c.ID),
		Source:      SourceCompleted,
		Owned:       c.Owned,
	}
}
