// Package unified merges read library books and completed-only books into
// the single finished-books list users see.
package unified

import (
	"cmp"
	"slices"

	"github.com/listenupapp/readlog/internal/dedup"
	"github.com/listenupapp/readlog/internal/domain"
)

// Compose builds the unified view for one user. Library books that are not
// read are ignored. A completed book sharing any dedup key with an emitted
// entry is suppressed, so the library copy of a work always wins.
//
// The result is sorted by finish date (newest first, undated last) and then
// by creation time. No two entries in the result share a key.
func Compose(library []*domain.LibraryBook, completed []*domain.CompletedBook) []domain.UnifiedEntry {
	libEntries := make([]domain.UnifiedEntry, 0, len(library))
	for _, b := range library {
		if b == nil || !b.IsRead() {
			continue
		}
		libEntries = append(libEntries, domain.EntryFromLibrary(b))
	}

	completedEntries := make([]domain.UnifiedEntry, 0, len(completed))
	for _, c := range completed {
		if c == nil {
			continue
		}
		completedEntries = append(completedEntries, domain.EntryFromCompleted(c))
	}

	// Within a source the earliest entry in display order claims its keys.
	slices.SortStableFunc(libEntries, compareEntries)
	slices.SortStableFunc(completedEntries, compareEntries)

	seen := make(dedup.Set)
	out := make([]domain.UnifiedEntry, 0, len(libEntries)+len(completedEntries))
	for _, group := range [][]domain.UnifiedEntry{libEntries, completedEntries} {
		for _, e := range group {
			keys := dedup.Compute(e)
			if seen.Intersects(keys) {
				continue
			}
			seen.Add(keys...)
			out = append(out, e)
		}
	}

	slices.SortStableFunc(out, compareEntries)
	return out
}

// compareEntries orders entries newest-finished first. Empty dates sort last.
// Ties fall back to creation time, then source and id, which makes the order total.
func compareEntries(a, b domain.UnifiedEntry) int {
	if c := compareDates(a.DateFinished, b.DateFinished); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	if a.Source != b.Source {
		if a.Source == domain.SourceLibrary {
			return -1
		}
		return 1
	}
	return cmp.Compare(a.Ref.ID, b.Ref.ID)
}

// compareDates sorts ISO dates descending with empty values last.
// ISO-8601 strings order lexicographically in date order.
func compareDates(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return 1
	case b == "":
		return -1
	default:
		return cmp.Compare(b, a)
	}
}
