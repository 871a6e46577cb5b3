// Package dedup computes identity keys that decide whether two book records
// describe the same work.
//
// A record yields up to two keys: one from its ISBN and one from its
// lowercased title and author. Two records match when their key sets share
// any key, so an ISBN match or a title+author match is enough on its own.
package dedup

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key is a normalized identity token such as "isbn:9780441172716" or "ta:dune|frank herbert".
type Key string

// Key prefixes.
const (
	isbnPrefix        = "isbn:"
	titleAuthorPrefix = "ta:"
)

// Record is anything carrying the attributes keys are computed from.
type Record interface {
	DedupFields() (isbn, title, author string)
}

// Fields is a Record built from plain values.
type Fields struct {
	ISBN   string
	Title  string
	Author string
}

// DedupFields implements Record.
func (f Fields) DedupFields() (isbn, title, author string) {
	return f.ISBN, f.Title, f.Author
}

// Compute returns the ordered keys for r. The ISBN key comes first when present.
// A record with neither an ISBN nor both title and author has no keys and
// never matches anything.
func Compute(r Record) []Key {
	isbn, title, author := r.DedupFields()
	return compute(isbn, title, author)
}

// Of returns the keys for the given field values. Callers use it to re-key a
// row after its ISBN was resolved elsewhere.
func Of(isbn, title, author string) []Key {
	return compute(isbn, title, author)
}

func compute(isbn, title, author string) []Key {
	keys := make([]Key, 0, 2)

	if n := NormalizeISBN(isbn); n != "" {
		keys = append(keys, Key(isbnPrefix+n))
	}

	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)
	if title != "" && author != "" {
		keys = append(keys, Key(titleAuthorPrefix+lower(title)+"|"+lower(author)))
	}

	return keys
}

// Match reports whether a and b share at least one key.
func Match(a, b Record) bool {
	return Intersects(Compute(a), Compute(b))
}

// Intersects reports whether the two key lists share a key.
func Intersects(a, b []Key) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// NormalizeISBN strips everything except digits and a check-digit X.
func NormalizeISBN(isbn string) string {
	var b strings.Builder
	for _, r := range isbn {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		}
	}
	return b.String()
}

// lower folds case with Unicode-aware rules. cases.Caser is not safe for
// concurrent use, so a fresh one is built per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
