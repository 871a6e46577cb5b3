// Package genre canonicalizes free-text genre labels from imports so the
// same genre is spelled one way across the reading log.
package genre

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Slugify converts a label to its lookup key.
// "Science Fiction" -> "science-fiction".
// "Sci-Fi/Fantasy" -> "sci-fi-fantasy".
// "Ciência" -> "ciencia".
func Slugify(s string) string {
	// Decompose accents so the base letter survives the ASCII filter.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Canonical returns the display name for a known genre or alias, and the
// trimmed input otherwise.
//
//	Canonical("sci-fi")          == "Science Fiction"
//	Canonical("  YA ")           == "Young Adult"
//	Canonical("Weird Westerns")  == "Weird Westerns"
func Canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	slug := Slugify(raw)
	if target, ok := aliases[slug]; ok {
		slug = target
	}
	if name, ok := names[slug]; ok {
		return name
	}
	return raw
}
