package ingest

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const isoDate = "2006-01-02"

// dateLayouts are accepted for every dialect.
var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"01/02/2006",
}

// slashDateLayouts are the YYYY/MM/DD forms Goodreads writes.
var slashDateLayouts = []string{
	"2006/01/02",
	"2006/1/2",
}

// parseDate normalizes a date to ISO form. Unparsable or empty input yields
// an empty string rather than an error.
func parseDate(raw string, allowSlash bool) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	layouts := dateLayouts
	if allowSlash {
		layouts = slices.Concat(slashDateLayouts, dateLayouts)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate)
		}
	}
	return ""
}

// parseBool accepts yes/true/1/y in any case.
func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}

// leadingInt reads the integer at the start of raw ("352", "352 pages", "4.0").
// It returns 0 when there is none.
func leadingInt(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(raw[:end])
	if err != nil {
		return 0
	}
	return n
}

// parseRating keeps ratings in 1..5 and maps anything else to 0.
func parseRating(raw string) int {
	n := leadingInt(raw)
	if n < 1 || n > 5 {
		return 0
	}
	return n
}

// cleanISBN removes the ="..." spreadsheet quoting Goodreads applies to ISBN
// columns and keeps digits plus an ISBN-10 check digit.
func cleanISBN(raw string, unquote bool) string {
	raw = strings.TrimSpace(raw)
	if unquote {
		raw = stripFormulaQuote(raw)
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'x' || r == 'X':
			b.WriteRune('X')
		}
	}
	return b.String()
}

// stripFormulaQuote turns `="0441172717"` into `0441172717`.
func stripFormulaQuote(raw string) string {
	if strings.HasPrefix(raw, `="`) && strings.HasSuffix(raw, `"`) && len(raw) >= 3 {
		return raw[2 : len(raw)-1]
	}
	return raw
}

// splitList splits a free-text list on commas or semicolons.
func splitList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// exclusiveShelves are Goodreads status shelves, not user tags.
var exclusiveShelves = map[string]bool{
	"read":              true,
	"to-read":           true,
	"currently-reading": true,
}

// shelvesToTags converts a Goodreads "Bookshelves" cell into tags.
func shelvesToTags(raw string) []string {
	var tags []string
	for _, shelf := range splitList(raw) {
		if exclusiveShelves[strings.ToLower(shelf)] {
			continue
		}
		tags = append(tags, shelf)
	}
	return tags
}

// seriesSuffix matches the "(Series Name, #3)" suffix Goodreads appends to titles.
var seriesSuffix = regexp.MustCompile(`^(.+?)\s*\(([^()#]+?),?\s*#(\d+(?:\.\d+)?)\)\s*$`)

// splitSeriesTitle separates a Goodreads series suffix from a title.
func splitSeriesTitle(title string) (clean, series, position string) {
	m := seriesSuffix.FindStringSubmatch(title)
	if m == nil {
		return title, "", ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), m[3]
}
