package ingest

import (
	"strings"
)

// field is a canonical column name.
type field string

const (
	fieldTitle          field = "title"
	fieldAuthor         field = "author"
	fieldISBN           field = "isbn"
	fieldISBN13         field = "isbn13"
	fieldPageCount      field = "page_count"
	fieldGenre          field = "genre"
	fieldSynopsis       field = "synopsis"
	fieldTags           field = "tags"
	fieldSeriesName     field = "series_name"
	fieldSeriesPosition field = "series_position"
	fieldDateFinished   field = "date_finished"
	fieldOwned          field = "owned"
	fieldOwnedCopies    field = "owned_copies"
	fieldRating         field = "rating"
	fieldShelf          field = "shelf"
	fieldShelves        field = "shelves"
)

// synonyms folds known column spellings onto canonical fields.
// Keys are already canonicalized by canonicalHeader.
var synonyms = map[string]field{
	"title":      fieldTitle,
	"book_title": fieldTitle,
	"name":       fieldTitle,

	"author":      fieldAuthor,
	"authors":     fieldAuthor,
	"writer":      fieldAuthor,
	"author_name": fieldAuthor,

	"isbn":    fieldISBN,
	"isbn10":  fieldISBN,
	"isbn_10": fieldISBN,
	"isbn13":  fieldISBN13,
	"isbn_13": fieldISBN13,

	"pages":           fieldPageCount,
	"num_pages":       fieldPageCount,
	"number_of_pages": fieldPageCount,
	"page_count":      fieldPageCount,
	"pagecount":       fieldPageCount,

	"genre":    fieldGenre,
	"genres":   fieldGenre,
	"category": fieldGenre,

	"synopsis":    fieldSynopsis,
	"description": fieldSynopsis,
	"summary":     fieldSynopsis,

	"tags":   fieldTags,
	"labels": fieldTags,

	"series":      fieldSeriesName,
	"series_name": fieldSeriesName,
	"seriesname":  fieldSeriesName,

	"series_position": fieldSeriesPosition,
	"series_number":   fieldSeriesPosition,
	"series_index":    fieldSeriesPosition,
	"seriesposition":  fieldSeriesPosition,
	"position":        fieldSeriesPosition,

	"date_finished":  fieldDateFinished,
	"datefinished":   fieldDateFinished,
	"date_read":      fieldDateFinished,
	"finished":       fieldDateFinished,
	"finished_at":    fieldDateFinished,
	"date_completed": fieldDateFinished,
	"completed":      fieldDateFinished,

	"owned":    fieldOwned,
	"own":      fieldOwned,
	"is_owned": fieldOwned,

	"owned_copies": fieldOwnedCopies,

	"rating":    fieldRating,
	"my_rating": fieldRating,

	"exclusive_shelf": fieldShelf,
	"shelf":           fieldShelf,

	"bookshelves": fieldShelves,
	"shelves":     fieldShelves,
}

// goodreadsColumns are headers distinctive enough to identify a Goodreads
// library export. Three matches select the dialect.
var goodreadsColumns = []string{
	"book_id",
	"author_l_f",
	"additional_authors",
	"my_rating",
	"average_rating",
	"exclusive_shelf",
	"bookshelves",
	"bookshelves_with_positions",
	"owned_copies",
	"original_publication_year",
	"date_read",
	"read_count",
}

const goodreadsMinMatches = 3

// canonicalHeader lowercases a header and joins words with underscores,
// so "Number of Pages", "number-of-pages" and "number_of_pages" agree.
func canonicalHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '/':
			return '_'
		}
		return r
	}, h)
	for strings.Contains(h, "__") {
		h = strings.ReplaceAll(h, "__", "_")
	}
	return strings.Trim(h, "_")
}

// detectDialect fingerprints a canonicalized header row.
func detectDialect(headers []string) Dialect {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	matches := 0
	for _, col := range goodreadsColumns {
		if present[col] {
			matches++
		}
	}
	if matches >= goodreadsMinMatches {
		return DialectGoodreads
	}
	return DialectGeneric
}

// columnMap resolves header positions to canonical fields. When two columns
// fold onto the same field, a column named exactly like the field wins;
// otherwise the first one does.
func columnMap(headers []string) map[int]field {
	cols := make(map[int]field, len(headers))
	claimed := make(map[field]bool, len(headers))
	for _, exactPass := range []bool{true, false} {
		for i, h := range headers {
			f, ok := synonyms[h]
			if !ok || claimed[f] || isExact(h, f) != exactPass {
				continue
			}
			cols[i] = f
			claimed[f] = true
		}
	}
	return cols
}

// isExact reports whether a canonicalized key is the field's own name rather
// than a synonym.
func isExact(key string, f field) bool {
	return key == string(f)
}
