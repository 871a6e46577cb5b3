// Package ingest turns uploaded reading-log files into normalized import rows.
//
// Supported inputs are JSON, CSV and spreadsheets (xlsx, xls). CSV and
// spreadsheet uploads are fingerprinted so exports from Goodreads get their
// quirks corrected. Whatever the source, every row leaves this package as a
// Row value. Nothing here touches the database or the network.
package ingest

import (
	"fmt"
	"strings"
)

// Format is the declared encoding of an upload.
type Format string

// Supported upload formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"

	// FormatSpreadsheet accepts either workbook kind and sniffs which one it got.
	FormatSpreadsheet Format = "spreadsheet"
)

// ParseFormat validates a format tag from a request.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX, FormatXLS, FormatSpreadsheet:
		return f, nil
	default:
		return "", newParseError(fmt.Sprintf("unsupported format %q (expected json, csv, spreadsheet, xlsx or xls)", s), nil)
	}
}

// IsSpreadsheet reports whether the format is a binary spreadsheet.
func (f Format) IsSpreadsheet() bool {
	return f == FormatXLSX || f == FormatXLS || f == FormatSpreadsheet
}

// Dialect identifies which column conventions an upload follows.
type Dialect string

// Known dialects.
const (
	DialectGeneric   Dialect = "generic"
	DialectGoodreads Dialect = "goodreads"
)

// Row is the canonical shape of one imported book.
// ISBN holds digits only (plus an ISBN-10 check digit X). DateFinished is an
// ISO date or empty. Rating is 1-5, or 0 when the source had none.
type Row struct {
	Title          string   `json:"title" doc:"Book title"`
	Author         string   `json:"author,omitempty" doc:"Primary author"`
	ISBN           string   `json:"isbn,omitempty" doc:"ISBN, digits only"`
	PageCount      int      `json:"pageCount,omitempty" doc:"Number of pages"`
	Genre          string   `json:"genre,omitempty"`
	Synopsis       string   `json:"synopsis,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	SeriesName     string   `json:"seriesName,omitempty"`
	SeriesPosition string   `json:"seriesPosition,omitempty"`
	DateFinished   string   `json:"dateFinished,omitempty" doc:"ISO date the book was finished"`
	Owned          bool     `json:"owned" doc:"Explicitly flagged as owned"`
	OwnedCopies    int      `json:"ownedCopies,omitempty" doc:"Number of owned copies reported by the source"`
	Rating         int      `json:"rating,omitempty" validate:"min=0,max=5" doc:"Personal rating 1-5, 0 for none"`
}

// IsOwned reports whether the row describes a book the user owns: either
// flagged explicitly or carrying a positive owned-copies count.
func (r Row) IsOwned() bool {
	return r.Owned || r.OwnedCopies > 0
}

// DedupFields implements dedup.Record.
func (r Row) DedupFields() (isbn, title, author string) {
	return r.ISBN, r.Title, r.Author
}

// HasTitle reports whether the row carries a usable title.
func (r Row) HasTitle() bool {
	return strings.TrimSpace(r.Title) != ""
}

// Result is the outcome of parsing one upload.
type Result struct {
	Dialect        Dialect
	Rows           []Row
	SkippedShelves int
}
