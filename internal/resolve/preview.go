package resolve

import (
	"github.com/listenupapp/readlog/internal/ingest"
	"github.com/listenupapp/readlog/internal/lookup"
)

// Kind classifies one import row.
type Kind string

// Outcome kinds.
const (
	KindFound         Kind = "found"
	KindLibraryUpdate Kind = "library_update"
	KindDuplicate     Kind = "duplicate"
	KindNeedsReview   Kind = "needs_review"
	KindInvalid       Kind = "invalid"
)

// Review and rejection reasons.
const (
	ReasonMissingTitle = "Missing title"
	ReasonNoMatch      = "No match found from metadata providers"
	ReasonLookupFailed = "Metadata lookup failed"
	ReasonInsufficient = "Insufficient data for lookup (need author or ISBN)"
)

// Outcome is the classification of a single row. Which fields are set
// depends on Kind:
//
//	found           Row (merged with Metadata), Metadata
//	library_update  Row, LibraryBookID, NewDateFinished
//	duplicate       Row, ExistingID
//	needs_review    Row (the fallback record), Reason
//	invalid         Row, Reason
type Outcome struct {
	Kind            Kind
	Index           int
	Row             ingest.Row
	Metadata        *lookup.Metadata
	LibraryBookID   int64
	NewDateFinished string
	ExistingID      int64
	Reason          string
}

// FoundRow is a row the catalog resolved.
type FoundRow struct {
	Index    int             `json:"index"`
	Row      ingest.Row      `json:"row"`
	Metadata lookup.Metadata `json:"metadata"`
}

// LibraryUpdate is a row that only supplies a completion date for a book
// already in the library.
type LibraryUpdate struct {
	Index           int        `json:"index"`
	Row             ingest.Row `json:"row"`
	LibraryBookID   int64      `json:"libraryBookId"`
	NewDateFinished string     `json:"newDateFinished,omitempty"`
}

// DuplicateRow is a row already present in the completed list.
type DuplicateRow struct {
	Index      int        `json:"index"`
	Row        ingest.Row `json:"row"`
	ExistingID int64      `json:"existingId"`
}

// ReviewRow is a row the operator has to confirm by hand.
type ReviewRow struct {
	Index    int        `json:"index"`
	Fallback ingest.Row `json:"fallback"`
	Reason   string     `json:"reason"`
}

// InvalidRow is a row that cannot be imported.
type InvalidRow struct {
	Index  int        `json:"index"`
	Row    ingest.Row `json:"row"`
	Reason string     `json:"reason"`
}

// Counts aggregates a preview. NotFound counts rows needing review; Total
// excludes rows skipped by shelf.
type Counts struct {
	Total          int `json:"total"`
	Found          int `json:"found"`
	NotFound       int `json:"notFound"`
	Duplicates     int `json:"duplicates"`
	LibraryUpdates int `json:"libraryUpdates"`
	Invalid        int `json:"invalid"`
	SkippedShelves int `json:"skippedShelves"`
}

// Preview is the read-only result of resolving an upload. Every list is in
// input order.
type Preview struct {
	ID             string          `json:"id"`
	Dialect        ingest.Dialect  `json:"dialect"`
	Counts         Counts          `json:"counts"`
	Found          []FoundRow      `json:"found"`
	LibraryUpdates []LibraryUpdate `json:"libraryUpdates"`
	Duplicates     []DuplicateRow  `json:"duplicates"`
	NeedsReview    []ReviewRow     `json:"needsReview"`
	Invalid        []InvalidRow    `json:"invalid"`
}

func newPreview(id string, dialect ingest.Dialect, skipped int) *Preview {
	return &Preview{
		ID:             id,
		Dialect:        dialect,
		Counts:         Counts{SkippedShelves: skipped},
		Found:          []FoundRow{},
		LibraryUpdates: []LibraryUpdate{},
		Duplicates:     []DuplicateRow{},
		NeedsReview:    []ReviewRow{},
		Invalid:        []InvalidRow{},
	}
}

func (p *Preview) add(o Outcome) {
	p.Counts.Total++
	switch o.Kind {
	case KindFound:
		p.Counts.Found++
		p.Found = append(p.Found, FoundRow{Index: o.Index, Row: o.Row, Metadata: *o.Metadata})
	case KindLibraryUpdate:
		p.Counts.LibraryUpdates++
		p.LibraryUpdates = append(p.LibraryUpdates, LibraryUpdate{
			Index:           o.Index,
			Row:             o.Row,
			LibraryBookID:   o.LibraryBookID,
			NewDateFinished: o.NewDateFinished,
		})
	case KindDuplicate:
		p.Counts.Duplicates++
		p.Duplicates = append(p.Duplicates, DuplicateRow{Index: o.Index, Row: o.Row, ExistingID: o.ExistingID})
	case KindNeedsReview:
		p.Counts.NotFound++
		p.NeedsReview = append(p.NeedsReview, ReviewRow{Index: o.Index, Fallback: o.Row, Reason: o.Reason})
	case KindInvalid:
		p.Counts.Invalid++
		p.Invalid = append(p.Invalid, InvalidRow{Index: o.Index, Row: o.Row, Reason: o.Reason})
	}
}
