package openlibrary

import (
	"strings"

	"github.com/listenupapp/readlog/internal/lookup"
)

// Raw API response types (internal)

type rawEdition struct {
	Title         string         `json:"title"`
	Authors       []rawNamed     `json:"authors"`
	NumberOfPages int            `json:"number_of_pages"`
	Subjects      []rawNamed     `json:"subjects"`
	Excerpts      []rawExcerpt   `json:"excerpts"`
	Identifiers   rawIdentifiers `json:"identifiers"`
}

type rawNamed struct {
	Name string `json:"name"`
}

type rawExcerpt struct {
	Text string `json:"text"`
}

type rawIdentifiers struct {
	ISBN13 []string `json:"isbn_13"`
	ISBN10 []string `json:"isbn_10"`
}

type rawSearch struct {
	NumFound int      `json:"numFound"`
	Docs     []rawDoc `json:"docs"`
}

type rawDoc struct {
	Title         string   `json:"title"`
	AuthorName    []string `json:"author_name"`
	ISBN          []string `json:"isbn"`
	PagesMedian   int      `json:"number_of_pages_median"`
	Subject       []string `json:"subject"`
	FirstSentence []string `json:"first_sentence"`
}

func (e rawEdition) toMetadata(queried string) *lookup.Metadata {
	m := &lookup.Metadata{
		ISBN:      queried,
		Title:     strings.TrimSpace(e.Title),
		PageCount: e.NumberOfPages,
	}
	if len(e.Identifiers.ISBN13) > 0 {
		m.ISBN = e.Identifiers.ISBN13[0]
	}
	if len(e.Authors) > 0 {
		m.Author = e.Authors[0].Name
	}
	if len(e.Subjects) > 0 {
		m.Genre = e.Subjects[0].Name
	}
	if len(e.Excerpts) > 0 {
		m.Synopsis = e.Excerpts[0].Text
	}
	return m
}

func (d rawDoc) toMetadata() *lookup.Metadata {
	m := &lookup.Metadata{
		ISBN:      preferredISBN(d.ISBN),
		Title:     strings.TrimSpace(d.Title),
		PageCount: d.PagesMedian,
	}
	if len(d.AuthorName) > 0 {
		m.Author = d.AuthorName[0]
	}
	if len(d.Subject) > 0 {
		m.Genre = d.Subject[0]
	}
	if len(d.FirstSentence) > 0 {
		m.Synopsis = d.FirstSentence[0]
	}
	return m
}

// preferredISBN picks the first 13-digit ISBN, else the first one listed.
func preferredISBN(isbns []string) string {
	for _, s := range isbns {
		if len(s) == 13 {
			return s
		}
	}
	if len(isbns) > 0 {
		return isbns[0]
	}
	return ""
}
