package domain

import (
	"fmt"
	"time"
)

// ReadingStatus is the progress state of a library book.
type ReadingStatus string

// Reading statuses a library book can be in.
const (
	StatusUnread  ReadingStatus = "unread"
	StatusReading ReadingStatus = "reading"
	StatusRead    ReadingStatus = "read"
)

// Valid reports whether s is one of the known statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusUnread, StatusReading, StatusRead:
		return true
	default:
		return false
	}
}

// ParseReadingStatus parses a status string, rejecting unknown values.
func ParseReadingStatus(s string) (ReadingStatus, error) {
	status := ReadingStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown reading status %q", s)
	}
	return status, nil
}

// BookDetails holds the descriptive attributes shared by library and completed books.
// DateFinished is an ISO date (YYYY-MM-DD); empty means no date.
type BookDetails struct {
	ISBN           string   `json:"isbn,omitempty"`
	Title          string   `json:"title"`
	Author         string   `json:"author,omitempty"`
	DateFinished   string   `json:"dateFinished,omitempty"`
	SeriesName     string   `json:"seriesName,omitempty"`
	SeriesPosition string   `json:"seriesPosition,omitempty"`
	Genre          string   `json:"genre,omitempty"`
	Synopsis       string   `json:"synopsis,omitempty"`
	Tags           []string `json:"tags"`
	PageCount      int      `json:"pageCount,omitempty"`
}

// DedupFields returns the identity attributes used for duplicate detection.
func (d BookDetails) DedupFields() (isbn, title, author string) {
	return d.ISBN, d.Title, d.Author
}

// LibraryBook is a tracked book in a user's personal library.
// At most one LibraryBook exists per (OwnerID, ISBN) when ISBN is set.
type LibraryBook struct {
	BookDetails
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	ID            int64         `json:"id"`
	OwnerID       string        `json:"ownerId"`
	ReadingStatus ReadingStatus `json:"readingStatus"`
}

// IsRead reports whether the book counts as finished.
func (b *LibraryBook) IsRead() bool {
	return b.ReadingStatus == StatusRead
}

// MarkRead sets the book to read. The existing finish date is kept unless
// overwrite is set or no date was recorded yet.
func (b *LibraryBook) MarkRead(date string, overwrite bool) {
	b.ReadingStatus = StatusRead
	if overwrite || b.DateFinished == "" {
		b.DateFinished = date
	}
	b.UpdatedAt = time.Now()
}

// CompletedBook records a finished book that is not necessarily owned.
type CompletedBook struct {
	BookDetails
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Owned     bool      `json:"owned"`
}

// ToLibraryBook copies the completed record into a new read library book.
// The returned book has no ID until it is persisted.
func (c *CompletedBook) ToLibraryBook() *LibraryBook {
	now := time.Now()
	details := c.BookDetails
	details.Tags = append([]string(nil), c.Tags...)
	return &LibraryBook{
		BookDetails:   details,
		CreatedAt:     now,
		UpdatedAt:     now,
		OwnerID:       c.UserID,
		ReadingStatus: StatusRead,
	}
}

// Rating is a user's 1-5 rating of a book.
type Rating struct {
	BookID int64  `json:"bookId"`
	UserID string `json:"userId"`
	Value  int    `json:"rating"`
}

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// ValidRating reports whether v is an acceptable rating value.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
