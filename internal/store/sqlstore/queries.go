package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/listenupapp/readlog/internal/domain"
)

// queries implements store.Querier over either the pool or a transaction.
// Statements are written with ? placeholders and rebound per driver.
type queries struct {
	ext sqlx.ExtContext
}

// detailsRow holds the columns shared by both book tables.
type detailsRow struct {
	ISBN           sql.NullString `db:"isbn"`
	Title          string         `db:"title"`
	Author         string         `db:"author"`
	DateFinished   sql.NullString `db:"date_finished"`
	SeriesName     string         `db:"series_name"`
	SeriesPosition string         `db:"series_position"`
	Genre          string         `db:"genre"`
	Synopsis       string         `db:"synopsis"`
	Tags           string         `db:"tags"`
	PageCount      int            `db:"page_count"`
	CreatedAt      string         `db:"created_at"`
	UpdatedAt      string         `db:"updated_at"`
}

func (r detailsRow) toDomain() (domain.BookDetails, time.Time, time.Time, error) {
	d := domain.BookDetails{
		ISBN:           r.ISBN.String,
		Title:          r.Title,
		Author:         r.Author,
		DateFinished:   r.DateFinished.String,
		SeriesName:     r.SeriesName,
		SeriesPosition: r.SeriesPosition,
		Genre:          r.Genre,
		Synopsis:       r.Synopsis,
		PageCount:      r.PageCount,
	}
	tags, err := decodeTags(r.Tags)
	if err != nil {
		return d, time.Time{}, time.Time{}, err
	}
	d.Tags = tags

	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return d, time.Time{}, time.Time{}, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := parseTime(r.UpdatedAt)
	if err != nil {
		return d, time.Time{}, time.Time{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return d, createdAt, updatedAt, nil
}

// detailArgs returns the shared column values in detailsColumns order,
// minus the timestamps.
func detailArgs(d domain.BookDetails) ([]any, error) {
	tags, err := encodeTags(d.Tags)
	if err != nil {
		return nil, err
	}
	return []any{
		nullString(d.ISBN),
		d.Title,
		d.Author,
		nullString(d.DateFinished),
		d.SeriesName,
		d.SeriesPosition,
		d.Genre,
		d.Synopsis,
		tags,
		d.PageCount,
	}, nil
}

// detailsColumns matches detailArgs.
const detailsColumns = `isbn, title, author, date_finished, series_name, series_position, genre, synopsis, tags, page_count`

// detailsAssignments is the UPDATE form of detailsColumns.
const detailsAssignments = `isbn = ?, title = ?, author = ?, date_finished = ?, series_name = ?,
		series_position = ?, genre = ?, synopsis = ?, tags = ?, page_count = ?`

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// stamp fills missing timestamps and always advances UpdatedAt.
func stamp(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
