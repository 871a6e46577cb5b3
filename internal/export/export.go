// Package export renders the unified finished-books view as a downloadable
// JSON or CSV file.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/readlog/internal/domain"
	domainerrors "github.com/listenupapp/readlog/internal/errors"
)

// Preset selects how many fields are exported.
type Preset string

// Export presets.
const (
	PresetMinimal       Preset = "minimal"
	PresetComprehensive Preset = "comprehensive"
)

// Encoding is the output file format.
type Encoding string

// Export encodings.
const (
	EncodingJSON Encoding = "json"
	EncodingCSV  Encoding = "csv"
)

// ParsePreset validates a preset name. Empty means minimal.
func ParsePreset(s string) (Preset, error) {
	switch p := Preset(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PresetMinimal, nil
	case PresetMinimal, PresetComprehensive:
		return p, nil
	default:
		return "", domainerrors.Validationf("unknown export type %q (expected minimal or comprehensive)", s)
	}
}

// ParseEncoding validates an encoding name. Empty means JSON.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return EncodingJSON, nil
	case EncodingJSON, EncodingCSV:
		return e, nil
	default:
		return "", domainerrors.Validationf("unknown export format %q (expected json or csv)", s)
	}
}

// File is a rendered export.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// listSeparator joins list-valued fields in CSV cells.
const listSeparator = "; "

// column is one exported field. key is the CSV header.
type column struct {
	key   string
	value func(e domain.UnifiedEntry) string
}

var minimalColumns = []column{
	{"isbn", func(e domain.UnifiedEntry) string { return e.ISBN }},
	{"title", func(e domain.UnifiedEntry) string { return e.Title }},
	{"author", func(e domain.UnifiedEntry) string { return e.Author }},
	{"series_name", func(e domain.UnifiedEntry) string { return e.SeriesName }},
	{"series_position", func(e domain.UnifiedEntry) string { return e.SeriesPosition }},
	{"date_finished", func(e domain.UnifiedEntry) string { return e.DateFinished }},
	{"owned", func(e domain.UnifiedEntry) string { return strconv.FormatBool(e.Owned) }},
}

var comprehensiveColumns = append(append([]column(nil), minimalColumns...),
	column{"page_count", func(e domain.UnifiedEntry) string {
		if e.PageCount == 0 {
			return ""
		}
		return strconv.Itoa(e.PageCount)
	}},
	column{"genre", func(e domain.UnifiedEntry) string { return e.Genre }},
	column{"synopsis", func(e domain.UnifiedEntry) string { return e.Synopsis }},
	column{"tags", func(e domain.UnifiedEntry) string { return strings.Join(e.Tags, listSeparator) }},
	column{"created_at", func(e domain.UnifiedEntry) string { return e.CreatedAt.UTC().Format(time.RFC3339) }},
	column{"updated_at", func(e domain.UnifiedEntry) string { return e.UpdatedAt.UTC().Format(time.RFC3339) }},
)

// minimalBook is the JSON shape of the minimal preset.
type minimalBook struct {
	ISBN           string `json:"isbn"`
	Title          string `json:"title"`
	Author         string `json:"author"`
	SeriesName     string `json:"seriesName"`
	SeriesPosition string `json:"seriesPosition"`
	DateFinished   string `json:"dateFinished"`
	Owned          bool   `json:"owned"`
}

type comprehensiveBook struct {
	minimalBook
	PageCount int       `json:"pageCount"`
	Genre     string    `json:"genre"`
	Synopsis  string    `json:"synopsis"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type envelope struct {
	ExportedAt time.Time `json:"exportedAt"`
	Type       Preset    `json:"type"`
	Count      int       `json:"count"`
	Books      any       `json:"books"`
}

// Render encodes entries in the given preset and encoding. Entries are
// written in the order given, which callers take from the unified view.
func Render(entries []domain.UnifiedEntry, preset Preset, enc Encoding, now time.Time) (*File, error) {
	if _, err := ParsePreset(string(preset)); err != nil {
		return nil, err
	}

	var (
		data        []byte
		contentType string
		err         error
	)
	switch enc {
	case EncodingJSON:
		data, err = renderJSON(entries, preset, now)
		contentType = "application/json"
	case EncodingCSV:
		data, err = renderCSV(entries, preset)
		contentType = "text/csv; charset=utf-8"
	default:
		_, err = ParseEncoding(string(enc))
	}
	if err != nil {
		return nil, err
	}

	return &File{
		Filename:    Filename(preset, enc, now),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Filename returns "reading-log-<type>-<YYYY-MM-DD>.<ext>".
func Filename(preset Preset, enc Encoding, now time.Time) string {
	return fmt.Sprintf("reading-log-%s-%s.%s", preset, now.UTC().Format(time.DateOnly), enc)
}

func renderJSON(entries []domain.UnifiedEntry, preset Preset, now time.Time) ([]byte, error) {
	env := envelope{ExportedAt: now.UTC(), Type: preset, Count: len(entries)}

	if preset == PresetComprehensive {
		books := make([]comprehensiveBook, 0, len(entries))
		for _, e := range entries {
			tags := e.Tags
			if tags == nil {
				tags = []string{}
			}
			books = append(books, comprehensiveBook{
				minimalBook: toMinimal(e),
				PageCount:   e.PageCount,
				Genre:       e.Genre,
				Synopsis:    e.Synopsis,
				Tags:        tags,
				CreatedAt:   e.CreatedAt.UTC(),
				UpdatedAt:   e.UpdatedAt.UTC(),
			})
		}
		env.Books = books
	} else {
		books := make([]minimalBook, 0, len(entries))
		for _, e := range entries {
			books = append(books, toMinimal(e))
		}
		env.Books = books
	}

	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

func toMinimal(e domain.UnifiedEntry) minimalBook {
	return minimalBook{
		ISBN:           e.ISBN,
		Title:          e.Title,
		Author:         e.Author,
		SeriesName:     e.SeriesName,
		SeriesPosition: e.SeriesPosition,
		DateFinished:   e.DateFinished,
		Owned:          e.Owned,
	}
}

// renderCSV writes RFC 4180 CSV: cells holding a comma, quote or newline are
// quoted, with quotes doubled.
func renderCSV(entries []domain.UnifiedEntry, preset Preset) ([]byte, error) {
	cols := minimalColumns
	if preset == PresetComprehensive {
		cols = comprehensiveColumns
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	record := make([]string, len(cols))
	for i, c := range cols {
		record[i] = c.key
	}
	if err := w.Write(record); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range entries {
		for i, c := range cols {
			record[i] = c.value(e)
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
