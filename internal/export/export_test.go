package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/readlog/internal/domain"
	domainerrors "github.com/listenupapp/readlog/internal/errors"
	"github.com/listenupapp/readlog/internal/ingest"
)

var exportTime = time.Date(2024, 6, 30, 18, 45, 0, 0, time.UTC)

func sampleEntries() []domain.UnifiedEntry {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []domain.UnifiedEntry{
		{
			BookDetails: domain.BookDetails{
				ISBN:           "9780441172716",
				Title:          "Dune",
				Author:         "Frank Herbert",
				SeriesName:     "Dune",
				SeriesPosition: "1",
				DateFinished:   "2024-05-01",
				PageCount:      617,
				Tags:           []string{"sci-fi", "classics"},
			},
			CreatedAt: created,
			UpdatedAt: created,
			Ref:       domain.LibraryRef(3),
			Source:    domain.SourceLibrary,
			Owned:     true,
		},
		{
			BookDetails: domain.BookDetails{
				Title:    `Eats, Shoots "and" Leaves`,
				Author:   "Lynne Truss",
				Synopsis: "A zero tolerance approach\nto punctuation",
			},
			CreatedAt: created,
			UpdatedAt: created,
			Ref:       domain.CompletedRef(8),
			Source:    domain.SourceCompleted,
		},
	}
}

func TestRender_MinimalCSV(t *testing.T) {
	f, err := Render(sampleEntries(), PresetMinimal, EncodingCSV, exportTime)
	require.NoError(t, err)

	assert.Equal(t, "reading-log-minimal-2024-06-30.csv", f.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", f.ContentType)

	want := "isbn,title,author,series_name,series_position,date_finished,owned\n" +
		"9780441172716,Dune,Frank Herbert,Dune,1,2024-05-01,true\n" +
		`,"Eats, Shoots ""and"" Leaves",Lynne Truss,,,,false` + "\n"
	assert.Equal(t, want, string(f.Data))
}

func TestRender_ComprehensiveCSV(t *testing.T) {
	f, err := Render(sampleEntries(), PresetComprehensive, EncodingCSV, exportTime)
	require.NoError(t, err)

	lines := strings.SplitN(string(f.Data), "\n", 2)
	assert.Equal(t, "isbn,title,author,series_name,series_position,date_finished,owned,page_count,genre,synopsis,tags,created_at,updated_at", lines[0])
	assert.Contains(t, string(f.Data), "617,,,sci-fi; classics,2024-01-02T03:04:05Z,2024-01-02T03:04:05Z")
	assert.Contains(t, string(f.Data), "\"A zero tolerance approach\nto punctuation\"")
}

func TestRender_JSONEnvelope(t *testing.T) {
	f, err := Render(sampleEntries(), PresetComprehensive, EncodingJSON, exportTime)
	require.NoError(t, err)
	assert.Equal(t, "reading-log-comprehensive-2024-06-30.json", f.Filename)
	assert.Equal(t, "application/json", f.ContentType)

	var got struct {
		ExportedAt time.Time        `json:"exportedAt"`
		Type       string           `json:"type"`
		Count      int              `json:"count"`
		Books      []map[string]any `json:"books"`
	}
	require.NoError(t, json.Unmarshal(f.Data, &got))

	assert.True(t, got.ExportedAt.Equal(exportTime))
	assert.Equal(t, "comprehensive", got.Type)
	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Books, 2)
	assert.Equal(t, "Dune", got.Books[0]["title"], "composer order is kept")
	assert.Equal(t, []any{"sci-fi", "classics"}, got.Books[0]["tags"])
	assert.Equal(t, []any{}, got.Books[1]["tags"])
}

func TestRender_MinimalJSONOmitsComprehensiveFields(t *testing.T) {
	f, err := Render(sampleEntries(), PresetMinimal, EncodingJSON, exportTime)
	require.NoError(t, err)

	var got struct {
		Books []map[string]any `json:"books"`
	}
	require.NoError(t, json.Unmarshal(f.Data, &got))
	require.Len(t, got.Books, 2)
	assert.NotContains(t, got.Books[0], "synopsis")
	assert.NotContains(t, got.Books[0], "tags")
	assert.Len(t, got.Books[0], 7)
}

func TestRender_Empty(t *testing.T) {
	f, err := Render(nil, PresetMinimal, EncodingJSON, exportTime)
	require.NoError(t, err)
	assert.Contains(t, string(f.Data), `"count": 0`)
	assert.Contains(t, string(f.Data), `"books": []`)
}

func TestRender_Rejects(t *testing.T) {
	_, err := Render(nil, Preset("everything"), EncodingJSON, exportTime)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = Render(nil, PresetMinimal, Encoding("pdf"), exportTime)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestParsePresetAndEncoding(t *testing.T) {
	p, err := ParsePreset("")
	require.NoError(t, err)
	assert.Equal(t, PresetMinimal, p)

	p, err = ParsePreset("Comprehensive")
	require.NoError(t, err)
	assert.Equal(t, PresetComprehensive, p)

	e, err := ParseEncoding(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, EncodingCSV, e)
}

func TestExportReimports(t *testing.T) {
	for _, enc := range []Encoding{EncodingCSV, EncodingJSON} {
		t.Run(string(enc), func(t *testing.T) {
			f, err := Render(sampleEntries(), PresetComprehensive, enc, exportTime)
			require.NoError(t, err)

			res, err := ingest.Parse(f.Data, ingest.Format(enc))
			require.NoError(t, err)

			assert.Equal(t, ingest.DialectGeneric, res.Dialect)
			require.Len(t, res.Rows, 2)
			assert.Equal(t, ingest.Row{
				Title:          "Dune",
				Author:         "Frank Herbert",
				ISBN:           "9780441172716",
				PageCount:      617,
				Tags:           []string{"sci-fi", "classics"},
				SeriesName:     "Dune",
				SeriesPosition: "1",
				DateFinished:   "2024-05-01",
				Owned:          true,
			}, res.Rows[0])
			assert.Equal(t, `Eats, Shoots "and" Leaves`, res.Rows[1].Title)
			assert.False(t, res.Rows[1].IsOwned())
		})
	}
}
