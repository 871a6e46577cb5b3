package ingest

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/listenupapp/readlog/internal/genre"
)

// record is one raw row keyed by canonical field. It never leaves this package.
type record map[field]string

// table is a header row plus positional data rows.
type table struct {
	headers []string
	rows    [][]string
}

// DecodePayload converts the request's data string into raw bytes.
// Spreadsheets travel base64-encoded, optionally as a data URL.
func DecodePayload(data string, format Format) ([]byte, error) {
	if !format.IsSpreadsheet() {
		return []byte(data), nil
	}

	if i := strings.Index(data, ";base64,"); i >= 0 && strings.HasPrefix(data, "data:") {
		data = data[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return nil, newParseError("spreadsheet data is not valid base64", err)
	}
	return raw, nil
}

// Parse reads an upload and normalizes every row.
func Parse(data []byte, format Format) (*Result, error) {
	switch format {
	case FormatJSON:
		records, err := readJSON(data)
		if err != nil {
			return nil, err
		}
		return normalizeRecords(records, DialectGeneric, false), nil

	case FormatCSV:
		t, err := readCSV(data)
		if err != nil {
			return nil, err
		}
		return normalizeTable(t), nil

	case FormatXLSX:
		t, err := readXLSX(data)
		if err != nil {
			return nil, err
		}
		return normalizeTable(t), nil

	case FormatXLS:
		t, err := readXLS(data)
		if err != nil {
			return nil, err
		}
		return normalizeTable(t), nil

	case FormatSpreadsheet:
		return Parse(data, sniffWorkbook(data))

	default:
		_, err := ParseFormat(string(format))
		return nil, err
	}
}

// sniffWorkbook tells xlsx (a zip archive) from legacy xls (an OLE2
// compound file) by magic number. Anything else is handed to the xlsx reader,
// which reports it as unreadable.
func sniffWorkbook(data []byte) Format {
	if bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0}) {
		return FormatXLS
	}
	return FormatXLSX
}

// newTable validates the header row and canonicalizes it.
func newTable(rows [][]string) (*table, error) {
	if len(rows) < 2 {
		return nil, newParseError("file needs a header row and at least one data row", nil)
	}
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = canonicalHeader(h)
	}
	return &table{headers: headers, rows: rows[1:]}, nil
}

func readCSV(data []byte) (*table, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, newParseError("malformed csv", err)
	}
	return newTable(rows)
}

func readXLSX(data []byte) (*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, newParseError("unreadable xlsx workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, newParseError("workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, newParseError("read first sheet", err)
	}
	return newTable(rows)
}

func readXLS(data []byte) (*table, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, newParseError("unreadable xls workbook", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, newParseError("workbook has no sheets", nil)
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, row.LastCol())
		for c := range cells {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return newTable(rows)
}

// readJSON accepts either a top-level array of objects or {"books": [...]}.
func readJSON(data []byte) ([]record, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, newParseError("malformed json", err)
	}

	var items []any
	switch v := root.(type) {
	case []any:
		items = v
	case map[string]any:
		books, ok := v["books"].([]any)
		if !ok {
			return nil, newParseError(`json object must contain a "books" array`, nil)
		}
		items = books
	default:
		return nil, newParseError("json must be an array of objects", nil)
	}

	records := make([]record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, newParseError(fmt.Sprintf("json item %d is not an object", i), nil)
		}
		rec := make(record, len(obj))
		exact := make(map[field]bool, len(obj))
		for _, k := range slices.Sorted(maps.Keys(obj)) {
			key := canonicalHeader(k)
			f, known := synonyms[key]
			if !known || exact[f] {
				continue
			}
			if _, dup := rec[f]; dup && !isExact(key, f) {
				continue
			}
			rec[f] = jsonString(obj[k])
			exact[f] = isExact(key, f)
		}
		records = append(records, rec)
	}
	return records, nil
}

// jsonString flattens a decoded JSON value into cell text.
func jsonString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []any:
		parts := make([]string, 0, len(x))
		for _, p := range x {
			if s := jsonString(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// normalizeTable maps positional rows onto records and normalizes them.
// Goodreads exports are detected here since only tabular uploads carry
// their header fingerprint.
func normalizeTable(t *table) *Result {
	dialect := detectDialect(t.headers)
	cols := columnMap(t.headers)

	records := make([]record, 0, len(t.rows))
	for _, cells := range t.rows {
		if blank(cells) {
			continue
		}
		rec := make(record, len(cols))
		for i, f := range cols {
			if i < len(cells) {
				rec[f] = cells[i]
			}
		}
		records = append(records, rec)
	}

	filterShelf := dialect == DialectGoodreads && hasField(cols, fieldShelf)
	return normalizeRecords(records, dialect, filterShelf)
}

// normalizeRecords converts records to rows. With filterShelf set, rows not
// on the "read" shelf are counted in SkippedShelves instead of returned.
func normalizeRecords(records []record, dialect Dialect, filterShelf bool) *Result {
	res := &Result{Dialect: dialect, Rows: make([]Row, 0, len(records))}
	goodreads := dialect == DialectGoodreads

	for _, rec := range records {
		if filterShelf && !isReadShelf(rec[fieldShelf]) {
			res.SkippedShelves++
			continue
		}
		res.Rows = append(res.Rows, normalizeRecord(rec, goodreads))
	}
	return res
}

// normalizeRecord builds a Row from canonical cells.
func normalizeRecord(rec record, goodreads bool) Row {
	get := func(f field) string { return strings.TrimSpace(rec[f]) }

	row := Row{
		Title:          get(fieldTitle),
		Author:         get(fieldAuthor),
		PageCount:      leadingInt(get(fieldPageCount)),
		Genre:          genre.Canonical(get(fieldGenre)),
		Synopsis:       get(fieldSynopsis),
		SeriesName:     get(fieldSeriesName),
		SeriesPosition: get(fieldSeriesPosition),
		DateFinished:   parseDate(get(fieldDateFinished), goodreads),
		Owned:          parseBool(get(fieldOwned)),
		OwnedCopies:    leadingInt(get(fieldOwnedCopies)),
		Rating:         parseRating(get(fieldRating)),
	}

	row.ISBN = cleanISBN(get(fieldISBN13), goodreads)
	if row.ISBN == "" {
		row.ISBN = cleanISBN(get(fieldISBN), goodreads)
	}

	if _, hasTags := rec[fieldTags]; hasTags {
		row.Tags = splitList(get(fieldTags))
	} else if goodreads {
		row.Tags = shelvesToTags(get(fieldShelves))
	}

	if goodreads && row.SeriesName == "" {
		if clean, series, pos := splitSeriesTitle(row.Title); series != "" {
			row.Title, row.SeriesName, row.SeriesPosition = clean, series, pos
		}
	}

	return row
}

// isReadShelf reports whether a Goodreads exclusive shelf means finished.
func isReadShelf(shelf string) bool {
	return strings.EqualFold(strings.TrimSpace(shelf), "read")
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func hasField(cols map[int]field, f field) bool {
	for _, c := range cols {
		if c == f {
			return true
		}
	}
	return false
}
