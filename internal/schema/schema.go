// Package schema binds raw CSV headers to typed records exactly once at
// ingestion. The reconciliation core never searches for "the state column"
// by name pattern: the caller declares which header means what, the binding
// is validated up front, and everything downstream works with typed fields.
package schema

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/districtmap/districtmap/internal/dates"
	"github.com/districtmap/districtmap/pkg/errors"
)

// ErrMissingColumn indicates a required column is absent from the input.
var ErrMissingColumn = errors.New("required column missing")

// Mapping declares which raw headers carry which fields. State and
// District are required; the date may arrive either as one whole-date
// column or as year/month/day parts.
type Mapping struct {
	State    string `yaml:"state"`
	District string `yaml:"district"`
	Year     string `yaml:"year,omitempty"`
	Month    string `yaml:"month,omitempty"`
	Day      string `yaml:"day,omitempty"`
	Date     string `yaml:"date,omitempty"`
}

// DefaultMapping matches the headers the scraped stores conventionally use.
func DefaultMapping() Mapping {
	return Mapping{
		State:    "state",
		District: "district",
		Year:     "year",
		Month:    "month",
		Day:      "day",
		Date:     "date",
	}
}

// Record is one typed input row: the two names the resolver needs, the
// row's natural-key date (empty when unparsable), and the untouched
// remaining payload.
type Record struct {
	State    string
	District string
	ISODate  string
	Fields   map[string]string
}

// Validate checks that the mapping's required columns appear in the header.
func (m Mapping) Validate(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[normalizeHeader(h)] = true
	}
	for _, req := range []struct{ name, col string }{
		{"state", m.State},
		{"district", m.District},
	} {
		if col := normalizeHeader(req.col); col == "" || !present[col] {
			return &errors.ValidationError{
				Field:   req.name,
				Value:   req.col,
				Message: ErrMissingColumn.Error(),
			}
		}
	}
	return nil
}

// Apply binds already-parsed row maps to typed records. Rows keep their
// order; a row whose date fields do not parse still yields a record, with
// an empty ISODate the caller counts rather than drops silently.
func (m Mapping) Apply(rows []map[string]string) ([]Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	header := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		header = append(header, k)
	}
	if err := m.Validate(header); err != nil {
		return nil, err
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		lookup := normalizeRow(row)
		rec := Record{
			State:    strings.TrimSpace(lookup[normalizeHeader(m.State)]),
			District: strings.TrimSpace(lookup[normalizeHeader(m.District)]),
			ISODate:  m.isoDate(lookup),
			Fields:   row,
		}
		out = append(out, rec)
	}
	return out, nil
}

// isoDate assembles the row's date from whichever declared columns are
// populated: parts first, whole-date column as fallback.
func (m Mapping) isoDate(lookup map[string]string) string {
	y := lookup[normalizeHeader(m.Year)]
	mo := lookup[normalizeHeader(m.Month)]
	d := lookup[normalizeHeader(m.Day)]
	if iso := dates.ISO(y, mo, d); iso != "" {
		return iso
	}
	if m.Date != "" {
		return dates.ParseAny(lookup[normalizeHeader(m.Date)])
	}
	return ""
}

// ApplyDatesOnly extracts just the ISO dates from rows. Per-district
// calendar files carry no state or district columns (the tree position
// already identifies them), so only the date fields of the mapping apply.
func (m Mapping) ApplyDatesOnly(rows []map[string]string) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.isoDate(normalizeRow(row)))
	}
	return out
}

// ReadCSV parses CSV content into row maps keyed by header. This is the
// thin I/O shim between files on disk and the typed mapping step; the
// source label only feeds error messages.
func ReadCSV(r io.Reader, source string) ([]map[string]string, error) {
	_, rows, err := ReadCSVWithHeader(r, source)
	return rows, err
}

// ReadCSVWithHeader is ReadCSV keeping the header column order, for
// callers that write rows back out in the original shape.
func ReadCSVWithHeader(r io.Reader, source string) ([]string, []map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // scraped files are ragged; tolerate it

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.WrapParse("csv", source, err)
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errors.WrapParse("csv", source, err)
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(rec) {
				row[h] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

// normalizeHeader folds a header name for comparison: lower-cased and
// trimmed. Header matching is forgiving; field semantics are not.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func normalizeRow(row map[string]string) map[string]string {
	out := make(map[string]string, len(row))
	for k, v := range row {
		out[normalizeHeader(k)] = v
	}
	return out
}
