// Package codebook holds the authoritative enumeration of valid
// (state_code, state_name, district_code, district_name) tuples and indexes
// it for exact lookup by canonical name. The book is loaded once at the
// start of a reconciliation run and is immutable thereafter.
package codebook

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/fuzzy"
	"github.com/districtmap/districtmap/pkg/names"
)

// Column names required of any code book source. The surrounding I/O layer
// maps whatever headers the file actually carries onto these before rows
// reach this package.
const (
	ColStateCode    = "state_code"
	ColStateName    = "state_name"
	ColDistrictCode = "district_code"
	ColDistrictName = "district_name"
)

// Entry is one validated code book row. Codes are always rendered
// zero-padded to width 2.
type Entry struct {
	StateCode    string
	StateName    string
	DistrictCode string
	DistrictName string
}

// Book is the loaded, immutable reference code book.
type Book struct {
	entries []Entry

	stateByStrict    map[string]string            // strict state name -> state code
	stateDisplay     map[string]string            // state code -> display name
	districtByStrict map[string]map[string]string // state code -> strict district name -> district code
	candidates       map[string][]fuzzy.Candidate // state code -> district pool, sorted
	stateCandidates  []fuzzy.Candidate            // all states, sorted

	dropped    int // rows with non-numeric codes, removed during load
	duplicates int // rows repeating an already-seen (state, district) code pair
}

// Load builds a Book from already-parsed rows. Rows whose code fields are
// not numeric are dropped and counted rather than treated as fatal,
// mirroring how the upstream census extracts carry stray header and note
// rows. A row repeating an already-seen (state_code, district_code) pair is
// likewise dropped: that pair is unique across the book by construction.
func Load(rows []Entry) *Book {
	b := &Book{
		stateByStrict:    make(map[string]string),
		stateDisplay:     make(map[string]string),
		districtByStrict: make(map[string]map[string]string),
		candidates:       make(map[string][]fuzzy.Candidate),
	}

	seen := make(map[string]bool)
	for _, row := range rows {
		sc, ok := pad2(row.StateCode)
		if !ok {
			b.dropped++
			continue
		}
		dc, ok := pad2(row.DistrictCode)
		if !ok {
			b.dropped++
			continue
		}

		key := sc + "/" + dc
		if seen[key] {
			b.duplicates++
			continue
		}
		seen[key] = true

		e := Entry{
			StateCode:    sc,
			StateName:    strings.TrimSpace(row.StateName),
			DistrictCode: dc,
			DistrictName: strings.TrimSpace(row.DistrictName),
		}
		b.entries = append(b.entries, e)

		if _, ok := b.stateByStrict[names.Strict(e.StateName)]; !ok && !names.IsBlank(e.StateName) {
			b.stateByStrict[names.Strict(e.StateName)] = sc
			b.stateDisplay[sc] = e.StateName
		}

		if b.districtByStrict[sc] == nil {
			b.districtByStrict[sc] = make(map[string]string)
		}
		if !names.IsBlank(e.DistrictName) {
			b.districtByStrict[sc][names.Strict(e.DistrictName)] = dc
			b.candidates[sc] = append(b.candidates[sc], fuzzy.Candidate{
				Code:    dc,
				Name:    names.Loose(e.DistrictName),
				Display: e.DistrictName,
			})
		}
	}

	// Deterministic pools: sorted by canonical name so fuzzy tie-breaking
	// is reproducible across runs.
	for sc := range b.candidates {
		pool := b.candidates[sc]
		sort.Slice(pool, func(i, j int) bool { return pool[i].Name < pool[j].Name })
	}

	for sc, display := range b.stateDisplay {
		b.stateCandidates = append(b.stateCandidates, fuzzy.Candidate{
			Code:    sc,
			Name:    names.Loose(display),
			Display: display,
		})
	}
	sort.Slice(b.stateCandidates, func(i, j int) bool {
		return b.stateCandidates[i].Name < b.stateCandidates[j].Name
	})

	return b
}

// LoadMaps validates that the required columns are present in the given row
// maps and builds a Book from them. The source label only feeds error
// messages. A missing required column is fatal: the run cannot proceed on
// a code book it cannot trust.
func LoadMaps(source string, rows []map[string]string) (*Book, error) {
	if len(rows) == 0 {
		return nil, &errors.CodeBookError{Source: source, Message: "no rows"}
	}

	for _, col := range []string{ColStateCode, ColStateName, ColDistrictCode, ColDistrictName} {
		if _, ok := rows[0][col]; !ok {
			return nil, errors.NewCodeBookError(source, col)
		}
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			StateCode:    row[ColStateCode],
			StateName:    row[ColStateName],
			DistrictCode: row[ColDistrictCode],
			DistrictName: row[ColDistrictName],
		})
	}
	return Load(entries), nil
}

// Entries returns the validated rows in load order.
func (b *Book) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Dropped returns the count of rows removed for non-numeric codes.
func (b *Book) Dropped() int { return b.dropped }

// Duplicates returns the count of rows removed for repeating a code pair.
func (b *Book) Duplicates() int { return b.duplicates }

// FindStateExact looks up a state code by the strict canonical form of the
// given name. The empty string reports not-found.
func (b *Book) FindStateExact(rawName string) (string, bool) {
	if names.IsBlank(rawName) {
		return "", false
	}
	code, ok := b.stateByStrict[names.Strict(rawName)]
	return code, ok
}

// FindDistrictExact looks up a district code within one state by the strict
// canonical form of the given name.
func (b *Book) FindDistrictExact(stateCode, rawName string) (string, bool) {
	if names.IsBlank(rawName) {
		return "", false
	}
	code, ok := b.districtByStrict[stateCode][names.Strict(rawName)]
	return code, ok
}

// CandidatesForState returns the district candidate pool scoped to one
// state, sorted by canonical name. An unknown state yields an empty pool,
// which the fuzzy matcher treats as "no match possible".
func (b *Book) CandidatesForState(stateCode string) []fuzzy.Candidate {
	return b.candidates[stateCode]
}

// StateCandidates returns every known state as a candidate pool, sorted by
// canonical name.
func (b *Book) StateCandidates() []fuzzy.Candidate {
	return b.stateCandidates
}

// StateName returns the display name for a state code.
func (b *Book) StateName(stateCode string) (string, bool) {
	name, ok := b.stateDisplay[stateCode]
	return name, ok
}

// DistrictName returns the display name for a (state, district) code pair.
func (b *Book) DistrictName(stateCode, districtCode string) (string, bool) {
	for _, e := range b.entries {
		if e.StateCode == stateCode && e.DistrictCode == districtCode {
			return e.DistrictName, true
		}
	}
	return "", false
}

// States returns all state codes in sorted order.
func (b *Book) States() []string {
	codes := make([]string, 0, len(b.stateDisplay))
	for sc := range b.stateDisplay {
		codes = append(codes, sc)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of validated entries.
func (b *Book) Len() int { return len(b.entries) }

// pad2 renders a numeric-looking code zero-padded to width 2. Inputs like
// "7", "07", and "7.0" all map to "07"; anything non-numeric reports false.
func pad2(code string) (string, bool) {
	s := strings.TrimSpace(code)
	if s == "" {
		return "", false
	}
	// Census extracts sometimes carry codes as floats ("7.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) && f >= 0 {
		return fmt.Sprintf("%02d", int(f)), true
	}
	return "", false
}
