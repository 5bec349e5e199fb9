// Package geonames reads a GeoNames country dump (the tab-separated
// "IN.txt" style file) into lookup pools for recovery: ADM1 rows become a
// state pool mapping every name and alternate name to its admin1 code,
// ADM2 rows become district pools scoped by admin1. Only the columns the
// recovery pass needs are kept.
package geonames

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/districtmap/districtmap/pkg/errors"
)

// Dump column positions. The format is fixed at 19 tab-separated fields;
// rows shorter than the admin1 column are unusable and counted as skipped.
const (
	colGeonameID   = 0
	colName        = 1
	colAlternates  = 3
	colFeatureCode = 7
	colAdmin1      = 10

	minFields = colAdmin1 + 1
)

const (
	featureState    = "ADM1"
	featureDistrict = "ADM2"
)

// Place is one named entry from the dump: a state (ADM1) or district
// (ADM2) with its alternate spellings.
type Place struct {
	GeonameID  string
	Name       string
	Alternates []string
	Admin1     string
}

// Index holds the parsed pools. All lookups key on the names exactly as
// the dump spells them; fuzzy matching happens in the caller.
type Index struct {
	states      []Place
	districts   []Place
	byAdmin1    map[string][]Place
	skippedRows int
}

// Read parses a dump from r. Rows that are neither ADM1 nor ADM2 are
// ignored; rows too short to carry an admin1 code are counted and skipped.
func Read(r io.Reader) (*Index, error) {
	idx := &Index{byAdmin1: make(map[string][]Place)}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < minFields {
			idx.skippedRows++
			continue
		}
		code := fields[colFeatureCode]
		if code != featureState && code != featureDistrict {
			continue
		}
		p := Place{
			GeonameID:  fields[colGeonameID],
			Name:       fields[colName],
			Alternates: splitAlternates(fields[colAlternates]),
			Admin1:     fields[colAdmin1],
		}
		switch code {
		case featureState:
			idx.states = append(idx.states, p)
		case featureDistrict:
			idx.districts = append(idx.districts, p)
			idx.byAdmin1[p.Admin1] = append(idx.byAdmin1[p.Admin1], p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapParse("geonames", "dump", err)
	}
	return idx, nil
}

// States returns the ADM1 places in dump order.
func (idx *Index) States() []Place { return idx.states }

// Districts returns the ADM2 pool for one admin1 code, or every district
// when admin1 is empty (the unscoped fallback when no state matched).
func (idx *Index) Districts(admin1 string) []Place {
	if admin1 == "" {
		return idx.districts
	}
	return idx.byAdmin1[admin1]
}

// Admin1Codes returns the distinct admin1 codes that have districts,
// sorted.
func (idx *Index) Admin1Codes() []string {
	out := make([]string, 0, len(idx.byAdmin1))
	for code := range idx.byAdmin1 {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// SkippedRows reports how many rows were too short to parse.
func (idx *Index) SkippedRows() int { return idx.skippedRows }

// Names returns every spelling of the place, primary name first.
func (p Place) Names() []string {
	out := make([]string, 0, 1+len(p.Alternates))
	out = append(out, p.Name)
	out = append(out, p.Alternates...)
	return out
}

func splitAlternates(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, alt := range strings.Split(raw, ",") {
		if alt != "" {
			out = append(out, alt)
		}
	}
	return out
}
