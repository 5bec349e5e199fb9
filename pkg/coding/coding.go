// Package coding flags master-list rows as auspicious: a row is flagged
// when its date appears in its district's calendar file. Calendar files
// load once through a date cache; districts without a file flag as not
// auspicious and are counted. The outcome carries the per-district hit
// rates and per-year coverage the diagnostics report prints.
package coding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/internal/dates"
	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/logging"
	"github.com/districtmap/districtmap/pkg/merge"
)

// Input is one master-list row after resolution: both codes and the
// row's ISO date, empty when the date did not parse.
type Input struct {
	StateCode    string
	DistrictCode string
	ISODate      string
}

// HitRate is one district's flag ratio, over rows whose calendar file
// exists.
type HitRate struct {
	StateCode    string  `json:"state_code"`
	DistrictCode string  `json:"district_code"`
	Hits         int     `json:"hits"`
	Total        int     `json:"total"`
	Rate         float64 `json:"rate"`
}

// YearCount is one year's row coverage.
type YearCount struct {
	Year       int `json:"year"`
	Rows       int `json:"rows"`
	Auspicious int `json:"auspicious"`
}

// Outcome is the result of one coding pass. Flags aligns with the input
// slice, one flag per row.
type Outcome struct {
	Flags []bool `json:"flags"`

	Total           int            `json:"total"`
	Auspicious      int            `json:"auspicious"`
	UnparsableDates int            `json:"unparsable_dates"`
	Uncoded         int            `json:"uncoded,omitempty"`       // rows lacking a state or district code
	MissingFiles    map[string]int `json:"missing_files,omitempty"` // "SS/DD" -> affected rows

	hits   map[[2]string]int
	totals map[[2]string]int
	years  map[int]*YearCount
}

// HitRates returns per-district hit rates sorted worst first, ties by
// code.
func (o *Outcome) HitRates() []HitRate {
	out := make([]HitRate, 0, len(o.totals))
	for key, total := range o.totals {
		hr := HitRate{
			StateCode:    key[0],
			DistrictCode: key[1],
			Hits:         o.hits[key],
			Total:        total,
		}
		if total > 0 {
			hr.Rate = float64(hr.Hits) / float64(total)
		}
		out = append(out, hr)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate < out[j].Rate
		}
		if out[i].StateCode != out[j].StateCode {
			return out[i].StateCode < out[j].StateCode
		}
		return out[i].DistrictCode < out[j].DistrictCode
	})
	return out
}

// Years returns per-year coverage sorted by year. Rows with unparsable
// dates are not attributed to any year.
func (o *Outcome) Years() []YearCount {
	out := make([]YearCount, 0, len(o.years))
	for _, yc := range o.years {
		out = append(out, *yc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Coder runs coding passes against one calendar tree.
type Coder struct {
	tree   *store.Store
	cache  *store.DateCache
	logger zerolog.Logger
}

// New creates a Coder. The cache is owned by the caller so several passes
// over one tree share loaded files.
func New(tree *store.Store, cache *store.DateCache, logger *zerolog.Logger) (*Coder, error) {
	if tree == nil {
		return nil, &errors.ValidationError{Field: "tree", Message: "tree must not be nil"}
	}
	if cache == nil {
		return nil, &errors.ValidationError{Field: "cache", Message: "cache must not be nil"}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Coder{tree: tree, cache: cache, logger: *logger}, nil
}

// Code flags every input row and returns the aligned flags with counters.
func (c *Coder) Code(inputs []Input) (*Outcome, error) {
	o := &Outcome{
		Flags:        make([]bool, 0, len(inputs)),
		MissingFiles: make(map[string]int),
		hits:         make(map[[2]string]int),
		totals:       make(map[[2]string]int),
		years:        make(map[int]*YearCount),
	}

	for _, in := range inputs {
		o.Total++
		if in.ISODate == "" {
			o.UnparsableDates++
		}

		// A row without both codes never resolved; probing the tree
		// for it would misreport a missing calendar file.
		if in.StateCode == "" || in.DistrictCode == "" {
			o.Uncoded++
			o.Flags = append(o.Flags, false)
			c.observeYear(o, in.ISODate, false)
			continue
		}

		path := c.tree.Path(in.StateCode, in.DistrictCode)
		set, ok, err := c.cache.Dates(path)
		if err != nil {
			return nil, err
		}
		if !ok {
			o.MissingFiles[fmt.Sprintf("%s/%s", in.StateCode, in.DistrictCode)]++
			o.Flags = append(o.Flags, false)
			c.observeYear(o, in.ISODate, false)
			continue
		}

		flag := in.ISODate != "" && set[in.ISODate]
		o.Flags = append(o.Flags, flag)

		key := [2]string{in.StateCode, in.DistrictCode}
		o.totals[key]++
		if flag {
			o.hits[key]++
			o.Auspicious++
		}
		c.observeYear(o, in.ISODate, flag)
	}

	if len(o.MissingFiles) == 0 {
		return o, nil
	}
	c.logger.Warn().
		Int("districts", len(o.MissingFiles)).
		Msg("Some referenced district calendar files are absent")
	return o, nil
}

func (c *Coder) observeYear(o *Outcome, iso string, flag bool) {
	year := dates.Year(iso)
	if year == 0 {
		return
	}
	yc := o.years[year]
	if yc == nil {
		yc = &YearCount{Year: year}
		o.years[year] = yc
	}
	yc.Rows++
	if flag {
		yc.Auspicious++
	}
}

// LabeledRow is one record of a combined output stream, labeled with the
// canonical code its group collapsed onto.
type LabeledRow struct {
	Code   string `json:"code"`
	RawKey string `json:"raw_key"`
	Record string `json:"record"`
}

// CombineGroups flattens merge-group snapshots into one labeled row
// stream, group order preserved. The raw key column keeps the collapse
// auditable after the sources are gone.
func CombineGroups(groups []merge.Group) []LabeledRow {
	var out []LabeledRow
	for _, g := range groups {
		rawKey := strings.Join(g.RawKeys, ";")
		for _, rec := range g.Records {
			out = append(out, LabeledRow{Code: g.Code, RawKey: rawKey, Record: rec})
		}
	}
	return out
}
