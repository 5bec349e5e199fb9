// Package check validates a scraped calendar tree against the reference
// code book: every (state, district) pair in the book should have a
// calendar file at <root>/<state>/<district>.csv. Folder and file names
// are matched the same way record names are resolved: alias first, then
// exact canonical, then fuzzy with the state and district thresholds.
package check

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/fuzzy"
	"github.com/districtmap/districtmap/pkg/logging"
	"github.com/districtmap/districtmap/pkg/names"
	"github.com/districtmap/districtmap/pkg/resolve"
)

// Status classifies one checked code-book row.
type Status string

const (
	// StatusOK means the district file exists under its expected name.
	StatusOK Status = "ok"
	// StatusCloseMatch means no exact file, but one scored at or above
	// the district threshold.
	StatusCloseMatch Status = "close-match"
	// StatusMissingDistrict means no file came close enough.
	StatusMissingDistrict Status = "missing-district"
	// StatusMissingState means no folder resolved for the state at all.
	StatusMissingState Status = "missing-state"
)

// Finding is one problem row. OK rows are counted, not listed.
type Finding struct {
	State       string  `json:"state"`
	District    string  `json:"district"`
	Status      Status  `json:"status"`
	MatchedFile string  `json:"matched_file,omitempty"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// Report is the outcome of one full check pass.
type Report struct {
	Findings []Finding `json:"findings"`

	Checked          int `json:"checked"`
	OK               int `json:"ok"`
	CloseMatches     int `json:"close_matches"`
	MissingDistricts int `json:"missing_districts"`
	MissingStates    int `json:"missing_states"`
	SkippedBlank     int `json:"skipped_blank"`
}

// Mismatches returns only the hard misses, the rows that need either a
// scrape or an alias entry.
func (r *Report) Mismatches() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Status == StatusMissingDistrict || f.Status == StatusMissingState {
			out = append(out, f)
		}
	}
	return out
}

// Checker walks the code book against one calendar tree.
type Checker struct {
	tree       *store.Store
	aliases    map[string]string
	thresholds resolve.Thresholds
	logger     zerolog.Logger
}

// Option configures a Checker.
type Option func(*Checker) error

// WithFolderAliases maps known state-name variants to their folder names.
// Keys are canonicalized, so spelling and case differences on the alias
// side do not matter.
func WithFolderAliases(m map[string]string) Option {
	return func(c *Checker) error {
		for raw, folder := range m {
			c.aliases[names.Loose(raw)] = folder
		}
		return nil
	}
}

// WithThresholds overrides the match thresholds.
func WithThresholds(t resolve.Thresholds) Option {
	return func(c *Checker) error {
		for _, v := range []float64{t.State, t.District} {
			if v < 0 || v > 1 {
				return &errors.ValidationError{
					Field:   "thresholds",
					Message: "thresholds must be in [0, 1]",
				}
			}
		}
		c.thresholds = t
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Checker) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "logger must not be nil"}
		}
		c.logger = *logger
		return nil
	}
}

// New creates a Checker over one calendar tree.
func New(tree *store.Store, opts ...Option) (*Checker, error) {
	if tree == nil {
		return nil, &errors.ValidationError{Field: "tree", Message: "tree must not be nil"}
	}
	c := &Checker{
		tree:       tree,
		aliases:    make(map[string]string),
		thresholds: resolve.DefaultThresholds(),
		logger:     *logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Run checks every code-book row against the tree and returns the report.
// Findings come back sorted by state then district.
func (c *Checker) Run(book *codebook.Book) (*Report, error) {
	states, err := c.tree.States()
	if err != nil {
		return nil, err
	}

	folderPool := make([]fuzzy.Candidate, 0, len(states))
	folderByStrict := make(map[string]string, len(states))
	districts := make(map[string][]string, len(states))
	for _, s := range states {
		folderPool = append(folderPool, fuzzy.Candidate{Code: s, Name: s, Display: s})
		folderByStrict[names.Strict(s)] = s
		ds, err := c.tree.Districts(s)
		if err != nil {
			return nil, err
		}
		districts[s] = ds
	}

	report := &Report{}
	for _, entry := range book.Entries() {
		if names.IsBlank(entry.StateName) || names.IsBlank(entry.DistrictName) {
			report.SkippedBlank++
			continue
		}
		report.Checked++

		folder, ok := c.resolveFolder(entry.StateName, folderPool, folderByStrict)
		if !ok {
			report.MissingStates++
			report.Findings = append(report.Findings, Finding{
				State:    entry.StateName,
				District: entry.DistrictName,
				Status:   StatusMissingState,
			})
			continue
		}

		report.Findings = append(report.Findings,
			c.checkDistrict(report, entry, folder, districts[folder])...)
	}

	sort.Slice(report.Findings, func(i, j int) bool {
		if report.Findings[i].State != report.Findings[j].State {
			return report.Findings[i].State < report.Findings[j].State
		}
		return report.Findings[i].District < report.Findings[j].District
	})

	c.logger.Info().
		Int("checked", report.Checked).
		Int("ok", report.OK).
		Int("close_matches", report.CloseMatches).
		Int("missing_districts", report.MissingDistricts).
		Int("missing_states", report.MissingStates).
		Msg("Calendar tree check complete")
	return report, nil
}

func (c *Checker) resolveFolder(rawState string, pool []fuzzy.Candidate, byStrict map[string]string) (string, bool) {
	if folder, ok := c.aliases[names.Loose(rawState)]; ok {
		return folder, true
	}
	if folder, ok := byStrict[names.Strict(rawState)]; ok {
		return folder, true
	}
	if best, _ := fuzzy.BestMatch(rawState, pool, c.thresholds.State); best != nil {
		return best.Name, true
	}
	return "", false
}

// checkDistrict scores one district against its state folder's files and
// returns the finding rows to append, updating the report counters.
func (c *Checker) checkDistrict(report *Report, entry codebook.Entry, folder string, stems []string) []Finding {
	want := names.Strict(entry.DistrictName)
	pool := make([]fuzzy.Candidate, 0, len(stems))
	for _, stem := range stems {
		if names.Strict(stem) == want {
			report.OK++
			return nil
		}
		pool = append(pool, fuzzy.Candidate{Code: stem, Name: stem, Display: stem})
	}

	best, score := fuzzy.BestMatch(entry.DistrictName, pool, 0)
	finding := Finding{
		State:      entry.StateName,
		District:   entry.DistrictName,
		Similarity: score,
	}
	if best != nil {
		finding.MatchedFile = best.Name + ".csv"
	}
	if best != nil && score >= c.thresholds.District {
		finding.Status = StatusCloseMatch
		report.CloseMatches++
	} else {
		finding.Status = StatusMissingDistrict
		report.MissingDistricts++
	}
	return []Finding{finding}
}
