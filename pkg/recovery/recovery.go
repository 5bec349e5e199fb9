// Package recovery resolves a list of missing (state, district) pairs
// against a GeoNames country dump. States match against the ADM1 pool
// including alternate names, districts against the ADM2 pool scoped to the
// matched state's admin1 code. Matching combines the Levenshtein ratio
// with a subsequence partial score, since GeoNames primary names often
// embed the plain name ("State of Karnataka"). Output is exactly one row
// per distinct input pair, matched or not.
package recovery

import (
	"sort"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/internal/geonames"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/fuzzy"
	"github.com/districtmap/districtmap/pkg/logging"
	"github.com/districtmap/districtmap/pkg/names"
)

// DefaultThreshold is the acceptance cutoff for both state and district
// matches.
const DefaultThreshold = 0.80

// partialScore is awarded when the query is an in-order subsequence of a
// candidate name, scaled below an exact hit the way weighted-ratio
// scorers discount partial matches.
const partialScore = 0.90

// minPartialLen guards the subsequence test against short queries that
// thread through unrelated names.
const minPartialLen = 4

// Query is one input pair from the missing-districts list.
type Query struct {
	State    string
	District string
}

// Row is one output row: the raw input, the best matches with scores, and
// the GeoNames id when the district matched. Unmatched fields stay empty
// with the best score seen.
type Row struct {
	StateName       string  `json:"state_name"`
	MatchedState    string  `json:"matched_state"`
	StateScore      float64 `json:"state_score"`
	DistrictName    string  `json:"district_name"`
	MatchedDistrict string  `json:"matched_district"`
	DistrictScore   float64 `json:"district_score"`
	GeonameID       string  `json:"geoname_id"`
}

// Recoverer matches missing pairs against one loaded GeoNames index.
type Recoverer struct {
	index     *geonames.Index
	threshold float64
	logger    zerolog.Logger

	statePool []candidate
}

// candidate is one name in a lookup pool with its owning record's key:
// the admin1 code for states, the geoname id for districts.
type candidate struct {
	name string
	key  string
}

// Option configures a Recoverer.
type Option func(*Recoverer) error

// WithThreshold overrides the acceptance cutoff.
func WithThreshold(v float64) Option {
	return func(r *Recoverer) error {
		if v < 0 || v > 1 {
			return &errors.ValidationError{
				Field:   "threshold",
				Message: "threshold must be in [0, 1]",
			}
		}
		r.threshold = v
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Recoverer) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "logger must not be nil"}
		}
		r.logger = *logger
		return nil
	}
}

// New creates a Recoverer over one index.
func New(index *geonames.Index, opts ...Option) (*Recoverer, error) {
	if index == nil {
		return nil, &errors.ValidationError{Field: "index", Message: "index must not be nil"}
	}
	r := &Recoverer{
		index:     index,
		threshold: DefaultThreshold,
		logger:    *logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	for _, p := range index.States() {
		for _, n := range p.Names() {
			r.statePool = append(r.statePool, candidate{name: n, key: p.Admin1})
		}
	}
	return r, nil
}

// Run matches every distinct input pair and returns one row per pair, in
// first-seen order. Exact input duplicates collapse before matching.
func (r *Recoverer) Run(queries []Query) []Row {
	seen := make(map[Query]bool, len(queries))
	var rows []Row
	for _, q := range queries {
		key := Query{State: names.Loose(q.State), District: names.Loose(q.District)}
		if seen[key] {
			continue
		}
		seen[key] = true
		rows = append(rows, r.recoverOne(q))
	}
	return rows
}

func (r *Recoverer) recoverOne(q Query) Row {
	row := Row{StateName: q.State, DistrictName: q.District}

	admin1 := ""
	if m := bestCandidate(q.State, r.statePool); m.score >= r.threshold {
		row.MatchedState = m.name
		row.StateScore = m.score
		admin1 = m.key
	} else {
		row.StateScore = m.score
	}

	// No state match widens the district pool to the whole country, same
	// as scoping by an empty admin1 code.
	pool := r.districtPool(admin1)
	if m := bestCandidate(q.District, pool); m.score >= r.threshold {
		row.MatchedDistrict = m.name
		row.DistrictScore = m.score
		row.GeonameID = m.key
	} else {
		row.DistrictScore = m.score
		r.logger.Debug().
			Str("state", q.State).
			Str("district", q.District).
			Float64("score", m.score).
			Msg("District not recovered")
	}
	return row
}

func (r *Recoverer) districtPool(admin1 string) []candidate {
	places := r.index.Districts(admin1)
	pool := make([]candidate, 0, len(places))
	for _, p := range places {
		for _, n := range p.Names() {
			pool = append(pool, candidate{name: n, key: p.GeonameID})
		}
	}
	return pool
}

type match struct {
	name  string
	key   string
	score float64
}

// bestCandidate scores the query against every pool name. The score is
// the Levenshtein ratio, lifted to partialScore when the query threads
// through the candidate as an in-order subsequence and the ratio alone
// would under-rate it.
func bestCandidate(query string, pool []candidate) match {
	var best match
	loose := names.Loose(query)
	usePartial := len(loose) >= minPartialLen
	for _, c := range pool {
		score := fuzzy.Ratio(query, c.name)
		if usePartial && score < partialScore && lfuzzy.MatchNormalizedFold(loose, names.Loose(c.name)) {
			score = partialScore
		}
		if score > best.score {
			best = match{name: c.name, key: c.key, score: score}
		}
	}
	return best
}

// GeoRow is one row of the main geo index file.
type GeoRow struct {
	State     string `json:"state"`
	District  string `json:"district"`
	GeonameID string `json:"geoname_id"`
}

// MergeStats counts what a MergeRows pass did.
type MergeStats struct {
	Added            int `json:"added"`
	SkippedEmpty     int `json:"skipped_empty"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	Total            int `json:"total"`
}

// MergeRows folds recovered rows into the existing geo index. Rows with
// no usable geoname id are skipped, as are rows whose (state, district,
// id) triple is already present. Existing rows keep their order; new
// rows append in input order.
func MergeRows(existing []GeoRow, recovered []Row) ([]GeoRow, MergeStats) {
	stats := MergeStats{}
	seen := make(map[GeoRow]bool, len(existing))
	out := make([]GeoRow, 0, len(existing)+len(recovered))
	for _, row := range existing {
		seen[row] = true
		out = append(out, row)
	}

	for _, rec := range recovered {
		id := rec.GeonameID
		if id == "" || id == "0" || id == "0.0" {
			stats.SkippedEmpty++
			continue
		}
		row := GeoRow{State: rec.MatchedState, District: rec.MatchedDistrict, GeonameID: id}
		if seen[row] {
			stats.SkippedDuplicate++
			continue
		}
		seen[row] = true
		out = append(out, row)
		stats.Added++
	}
	stats.Total = len(out)
	return out, stats
}

// SortRows orders geo index rows by state then district for stable
// serialization.
func SortRows(rows []GeoRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		return rows[i].District < rows[j].District
	})
}
