package resolve

import "strings"

// Verdict classifies how (or whether) a raw name was resolved.
type Verdict string

const (
	// VerdictExact means the strict canonical form matched the code book.
	VerdictExact Verdict = "exact"
	// VerdictAliased means a curated alias supplied the code.
	VerdictAliased Verdict = "aliased"
	// VerdictFuzzyAccepted means a fuzzy match at or above the threshold.
	VerdictFuzzyAccepted Verdict = "fuzzy-accepted"
	// VerdictFuzzyBorderline means the best fuzzy score landed in the review
	// band below the acceptance threshold but above the reporting floor.
	VerdictFuzzyBorderline Verdict = "fuzzy-borderline"
	// VerdictUnresolved means no strategy produced a match.
	VerdictUnresolved Verdict = "unresolved"
	// VerdictSkipped means the record is excluded by configuration.
	VerdictSkipped Verdict = "skipped"
)

// String returns the string representation of a verdict.
func (v Verdict) String() string {
	return string(v)
}

// Name returns a human-readable name for the verdict.
func (v Verdict) Name() string {
	words := strings.Split(string(v), "-")
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// Resolved reports whether the verdict carries a usable code.
func (v Verdict) Resolved() bool {
	switch v {
	case VerdictExact, VerdictAliased, VerdictFuzzyAccepted:
		return true
	default:
		return false
	}
}

// Resolution is the per-name outcome at one level of the hierarchy.
//
// Invariants: an exact verdict always scores 1.0; an unresolved or skipped
// verdict never carries a code; a fuzzy-accepted verdict scores at or above
// the acceptance threshold.
type Resolution struct {
	Query       string  `json:"query"`
	MatchedCode string  `json:"matched_code,omitempty"`
	MatchedName string  `json:"matched_name,omitempty"`
	Score       float64 `json:"score"`
	Verdict     Verdict `json:"verdict"`
}

// Record is the full outcome for one (raw state, raw district) input row.
type Record struct {
	RawState    string     `json:"raw_state"`
	RawDistrict string     `json:"raw_district"`
	State       Resolution `json:"state"`
	District    Resolution `json:"district"`

	// Verdict is the overall classification: skipped wins outright, a
	// failed state resolution makes the whole record unresolved, and
	// otherwise the district verdict carries.
	Verdict Verdict `json:"verdict"`
}

// Code returns the combined "state/district" canonical code for a fully
// resolved record.
func (r Record) Code() (string, bool) {
	if !r.State.Verdict.Resolved() || !r.District.Verdict.Resolved() {
		return "", false
	}
	return r.State.MatchedCode + "/" + r.District.MatchedCode, true
}

// Counters aggregates verdicts across a run for summary reporting.
type Counters struct {
	Exact           int `json:"exact"`
	Aliased         int `json:"aliased"`
	FuzzyAccepted   int `json:"fuzzy_accepted"`
	FuzzyBorderline int `json:"fuzzy_borderline"`
	Unresolved      int `json:"unresolved"`
	Skipped         int `json:"skipped"`
}

// Observe counts one verdict.
func (c *Counters) Observe(v Verdict) {
	switch v {
	case VerdictExact:
		c.Exact++
	case VerdictAliased:
		c.Aliased++
	case VerdictFuzzyAccepted:
		c.FuzzyAccepted++
	case VerdictFuzzyBorderline:
		c.FuzzyBorderline++
	case VerdictUnresolved:
		c.Unresolved++
	case VerdictSkipped:
		c.Skipped++
	}
}

// Total returns the number of observed verdicts.
func (c *Counters) Total() int {
	return c.Exact + c.Aliased + c.FuzzyAccepted + c.FuzzyBorderline + c.Unresolved + c.Skipped
}

// ResolvedCount returns how many observations carried a usable code.
func (c *Counters) ResolvedCount() int {
	return c.Exact + c.Aliased + c.FuzzyAccepted
}
