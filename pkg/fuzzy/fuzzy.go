// Package fuzzy scores string similarity between a query name and a pool of
// resolution candidates. Scores are normalized Levenshtein similarity in
// [0,1] computed over loose-canonical forms, so "Visakhapatnam" and
// "Vishakapatnam" land close to 1 while unrelated names land near 0.
package fuzzy

import (
	"github.com/agnivade/levenshtein"

	"github.com/districtmap/districtmap/pkg/names"
)

// Default acceptance thresholds. The district tier is deliberately more
// permissive: its candidate pool is already scoped to one state, so a
// looser cutoff trades little precision for better recall.
const (
	DefaultStateThreshold    = 0.80
	DefaultDistrictThreshold = 0.70

	// DefaultBorderlineFloor is the reporting floor for near misses that
	// are rejected but still worth surfacing for human review.
	DefaultBorderlineFloor = 0.50
)

// Candidate is a resolution target: a canonical code plus the name it is
// known by. Name is the loose-canonical form used for scoring; Display is
// the original spelling kept for reporting.
type Candidate struct {
	Code    string
	Name    string
	Display string
}

// Ratio returns the normalized similarity between two strings in [0,1].
// Both inputs are reduced to their loose-canonical form first, so the
// caller may pass raw names. Two empty strings score 0, not 1: a blank
// query matches nothing.
func Ratio(a, b string) float64 {
	ca, cb := names.Loose(a), names.Loose(b)
	if ca == "" || cb == "" {
		return 0
	}
	if ca == cb {
		return 1
	}

	dist := levenshtein.ComputeDistance(ca, cb)
	longest := len([]rune(ca))
	if l := len([]rune(cb)); l > longest {
		longest = l
	}
	return 1 - float64(dist)/float64(longest)
}

// BestMatch scores the query against every candidate and returns the best
// one if its score meets the inclusive threshold, along with the best score
// found. The score is returned even when the match is rejected so the
// caller can classify borderline near-misses.
//
// Ties are broken by taking the first candidate encountered in the given
// order; callers must supply a deterministic order (the code book sorts
// its pools by canonical name) for reproducible results.
//
// An empty pool is not an error: BestMatch returns (nil, 0).
func BestMatch(query string, candidates []Candidate, threshold float64) (*Candidate, float64) {
	var best *Candidate
	bestScore := 0.0

	for i := range candidates {
		score := Ratio(query, candidates[i].Name)
		if score > bestScore {
			best = &candidates[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < threshold {
		return nil, bestScore
	}
	return best, bestScore
}
