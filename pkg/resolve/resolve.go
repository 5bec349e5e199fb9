// Package resolve orchestrates name resolution for raw (state, district)
// records: skip check, curated alias, exact code-book lookup, then fuzzy
// matching, in that priority order, scoped hierarchically so a district is
// only ever matched against its resolved parent state's pool.
//
// Resolution is a pure function of its inputs plus the immutable code book
// and alias table, which makes records trivially parallelizable; only the
// merge coordinator downstream carries shared state.
package resolve

import (
	"regexp"

	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/pkg/aliases"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/fuzzy"
	"github.com/districtmap/districtmap/pkg/names"
)

// Resolver maps noisy state and district names onto canonical census codes.
// It owns read access to the code book and alias table for the duration of
// a run; neither is mutated after construction.
type Resolver struct {
	book       *codebook.Book
	aliases    *aliases.Table
	thresholds Thresholds
	logger     *zerolog.Logger
}

// New creates a Resolver over an immutable code book.
func New(book *codebook.Book, opts ...Option) (*Resolver, error) {
	if book == nil {
		return nil, &errors.ValidationError{
			Field:   "book",
			Message: "cannot be nil",
		}
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		book:       book,
		aliases:    options.aliases,
		thresholds: options.thresholds,
		logger:     options.logger,
	}, nil
}

// Thresholds returns the configured acceptance tiers.
func (r *Resolver) Thresholds() Thresholds {
	return r.thresholds
}

var codePattern = regexp.MustCompile(`^\d{2}$`)

// Resolve classifies one raw (state, district) pair.
//
// The state resolves first: alias, then exact, then fuzzy against the full
// state pool, first success short-circuiting the rest. If the state cannot
// be resolved the district is not attempted at all (there is no pool to
// scope it to) and the record is unresolved. Skip-listed pairs terminate
// before any matching.
func (r *Resolver) Resolve(rawState, rawDistrict string) Record {
	rec := Record{RawState: rawState, RawDistrict: rawDistrict}

	// Calendar trees that have already been renamed hand us the state as a
	// bare two-digit code; honor skip entries keyed by it before doing any
	// resolution work at all.
	if codePattern.MatchString(names.Loose(rawState)) && r.aliases.Skipped(names.Loose(rawState), rawDistrict) {
		rec.State = skipped(rawState)
		rec.District = skipped(rawDistrict)
		rec.Verdict = VerdictSkipped
		return rec
	}

	rec.State = r.ResolveState(rawState)
	if !rec.State.Verdict.Resolved() {
		rec.District = unresolved(rawDistrict)
		rec.Verdict = VerdictUnresolved
		return rec
	}

	// Skip entries are scoped by state code, so a name-keyed state is
	// checked once its code is known.
	if r.aliases.Skipped(rec.State.MatchedCode, rawDistrict) {
		rec.District = skipped(rawDistrict)
		rec.Verdict = VerdictSkipped
		return rec
	}

	rec.District = r.resolveDistrict(rec.State.MatchedCode, rawDistrict)
	rec.Verdict = rec.District.Verdict
	return rec
}

// ResolveState resolves a raw state name against the full state pool.
func (r *Resolver) ResolveState(rawState string) Resolution {
	if names.IsBlank(rawState) {
		return unresolved(rawState)
	}

	if code, ok := r.aliases.LookupState(rawState); ok {
		name, _ := r.book.StateName(code)
		return Resolution{
			Query:       rawState,
			MatchedCode: code,
			MatchedName: name,
			Score:       1.0,
			Verdict:     VerdictAliased,
		}
	}

	if code, ok := r.book.FindStateExact(rawState); ok {
		name, _ := r.book.StateName(code)
		return Resolution{
			Query:       rawState,
			MatchedCode: code,
			MatchedName: name,
			Score:       1.0,
			Verdict:     VerdictExact,
		}
	}

	return r.fuzz(rawState, r.book.StateCandidates(), r.thresholds.State)
}

// ResolveDistrict resolves a raw district name within an already-known
// state code, as when walking a renamed tree whose folders are bare codes.
// Skip entries for the pair still apply.
func (r *Resolver) ResolveDistrict(stateCode, rawDistrict string) Resolution {
	if r.aliases.Skipped(stateCode, rawDistrict) {
		return skipped(rawDistrict)
	}
	return r.resolveDistrict(stateCode, rawDistrict)
}

// resolveDistrict resolves a raw district name within one resolved state.
func (r *Resolver) resolveDistrict(stateCode, rawDistrict string) Resolution {
	if names.IsBlank(rawDistrict) {
		return unresolved(rawDistrict)
	}

	if code, ok := r.aliases.LookupDistrict(stateCode, rawDistrict); ok {
		name, _ := r.book.DistrictName(stateCode, code)
		return Resolution{
			Query:       rawDistrict,
			MatchedCode: code,
			MatchedName: name,
			Score:       1.0,
			Verdict:     VerdictAliased,
		}
	}

	if code, ok := r.book.FindDistrictExact(stateCode, rawDistrict); ok {
		name, _ := r.book.DistrictName(stateCode, code)
		return Resolution{
			Query:       rawDistrict,
			MatchedCode: code,
			MatchedName: name,
			Score:       1.0,
			Verdict:     VerdictExact,
		}
	}

	return r.fuzz(rawDistrict, r.book.CandidatesForState(stateCode), r.thresholds.District)
}

// fuzz classifies the best fuzzy candidate against the acceptance threshold
// and the borderline reporting floor.
func (r *Resolver) fuzz(query string, pool []fuzzy.Candidate, threshold float64) Resolution {
	best, score := fuzzy.BestMatch(query, pool, 0)
	if best != nil && score >= threshold {
		return Resolution{
			Query:       query,
			MatchedCode: best.Code,
			MatchedName: best.Display,
			Score:       score,
			Verdict:     VerdictFuzzyAccepted,
		}
	}

	if best != nil && score >= r.thresholds.BorderlineFloor {
		// Near miss: no code attached, but the score and closest name are
		// surfaced for human review.
		r.logger.Debug().
			Str("query", query).
			Str("closest", best.Display).
			Float64("score", score).
			Msg("Borderline fuzzy match held for review")
		return Resolution{
			Query:       query,
			MatchedName: best.Display,
			Score:       score,
			Verdict:     VerdictFuzzyBorderline,
		}
	}

	return Resolution{Query: query, Score: score, Verdict: VerdictUnresolved}
}

func unresolved(query string) Resolution {
	return Resolution{Query: query, Verdict: VerdictUnresolved}
}

func skipped(query string) Resolution {
	return Resolution{Query: query, Verdict: VerdictSkipped}
}
