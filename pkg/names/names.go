// Package names provides canonical forms for noisy state and district names.
// Every name that enters the reconciliation core is reduced to one of two
// canonical forms: a strict form used for exact code-book lookups, and a
// loose form that preserves word boundaries for similarity scoring.
package names

import (
	"strings"

	"golang.org/x/text/cases"
)

// fold performs full Unicode case folding so that lookups behave the same
// for non-ASCII input as for plain ASCII. A Caser is stateful, so a fresh
// one is taken per call to keep both canonical forms goroutine-safe.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Strict returns the strict canonical form of a raw name: case-folded,
// ampersands spelled out, and every character that is not an ASCII letter
// or digit removed. This is the key used for exact lookups against the
// code book and the alias table's district entries.
//
// Strict is total and idempotent: any input (including the empty string)
// maps to exactly one output, and Strict(Strict(s)) == Strict(s).
func Strict(raw string) string {
	s := fold(raw)
	s = strings.ReplaceAll(s, "&", "and")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Loose returns the loose canonical form of a raw name: case-folded,
// ampersands spelled out, runs of whitespace collapsed to a single space,
// and leading/trailing commas and whitespace trimmed. Internal punctuation
// is kept so that similarity scoring still sees word boundaries.
//
// Loose is total and idempotent in the same sense as Strict.
func Loose(raw string) string {
	s := fold(raw)
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, ", \t")
}

// IsBlank reports whether a raw name carries no usable content once
// canonicalized. Blank names are never matched against anything.
func IsBlank(raw string) bool {
	return Strict(raw) == ""
}
