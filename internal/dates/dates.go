// Package dates parses the loosely-typed date fields carried by scraped
// calendar rows: month names or numbers, year and day values that sometimes
// arrive as floats, and whole dates in assorted layouts. Anything that does
// not parse renders as the empty string rather than an error; unparsable
// dates are an expected, counted condition upstream.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var months = map[string]int{
	"january": 1, "february": 2, "march": 3, "april": 4,
	"may": 5, "june": 6, "july": 7, "august": 8,
	"september": 9, "october": 10, "november": 11, "december": 12,
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Month parses a month given as a name ("February"), abbreviation ("feb"),
// or number ("2", "02"). Returns 0 when unparsable.
func Month(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= 12 {
			return n
		}
		return 0
	}
	return months[s]
}

// Number parses an integer that may arrive rendered as a float ("2020.0").
// Returns 0 when unparsable.
func Number(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f)
	}
	return 0
}

// ISO renders year/month/day fields as an ISO-8601 date string, or ""
// when the combination is not a plausible calendar date.
func ISO(year, month, day string) string {
	y, m, d := Number(year), Month(month), Number(day)
	if y == 0 || m == 0 || d < 1 || d > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// ParseAny parses a full date string in any of the layouts the scraped
// stores have been seen to carry, normalized to ISO-8601. Returns "" when
// no layout matches.
func ParseAny(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	layouts := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"02/01/2006",
		"01/02/2006",
		"2 January 2006",
		"January 2, 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// Year extracts the year from an ISO date string, or 0.
func Year(iso string) int {
	if len(iso) < 4 {
		return 0
	}
	y, err := strconv.Atoi(iso[:4])
	if err != nil {
		return 0
	}
	return y
}
