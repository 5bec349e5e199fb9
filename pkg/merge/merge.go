// Package merge combines record sets from raw sources that resolved to the
// same canonical code. Two district calendars that collapse onto one code
// are expected to describe the same physical district, so the union is
// taken with duplicate elimination rather than treated as a conflict; the
// collision itself is still logged as an advisory event.
package merge

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/pkg/logging"
)

// KeyFunc extracts the natural key of a record, e.g. its ISO date. Records
// sharing a natural key within one group are duplicates and elimination
// keeps the first.
type KeyFunc func(record string) string

// Identity keys each record by its own value.
func Identity(record string) string { return record }

// Group is the merged record set for one canonical code.
type Group struct {
	Code              string   `json:"code"`
	RawKeys           []string `json:"raw_keys"`
	Records           []string `json:"records"`
	DroppedDuplicates int      `json:"dropped_duplicates"`
}

// Outcome summarizes a single ingest call.
type Outcome struct {
	Added            int    `json:"added"`
	SkippedDuplicate int    `json:"skipped_duplicate"`
	MergedWith       string `json:"merged_with,omitempty"` // first raw key of the existing group, if any
}

// group is the internal mutable state for one canonical code.
type group struct {
	code    string
	rawKeys []string
	records []string // insertion order preserved
	seen    map[string]bool
	dropped int
}

// Coordinator owns the merge groups for a run. It is the only component in
// the core with shared mutable state, so Ingest serializes callers; the
// resolvers feeding it may run in parallel.
type Coordinator struct {
	mu     sync.Mutex
	key    KeyFunc
	groups map[string]*group
	order  []string // codes in first-seen order
	logger *zerolog.Logger
}

// New creates a Coordinator using the given natural-key extractor. A nil
// extractor keys records by their own value.
func New(key KeyFunc, logger *zerolog.Logger) *Coordinator {
	if key == nil {
		key = Identity
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{
		key:    key,
		groups: make(map[string]*group),
		logger: logger,
	}
}

// Ingest adds a raw source's records under a canonical code. The first
// source for a code owns the group outright; later sources union into it,
// dropping records whose natural key the group already holds. Final group
// contents are order-independent across ingest orderings; only the
// duplicate counts and merge provenance depend on order.
func (c *Coordinator) Ingest(code, rawKey string, records []string) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, exists := c.groups[code]
	if !exists {
		g = &group{code: code, seen: make(map[string]bool)}
		c.groups[code] = g
		c.order = append(c.order, code)
	}

	var out Outcome
	if exists {
		out.MergedWith = g.rawKeys[0]
		// Advisory only: union semantics always proceed.
		c.logger.Warn().
			Str("code", code).
			Str("raw_key", rawKey).
			Str("merged_with", out.MergedWith).
			Msg("Raw sources collapse onto one canonical code; merging")
	}
	g.rawKeys = append(g.rawKeys, rawKey)

	for _, rec := range records {
		k := c.key(rec)
		if g.seen[k] {
			g.dropped++
			out.SkippedDuplicate++
			continue
		}
		g.seen[k] = true
		g.records = append(g.records, rec)
		out.Added++
	}

	return out
}

// Group returns a snapshot of the group for one canonical code.
func (c *Coordinator) Group(code string) (Group, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	g, ok := c.groups[code]
	if !ok {
		return Group{}, false
	}
	return g.snapshot(), true
}

// Groups returns snapshots of every group in first-seen order. This is the
// flush point: the caller serializes the snapshots and the run ends.
func (c *Coordinator) Groups() []Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Group, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.groups[code].snapshot())
	}
	return out
}

// Merged returns only the groups fed by more than one raw source, sorted
// by code for stable reporting.
func (c *Coordinator) Merged() []Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Group
	for _, g := range c.groups {
		if len(g.rawKeys) > 1 {
			out = append(out, g.snapshot())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len returns the number of groups.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.groups)
}

// DroppedDuplicates returns the total duplicates eliminated across all
// groups. The count only ever grows.
func (c *Coordinator) DroppedDuplicates() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	for _, g := range c.groups {
		total += g.dropped
	}
	return total
}

func (g *group) snapshot() Group {
	return Group{
		Code:              g.code,
		RawKeys:           append([]string(nil), g.rawKeys...),
		Records:           append([]string(nil), g.records...),
		DroppedDuplicates: g.dropped,
	}
}
