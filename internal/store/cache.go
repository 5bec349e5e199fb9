package store

import (
	"os"
	"sync"

	"github.com/districtmap/districtmap/internal/schema"
	"github.com/districtmap/districtmap/pkg/errors"
)

// DateSet is the set of ISO dates found in one district calendar file.
type DateSet map[string]bool

// DateCache loads district calendar files and memoizes their date sets by
// path. It is an explicit object owned by the caller, not a process-wide
// cache, so separate runs cannot observe each other's state and tests
// stay hermetic. Invalidation is explicit.
type DateCache struct {
	mu      sync.Mutex
	mapping schema.Mapping
	sets    map[string]DateSet
	misses  map[string]bool
}

// NewDateCache creates a cache that reads files through the given column
// mapping.
func NewDateCache(mapping schema.Mapping) *DateCache {
	return &DateCache{
		mapping: mapping,
		sets:    make(map[string]DateSet),
		misses:  make(map[string]bool),
	}
}

// Dates returns the date set for one calendar file. A missing file is not
// an error: it returns (nil, false, nil), and the miss is memoized too so
// repeated probes of absent districts stay cheap.
func (c *DateCache) Dates(path string) (DateSet, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if set, ok := c.sets[path]; ok {
		return set, true, nil
	}
	if c.misses[path] {
		return nil, false, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		c.misses[path] = true
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	rows, err := schema.ReadCSV(f, path)
	if err != nil {
		return nil, false, err
	}

	set := make(DateSet)
	for _, iso := range c.mapping.ApplyDatesOnly(rows) {
		if iso != "" {
			set[iso] = true
		}
	}

	c.sets[path] = set
	return set, true, nil
}

// Invalidate drops any cached state for the path, forcing the next Dates
// call to re-read the file.
func (c *DateCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sets, path)
	delete(c.misses, path)
}

// Len returns the number of cached hits.
func (c *DateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sets)
}
