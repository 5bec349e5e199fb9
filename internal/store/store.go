// Package store gives a typed view of the scraped calendar tree on disk:
// one directory per state, one CSV of auspicious dates per district
// (<root>/<state>/<district>.csv). Directory and file stems are raw names
// until the rename pass converts them to numeric codes, so the listing
// functions return whatever is there and leave resolution to the caller.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/districtmap/districtmap/pkg/errors"
)

// Store is a read-mostly view over one calendar tree root.
type Store struct {
	root string
}

// New creates a Store over the given root directory.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the tree root.
func (s *Store) Root() string { return s.root }

// States lists the state-level directory names, sorted.
func (s *Store) States() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.WrapIO("read", s.root, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// Districts lists the district CSV file stems inside one state directory,
// sorted. A state directory with no CSVs yields an empty slice.
func (s *Store) Districts(state string) ([]string, error) {
	dir := filepath.Join(s.root, state)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.EqualFold(filepath.Ext(name), ".csv") {
			out = append(out, strings.TrimSuffix(name, filepath.Ext(name)))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Path returns the calendar file path for a (state, district) pair.
func (s *Store) Path(state, district string) string {
	return filepath.Join(s.root, state, district+".csv")
}

// Exists reports whether a calendar file is present for the pair.
func (s *Store) Exists(state, district string) bool {
	_, err := os.Stat(s.Path(state, district))
	return err == nil
}
