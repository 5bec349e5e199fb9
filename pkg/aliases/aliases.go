// Package aliases holds the manually curated overrides for known-bad names:
// spellings the fuzzy matcher gets wrong, plus a skip list of entries that
// are intentionally excluded from resolution altogether. Aliases are data,
// not logic, so tests and deployments can swap or extend them freely.
package aliases

import (
	"io"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/names"
)

// districtKey scopes a district-level alias or skip entry to one state.
type districtKey struct {
	StateCode string
	Name      string // loose-canonical raw name
}

// Table is the loaded alias configuration. Lookups are exact on the
// loose-canonical form only; there is no fuzzy fallback inside the
// table, since aliases exist precisely to hard-code exceptions that
// fuzzy matching gets wrong. A Table is immutable once built.
type Table struct {
	states    map[string]string      // loose state name -> state code
	districts map[districtKey]string // (state code, loose district name) -> district code
	skips     map[districtKey]bool
}

// File is the on-disk YAML shape of an alias table.
type File struct {
	// States maps a raw state spelling to its census code.
	States map[string]string `yaml:"states"`

	// Districts maps raw district spellings to district codes, grouped by
	// state code.
	Districts map[string]map[string]string `yaml:"districts"`

	// Skip lists (state code, raw district name) pairs excluded from all
	// further processing.
	Skip map[string][]string `yaml:"skip"`
}

// New builds a Table from an alias file structure. Keys are canonicalized
// on the way in, so callers may write natural spellings ("A&N Island") in
// configuration.
func New(f File) *Table {
	t := &Table{
		states:    make(map[string]string),
		districts: make(map[districtKey]string),
		skips:     make(map[districtKey]bool),
	}
	for raw, code := range f.States {
		if names.IsBlank(raw) {
			continue
		}
		t.states[names.Loose(raw)] = code
	}
	for stateCode, m := range f.Districts {
		for raw, code := range m {
			if names.IsBlank(raw) {
				continue
			}
			t.districts[districtKey{stateCode, names.Loose(raw)}] = code
		}
	}
	for stateCode, rawNames := range f.Skip {
		for _, raw := range rawNames {
			if names.IsBlank(raw) {
				continue
			}
			t.skips[districtKey{stateCode, names.Loose(raw)}] = true
		}
	}
	return t
}

// Empty returns a table with no entries.
func Empty() *Table {
	return New(File{})
}

// LoadFile reads an alias table from a YAML file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses an alias table from a reader. The source label only feeds
// error messages.
func Read(r io.Reader, source string) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.WrapIO("read", source, err)
	}
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}
	return New(file), nil
}

// LookupState returns the state code aliased to the given raw name.
func (t *Table) LookupState(rawName string) (string, bool) {
	code, ok := t.states[names.Loose(rawName)]
	return code, ok
}

// LookupDistrict returns the district code aliased to the given raw name
// within one state.
func (t *Table) LookupDistrict(stateCode, rawName string) (string, bool) {
	code, ok := t.districts[districtKey{stateCode, names.Loose(rawName)}]
	return code, ok
}

// Skipped reports whether a (state code, raw district name) pair is
// intentionally excluded from resolution. Skip is distinct from unresolved:
// a skipped entry is neither attempted nor reported as an error.
func (t *Table) Skipped(stateCode, rawName string) bool {
	return t.skips[districtKey{stateCode, names.Loose(rawName)}]
}

// Len returns the total number of alias and skip entries.
func (t *Table) Len() int {
	return len(t.states) + len(t.districts) + len(t.skips)
}
