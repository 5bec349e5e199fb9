package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/aliases"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/logging"
	"github.com/districtmap/districtmap/pkg/resolve"
)

// Mock is a test implementation of Interface with settable fields.
type Mock struct {
	MockBook     *codebook.Book
	MockAliases  *aliases.Table
	MockResolver *resolve.Resolver
	MockTree     *store.Store
	MockLogger   *zerolog.Logger
	MockFormat   string
	MockVersion  string

	BookErr     error
	ResolverErr error
}

var _ Interface = (*Mock)(nil)

// Book implements Interface.
func (m *Mock) Book() (*codebook.Book, error) { return m.MockBook, m.BookErr }

// Aliases implements Interface.
func (m *Mock) Aliases() (*aliases.Table, error) {
	if m.MockAliases == nil {
		return aliases.Empty(), nil
	}
	return m.MockAliases, nil
}

// Resolver implements Interface.
func (m *Mock) Resolver() (*resolve.Resolver, error) { return m.MockResolver, m.ResolverErr }

// Tree implements Interface.
func (m *Mock) Tree() *store.Store { return m.MockTree }

// Logger implements Interface.
func (m *Mock) Logger() *zerolog.Logger {
	if m.MockLogger == nil {
		return logging.Default()
	}
	return m.MockLogger
}

// OutputFormat implements Interface.
func (m *Mock) OutputFormat() string { return m.MockFormat }

// Version implements Interface.
func (m *Mock) Version() string {
	if m.MockVersion == "" {
		return "test"
	}
	return m.MockVersion
}
