// Package appcontext defines the application context interface commands
// depend on. Commands accept this interface rather than the concrete App
// type, so tests can hand them a mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/aliases"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/resolve"
)

// Interface is the dependency surface the command packages use.
type Interface interface {
	// Book returns the loaded reference code book, loading it on first
	// use from the configured path.
	Book() (*codebook.Book, error)

	// Aliases returns the alias table, empty when no file is configured.
	Aliases() (*aliases.Table, error)

	// Resolver returns a resolver over the code book and alias table
	// with the configured thresholds.
	Resolver() (*resolve.Resolver, error)

	// Tree returns the calendar tree at the configured root.
	Tree() *store.Store

	// Logger returns the configured logger.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format.
	OutputFormat() string

	// Version returns the application version string.
	Version() string
}
