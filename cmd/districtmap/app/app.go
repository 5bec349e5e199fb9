// Package app provides the application context and dependency wiring for
// the districtmap CLI: configuration, logging, and lazily-built domain
// objects (code book, alias table, resolver) shared by all commands.
package app

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/internal/appcontext"
	"github.com/districtmap/districtmap/internal/schema"
	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/aliases"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/resolve"
)

// App carries the CLI's configuration and shared dependencies.
type App struct {
	version string
	commit  string
	date    string

	config *Config
	logger *zerolog.Logger

	mu       sync.Mutex
	book     *codebook.Book
	aliases  *aliases.Table
	resolver *resolve.Resolver
}

var _ appcontext.Interface = (*App)(nil)

// New creates an App with the given build information.
func New(version, commit, date string) (*App, error) {
	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(config)
	return &App{
		version: version,
		commit:  commit,
		date:    date,
		config:  config,
		logger:  &logger,
	}, nil
}

// Version returns the version string.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string { return a.config.Format }

// Tree returns the calendar tree at the configured root.
func (a *App) Tree() *store.Store { return store.New(a.config.TreeRoot) }

// Book loads the reference code book on first use.
func (a *App) Book() (*codebook.Book, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.book != nil {
		return a.book, nil
	}

	f, err := os.Open(a.config.CodeBookPath)
	if err != nil {
		return nil, errors.WrapIO("open", a.config.CodeBookPath, err)
	}
	defer f.Close()

	rows, err := schema.ReadCSV(f, a.config.CodeBookPath)
	if err != nil {
		return nil, err
	}
	book, err := codebook.LoadMaps(a.config.CodeBookPath, rows)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Int("entries", book.Len()).
		Int("dropped", book.Dropped()).
		Str("path", a.config.CodeBookPath).
		Msg("Loaded code book")
	a.book = book
	return book, nil
}

// Aliases loads the alias table on first use. No configured path means an
// empty table, not an error.
func (a *App) Aliases() (*aliases.Table, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.aliases != nil {
		return a.aliases, nil
	}

	if a.config.AliasesPath == "" {
		a.aliases = aliases.Empty()
		return a.aliases, nil
	}
	table, err := aliases.LoadFile(a.config.AliasesPath)
	if err != nil {
		return nil, err
	}
	a.aliases = table
	return table, nil
}

// Resolver builds the resolver over the code book and alias table with
// the configured thresholds, on first use.
func (a *App) Resolver() (*resolve.Resolver, error) {
	book, err := a.Book()
	if err != nil {
		return nil, err
	}
	table, err := a.Aliases()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.resolver != nil {
		return a.resolver, nil
	}

	r, err := resolve.New(book,
		resolve.WithAliases(table),
		resolve.WithThresholds(resolve.Thresholds{
			State:           a.config.StateThreshold,
			District:        a.config.DistrictThreshold,
			BorderlineFloor: a.config.BorderlineFloor,
		}),
		resolve.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	a.resolver = r
	return r, nil
}

// ExitOnError prints an error to stderr and exits with status 1.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
