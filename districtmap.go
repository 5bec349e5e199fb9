// Package districtmap reconciles noisy Indian state and district names
// against the census code book. It is the library entry point: construct
// an instance with New and the functional options, then pull the resolver
// and the tree-level tools (checker, renamer, coder) from it.
package districtmap

import (
	"fmt"
	"os"

	"github.com/districtmap/districtmap/internal/schema"
	"github.com/districtmap/districtmap/internal/store"
	"github.com/districtmap/districtmap/pkg/aliases"
	"github.com/districtmap/districtmap/pkg/check"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/coding"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/rename"
	"github.com/districtmap/districtmap/pkg/resolve"
)

// Districtmap bundles a code book, alias table, and calendar tree behind
// one handle so callers wire the pipeline once.
type Districtmap interface {
	// Book returns the loaded code book.
	Book() *codebook.Book

	// Aliases returns the curated alias table.
	Aliases() *aliases.Table

	// Resolver returns the shared resolver.
	Resolver() *resolve.Resolver

	// Resolve classifies one raw (state, district) pair.
	Resolve(rawState, rawDistrict string) resolve.Record

	// Tree returns the calendar tree, or nil when no root was configured.
	Tree() *store.Store

	// Checker builds a checker over the configured tree.
	Checker() (*check.Checker, error)

	// Renamer builds a renamer over the configured tree.
	Renamer() (*rename.Renamer, error)

	// Coder builds a coder with a fresh date cache over the configured tree.
	Coder() (*coding.Coder, error)
}

// districtmap is the internal implementation of the Districtmap interface.
type districtmap struct {
	config   *config
	book     *codebook.Book
	aliases  *aliases.Table
	resolver *resolve.Resolver
	tree     *store.Store
}

// New creates a Districtmap instance with the given options. A code book
// is required, either loaded (WithCodeBook) or by path (WithCodeBookFile);
// everything else has a usable default.
func New(opts ...Option) (Districtmap, error) {
	dm := &districtmap{config: defaultConfig()}

	if err := dm.options(opts...); err != nil {
		return nil, fmt.Errorf("applying options: %w", err)
	}

	book, err := dm.loadBook()
	if err != nil {
		return nil, err
	}
	table, err := dm.loadAliases()
	if err != nil {
		return nil, err
	}

	resolver, err := resolve.New(book,
		resolve.WithAliases(table),
		resolve.WithThresholds(dm.config.thresholds),
		resolve.WithLogger(dm.config.logger),
	)
	if err != nil {
		return nil, err
	}

	dm.book = book
	dm.aliases = table
	dm.resolver = resolver
	if dm.config.treeRoot != "" {
		dm.tree = store.New(dm.config.treeRoot)
	}
	return dm, nil
}

func (dm *districtmap) loadBook() (*codebook.Book, error) {
	if dm.config.book != nil {
		return dm.config.book, nil
	}
	if dm.config.bookPath == "" {
		return nil, &errors.ValidationError{
			Field:   "codebook",
			Message: "required; use WithCodeBook or WithCodeBookFile",
		}
	}

	f, err := os.Open(dm.config.bookPath)
	if err != nil {
		return nil, errors.WrapIO("open", dm.config.bookPath, err)
	}
	defer f.Close()

	rows, err := schema.ReadCSV(f, dm.config.bookPath)
	if err != nil {
		return nil, err
	}
	return codebook.LoadMaps(dm.config.bookPath, rows)
}

func (dm *districtmap) loadAliases() (*aliases.Table, error) {
	if dm.config.aliases != nil {
		return dm.config.aliases, nil
	}
	if dm.config.aliasesPath == "" {
		return aliases.Empty(), nil
	}
	return aliases.LoadFile(dm.config.aliasesPath)
}

func (dm *districtmap) Book() *codebook.Book { return dm.book }

func (dm *districtmap) Aliases() *aliases.Table { return dm.aliases }

func (dm *districtmap) Resolver() *resolve.Resolver { return dm.resolver }

func (dm *districtmap) Resolve(rawState, rawDistrict string) resolve.Record {
	return dm.resolver.Resolve(rawState, rawDistrict)
}

func (dm *districtmap) Tree() *store.Store { return dm.tree }

func (dm *districtmap) Checker() (*check.Checker, error) {
	if dm.tree == nil {
		return nil, treeRequired("checker")
	}
	return check.New(dm.tree,
		check.WithFolderAliases(dm.config.folderAliases),
		check.WithThresholds(dm.config.thresholds),
		check.WithLogger(dm.config.logger),
	)
}

func (dm *districtmap) Renamer() (*rename.Renamer, error) {
	if dm.tree == nil {
		return nil, treeRequired("renamer")
	}
	return rename.New(dm.tree, dm.resolver, dm.config.logger)
}

func (dm *districtmap) Coder() (*coding.Coder, error) {
	if dm.tree == nil {
		return nil, treeRequired("coder")
	}
	cache := store.NewDateCache(schema.DefaultMapping())
	return coding.New(dm.tree, cache, dm.config.logger)
}

func treeRequired(tool string) error {
	return &errors.ValidationError{
		Field:   "tree_root",
		Message: fmt.Sprintf("required for %s; use WithTreeRoot", tool),
	}
}
