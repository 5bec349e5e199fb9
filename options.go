package districtmap

import (
	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/pkg/aliases"
	"github.com/districtmap/districtmap/pkg/codebook"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/logging"
	"github.com/districtmap/districtmap/pkg/resolve"
)

// config holds the assembled construction settings.
type config struct {
	book          *codebook.Book
	bookPath      string
	aliases       *aliases.Table
	aliasesPath   string
	treeRoot      string
	folderAliases map[string]string
	thresholds    resolve.Thresholds
	logger        *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		thresholds: resolve.DefaultThresholds(),
		logger:     logging.Default(),
	}
}

// Option is a function that configures a Districtmap instance.
type Option func(*config) error

// options applies the given options to the config.
func (dm *districtmap) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(dm.config); err != nil {
			return err
		}
	}
	return nil
}

// WithCodeBook uses an already loaded code book.
func WithCodeBook(book *codebook.Book) Option {
	return func(c *config) error {
		if book == nil {
			return &errors.ValidationError{Field: "book", Message: "cannot be nil"}
		}
		c.book = book
		return nil
	}
}

// WithCodeBookFile loads the code book from a CSV file at construction.
func WithCodeBookFile(path string) Option {
	return func(c *config) error {
		if path == "" {
			return &errors.ValidationError{Field: "path", Message: "cannot be empty"}
		}
		c.bookPath = path
		return nil
	}
}

// WithAliases uses an already loaded alias table.
func WithAliases(table *aliases.Table) Option {
	return func(c *config) error {
		if table == nil {
			return &errors.ValidationError{Field: "aliases", Message: "cannot be nil"}
		}
		c.aliases = table
		return nil
	}
}

// WithAliasesFile loads the alias table from a YAML file at construction.
func WithAliasesFile(path string) Option {
	return func(c *config) error {
		if path == "" {
			return &errors.ValidationError{Field: "path", Message: "cannot be empty"}
		}
		c.aliasesPath = path
		return nil
	}
}

// WithTreeRoot points the instance at a calendar tree. Required for the
// checker, renamer, and coder; the resolver works without one.
func WithTreeRoot(root string) Option {
	return func(c *config) error {
		if root == "" {
			return &errors.ValidationError{Field: "root", Message: "cannot be empty"}
		}
		c.treeRoot = root
		return nil
	}
}

// WithFolderAliases maps known state-name variants to tree folder names,
// for trees whose folders predate renaming.
func WithFolderAliases(m map[string]string) Option {
	return func(c *config) error {
		c.folderAliases = m
		return nil
	}
}

// WithThresholds overrides the fuzzy acceptance tiers.
func WithThresholds(t resolve.Thresholds) Option {
	return func(c *config) error {
		c.thresholds = t
		return nil
	}
}

// WithLogger sets the logger shared by everything the instance builds.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return &errors.ValidationError{Field: "logger", Message: "cannot be nil"}
		}
		c.logger = logger
		return nil
	}
}
