package resolve

import (
	"github.com/rs/zerolog"

	"github.com/districtmap/districtmap/pkg/aliases"
	"github.com/districtmap/districtmap/pkg/errors"
	"github.com/districtmap/districtmap/pkg/fuzzy"
	"github.com/districtmap/districtmap/pkg/logging"
)

// Thresholds carries the two acceptance tiers plus the borderline
// reporting floor. All three are configuration, not hard requirements.
type Thresholds struct {
	State           float64
	District        float64
	BorderlineFloor float64
}

// DefaultThresholds returns the standard acceptance tiers.
func DefaultThresholds() Thresholds {
	return Thresholds{
		State:           fuzzy.DefaultStateThreshold,
		District:        fuzzy.DefaultDistrictThreshold,
		BorderlineFloor: fuzzy.DefaultBorderlineFloor,
	}
}

// options holds resolver configuration.
type options struct {
	aliases    *aliases.Table
	thresholds Thresholds
	logger     *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		aliases:    aliases.Empty(),
		thresholds: DefaultThresholds(),
		logger:     logging.Default(),
	}
}

// Option is a function that configures a Resolver.
type Option func(*options) error

func newOptions(opts ...Option) (*options, error) {
	options := defaultOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// WithAliases sets the curated alias table.
func WithAliases(table *aliases.Table) Option {
	return func(o *options) error {
		if table == nil {
			return &errors.ValidationError{
				Field:   "aliases",
				Message: "cannot be nil",
			}
		}
		o.aliases = table
		return nil
	}
}

// WithThresholds sets the fuzzy acceptance tiers.
func WithThresholds(t Thresholds) Option {
	return func(o *options) error {
		for _, v := range []struct {
			name  string
			value float64
		}{
			{"state", t.State},
			{"district", t.District},
			{"borderline_floor", t.BorderlineFloor},
		} {
			if v.value < 0 || v.value > 1 {
				return &errors.ValidationError{
					Field:   "thresholds." + v.name,
					Value:   v.value,
					Message: "must be in [0,1]",
				}
			}
		}
		// A floor above an acceptance threshold leaves no borderline
		// band at that level, hiding every near miss from review.
		if t.BorderlineFloor > t.State || t.BorderlineFloor > t.District {
			return &errors.ValidationError{
				Field:   "thresholds.borderline_floor",
				Value:   t.BorderlineFloor,
				Message: "must not exceed the state or district threshold",
			}
		}
		o.thresholds = t
		return nil
	}
}

// WithLogger sets the logger used for advisory events.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return &errors.ValidationError{
				Field:   "logger",
				Message: "cannot be nil",
			}
		}
		o.logger = logger
		return nil
	}
}
