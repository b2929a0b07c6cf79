package registry

import (
	"fmt"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-hclog"
)

// Options configures a Registry.
type Options struct {
	logger   hclog.Logger
	now      func() time.Time
	excludes []string
}

// Option mutates Options and reports invalid values.
type Option func(*Options) error

func defaultOptions() Options {
	return Options{
		logger:   hclog.NewNullLogger(),
		now:      time.Now,
		excludes: append([]string(nil), DefaultExcludes...),
	}
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) (Options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}
	return o, nil
}

// WithLogger sets the logger. A nil logger is rejected.
func WithLogger(logger hclog.Logger) Option {
	return func(o *Options) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithClock sets the time source used for InstalledAt.
func WithClock(now func() time.Time) Option {
	return func(o *Options) error {
		if now == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		o.now = now
		return nil
	}
}

// WithExcludes adds doublestar patterns for paths skipped while installing.
// Patterns are matched against slash-separated paths relative to the talon
// directory and are added to DefaultExcludes.
func WithExcludes(patterns []string) Option {
	return func(o *Options) error {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return fmt.Errorf("invalid exclude pattern %q", p)
			}
			o.excludes = append(o.excludes, p)
		}
		return nil
	}
}
