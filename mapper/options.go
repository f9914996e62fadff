package mapper

import (
	glog "github.com/goliatone/go-logger/glog"

	"object-mapper/config"
	"object-mapper/internal/plan"
)

// Config holds the settings of a Mapper.
type Config struct {
	// MaxDepth bounds the nesting of mapped objects.
	MaxDepth int
	// Logger receives plan builds, cache resets and handled mapping errors.
	Logger glog.Logger
	// Store holds the mapping rules. A new empty store is used when nil.
	Store *config.Store
}

// DefaultConfig returns the settings of a mapper without options.
func DefaultConfig() Config {
	return Config{
		MaxDepth: plan.DefaultMaxDepth,
		Logger:   glog.Nop(),
	}
}

// Option changes a Config.
type Option func(*Config)

// MaxDepth bounds the nesting of mapped objects.
func MaxDepth(depth int) Option {
	return func(c *Config) {
		c.MaxDepth = depth
	}
}

// WithLogger sets the logger of the mapper and of the store it creates.
func WithLogger(logger glog.Logger) Option {
	return func(c *Config) {
		c.Logger = glog.Ensure(logger)
	}
}

// WithStore maps with the rules of store.
func WithStore(store *config.Store) Option {
	return func(c *Config) {
		c.Store = store
	}
}
