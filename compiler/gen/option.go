package gen

import (
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/dialect/dynamodb"
)

// Option configures compilation.
type Option func(*Config) error

// WithStore sets the default backing store of models.
// Supported stores: "dynamodb", "mysql", "postgres".
func WithStore(name string) Option {
	return func(c *Config) error {
		if _, err := NewStorage(name); err != nil {
			return NewConfigError("Store", name, "unsupported store; use dynamodb, mysql, or postgres")
		}
		c.Store = name
		return nil
	}
}

// WithModelStore binds a single model to a backing store, overriding the
// default store.
func WithModelStore(typeName, store string) Option {
	return func(c *Config) error {
		if typeName == "" {
			return NewConfigError("ModelStore", nil, "type name cannot be empty")
		}
		if _, err := NewStorage(store); err != nil {
			return NewConfigError("ModelStore", store, "unsupported store; use dynamodb, mysql, or postgres")
		}
		if c.ModelStores == nil {
			c.ModelStores = make(map[string]string)
		}
		c.ModelStores[typeName] = store
		return nil
	}
}

// WithFeatures enables specific features.
func WithFeatures(features ...Feature) Option {
	return func(c *Config) error {
		c.Features = append(c.Features, features...)
		return nil
	}
}

// WithFeatureNames enables features by name.
func WithFeatureNames(names ...string) Option {
	return func(c *Config) error {
		for _, name := range names {
			f, ok := FeatureByName(name)
			if !ok {
				return NewConfigError("Features", name, "unknown feature")
			}
			c.Features = append(c.Features, f)
		}
		return nil
	}
}

// WithParams sets the throughput parameters bound into generated index
// definitions.
func WithParams(p dynamodb.Throughput) Option {
	return func(c *Config) error {
		switch p.BillingMode {
		case "", types.BillingModePayPerRequest:
			p.BillingMode = types.BillingModePayPerRequest
		case types.BillingModeProvisioned:
			if p.Read <= 0 || p.Write <= 0 {
				return NewConfigError("Params", p, "provisioned billing requires positive read and write capacity")
			}
		default:
			return NewConfigError("Params", p.BillingMode, "unsupported billing mode")
		}
		c.Params = p
		return nil
	}
}

// WithTableSuffix sets the suffix appended to model names to form table
// names, e.g. "-dev".
func WithTableSuffix(suffix string) Option {
	return func(c *Config) error {
		c.TableSuffix = suffix
		return nil
	}
}

// WithSQLFunction sets the name of the function that executes SQL relation
// plans.
func WithSQLFunction(name string) Option {
	return func(c *Config) error {
		if name == "" {
			return NewConfigError("SQLFunction", nil, "function name cannot be empty")
		}
		c.SQLFunction = name
		return nil
	}
}

// WithLogger sets the logger receiving compilation records.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return NewConfigError("Logger", nil, "logger cannot be nil")
		}
		c.Logger = l
		return nil
	}
}

// WithTarget sets the output directory of generated artifacts.
func WithTarget(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("Target", nil, "target directory cannot be empty")
		}
		c.Target = dir
		return nil
	}
}

// WithDefaultLimit sets the page size injected into @hasMany and
// @manyToMany relations without a limit.
func WithDefaultLimit(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return NewConfigError("DefaultLimit", n, "limit must be positive")
		}
		c.DefaultLimit = n
		return nil
	}
}

// WithPackage sets the package name of the generated Go bindings.
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with defaults and the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{
		Store:        dialect.DynamoDB,
		Params:       dynamodb.Throughput{BillingMode: types.BillingModePayPerRequest},
		SQLFunction:  DefaultSQLFunction,
		DefaultLimit: dialect.DefaultLimit,
	}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
