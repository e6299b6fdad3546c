package gen

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/dialect/dynamodb"
)

// DefaultSQLFunction is the SQL function name used when none is configured.
const DefaultSQLFunction = "relgen-sql"

// Config holds the global compilation configuration.
type Config struct {
	// Store is the default backing store of models.
	Store string
	// ModelStores overrides the store per model name.
	ModelStores map[string]string
	// Features enabled on top of the default ones.
	Features []Feature
	// Params are the table throughput parameters bound into index
	// definitions.
	Params dynamodb.Throughput
	// TableSuffix is appended to model names to form table names.
	TableSuffix string
	// SQLFunction executes plans of relational models.
	SQLFunction string
	// Logger receives compilation records. Nil means slog.Default().
	Logger *slog.Logger
	// Target is the artifact output directory.
	Target string
	// DefaultLimit is the page size of to-many relations without a limit.
	DefaultLimit int
	// Package is the package name of the generated Go bindings. Defaults to
	// the base name of Target.
	Package string
}

// FeatureEnabled reports if the given feature name is enabled.
func (c *Config) FeatureEnabled(name string) (bool, error) {
	f, ok := FeatureByName(name)
	if !ok {
		return false, fmt.Errorf("unexpected feature name %q", name)
	}
	for i := range c.Features {
		if c.Features[i].Name == name {
			return true, nil
		}
	}
	return f.Default, nil
}

// Enabled is FeatureEnabled for a known feature.
func (c *Config) Enabled(f Feature) bool {
	ok, _ := c.FeatureEnabled(f.Name)
	return ok
}

// StoreOf returns the storage driver of the named model.
func (c *Config) StoreOf(typeName string) (*Storage, error) {
	name := c.Store
	if s, ok := c.ModelStores[typeName]; ok {
		name = s
	}
	if name == "" {
		name = dialect.DynamoDB
	}
	return NewStorage(name)
}

// Limit returns the default page size.
func (c *Config) Limit() int {
	if c.DefaultLimit > 0 {
		return c.DefaultLimit
	}
	return dialect.DefaultLimit
}

// Log returns the configured logger.
func (c *Config) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// TableName returns the table name of a model stored under name.
func (c *Config) TableName(name string) string {
	return name + c.TableSuffix
}

// Function returns the SQL function name.
func (c *Config) Function() string {
	if c.SQLFunction != "" {
		return c.SQLFunction
	}
	return DefaultSQLFunction
}

// cleanup removes artifacts of disabled features from Target.
func (c *Config) cleanup() error {
	if c.Target == "" {
		return nil
	}
	for _, f := range AllFeatures {
		if f.cleanup == nil || c.Enabled(f) {
			continue
		}
		if err := f.cleanup(c); err != nil {
			return fmt.Errorf("cleanup %q feature assets: %w", f.Name, err)
		}
	}
	return nil
}

// EnabledFeatures returns the names of the enabled features, sorted.
func (c *Config) EnabledFeatures() []string {
	var names []string
	for _, f := range AllFeatures {
		if c.Enabled(f) {
			names = append(names, f.Name)
		}
	}
	slices.Sort(names)
	return names
}
