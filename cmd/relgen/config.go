package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect/dynamodb"
)

// DefaultConfigFile is read when --config is not given and the file exists.
const DefaultConfigFile = "relgen.yml"

// fileConfig is the relgen.yml layout.
type fileConfig struct {
	Schema       []string            `yaml:"schema"`
	Target       string              `yaml:"target"`
	Package      string              `yaml:"package"`
	Store        string              `yaml:"store"`
	Models       map[string]string   `yaml:"models"`
	Features     []string            `yaml:"features"`
	TableSuffix  string              `yaml:"table_suffix"`
	SQLFunction  string              `yaml:"sql_function"`
	DefaultLimit int                 `yaml:"default_limit"`
	Params       *dynamodb.Throughput `yaml:"params"`
}

// readConfig reads path. A missing default file yields an empty config.
func readConfig(path string, explicit bool) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return &fileConfig{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// options maps the file onto compiler options.
func (c *fileConfig) options(logger *slog.Logger) []gen.Option {
	opts := []gen.Option{gen.WithLogger(logger)}
	if c.Store != "" {
		opts = append(opts, gen.WithStore(c.Store))
	}
	for model, store := range c.Models {
		opts = append(opts, gen.WithModelStore(model, store))
	}
	if len(c.Features) > 0 {
		opts = append(opts, gen.WithFeatureNames(c.Features...))
	}
	if c.Target != "" {
		opts = append(opts, gen.WithTarget(c.Target))
	}
	if c.Package != "" {
		opts = append(opts, gen.WithPackage(c.Package))
	}
	if c.TableSuffix != "" {
		opts = append(opts, gen.WithTableSuffix(c.TableSuffix))
	}
	if c.SQLFunction != "" {
		opts = append(opts, gen.WithSQLFunction(c.SQLFunction))
	}
	if c.DefaultLimit != 0 {
		opts = append(opts, gen.WithDefaultLimit(c.DefaultLimit))
	}
	if c.Params != nil {
		opts = append(opts, gen.WithParams(*c.Params))
	}
	return opts
}
