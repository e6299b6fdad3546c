// Package gqlgen keeps a gqlgen.yml in step with relgen output: the
// generated schema is added to the schema list and every relation field is
// marked as resolver-backed so gqlgen emits a resolver stub that runs the
// field's plan.
package gqlgen

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/syssam/relgen/compiler/gen"
)

// Config is the subset of gqlgen.yml relgen edits. Unknown keys are kept.
type Config struct {
	SchemaFilename StringList              `yaml:"schema,omitempty"`
	Models         map[string]TypeMapEntry `yaml:"models,omitempty"`

	// rest holds the keys Config does not model.
	rest map[string]yaml.Node
}

// TypeMapEntry is the configuration for a single GraphQL type.
type TypeMapEntry struct {
	Model  StringList              `yaml:"model,omitempty"`
	Fields map[string]TypeMapField `yaml:"fields,omitempty"`
}

// TypeMapField is the configuration for a single field.
type TypeMapField struct {
	Resolver  bool   `yaml:"resolver,omitempty"`
	FieldName string `yaml:"fieldName,omitempty"`
}

// StringList is a YAML type that can be either a string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler for StringList.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*s = []string{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("expected string or list, got %v", node.Kind)
	}
}

// MarshalYAML implements yaml.Marshaler for StringList.
func (s StringList) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	return []string(s), nil
}

// Load reads a gqlgen.yml. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Models: make(map[string]TypeMapEntry)}, nil
		}
		return nil, fmt.Errorf("read gqlgen config: %w", err)
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse gqlgen config: %w", err)
	}
	cfg := &Config{rest: raw}
	if n, ok := raw["schema"]; ok {
		if err := n.Decode(&cfg.SchemaFilename); err != nil {
			return nil, fmt.Errorf("parse gqlgen config: schema: %w", err)
		}
		delete(raw, "schema")
	}
	if n, ok := raw["models"]; ok {
		if err := n.Decode(&cfg.Models); err != nil {
			return nil, fmt.Errorf("parse gqlgen config: models: %w", err)
		}
		delete(raw, "models")
	}
	if cfg.Models == nil {
		cfg.Models = make(map[string]TypeMapEntry)
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	doc := make(map[string]any, len(cfg.rest)+2)
	for k, v := range cfg.rest {
		doc[k] = &v
	}
	if len(cfg.SchemaFilename) > 0 {
		doc["schema"] = cfg.SchemaFilename
	}
	if len(cfg.Models) > 0 {
		doc["models"] = cfg.Models
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal gqlgen config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// AddSchemaPath adds a schema path if not already present.
func (c *Config) AddSchemaPath(path string) {
	if !slices.Contains(c.SchemaFilename, path) {
		c.SchemaFilename = append(c.SchemaFilename, path)
	}
}

// SetResolver marks typeName.field as resolver-backed.
func (c *Config) SetResolver(typeName, field string) {
	entry := c.Models[typeName]
	if entry.Fields == nil {
		entry.Fields = make(map[string]TypeMapField)
	}
	f := entry.Fields[field]
	f.Resolver = true
	entry.Fields[field] = f
	c.Models[typeName] = entry
}

// Bind adds the transformed schema at schemaPath and a resolver entry for
// every relation resolver of out.
func (c *Config) Bind(out *gen.Output, schemaPath string) {
	if schemaPath != "" {
		c.AddSchemaPath(schemaPath)
	}
	for _, r := range out.Resolvers {
		c.SetResolver(r.TypeName, r.FieldName)
	}
}

// Update loads the gqlgen.yml at path, binds out and saves it.
func Update(path string, out *gen.Output) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	schemaPath := filepath.Join(out.Config.Target, gen.SchemaFile)
	if rel, err := filepath.Rel(filepath.Dir(path), schemaPath); err == nil {
		schemaPath = filepath.ToSlash(rel)
	}
	cfg.Bind(out, schemaPath)
	return Save(path, cfg)
}
