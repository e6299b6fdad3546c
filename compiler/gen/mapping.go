package gen

import (
	"fmt"
	"slices"
)

// FieldMapping renames one attribute between the schema and the store.
type FieldMapping struct {
	Current  string `yaml:"current" json:"current"`
	Original string `yaml:"original" json:"original"`
}

// OperationRef names a top-level operation whose resolver must apply the
// mappings of a model.
type OperationRef struct {
	TypeName  string `yaml:"type" json:"typeName"`
	FieldName string `yaml:"field" json:"fieldName"`
	IsList    bool   `yaml:"list,omitempty" json:"isList,omitempty"`
}

// ModelMappings are the field mappings of one model.
type ModelMappings struct {
	TypeName   string         `yaml:"model" json:"model"`
	Fields     []FieldMapping `yaml:"fields" json:"fields"`
	Operations []OperationRef `yaml:"operations,omitempty" json:"operations,omitempty"`
}

// FieldMappings collects the attribute renames of renamed models. It is
// sealed once the prepare phase is over.
type FieldMappings struct {
	models map[string]*ModelMappings
	order  []string
	sealed bool
}

// NewFieldMappings returns an empty registry.
func NewFieldMappings() *FieldMappings {
	return &FieldMappings{models: make(map[string]*ModelMappings)}
}

func (m *FieldMappings) model(typeName string) (*ModelMappings, error) {
	if m.sealed {
		return nil, fmt.Errorf("relgen/gen: field mappings of %q registered after prepare", typeName)
	}
	mm, ok := m.models[typeName]
	if !ok {
		mm = &ModelMappings{TypeName: typeName}
		m.models[typeName] = mm
		m.order = append(m.order, typeName)
	}
	return mm, nil
}

// Add maps the current attribute name of typeName to its original one.
// Registering the same pair twice is a no-op; mapping a name to two
// different originals is an error.
func (m *FieldMappings) Add(typeName, current, original string) error {
	mm, err := m.model(typeName)
	if err != nil {
		return err
	}
	for _, f := range mm.Fields {
		if f.Current != current {
			continue
		}
		if f.Original != original {
			return fmt.Errorf("relgen/gen: field %s.%s mapped to both %q and %q", typeName, current, f.Original, original)
		}
		return nil
	}
	mm.Fields = append(mm.Fields, FieldMapping{Current: current, Original: original})
	return nil
}

// AddOperations registers the operations that read or write typeName.
func (m *FieldMappings) AddOperations(typeName string, refs ...OperationRef) error {
	mm, err := m.model(typeName)
	if err != nil {
		return err
	}
	for _, r := range refs {
		if !slices.Contains(mm.Operations, r) {
			mm.Operations = append(mm.Operations, r)
		}
	}
	return nil
}

// Seal closes the registry for writes.
func (m *FieldMappings) Seal() { m.sealed = true }

// Sealed reports whether the registry is closed.
func (m *FieldMappings) Sealed() bool { return m.sealed }

// Lookup returns the mappings of typeName.
func (m *FieldMappings) Lookup(typeName string) (*ModelMappings, bool) {
	mm, ok := m.models[typeName]
	return mm, ok
}

// Original returns the stored name of a field, or the field itself if it is
// not renamed.
func (m *FieldMappings) Original(typeName, field string) string {
	if mm, ok := m.models[typeName]; ok {
		for _, f := range mm.Fields {
			if f.Current == field {
				return f.Original
			}
		}
	}
	return field
}

// Types returns the mapped model names in registration order.
func (m *FieldMappings) Types() []string {
	return slices.Clone(m.order)
}

// Len returns the number of mapped models.
func (m *FieldMappings) Len() int { return len(m.order) }

// MarshalYAML implements yaml.Marshaler.
func (m *FieldMappings) MarshalYAML() (any, error) {
	models := make([]*ModelMappings, 0, len(m.order))
	for _, name := range m.order {
		models = append(models, m.models[name])
	}
	return models, nil
}
