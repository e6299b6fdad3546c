package gen

import (
	"fmt"

	"github.com/syssam/relgen/dialect"
)

// A SchemaMode defines what a storage driver supports for relations.
type SchemaMode uint

const (
	// FieldsMode defines support for relations addressed by local fields.
	FieldsMode SchemaMode = 1 << iota

	// ReferencesMode defines support for relations addressed by fields of
	// the related type.
	ReferencesMode

	// ImplicitMode defines support for relations without fields or
	// references, for which connection fields are synthesized.
	ImplicitMode

	// Indexes defines secondary index synthesis.
	Indexes

	// CompositeKeys defines condensed multi-attribute sort keys.
	CompositeKeys
)

// Support reports whether m support the given mode.
func (m SchemaMode) Support(mode SchemaMode) bool { return m&mode != 0 }

// Storage driver type for codegen.
type Storage struct {
	Name       string        // storage name.
	Class      dialect.Class // addressing class.
	DataSource string        // data source type of its resolvers.
	SchemaMode SchemaMode    // schema mode support.
}

// drivers holds the known storage drivers.
var drivers = []*Storage{
	{
		Name:       dialect.DynamoDB,
		Class:      dialect.KeyValue,
		DataSource: DataSourceDynamoDB,
		SchemaMode: FieldsMode | ReferencesMode | ImplicitMode | Indexes | CompositeKeys,
	},
	{
		Name:       dialect.MySQL,
		Class:      dialect.Relational,
		DataSource: DataSourceFunction,
		SchemaMode: ReferencesMode,
	},
	{
		Name:       dialect.Postgres,
		Class:      dialect.Relational,
		DataSource: DataSourceFunction,
		SchemaMode: ReferencesMode,
	},
}

// NewStorage returns the storage driver type from the given string.
// It fails if the provided string is not a valid option.
func NewStorage(s string) (*Storage, error) {
	for _, d := range drivers {
		if s == d.Name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("relgen/gen: invalid storage driver %q", s)
}

// String implements the fmt.Stringer interface.
func (s *Storage) String() string { return s.Name }
