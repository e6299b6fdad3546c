package schema

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// Directive names read by the compiler.
const (
	ModelDirective      = "model"
	PrimaryKeyDirective = "primaryKey"
	IndexDirective      = "index"
	MapsToDirective     = "mapsTo"
	AuthDirective       = "auth"
)

// DefaultPrimaryKey is the primary key field of a model without @primaryKey.
const DefaultPrimaryKey = "id"

// Index is a key of a model: its primary key or a secondary @index.
type Index struct {
	// Name is empty for the primary key.
	Name string
	// Fields holds the partition field followed by the sort fields.
	Fields []string
}

// PartitionField returns the partition key field.
func (i Index) PartitionField() string { return i.Fields[0] }

// SortFields returns the sort key fields, in order.
func (i Index) SortFields() []string { return i.Fields[1:] }

// Primary reports whether the index is the primary key.
func (i Index) Primary() bool { return i.Name == "" }

// IsModel reports whether d is a model type.
func IsModel(d *ast.Definition) bool {
	return d != nil && d.Kind == ast.Object && HasDirective(d.Directives, ModelDirective)
}

// PrimaryKey returns the primary key of the model d.
func PrimaryKey(d *ast.Definition) Index {
	for _, f := range d.Fields {
		pk := Directive(f.Directives, PrimaryKeyDirective)
		if pk == nil {
			continue
		}
		sort, _, _ := StringsArg(pk, "sortKeyFields")
		return Index{Fields: append([]string{f.Name}, sort...)}
	}
	return Index{Fields: []string{DefaultPrimaryKey}}
}

// Indexes returns the secondary indexes declared on d with @index, in field
// order.
func Indexes(d *ast.Definition) []Index {
	var out []Index
	for _, f := range d.Fields {
		for _, dir := range f.Directives {
			if dir.Name != IndexDirective {
				continue
			}
			name, _ := StringArg(dir, "name")
			sort, _, _ := StringsArg(dir, "sortKeyFields")
			out = append(out, Index{Name: name, Fields: append([]string{f.Name}, sort...)})
		}
	}
	return out
}

// IndexNamed returns the key named name on d. An empty name selects the
// primary key.
func IndexNamed(d *ast.Definition, name string) (Index, bool) {
	if name == "" {
		return PrimaryKey(d), true
	}
	for _, idx := range Indexes(d) {
		if idx.Name == name {
			return idx, true
		}
	}
	return Index{}, false
}

// MappedName returns the name the model had before it was renamed with
// @mapsTo, or its own name.
func MappedName(d *ast.Definition) string {
	if name, ok := StringArg(Directive(d.Directives, MapsToDirective), "name"); ok && name != "" {
		return name
	}
	return d.Name
}

// IsRenamed reports whether d carries @mapsTo.
func IsRenamed(d *ast.Definition) bool {
	return MappedName(d) != d.Name
}

// AuthRules returns the rule values of the @auth directive on d.
func AuthRules(d *ast.Definition) []*ast.Value {
	v := Arg(Directive(d.Directives, AuthDirective), "rules")
	if v == nil {
		return nil
	}
	if v.Kind != ast.ListValue {
		return []*ast.Value{v}
	}
	out := make([]*ast.Value, 0, len(v.Children))
	for _, ch := range v.Children {
		out = append(out, ch.Value)
	}
	return out
}

// FieldType returns the base type name of the named field of d, or "".
func FieldType(d *ast.Definition, field string) string {
	f := d.Fields.ForName(field)
	if f == nil {
		return ""
	}
	return BaseType(f.Type)
}
