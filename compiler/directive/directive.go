// Package directive parses the relationship directives @hasOne, @hasMany,
// @belongsTo and @manyToMany into typed configurations.
package directive

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/schema"
)

// Kind is the kind of a relation.
type Kind int

// Relation kinds.
const (
	HasOne Kind = iota + 1
	HasMany
	BelongsTo
	ManyToMany
)

// Kinds lists the relation kinds in directive order.
var Kinds = []Kind{HasOne, HasMany, BelongsTo, ManyToMany}

// String returns the directive name of the kind.
func (k Kind) String() string {
	switch k {
	case HasOne:
		return "hasOne"
	case HasMany:
		return "hasMany"
	case BelongsTo:
		return "belongsTo"
	case ManyToMany:
		return "manyToMany"
	default:
		return "unknown"
	}
}

// ToMany reports whether the relation resolves to a list.
func (k Kind) ToMany() bool { return k == HasMany || k == ManyToMany }

// KindOf returns the kind of the named directive.
func KindOf(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Mode is how a relation addresses the related records.
type Mode int

const (
	// Implicit relations name neither fields nor references; their
	// connection fields are synthesized.
	Implicit Mode = iota
	// Fields relations name local fields holding the related key.
	Fields
	// References relations name fields of the related type holding the
	// owning key.
	References
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Fields:
		return "fields"
	case References:
		return "references"
	default:
		return "implicit"
	}
}

// Directive argument names.
const (
	ArgFields       = "fields"
	ArgReferences   = "references"
	ArgIndexName    = "indexName"
	ArgLimit        = "limit"
	ArgRelationName = "relationName"
)

// Config is one relation occurrence.
type Config struct {
	Kind Kind
	// Mode is the addressing mode. For implicit relations it is the mode the
	// synthesized connection fields are used in.
	Mode     Mode
	Implicit bool

	Directive *ast.Directive
	Object    *ast.Definition
	Field     *ast.FieldDefinition

	// RelatedTypeName is the base type of Field.
	RelatedTypeName string
	RelatedType     *ast.Definition
	// RelatedTypeIndex holds the key fields of RelatedType the relation
	// queries, partition field first.
	RelatedTypeIndex []*ast.FieldDefinition

	Fields         []string
	References     []string
	FieldNodes     []*ast.FieldDefinition
	ReferenceNodes []*ast.FieldDefinition
	// ConnectionFields are the synthesized fields of an implicit relation,
	// typed by ConnectionTypes and declared on ConnectionHolder. Their names
	// are prefixed after ConnectionPrefix.
	ConnectionFields []string
	ConnectionTypes  []string
	ConnectionHolder string
	ConnectionPrefix string

	IndexName    string
	Limit        int
	RelationName string

	Store *gen.Storage
}

// Name returns "Type.field".
func (c *Config) Name() string {
	return c.Object.Name + "." + c.Field.Name
}

// Errorf returns a DirectiveError on the relation field.
func (c *Config) Errorf(kind gen.ErrorKind, format string, args ...any) *gen.DirectiveError {
	return gen.Errorf(kind, c.Kind.String(), c.Object.Name, c.Field.Name, format, args...)
}

// Parse reads the arguments of dir on obj.field and checks their shape.
// Related types, stores and connection fields are resolved by later phases.
func Parse(obj *ast.Definition, field *ast.FieldDefinition, dir *ast.Directive) (*Config, error) {
	kind, ok := KindOf(dir.Name)
	if !ok {
		return nil, gen.Errorf(gen.KindArgument, dir.Name, obj.Name, field.Name, "not a relationship directive")
	}
	c := &Config{
		Kind:            kind,
		Directive:       dir,
		Object:          obj,
		Field:           field,
		RelatedTypeName: schema.BaseType(field.Type),
	}
	switch list := schema.IsList(field.Type); {
	case list && (kind == HasOne || kind == BelongsTo):
		return nil, c.Errorf(gen.KindUnsupported, "list type %s requires @hasMany", field.Type.String())
	case !list && kind.ToMany():
		return nil, c.Errorf(gen.KindUnsupported, "@%s must be used on a list field, got %s", kind, field.Type.String())
	}
	var err error
	if c.Fields, err = listArg(c, ArgFields); err != nil {
		return nil, err
	}
	if c.References, err = listArg(c, ArgReferences); err != nil {
		return nil, err
	}
	switch {
	case c.Fields != nil && c.References != nil:
		return nil, c.Errorf(gen.KindArgument, "fields and references are mutually exclusive")
	case c.Fields != nil:
		c.Mode = Fields
	case c.References != nil:
		c.Mode = References
	default:
		c.Mode = Implicit
		c.Implicit = true
	}
	if name, ok := schema.StringArg(dir, ArgIndexName); ok {
		if kind != HasOne && kind != HasMany {
			return nil, c.Errorf(gen.KindArgument, "indexName is not supported by @%s", kind)
		}
		if c.Mode != Fields {
			return nil, c.Errorf(gen.KindArgument, "indexName requires fields")
		}
		c.IndexName = name
	}
	if n, ok, err := schema.IntArg(dir, ArgLimit); err != nil {
		return nil, c.Errorf(gen.KindArgument, "%v", err)
	} else if ok {
		if !kind.ToMany() {
			return nil, c.Errorf(gen.KindArgument, "limit is not supported by @%s", kind)
		}
		if n <= 0 {
			return nil, c.Errorf(gen.KindArgument, "limit must be positive, got %d", n)
		}
		c.Limit = n
	}
	if kind == ManyToMany {
		if !c.Implicit {
			return nil, c.Errorf(gen.KindArgument, "@manyToMany does not take fields or references")
		}
		name, ok := schema.StringArg(dir, ArgRelationName)
		if !ok || name == "" {
			return nil, c.Errorf(gen.KindArgument, "relationName is required")
		}
		c.RelationName = name
	}
	if kind == HasMany {
		// Set on the @hasMany a @manyToMany side is rewritten to.
		c.RelationName, _ = schema.StringArg(dir, ArgRelationName)
	}
	return c, nil
}

func listArg(c *Config, name string) ([]string, error) {
	list, ok, err := schema.StringsArg(c.Directive, name)
	switch {
	case err != nil:
		return nil, c.Errorf(gen.KindArgument, "%v", err)
	case !ok:
		return nil, nil
	case len(list) == 0:
		return nil, c.Errorf(gen.KindArgument, "empty %s list", name)
	}
	for _, f := range list {
		if f == "" {
			return nil, c.Errorf(gen.KindArgument, "empty name in %s", name)
		}
	}
	return list, nil
}

// ConnectionFieldNames returns the names of the fields synthesized for an
// implicit relation owner.field pointing at a model keyed by pk. Unless
// respectPK is set, the partition attribute is a single "...Id" field.
func ConnectionFieldNames(owner, field string, pk schema.Index, respectPK bool) []string {
	prefix := schema.LowerFirst(owner) + schema.UpperFirst(field)
	names := make([]string, 0, len(pk.Fields))
	if respectPK {
		names = append(names, prefix+schema.UpperFirst(pk.PartitionField()))
	} else {
		names = append(names, prefix+"Id")
	}
	for _, s := range pk.SortFields() {
		names = append(names, prefix+schema.UpperFirst(s))
	}
	return names
}

// ConnectionFieldTypes returns the types of the fields named by
// ConnectionFieldNames, taken from the key fields of target.
func ConnectionFieldTypes(target *ast.Definition, pk schema.Index, respectPK bool) []string {
	types := make([]string, 0, len(pk.Fields))
	for i, f := range pk.Fields {
		if i == 0 && !respectPK {
			types = append(types, "ID")
			continue
		}
		t := schema.FieldType(target, f)
		if t == "" {
			t = "ID"
		}
		types = append(types, t)
	}
	return types
}

// String implements fmt.Stringer.
func (c *Config) String() string {
	return fmt.Sprintf("@%s(%s) on %s", c.Kind, c.Mode, c.Name())
}

// Reciprocal returns the first field of related typed after owner that
// carries a directive of one of kinds.
func Reciprocal(related *ast.Definition, owner string, kinds ...Kind) (*ast.FieldDefinition, *ast.Directive) {
	if related == nil {
		return nil, nil
	}
	for _, f := range related.Fields {
		if schema.BaseType(f.Type) != owner {
			continue
		}
		for _, k := range kinds {
			if d := schema.Directive(f.Directives, k.String()); d != nil {
				return f, d
			}
		}
	}
	return nil, nil
}

// ResolveImplicit computes the connection fields of an implicit relation
// whose RelatedType is set, and switches the configuration to the mode they
// are used in:
//
//   - @hasOne declares fields on the owner pointing at the related key.
//   - @hasMany declares fields on the related type pointing at the owner key,
//     used as references.
//   - @belongsTo reuses the fields of a reciprocal implicit @hasMany and
//     otherwise declares its own. Against a @hasMany with references it
//     becomes an explicit fields relation on those references.
func (c *Config) ResolveImplicit(respectPK bool) {
	if !c.Implicit || c.RelatedType == nil {
		return
	}
	owner, related := c.Object, c.RelatedType
	switch c.Kind {
	case HasMany:
		pk := schema.PrimaryKey(owner)
		c.setConnection(owner.Name, related.Name, ConnectionFieldNames(owner.Name, c.Field.Name, pk, respectPK), ConnectionFieldTypes(owner, pk, respectPK))
		c.Mode, c.References = References, c.ConnectionFields
		return
	case BelongsTo:
		pk := schema.PrimaryKey(related)
		if f, d := Reciprocal(related, owner.Name, HasMany); f != nil {
			refs, hasRefs, _ := schema.StringsArg(d, ArgReferences)
			_, hasFields, _ := schema.StringsArg(d, ArgFields)
			switch {
			case hasRefs:
				c.Mode, c.Fields, c.Implicit = Fields, refs, false
				return
			case !hasFields:
				c.setConnection(related.Name, owner.Name, ConnectionFieldNames(related.Name, f.Name, pk, respectPK), ConnectionFieldTypes(related, pk, respectPK))
				c.Mode, c.Fields = Fields, c.ConnectionFields
				return
			}
		}
	}
	pk := schema.PrimaryKey(related)
	c.setConnection(owner.Name, owner.Name, ConnectionFieldNames(owner.Name, c.Field.Name, pk, respectPK), ConnectionFieldTypes(related, pk, respectPK))
	c.Mode, c.Fields = Fields, c.ConnectionFields
}

func (c *Config) setConnection(prefix, holder string, names, types []string) {
	c.ConnectionPrefix = prefix
	c.ConnectionHolder = holder
	c.ConnectionFields = names
	c.ConnectionTypes = types
}
