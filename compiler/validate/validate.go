// Package validate holds the cross-type checks of relationship directives and
// the registration of foreign key renames.
package validate

import (
	"github.com/go-openapi/inflect"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/compiler/directive"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/schema"
)

// Models checks that both ends of the relation are models and binds
// c.RelatedType.
func Models(ctx *gen.Context, c *directive.Config) error {
	if !schema.IsModel(c.Object) {
		return c.Errorf(gen.KindModel, "type %s must be annotated with @model", c.Object.Name)
	}
	related := ctx.Object(c.RelatedTypeName)
	if related == nil {
		return c.Errorf(gen.KindModel, "related type %s is not an object type", c.RelatedTypeName)
	}
	if !schema.IsModel(related) {
		return c.Errorf(gen.KindModel, "related type %s must be annotated with @model", related.Name)
	}
	c.RelatedType = related
	return nil
}

// Store binds c.Store to the store of the owning model and checks that the
// store supports the addressing mode. Relations may not cross store classes.
func Store(ctx *gen.Context, c *directive.Config) error {
	store, err := ctx.Config.StoreOf(c.Object.Name)
	if err != nil {
		return gen.NewConfigError("Store", c.Object.Name, err.Error())
	}
	related, err := ctx.Config.StoreOf(c.RelatedTypeName)
	if err != nil {
		return gen.NewConfigError("Store", c.RelatedTypeName, err.Error())
	}
	if store.Class != related.Class {
		return c.Errorf(gen.KindUnsupported, "%s is stored in %s and %s in %s", c.Object.Name, store, c.RelatedTypeName, related)
	}
	c.Store = store
	switch mode := c.Mode; {
	case c.Implicit && !store.SchemaMode.Support(gen.ImplicitMode):
		return c.Errorf(gen.KindArgument, "store %s requires references", store)
	case mode == directive.Fields && !c.Implicit && !store.SchemaMode.Support(gen.FieldsMode):
		return c.Errorf(gen.KindArgument, "fields are not supported by store %s, use references", store)
	case mode == directive.References && !store.SchemaMode.Support(gen.ReferencesMode):
		return c.Errorf(gen.KindArgument, "references are not supported by store %s", store)
	}
	return nil
}

// Sync rejects @hasOne and @hasMany linking two models from both sides while
// real-time sync is enabled. Links of synthesized join types are exempt.
func Sync(ctx *gen.Context, c *directive.Config) error {
	if !ctx.Config.Enabled(gen.FeatureSync) || (c.Kind != directive.HasOne && c.Kind != directive.HasMany) {
		return nil
	}
	if ctx.IsJoinType(c.Object.Name) || ctx.IsJoinType(c.RelatedType.Name) {
		return nil
	}
	f, d := directive.Reciprocal(c.RelatedType, c.Object.Name, directive.HasOne, directive.HasMany)
	if f == nil || (c.RelatedType.Name == c.Object.Name && f.Name == c.Field.Name) {
		return nil
	}
	return c.Errorf(gen.KindUnsupported, "%s.%s links back with @%s; use @belongsTo on one side when sync is enabled", c.RelatedType.Name, f.Name, d.Name)
}

// BelongsTo checks that a @belongsTo has a reciprocal @hasOne or @hasMany.
func BelongsTo(c *directive.Config) error {
	if c.Kind != directive.BelongsTo {
		return nil
	}
	if f, _ := directive.Reciprocal(c.RelatedType, c.Object.Name, directive.HasOne, directive.HasMany); f == nil {
		return c.Errorf(gen.KindBidirectionality, "%s has no @hasOne or @hasMany field of type %s", c.RelatedType.Name, c.Object.Name)
	}
	return nil
}

// Fields resolves names on def. Each field must exist and be a scalar or an
// enum.
func Fields(doc *ast.SchemaDocument, c *directive.Config, def *ast.Definition, names []string) ([]*ast.FieldDefinition, error) {
	nodes := make([]*ast.FieldDefinition, 0, len(names))
	for _, name := range names {
		f := def.Fields.ForName(name)
		if f == nil {
			return nil, c.Errorf(gen.KindTypeMismatch, "field %s does not exist on %s", name, def.Name)
		}
		if schema.IsList(f.Type) || !schema.IsScalarOrEnum(doc, schema.BaseType(f.Type)) {
			return nil, c.Errorf(gen.KindTypeMismatch, "field %s.%s must be a scalar or an enum", def.Name, name)
		}
		nodes = append(nodes, f)
	}
	return nodes, nil
}

// KeyTypes checks that each field has the type of the key field at the same
// position. ID and String are interchangeable.
func KeyTypes(c *directive.Config, fields, key []*ast.FieldDefinition) error {
	for i, f := range fields {
		if i >= len(key) {
			break
		}
		got, want := schema.BaseType(f.Type), schema.BaseType(key[i].Type)
		if !compatible(got, want) {
			return c.Errorf(gen.KindTypeMismatch, "field %s is %s but key field %s is %s", f.Name, got, key[i].Name, want)
		}
	}
	return nil
}

func compatible(a, b string) bool {
	if a == b {
		return true
	}
	id := func(s string) bool { return s == "ID" || s == "String" }
	return id(a) && id(b)
}

// KeyFields returns the field nodes of the key idx of def.
func KeyFields(c *directive.Config, def *ast.Definition, idx schema.Index) ([]*ast.FieldDefinition, error) {
	nodes := make([]*ast.FieldDefinition, 0, len(idx.Fields))
	for _, name := range idx.Fields {
		f := def.Fields.ForName(name)
		if f == nil {
			return nil, c.Errorf(gen.KindTypeMismatch, "key field %s does not exist on %s", name, def.Name)
		}
		nodes = append(nodes, f)
	}
	return nodes, nil
}

// RelatedIndex returns the key of the related type a fields relation
// queries: the index named by indexName, or the primary key.
func RelatedIndex(c *directive.Config) (schema.Index, error) {
	idx, ok := schema.IndexNamed(c.RelatedType, c.IndexName)
	if !ok {
		return schema.Index{}, c.Errorf(gen.KindArgument, "index %q does not exist on %s", c.IndexName, c.RelatedType.Name)
	}
	return idx, nil
}

// References checks the references of a relation whose key lives on the
// related type: they must exist there and match the owner primary key in
// number and types.
func References(ctx *gen.Context, c *directive.Config) error {
	nodes, err := Fields(ctx.Doc, c, c.RelatedType, c.References)
	if err != nil {
		return err
	}
	pk := schema.PrimaryKey(c.Object)
	if len(nodes) != len(pk.Fields) {
		return c.Errorf(gen.KindTypeMismatch, "%d references do not match the %d primary key fields of %s", len(nodes), len(pk.Fields), c.Object.Name)
	}
	key, err := KeyFields(c, c.Object, pk)
	if err != nil {
		return err
	}
	if !c.Implicit {
		if err := KeyTypes(c, nodes, key); err != nil {
			return err
		}
	}
	c.ReferenceNodes = nodes
	c.RelatedTypeIndex = key
	return nil
}

// LocalKey checks fields of the owner pointing at the key idx of the related
// type. To-one relations must address the whole key; to-many relations
// address the partition key alone or the whole key.
func LocalKey(ctx *gen.Context, c *directive.Config, names []string, idx schema.Index) error {
	nodes, err := Fields(ctx.Doc, c, c.Object, names)
	if err != nil {
		return err
	}
	key, err := KeyFields(c, c.RelatedType, idx)
	if err != nil {
		return err
	}
	switch {
	case len(nodes) > len(key):
		return c.Errorf(gen.KindTypeMismatch, "%d fields exceed the %d key fields of %s", len(nodes), len(key), c.RelatedType.Name)
	case !c.Kind.ToMany() && len(nodes) != len(key):
		return c.Errorf(gen.KindTypeMismatch, "%d fields do not match the %d key fields of %s", len(nodes), len(key), c.RelatedType.Name)
	case len(nodes) > 1 && len(nodes) != len(key):
		return c.Errorf(gen.KindTypeMismatch, "fields must address the partition key or the whole key of %s", c.RelatedType.Name)
	}
	if !c.Implicit {
		if err := KeyTypes(c, nodes, key); err != nil {
			return err
		}
	}
	c.FieldNodes = nodes
	c.RelatedTypeIndex = key
	return nil
}

// ModelOperations returns the top-level operations reading or writing the
// model typeName.
func ModelOperations(typeName string) []gen.OperationRef {
	return []gen.OperationRef{
		{TypeName: "Mutation", FieldName: "create" + typeName},
		{TypeName: "Mutation", FieldName: "update" + typeName},
		{TypeName: "Mutation", FieldName: "delete" + typeName},
		{TypeName: "Query", FieldName: "get" + typeName},
		{TypeName: "Query", FieldName: "list" + inflect.Pluralize(typeName), IsList: true},
		{TypeName: "Subscription", FieldName: "onCreate" + typeName},
		{TypeName: "Subscription", FieldName: "onUpdate" + typeName},
		{TypeName: "Subscription", FieldName: "onDelete" + typeName},
	}
}

// RegisterMappings records the renames of the connection fields of an
// implicit relation whose fields are named after a renamed model. The stored
// attributes keep the name derived from the original model name.
func RegisterMappings(ctx *gen.Context, c *directive.Config, respectPK bool) error {
	if !c.Implicit || c.ConnectionPrefix == "" {
		return nil
	}
	prefix := ctx.Object(c.ConnectionPrefix)
	if prefix == nil || !schema.IsRenamed(prefix) {
		return nil
	}
	var (
		field = c.Field.Name
		pk    = schema.PrimaryKey(c.RelatedType)
	)
	switch {
	case c.Kind == directive.HasMany:
		pk = schema.PrimaryKey(c.Object)
	case c.ConnectionPrefix != c.Object.Name:
		// A belongsTo reusing the fields of the reciprocal hasMany.
		f, _ := directive.Reciprocal(prefix, c.Object.Name, directive.HasMany)
		if f == nil {
			return nil
		}
		field = f.Name
	}
	original := directive.ConnectionFieldNames(schema.MappedName(prefix), field, pk, respectPK)
	for i, current := range c.ConnectionFields {
		if err := ctx.Mappings.Add(c.ConnectionHolder, current, original[i]); err != nil {
			return c.Errorf(gen.KindArgument, "%v", err)
		}
	}
	ops := append(ModelOperations(c.ConnectionHolder), gen.OperationRef{
		TypeName:  c.Object.Name,
		FieldName: c.Field.Name,
		IsList:    c.Kind.ToMany(),
	})
	if err := ctx.Mappings.AddOperations(c.ConnectionHolder, ops...); err != nil {
		return c.Errorf(gen.KindArgument, "%v", err)
	}
	return nil
}
