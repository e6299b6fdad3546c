// Package mutate pre-processes the schema before relations are validated:
// it synthesizes the join types of many-to-many relations, injects default
// page sizes and declares the connection fields of implicit relations.
package mutate

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/compiler/directive"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/strategy"
	"github.com/syssam/relgen/compiler/validate"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/schema"
)

// Mutate runs all pre-processing steps on ctx.Doc.
func Mutate(ctx *gen.Context) error {
	if err := ManyToMany(ctx); err != nil {
		return err
	}
	DefaultLimits(ctx)
	for _, k := range []directive.Kind{directive.HasOne, directive.HasMany, directive.BelongsTo} {
		if err := ImplicitFields(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// relationFields calls fn for every field of an object type carrying the
// directive name.
func relationFields(doc *ast.SchemaDocument, name string, fn func(*ast.Definition, *ast.FieldDefinition, *ast.Directive) error) error {
	for _, def := range doc.Definitions {
		if def.Kind != ast.Object {
			continue
		}
		for _, f := range def.Fields {
			if d := schema.Directive(f.Directives, name); d != nil {
				if err := fn(def, f, d); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// DefaultLimits sets the configured page size on @hasMany relations without
// a limit.
func DefaultLimits(ctx *gen.Context) {
	_ = relationFields(ctx.Doc, directive.HasMany.String(), func(_ *ast.Definition, _ *ast.FieldDefinition, d *ast.Directive) error {
		if schema.Arg(d, directive.ArgLimit) == nil {
			schema.SetArg(d, directive.ArgLimit, schema.IntValue(ctx.Config.Limit()))
		}
		return nil
	})
}

// ImplicitFields declares the connection fields of implicit relations of
// kind on key-value models. The fields are also added to the create, update
// and filter inputs of their model when those exist.
func ImplicitFields(ctx *gen.Context, kind directive.Kind) error {
	respect := ctx.Config.Enabled(gen.FeatureRespectPrimaryKeyAttributes)
	return relationFields(ctx.Doc, kind.String(), func(obj *ast.Definition, f *ast.FieldDefinition, d *ast.Directive) error {
		c, err := directive.Parse(obj, f, d)
		if err != nil {
			return err
		}
		if !c.Implicit {
			return nil
		}
		related := ctx.Object(c.RelatedTypeName)
		if !schema.IsModel(related) || !schema.IsModel(obj) {
			return nil
		}
		store, err := ctx.Config.StoreOf(obj.Name)
		if err != nil || !store.SchemaMode.Support(gen.ImplicitMode) {
			return nil
		}
		c.RelatedType = related
		c.ResolveImplicit(respect)
		if !c.Implicit {
			return nil
		}
		holder := ctx.Object(c.ConnectionHolder)
		for i, name := range c.ConnectionFields {
			addConnectionField(ctx, holder, name, c.ConnectionTypes[i])
		}
		return nil
	})
}

func addConnectionField(ctx *gen.Context, holder *ast.Definition, name, typ string) {
	if holder.Fields.ForName(name) != nil {
		return
	}
	holder.Fields = append(holder.Fields, schema.NewField(name, schema.NamedType(typ, false)))
	for _, input := range []string{"Create" + holder.Name + "Input", "Update" + holder.Name + "Input"} {
		if def := ctx.Doc.Definitions.ForName(input); def != nil && def.Kind == ast.InputObject && def.Fields.ForName(name) == nil {
			def.Fields = append(def.Fields, schema.NewField(name, schema.NamedType(typ, false)))
		}
	}
	if def := ctx.Doc.Definitions.ForName(strategy.FilterInputName(holder.Name)); def != nil && def.Fields.ForName(name) == nil {
		def.Fields = append(def.Fields, schema.NewField(name, schema.NamedType(strategy.EnsureScalarFilter(ctx.Doc, typ), false)))
	}
	ctx.Logger.Debug("connection field declared", "type", holder.Name, "field", name, "field_type", typ)
}

// ManyToMany replaces every pair of @manyToMany fields sharing a relation
// name with a join model. Each side becomes a @hasMany on the join model
// through its "by<Type>" index, and the join model reaches both sides with
// @hasOne.
func ManyToMany(ctx *gen.Context) error {
	var (
		order  []string
		groups = make(map[string][]*directive.Config)
	)
	err := relationFields(ctx.Doc, directive.ManyToMany.String(), func(obj *ast.Definition, f *ast.FieldDefinition, d *ast.Directive) error {
		c, err := directive.Parse(obj, f, d)
		if err != nil {
			return err
		}
		if _, ok := groups[c.RelationName]; !ok {
			order = append(order, c.RelationName)
		}
		groups[c.RelationName] = append(groups[c.RelationName], c)
		return nil
	})
	if err != nil {
		return err
	}
	for _, name := range order {
		sides := groups[name]
		if err := checkPair(ctx, name, sides); err != nil {
			return err
		}
		join := joinType(ctx, name, sides[0], sides[1])
		ctx.Doc.Definitions = append(ctx.Doc.Definitions, join)
		ctx.AddJoinType(name)
		for _, c := range sides {
			toHasMany(ctx, c, join)
		}
		ctx.Logger.Info("join type synthesized",
			"relation", name,
			"left", sides[0].Object.Name,
			"right", sides[1].Object.Name,
		)
	}
	return nil
}

func checkPair(ctx *gen.Context, name string, sides []*directive.Config) error {
	if len(sides) != 2 {
		return sides[0].Errorf(gen.KindBidirectionality, "relation %q must be used on exactly two fields, found %d", name, len(sides))
	}
	a, b := sides[0], sides[1]
	if a.Object.Name == b.Object.Name {
		return b.Errorf(gen.KindUnsupported, "relation %q links %s to itself", name, a.Object.Name)
	}
	if a.RelatedTypeName != b.Object.Name || b.RelatedTypeName != a.Object.Name {
		return b.Errorf(gen.KindBidirectionality, "relation %q must link %s and %s in both directions", name, a.Object.Name, b.Object.Name)
	}
	for _, c := range sides {
		if err := validate.Models(ctx, c); err != nil {
			return err
		}
		store, err := ctx.Config.StoreOf(c.Object.Name)
		if err != nil {
			return gen.NewConfigError("Store", c.Object.Name, err.Error())
		}
		if store.Class != dialect.KeyValue {
			return c.Errorf(gen.KindUnsupported, "relation %q requires key-value stores, %s is stored in %s", name, c.Object.Name, store)
		}
	}
	if ctx.Doc.Definitions.ForName(name) != nil {
		return b.Errorf(gen.KindArgument, "relation name %q collides with an existing type", name)
	}
	return nil
}

// joinFieldNames returns the key fields of the join model pointing at side.
func joinFieldNames(side string, pk schema.Index, respectPK bool) []string {
	prefix := schema.LowerFirst(side)
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

// IndexName returns the join model index serving side.
func IndexName(side string) string { return "by" + side }

func joinType(ctx *gen.Context, name string, a, b *directive.Config) *ast.Definition {
	respect := ctx.Config.Enabled(gen.FeatureRespectPrimaryKeyAttributes)
	join := &ast.Definition{
		Kind:   ast.Object,
		Name:   name,
		Fields: ast.FieldList{schema.NewField(schema.DefaultPrimaryKey, schema.NamedType("ID", true))},
	}
	var links ast.FieldList
	for _, side := range []*ast.Definition{a.Object, b.Object} {
		pk := schema.PrimaryKey(side)
		names := joinFieldNames(side.Name, pk, respect)
		// Join keys always carry the key types of the side they point at.
		types := directive.ConnectionFieldTypes(side, pk, true)
		for i, n := range names {
			f := schema.NewField(n, schema.NamedType(types[i], true))
			if i == 0 {
				idx := schema.NewDirective(schema.IndexDirective, schema.NewArg("name", schema.StringValue(IndexName(side.Name))))
				if len(names) > 1 {
					idx.Arguments = append(idx.Arguments, schema.NewArg("sortKeyFields", schema.StringListValue(names[1:]...)))
				}
				f.Directives = append(f.Directives, idx)
			}
			join.Fields = append(join.Fields, f)
		}
		links = append(links, schema.NewField(
			schema.LowerFirst(side.Name),
			schema.NamedType(side.Name, true),
			schema.NewDirective(directive.HasOne.String(), schema.NewArg(directive.ArgFields, schema.StringListValue(names...))),
		))
	}
	join.Fields = append(join.Fields, links...)
	join.Directives = append(join.Directives, schema.NewDirective(schema.ModelDirective))
	if auth := joinAuth(a.Object, b.Object); auth != nil {
		join.Directives = append(join.Directives, auth)
	}
	return join
}

// joinAuth returns an @auth with the rules of both sides, or nil when
// neither side declares any.
func joinAuth(a, b *ast.Definition) *ast.Directive {
	var (
		seen  = make(map[string]bool)
		rules []*ast.Value
	)
	for _, def := range []*ast.Definition{a, b} {
		for _, r := range schema.AuthRules(def) {
			if key := r.String(); !seen[key] {
				seen[key] = true
				rules = append(rules, schema.CloneValue(r))
			}
		}
	}
	if len(rules) == 0 {
		return nil
	}
	return schema.NewDirective(schema.AuthDirective, schema.NewArg("rules", schema.ListValue(rules...)))
}

// toHasMany turns the @manyToMany field of c into a @hasMany on join.
func toHasMany(ctx *gen.Context, c *directive.Config, join *ast.Definition) {
	f := c.Field
	elemNonNull := f.Type.Elem != nil && f.Type.Elem.NonNull
	f.Type = schema.ListType(schema.NamedType(join.Name, elemNonNull), f.Type.NonNull)
	limit := c.Limit
	if limit == 0 {
		limit = ctx.Config.Limit()
	}
	f.Directives = schema.RemoveDirective(f.Directives, directive.ManyToMany.String())
	f.Directives = append(f.Directives, schema.NewDirective(directive.HasMany.String(),
		schema.NewArg(directive.ArgIndexName, schema.StringValue(IndexName(c.Object.Name))),
		schema.NewArg(directive.ArgFields, schema.StringListValue(schema.PrimaryKey(c.Object).Fields...)),
		schema.NewArg(directive.ArgLimit, schema.IntValue(limit)),
		schema.NewArg(directive.ArgRelationName, schema.StringValue(c.RelationName)),
	))
}
