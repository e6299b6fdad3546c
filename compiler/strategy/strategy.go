// Package strategy implements the per-store transformations of relation
// directives. A Strategy bundles the four phase functions of one
// (store class, addressing mode) pair; the relation kind is handled inside
// each function.
package strategy

import (
	"fmt"

	"github.com/syssam/relgen/compiler/directive"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/index"
	"github.com/syssam/relgen/compiler/resolver"
	"github.com/syssam/relgen/compiler/validate"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/schema"
)

// Phase transforms one relation.
type Phase func(*gen.Context, *directive.Config) error

// Strategy is the function bundle transforming relations of one store class
// and addressing mode. Phases run in the order Validate, Prepare,
// TransformSchema, GenerateResolvers, each over all relations before the
// next.
type Strategy struct {
	Name              string
	Validate          Phase
	Prepare           Phase
	TransformSchema   Phase
	GenerateResolvers Phase
}

type key struct {
	class dialect.Class
	mode  directive.Mode
}

var strategies = map[key]*Strategy{
	{dialect.KeyValue, directive.Fields}:       Fields,
	{dialect.KeyValue, directive.References}:   References,
	{dialect.Relational, directive.References}: SQL,
}

// For returns the strategy of a store class and addressing mode.
func For(class dialect.Class, mode directive.Mode) (*Strategy, error) {
	s, ok := strategies[key{class, mode}]
	if !ok {
		return nil, fmt.Errorf("relgen/strategy: no strategy for %s relations in %s mode", class, mode)
	}
	return s, nil
}

// Select returns the strategy of a relation whose store is bound.
func Select(c *directive.Config) (*Strategy, error) {
	if c.Store == nil {
		return nil, c.Errorf(gen.KindArgument, "store is not bound")
	}
	s, err := For(c.Store.Class, c.Mode)
	if err != nil {
		return nil, c.Errorf(gen.KindUnsupported, "%v", err)
	}
	return s, nil
}

// Fields transforms key-value relations addressed by local fields.
var Fields = &Strategy{
	Name:     "fields",
	Validate: validateCommon,
	Prepare:  prepareMappings,
	TransformSchema: func(ctx *gen.Context, c *directive.Config) error {
		idx, err := validate.RelatedIndex(c)
		if err != nil {
			return err
		}
		if err := validate.LocalKey(ctx, c, c.Fields, idx); err != nil {
			return err
		}
		if !c.Kind.ToMany() {
			return nil
		}
		var sortFields []string
		if len(c.Fields) == 1 {
			sortFields = idx.SortFields()
		}
		return Connection(ctx, c, sortFields)
	},
	GenerateResolvers: func(ctx *gen.Context, c *directive.Config) error {
		idx, err := validate.RelatedIndex(c)
		if err != nil {
			return err
		}
		if !idx.Primary() {
			if _, err := index.NewPlanner(ctx).Declared(c, idx); err != nil {
				return err
			}
		}
		t := resolver.Target{
			TypeName:      c.RelatedType.Name,
			IndexName:     idx.Name,
			PartitionKey:  idx.PartitionField(),
			SortKeyFields: idx.SortFields(),
			Values:        c.Fields,
		}
		return generate(ctx, c, t)
	},
}

// References transforms key-value relations addressed by fields of the
// related type. A @belongsTo names local references to the related primary
// key instead.
var References = &Strategy{
	Name:     "references",
	Validate: validateCommon,
	Prepare: func(ctx *gen.Context, c *directive.Config) error {
		if err := prepareMappings(ctx, c); err != nil {
			return err
		}
		recordConnection(ctx, c)
		return nil
	},
	TransformSchema: transformReferences,
	GenerateResolvers: func(ctx *gen.Context, c *directive.Config) error {
		if c.Kind == directive.BelongsTo {
			pk := schema.PrimaryKey(c.RelatedType)
			return generate(ctx, c, resolver.Target{
				TypeName:      c.RelatedType.Name,
				PartitionKey:  pk.PartitionField(),
				SortKeyFields: pk.SortFields(),
				Values:        c.References,
			})
		}
		spec, err := index.NewPlanner(ctx).Ensure(c)
		if err != nil {
			return err
		}
		return generate(ctx, c, resolver.Target{
			TypeName:      c.RelatedType.Name,
			IndexName:     spec.Name,
			PartitionKey:  c.References[0],
			SortKeyFields: c.References[1:],
			Values:        schema.PrimaryKey(c.Object).Fields,
		})
	},
}

// SQL transforms relations of relational stores. Every relation is
// addressed by references and resolved by the SQL function.
var SQL = &Strategy{
	Name:     "sql",
	Validate: validateCommon,
	Prepare: func(ctx *gen.Context, c *directive.Config) error {
		recordConnection(ctx, c)
		return nil
	},
	TransformSchema: transformReferences,
	GenerateResolvers: func(ctx *gen.Context, c *directive.Config) error {
		g := resolver.NewGenerator(ctx)
		var err error
		if c.Kind == directive.BelongsTo {
			_, err = g.SQL(c, schema.PrimaryKey(c.RelatedType).Fields, c.References)
		} else {
			_, err = g.SQL(c, c.References, schema.PrimaryKey(c.Object).Fields)
		}
		return err
	},
}

func validateCommon(ctx *gen.Context, c *directive.Config) error {
	if err := validate.Sync(ctx, c); err != nil {
		return err
	}
	return validate.BelongsTo(c)
}

func prepareMappings(ctx *gen.Context, c *directive.Config) error {
	return validate.RegisterMappings(ctx, c, ctx.Config.Enabled(gen.FeatureRespectPrimaryKeyAttributes))
}

// recordConnection records that writes of the related type carry the
// references of the relation.
func recordConnection(ctx *gen.Context, c *directive.Config) {
	if c.Kind == directive.BelongsTo {
		return
	}
	for _, ref := range c.References {
		ctx.AddConnectionField(c.RelatedType.Name, ref)
	}
}

func transformReferences(ctx *gen.Context, c *directive.Config) error {
	if c.Kind == directive.BelongsTo {
		return validate.LocalKey(ctx, c, c.References, schema.PrimaryKey(c.RelatedType))
	}
	if err := validate.References(ctx, c); err != nil {
		return err
	}
	if c.Kind.ToMany() {
		return Connection(ctx, c, nil)
	}
	return nil
}

func generate(ctx *gen.Context, c *directive.Config, t resolver.Target) error {
	g := resolver.NewGenerator(ctx)
	var err error
	if c.Kind.ToMany() {
		_, err = g.List(c, t)
	} else {
		_, err = g.Single(c, t)
	}
	return err
}
