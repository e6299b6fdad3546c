// Package transformer drives the relationship directives through the
// compilation phases.
//
// Phases run phase-major: every relation completes a phase before any
// relation starts the next one, since later phases read schema changes made
// by earlier ones for all relations.
//
//	mutate -> visit (parse, validate) -> prepare -> transform schema -> generate resolvers
package transformer

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/compiler/directive"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/mutate"
	"github.com/syssam/relgen/compiler/strategy"
	"github.com/syssam/relgen/compiler/validate"
	"github.com/syssam/relgen/schema"
)

// relation is a visited directive and the strategy transforming it.
type relation struct {
	config   *directive.Config
	strategy *strategy.Strategy
}

// Driver owns the relations of one directive.
type Driver struct {
	kind      directive.Kind
	relations []relation
}

// HasOne returns the @hasOne driver.
func HasOne() *Driver { return &Driver{kind: directive.HasOne} }

// HasMany returns the @hasMany driver.
func HasMany() *Driver { return &Driver{kind: directive.HasMany} }

// BelongsTo returns the @belongsTo driver.
func BelongsTo() *Driver { return &Driver{kind: directive.BelongsTo} }

// ManyToMany returns the @manyToMany driver. Its relations are the @hasMany
// sides of the synthesized join models.
func ManyToMany() *Driver { return &Driver{kind: directive.ManyToMany} }

// Kind returns the directive kind of the driver.
func (d *Driver) Kind() directive.Kind { return d.kind }

// Configs returns the relations visited by the driver.
func (d *Driver) Configs() []*directive.Config {
	out := make([]*directive.Config, len(d.relations))
	for i, r := range d.relations {
		out[i] = r.config
	}
	return out
}

// Visit parses and validates one directive occurrence.
func (d *Driver) Visit(ctx *gen.Context, obj *ast.Definition, field *ast.FieldDefinition, dir *ast.Directive) error {
	c, err := directive.Parse(obj, field, dir)
	if err != nil {
		return err
	}
	if err := validate.Models(ctx, c); err != nil {
		return err
	}
	c.ResolveImplicit(ctx.Config.Enabled(gen.FeatureRespectPrimaryKeyAttributes))
	if err := validate.Store(ctx, c); err != nil {
		return err
	}
	s, err := strategy.Select(c)
	if err != nil {
		return err
	}
	if err := s.Validate(ctx, c); err != nil {
		return err
	}
	ctx.Logger.Debug("relation visited",
		"directive", d.kind.String(),
		"type", c.Object.Name,
		"field", c.Field.Name,
		"mode", c.Mode.String(),
		"strategy", s.Name,
	)
	d.relations = append(d.relations, relation{config: c, strategy: s})
	return nil
}

// run applies the phase selected by pick to every relation of the driver.
func (d *Driver) run(ctx *gen.Context, pick func(*strategy.Strategy) strategy.Phase) error {
	for _, r := range d.relations {
		if err := pick(r.strategy)(ctx, r.config); err != nil {
			return err
		}
	}
	return nil
}

// Drivers returns the drivers of all relationship directives.
func Drivers() []*Driver {
	return []*Driver{HasOne(), HasMany(), BelongsTo(), ManyToMany()}
}

// Run compiles the relations of ctx.Doc with drivers.
func Run(ctx *gen.Context, drivers ...*Driver) error {
	if len(drivers) == 0 {
		drivers = Drivers()
	}
	log := ctx.Logger
	log.Debug("phase started", "phase", "mutate")
	if err := mutate.Mutate(ctx); err != nil {
		return err
	}

	log.Debug("phase started", "phase", "validate")
	if err := visit(ctx, drivers); err != nil {
		return err
	}

	phases := []struct {
		name string
		pick func(*strategy.Strategy) strategy.Phase
	}{
		{"prepare", func(s *strategy.Strategy) strategy.Phase { return s.Prepare }},
		{"transformSchema", func(s *strategy.Strategy) strategy.Phase { return s.TransformSchema }},
		{"generateResolvers", func(s *strategy.Strategy) strategy.Phase { return s.GenerateResolvers }},
	}
	for _, p := range phases {
		log.Debug("phase started", "phase", p.name)
		for _, d := range drivers {
			if err := d.run(ctx, p.pick); err != nil {
				return err
			}
		}
		if p.name == "prepare" {
			ctx.Mappings.Seal()
		}
	}
	return nil
}

func visit(ctx *gen.Context, drivers []*Driver) error {
	byKind := make(map[directive.Kind]*Driver, len(drivers))
	for _, d := range drivers {
		byKind[d.kind] = d
	}
	for _, def := range ctx.Doc.Definitions {
		if def.Kind != ast.Object {
			continue
		}
		for _, f := range def.Fields {
			for _, dir := range f.Directives {
				kind, ok := directive.KindOf(dir.Name)
				if !ok {
					continue
				}
				if kind == directive.HasMany && schema.Arg(dir, directive.ArgRelationName) != nil {
					kind = directive.ManyToMany
				}
				d, ok := byKind[kind]
				if !ok {
					continue
				}
				if err := d.Visit(ctx, def, f, dir); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
