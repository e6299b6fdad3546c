// Package index plans the secondary indexes relations query through.
package index

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/syssam/relgen/compiler/directive"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect/dynamodb"
	"github.com/syssam/relgen/schema"
)

// Name returns the name of the index synthesized for the relation field of
// a model stored as mappedType.
func Name(mappedType, field string) string {
	return "gsi-" + mappedType + "." + field
}

// Planner adds relation indexes to the tables of a compilation.
type Planner struct {
	ctx *gen.Context
}

// NewPlanner returns a planner over ctx.
func NewPlanner(ctx *gen.Context) *Planner {
	return &Planner{ctx: ctx}
}

// Ensure makes sure the table of the related type holds the index of a
// relation whose key lives in c.References. The partition key is the first
// reference, typed after the owner partition key when primary key
// attributes are respected, and a string otherwise. Further references form
// the sort key, condensed when there are several.
//
// An index already present under the same name is reused. With
// FeatureIndexShapeCheck, reusing a name for a different key schema fails.
func (p *Planner) Ensure(c *directive.Config) (*dynamodb.IndexSpec, error) {
	respect := p.ctx.Config.Enabled(gen.FeatureRespectPrimaryKeyAttributes)
	owner, holder := c.Object, c.RelatedType.Name
	pk := schema.PrimaryKey(owner)
	spec := &dynamodb.IndexSpec{
		Name: Name(schema.MappedName(owner), c.Field.Name),
		PartitionKey: dynamodb.KeyAttribute{
			Name: p.attribute(holder, c.References[0]),
			Type: types.ScalarAttributeTypeS,
		},
		Projection: types.ProjectionTypeAll,
	}
	if respect {
		spec.PartitionKey.Type = dynamodb.AttributeType(schema.FieldType(owner, pk.PartitionField()))
	}
	switch sort := c.References[1:]; len(sort) {
	case 0:
	case 1:
		t := types.ScalarAttributeTypeS
		if respect {
			t = dynamodb.AttributeType(schema.FieldType(owner, pk.SortFields()[0]))
		}
		spec.SortKey = &dynamodb.KeyAttribute{Name: p.attribute(holder, sort[0]), Type: t}
	default:
		names := p.attributes(holder, sort)
		spec.SortKey = &dynamodb.KeyAttribute{Name: dynamodb.CondensedName(names...), Type: types.ScalarAttributeTypeS}
		spec.SortKeyFields = names
	}
	return p.add(c, holder, spec, true)
}

// Declared records the declared @index idx of the related type queried by
// a fields relation.
func (p *Planner) Declared(c *directive.Config, idx schema.Index) (*dynamodb.IndexSpec, error) {
	related := c.RelatedType
	spec := &dynamodb.IndexSpec{
		Name: idx.Name,
		PartitionKey: dynamodb.KeyAttribute{
			Name: p.attribute(related.Name, idx.PartitionField()),
			Type: dynamodb.AttributeType(schema.FieldType(related, idx.PartitionField())),
		},
		Projection: types.ProjectionTypeAll,
	}
	switch sort := idx.SortFields(); len(sort) {
	case 0:
	case 1:
		spec.SortKey = &dynamodb.KeyAttribute{
			Name: p.attribute(related.Name, sort[0]),
			Type: dynamodb.AttributeType(schema.FieldType(related, sort[0])),
		}
	default:
		names := p.attributes(related.Name, sort)
		spec.SortKey = &dynamodb.KeyAttribute{Name: dynamodb.CondensedName(names...), Type: types.ScalarAttributeTypeS}
		spec.SortKeyFields = names
	}
	return p.add(c, related.Name, spec, false)
}

func (p *Planner) add(c *directive.Config, typeName string, spec *dynamodb.IndexSpec, synthesized bool) (*dynamodb.IndexSpec, error) {
	store, err := p.ctx.Config.StoreOf(typeName)
	if err != nil {
		return nil, gen.NewConfigError("Store", typeName, err.Error())
	}
	if err := supports(c, store, spec); err != nil {
		return nil, err
	}
	t, err := p.ctx.Table(typeName)
	if err != nil {
		return nil, err
	}
	if existing := t.Index(spec.Name); existing != nil {
		if !existing.SameShape(spec) && p.ctx.Config.Enabled(gen.FeatureIndexShapeCheck) {
			return nil, c.Errorf(gen.KindUnsupported, "index %s on %s already exists with a different key schema", spec.Name, t.Name)
		}
		return existing, nil
	}
	t.AddIndex(spec, p.ctx.Config.Params)
	if synthesized {
		p.ctx.Logger.Info("secondary index synthesized",
			"table", t.Name,
			"index", spec.Name,
			"partition_key", spec.PartitionKey.Name,
		)
	}
	return spec, nil
}

// supports checks that store can hold spec.
func supports(c *directive.Config, store *gen.Storage, spec *dynamodb.IndexSpec) error {
	switch {
	case !store.SchemaMode.Support(gen.Indexes):
		return c.Errorf(gen.KindUnsupported, "store %s has no secondary indexes", store)
	case len(spec.SortKeyFields) > 1 && !store.SchemaMode.Support(gen.CompositeKeys):
		return c.Errorf(gen.KindUnsupported, "store %s has no composite sort keys", store)
	}
	return nil
}

// attribute returns the stored name of a field of typeName.
func (p *Planner) attribute(typeName, field string) string {
	return p.ctx.Mappings.Original(typeName, field)
}

func (p *Planner) attributes(typeName string, fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = p.attribute(typeName, f)
	}
	return out
}
