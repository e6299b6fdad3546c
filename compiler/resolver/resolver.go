// Package resolver builds the read plans of relation fields.
package resolver

import (
	"strings"

	"github.com/syssam/relgen/compiler/directive"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/dialect/dynamodb"
	"github.com/syssam/relgen/dialect/sql"
	"github.com/syssam/relgen/schema"
)

// Target is the key a relation queries on the related model.
type Target struct {
	// TypeName is the queried model.
	TypeName string
	// IndexName is empty for the primary key.
	IndexName    string
	PartitionKey string
	// SortKeyFields are the sort fields of the key, in order.
	SortKeyFields []string
	// Values are the source attributes holding the key values, partition
	// first. Sort values not given leave the sort key to the caller.
	Values []string
}

// SortKeyAttribute returns the stored sort key attribute of fields.
func SortKeyAttribute(fields []string) string {
	if len(fields) == 1 {
		return fields[0]
	}
	return dynamodb.CondensedName(fields...)
}

// SortKeyArgument returns the name of the caller argument conditioning the
// sort key made of fields.
func SortKeyArgument(fields []string) string {
	if len(fields) == 1 {
		return fields[0]
	}
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(schema.UpperFirst(f))
	}
	return schema.LowerFirst(b.String())
}

// Generator builds resolvers. Resolvers are memoized per (type, field) in
// the compilation context.
type Generator struct {
	ctx *gen.Context
}

// NewGenerator returns a generator over ctx.
func NewGenerator(ctx *gen.Context) *Generator {
	return &Generator{ctx: ctx}
}

// List returns the resolver of the to-many relation c querying t.
func (g *Generator) List(c *directive.Config, t Target) (*gen.Resolver, error) {
	return g.query(c, t, false)
}

// Single returns the resolver of the to-one relation c querying t. The
// relation resolves through a query expected to match one item.
func (g *Generator) Single(c *directive.Config, t Target) (*gen.Resolver, error) {
	return g.query(c, t, true)
}

func (g *Generator) query(c *directive.Config, t Target, single bool) (*gen.Resolver, error) {
	return g.ctx.Resolver(c.Object.Name, c.Field.Name, func() (*gen.Resolver, error) {
		table, err := g.ctx.Table(t.TypeName)
		if err != nil {
			return nil, err
		}
		ds, err := g.ctx.DataSource(t.TypeName)
		if err != nil {
			return nil, err
		}
		if len(t.Values) == 0 {
			return nil, c.Errorf(gen.KindArgument, "no key values")
		}
		sortFields := g.attributes(t.TypeName, t.SortKeyFields)
		plan := &dynamodb.QueryPlan{
			TypeName:  c.Object.Name,
			FieldName: c.Field.Name,
			TableName: table.Name,
			IndexName: t.IndexName,
			Single:    single,
			PartitionKey: dynamodb.KeyTerm{
				Attribute: g.attribute(t.TypeName, t.PartitionKey),
				Values:    refs(t.Values[:1]),
			},
		}
		switch {
		case len(t.Values) > 1:
			plan.SortKey = &dynamodb.KeyTerm{
				Attribute: SortKeyAttribute(sortFields),
				Values:    refs(t.Values[1:]),
			}
		case len(sortFields) > 0 && !single:
			plan.SortKeyArgument = SortKeyArgument(t.SortKeyFields)
			plan.SortKeyAttribute = SortKeyAttribute(sortFields)
			if len(sortFields) > 1 {
				plan.SortKeyFields = t.SortKeyFields
			}
		}
		if !single {
			plan.Limit = c.Limit
			if plan.Limit == 0 {
				plan.Limit = g.ctx.Config.Limit()
			}
		}
		g.ctx.Logger.Debug("resolver generated",
			"type", c.Object.Name,
			"field", c.Field.Name,
			"table", table.Name,
			"index", t.IndexName,
			"single", single,
		)
		return &gen.Resolver{
			TypeName:   c.Object.Name,
			FieldName:  c.Field.Name,
			DataSource: ds.Name,
			Query:      plan,
		}, nil
	})
}

// SQL returns the resolver of relation c on a relational store: an
// invocation of the SQL function matching columns of the related table to
// values of the source record.
func (g *Generator) SQL(c *directive.Config, columns, values []string) (*gen.Resolver, error) {
	return g.ctx.Resolver(c.Object.Name, c.Field.Name, func() (*gen.Resolver, error) {
		if len(columns) == 0 || len(columns) != len(values) {
			return nil, c.Errorf(gen.KindTypeMismatch, "%d columns do not match %d values", len(columns), len(values))
		}
		ds, err := g.ctx.DataSource(c.RelatedType.Name)
		if err != nil {
			return nil, err
		}
		plan := &sql.InvokePlan{
			TypeName:  c.Object.Name,
			FieldName: c.Field.Name,
			Function:  ds.Function,
			Operation: sql.OpGet,
			Table:     schema.MappedName(c.RelatedType),
		}
		if c.Kind.ToMany() {
			plan.Operation = sql.OpList
			plan.Limit = c.Limit
			if plan.Limit == 0 {
				plan.Limit = g.ctx.Config.Limit()
			}
		}
		for i, col := range columns {
			plan.Conditions = append(plan.Conditions, sql.Condition{
				Field: col,
				Value: dialect.ValueRef{Attribute: values[i], StashKey: values[i]},
			})
		}
		g.ctx.Logger.Debug("resolver generated",
			"type", c.Object.Name,
			"field", c.Field.Name,
			"function", plan.Function,
			"operation", plan.Operation,
		)
		return &gen.Resolver{
			TypeName:   c.Object.Name,
			FieldName:  c.Field.Name,
			DataSource: ds.Name,
			Invoke:     plan,
		}, nil
	})
}

func (g *Generator) attribute(typeName, field string) string {
	return g.ctx.Mappings.Original(typeName, field)
}

func (g *Generator) attributes(typeName string, fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = g.attribute(typeName, f)
	}
	return out
}

func refs(attrs []string) []dialect.ValueRef {
	out := make([]dialect.ValueRef, len(attrs))
	for i, a := range attrs {
		out[i] = dialect.ValueRef{Attribute: a, StashKey: a}
	}
	return out
}
