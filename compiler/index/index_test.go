package index

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/compiler/directive"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/validate"
	"github.com/syssam/relgen/dialect/dynamodb"
	"github.com/syssam/relgen/schema"
)

const library = `
type Author @model @mapsTo(name: "Writer") {
  id: ID!
  books: [Book] @hasMany(references: ["authorId"])
  editions: [Edition] @hasMany(indexName: "byAuthor", fields: ["id"])
}

type Publisher @model {
  name: String! @primaryKey(sortKeyFields: ["country", "founded"])
  country: String!
  founded: Int!
  books: [Book] @hasMany(references: ["publisherName", "publisherCountry", "publisherFounded"])
  catalog: [Book] @hasMany(references: ["publisherName", "publisherCountry"])
}

type Book @model {
  id: ID!
  authorId: ID
  publisherName: String
  publisherCountry: String
  publisherFounded: Int
}

type Edition @model {
  id: ID!
  authorId: ID! @index(name: "byAuthor", sortKeyFields: ["year"])
  year: Int!
}
`

func setup(t *testing.T, opts ...gen.Option) (*gen.Context, *bytes.Buffer) {
	t.Helper()
	doc, err := schema.Parse("schema.graphql", library)
	require.NoError(t, err)
	var buf bytes.Buffer
	opts = append([]gen.Option{gen.WithLogger(slog.New(slog.NewTextHandler(&buf, nil)))}, opts...)
	cfg, err := gen.NewConfig(opts...)
	require.NoError(t, err)
	return gen.NewContext(cfg, doc), &buf
}

func relation(t *testing.T, ctx *gen.Context, typeName, field string) *directive.Config {
	t.Helper()
	obj := ctx.Object(typeName)
	f := obj.Fields.ForName(field)
	c, err := directive.Parse(obj, f, f.Directives[0])
	require.NoError(t, err)
	require.NoError(t, validate.Models(ctx, c))
	return c
}

func TestName(t *testing.T) {
	assert.Equal(t, "gsi-Author.books", Name("Author", "books"))
}

func TestEnsure(t *testing.T) {
	ctx, logs := setup(t)
	p := NewPlanner(ctx)
	c := relation(t, ctx, "Author", "books")

	spec, err := p.Ensure(c)
	require.NoError(t, err)
	assert.Equal(t, "gsi-Writer.books", spec.Name, "named after the stored model name")
	assert.Equal(t, dynamodb.KeyAttribute{Name: "authorId", Type: types.ScalarAttributeTypeS}, spec.PartitionKey)
	assert.Nil(t, spec.SortKey)
	assert.Equal(t, types.ProjectionTypeAll, spec.Projection)
	assert.Contains(t, logs.String(), "secondary index synthesized")

	again, err := NewPlanner(ctx).Ensure(c)
	require.NoError(t, err)
	assert.Same(t, spec, again)

	table, err := ctx.Table("Book")
	require.NoError(t, err)
	assert.Len(t, table.Indexes, 1)
	assert.Len(t, table.Overrides, 1)
	assert.Equal(t, "gsi-Writer.books", aws.ToString(table.Overrides[0].IndexName))
}

func TestEnsureSortKey(t *testing.T) {
	ctx, _ := setup(t, gen.WithFeatures(gen.FeatureRespectPrimaryKeyAttributes))
	p := NewPlanner(ctx)

	spec, err := p.Ensure(relation(t, ctx, "Publisher", "books"))
	require.NoError(t, err)
	assert.Equal(t, "publisherName", spec.PartitionKey.Name)
	require.NotNil(t, spec.SortKey)
	assert.Equal(t, "publisherCountry#publisherFounded", spec.SortKey.Name)
	assert.Equal(t, types.ScalarAttributeTypeS, spec.SortKey.Type)
	assert.Equal(t, []string{"publisherCountry", "publisherFounded"}, spec.SortKeyFields)

	spec, err = p.Ensure(relation(t, ctx, "Publisher", "catalog"))
	require.NoError(t, err)
	require.NotNil(t, spec.SortKey)
	assert.Equal(t, dynamodb.KeyAttribute{Name: "publisherCountry", Type: types.ScalarAttributeTypeS}, *spec.SortKey)
	assert.Nil(t, spec.SortKeyFields)
}

func TestEnsureRespectPrimaryKeyType(t *testing.T) {
	doc, err := schema.Parse("schema.graphql", `
type Team @model {
  number: Int! @primaryKey
  players: [Player] @hasMany(references: ["teamNumber"])
}

type Player @model {
  id: ID!
  teamNumber: Int
}
`)
	require.NoError(t, err)
	for _, tt := range []struct {
		opts []gen.Option
		want types.ScalarAttributeType
	}{
		{want: types.ScalarAttributeTypeS},
		{opts: []gen.Option{gen.WithFeatures(gen.FeatureRespectPrimaryKeyAttributes)}, want: types.ScalarAttributeTypeN},
	} {
		ctx := gen.NewContext(gen.MustNewConfig(tt.opts...), doc)
		c := relation(t, ctx, "Team", "players")
		spec, err := NewPlanner(ctx).Ensure(c)
		require.NoError(t, err)
		assert.Equal(t, tt.want, spec.PartitionKey.Type)
	}
}

func TestEnsureShapeConflict(t *testing.T) {
	ctx, _ := setup(t)
	table, err := ctx.Table("Book")
	require.NoError(t, err)
	table.AddIndex(&dynamodb.IndexSpec{
		Name:         "gsi-Writer.books",
		PartitionKey: dynamodb.KeyAttribute{Name: "writerId", Type: types.ScalarAttributeTypeS},
		Projection:   types.ProjectionTypeAll,
	}, ctx.Config.Params)

	_, err = NewPlanner(ctx).Ensure(relation(t, ctx, "Author", "books"))
	require.Error(t, err)
	assert.ErrorIs(t, err, gen.ErrUnsupported)
	assert.Len(t, table.Indexes, 1)
}

func TestDeclared(t *testing.T) {
	ctx, logs := setup(t)
	c := relation(t, ctx, "Author", "editions")
	idx, err := validate.RelatedIndex(c)
	require.NoError(t, err)

	spec, err := NewPlanner(ctx).Declared(c, idx)
	require.NoError(t, err)
	assert.Equal(t, "byAuthor", spec.Name)
	assert.Equal(t, dynamodb.KeyAttribute{Name: "authorId", Type: types.ScalarAttributeTypeS}, spec.PartitionKey)
	require.NotNil(t, spec.SortKey)
	assert.Equal(t, dynamodb.KeyAttribute{Name: "year", Type: types.ScalarAttributeTypeN}, *spec.SortKey)
	assert.NotContains(t, logs.String(), "secondary index synthesized", "declared indexes are not synthesized")

	table, err := ctx.Table("Edition")
	require.NoError(t, err)
	assert.Same(t, spec, table.Index("byAuthor"))
	assert.Len(t, table.AttributeDefinitions, 2)
}

func TestEnsureMappedAttributes(t *testing.T) {
	ctx, _ := setup(t)
	require.NoError(t, ctx.Mappings.Add("Book", "authorId", "writerId"))
	spec, err := NewPlanner(ctx).Ensure(relation(t, ctx, "Author", "books"))
	require.NoError(t, err)
	assert.Equal(t, "writerId", spec.PartitionKey.Name)
}

func TestEnsureStoreSupport(t *testing.T) {
	ctx, _ := setup(t, gen.WithModelStore("Book", "postgres"))
	_, err := NewPlanner(ctx).Ensure(relation(t, ctx, "Author", "books"))
	assert.ErrorIs(t, err, gen.ErrUnsupported)
	_, err = ctx.Table("Book")
	require.NoError(t, err)

	c := relation(t, ctx, "Publisher", "books")
	composite := &dynamodb.IndexSpec{Name: "byPublisher", SortKeyFields: []string{"publisherCountry", "publisherFounded"}}
	assert.ErrorIs(t, supports(c, &gen.Storage{Name: "kv", SchemaMode: gen.Indexes}, composite), gen.ErrUnsupported)
	assert.NoError(t, supports(c, &gen.Storage{Name: "kv", SchemaMode: gen.Indexes}, &dynamodb.IndexSpec{Name: "byPublisher"}))
	assert.NoError(t, supports(c, &gen.Storage{Name: "kv", SchemaMode: gen.Indexes | gen.CompositeKeys}, composite))
}
