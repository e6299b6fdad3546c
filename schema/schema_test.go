package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/schema"
)

const blog = `
enum Status { DRAFT LIVE }

scalar Slug

type Post @model @mapsTo(name: "Article") @auth(rules: [{allow: owner}]) {
  slug: Slug! @primaryKey(sortKeyFields: ["createdAt"])
  createdAt: AWSDateTime!
  status: Status
  authorId: ID @index(name: "byAuthor", sortKeyFields: ["createdAt", "status"])
  comments: [Comment] @hasMany
}

type Comment @model {
  id: ID!
  content: String
}

type Meta {
  version: Int
}
`

func parse(t *testing.T) *ast.SchemaDocument {
	t.Helper()
	doc, err := schema.Parse("blog.graphql", blog)
	require.NoError(t, err)
	return doc
}

func TestParse(t *testing.T) {
	doc := parse(t)
	require.NotNil(t, schema.Object(doc, "Post"))
	assert.Nil(t, schema.Object(doc, "Status"), "enums are not objects")
	assert.NotNil(t, schema.Definition(doc, "Status"))

	_, err := schema.Parse("bad.graphql", "type {")
	assert.Error(t, err)
	_, err = schema.Load()
	assert.Error(t, err)
}

func TestLoadMergesSources(t *testing.T) {
	doc, err := schema.Load(
		&ast.Source{Name: "a.graphql", Input: "type A @model { id: ID! }"},
		&ast.Source{Name: "b.graphql", Input: "type B @model { id: ID! }"},
	)
	require.NoError(t, err)
	assert.NotNil(t, schema.Object(doc, "A"))
	assert.NotNil(t, schema.Object(doc, "B"))
}

func TestClone(t *testing.T) {
	doc := parse(t)
	c := schema.Clone(doc)

	post := schema.Object(c, "Post")
	post.Fields = append(post.Fields, schema.NewField("extra", schema.NamedType("String", false)))
	post.Fields.ForName("comments").Type.Elem.NamedType = "Other"
	schema.SetArg(schema.Directive(post.Directives, "mapsTo"), "name", schema.StringValue("Changed"))
	c.Definitions = append(c.Definitions, &ast.Definition{Kind: ast.Object, Name: "New"})

	orig := schema.Object(doc, "Post")
	assert.Nil(t, orig.Fields.ForName("extra"))
	assert.Equal(t, "Comment", orig.Fields.ForName("comments").Type.Name())
	assert.Equal(t, "Article", schema.MappedName(orig))
	assert.Nil(t, schema.Definition(doc, "New"))
	assert.Nil(t, schema.Clone(nil))
}

func TestPrint(t *testing.T) {
	doc := parse(t)
	out := schema.Print(doc)
	assert.Contains(t, out, "type Post @model")
	assert.Contains(t, out, "@hasMany")

	again, err := schema.Parse("printed.graphql", out)
	require.NoError(t, err)
	assert.Len(t, again.Definitions, len(doc.Definitions))
}

func TestModel(t *testing.T) {
	doc := parse(t)
	post := schema.Object(doc, "Post")
	comment := schema.Object(doc, "Comment")

	assert.True(t, schema.IsModel(post))
	assert.False(t, schema.IsModel(schema.Object(doc, "Meta")))
	assert.False(t, schema.IsModel(nil))

	pk := schema.PrimaryKey(post)
	assert.True(t, pk.Primary())
	assert.Equal(t, "slug", pk.PartitionField())
	assert.Equal(t, []string{"createdAt"}, pk.SortFields())
	assert.Equal(t, []string{"id"}, schema.PrimaryKey(comment).Fields)

	idx, ok := schema.IndexNamed(post, "byAuthor")
	require.True(t, ok)
	assert.Equal(t, []string{"authorId", "createdAt", "status"}, idx.Fields)
	_, ok = schema.IndexNamed(post, "missing")
	assert.False(t, ok)
	idx, ok = schema.IndexNamed(post, "")
	require.True(t, ok)
	assert.Equal(t, pk, idx)

	assert.Equal(t, "Article", schema.MappedName(post))
	assert.True(t, schema.IsRenamed(post))
	assert.False(t, schema.IsRenamed(comment))

	rules := schema.AuthRules(post)
	require.Len(t, rules, 1)
	assert.Equal(t, ast.ObjectValue, rules[0].Kind)
	assert.Nil(t, schema.AuthRules(comment))

	assert.Equal(t, "Slug", schema.FieldType(post, "slug"))
	assert.Empty(t, schema.FieldType(post, "nope"))
}

func TestTypes(t *testing.T) {
	doc := parse(t)
	assert.True(t, schema.IsScalarOrEnum(doc, "ID"))
	assert.True(t, schema.IsScalarOrEnum(doc, "AWSDateTime"))
	assert.True(t, schema.IsScalarOrEnum(doc, "Status"))
	assert.True(t, schema.IsScalarOrEnum(doc, "Slug"))
	assert.False(t, schema.IsScalarOrEnum(doc, "Comment"))
	assert.False(t, schema.IsScalarOrEnum(doc, "Unknown"))

	comments := schema.Object(doc, "Post").Fields.ForName("comments")
	assert.True(t, schema.IsList(comments.Type))
	assert.Equal(t, "Comment", schema.BaseType(comments.Type))
	assert.False(t, schema.IsList(schema.NamedType("ID", true)))
	assert.Empty(t, schema.BaseType(nil))
}

func TestDirectiveArgs(t *testing.T) {
	doc, err := schema.Parse("args.graphql", `
type T {
  a: ID @hasOne(fields: ["x", "y"])
  b: ID @hasOne(fields: "x")
  c: ID @hasOne(fields: [1])
  d: ID @hasMany(limit: 5, indexName: "byT")
  e: ID @hasMany(limit: "5", fields: null)
}`)
	require.NoError(t, err)
	def := schema.Object(doc, "T")
	dir := func(field string) *ast.Directive { return def.Fields.ForName(field).Directives[0] }

	got, ok, err := schema.StringsArg(dir("a"), "fields")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, got)

	got, ok, err = schema.StringsArg(dir("b"), "fields")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, got)

	_, ok, err = schema.StringsArg(dir("c"), "fields")
	assert.True(t, ok)
	assert.ErrorContains(t, err, "list of strings")

	_, ok, err = schema.StringsArg(dir("a"), "references")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = schema.StringsArg(dir("e"), "fields")
	require.NoError(t, err)
	assert.False(t, ok, "null reads as absent")

	n, ok, err := schema.IntArg(dir("d"), "limit")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 5, n)
	_, _, err = schema.IntArg(dir("e"), "limit")
	assert.Error(t, err)

	name, ok := schema.StringArg(dir("d"), "indexName")
	assert.True(t, ok)
	assert.Equal(t, "byT", name)

	d := dir("d")
	schema.SetArg(d, "limit", schema.IntValue(10))
	schema.SetArg(d, "fields", schema.StringListValue("p", "q"))
	n, _, _ = schema.IntArg(d, "limit")
	assert.Equal(t, 10, n)
	got, _, _ = schema.StringsArg(d, "fields")
	assert.Equal(t, []string{"p", "q"}, got)
}

func TestDirectiveList(t *testing.T) {
	list := ast.DirectiveList{schema.NewDirective("model"), schema.NewDirective("auth"), schema.NewDirective("model")}
	assert.True(t, schema.HasDirective(list, "auth"))
	out := schema.RemoveDirective(list, "model")
	require.Len(t, out, 1)
	assert.Equal(t, "auth", out[0].Name)
	assert.Len(t, list, 3)
}

func TestEnsureDefinition(t *testing.T) {
	doc := parse(t)
	n := len(doc.Definitions)
	got := schema.EnsureDefinition(doc, &ast.Definition{Kind: ast.Enum, Name: "Status"})
	assert.Len(t, doc.Definitions, n)
	assert.Len(t, got.EnumValues, 2)

	got = schema.EnsureDefinition(doc, &ast.Definition{Kind: ast.Enum, Name: "ModelSortDirection"})
	assert.Len(t, doc.Definitions, n+1)
	assert.Equal(t, "ModelSortDirection", got.Name)
}

func TestCase(t *testing.T) {
	tests := []struct{ in, lower, upper string }{
		{"", "", ""},
		{"Author", "author", "Author"},
		{"books", "books", "Books"},
		{"ID", "iD", "ID"},
		{"Élan", "élan", "Élan"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.lower, schema.LowerFirst(tt.in), tt.in)
		assert.Equal(t, tt.upper, schema.UpperFirst(tt.in), tt.in)
	}
}
