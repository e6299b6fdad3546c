package strategy

import (
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/compiler/directive"
	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/resolver"
	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/schema"
)

// SortDirectionEnum is the enum of the sortDirection argument.
const SortDirectionEnum = "ModelSortDirection"

// ConnectionName returns the page type of a list of typeName.
func ConnectionName(typeName string) string { return "Model" + typeName + "Connection" }

// FilterInputName returns the filter input of typeName.
func FilterInputName(typeName string) string { return "Model" + typeName + "FilterInput" }

// ScalarFilterName returns the filter input of a scalar or enum.
func ScalarFilterName(scalar string) string { return "Model" + scalar + "Input" }

// Connection rewrites the to-many relation field of c into a paginated
// connection: its type becomes Model<T>Connection and it takes filter,
// sortDirection, limit and nextToken arguments. A sort key left open by the
// relation adds a key condition argument. Missing supporting types are added
// to the document.
func Connection(ctx *gen.Context, c *directive.Config, sortFields []string) error {
	doc, related := ctx.Doc, c.RelatedType
	ensureSortDirection(doc)
	ensureConnection(doc, related)
	ensureFilterInput(doc, related)

	f := c.Field
	f.Type = schema.NamedType(ConnectionName(related.Name), f.Type.NonNull)
	addArgument(f, dialect.ArgFilter, schema.NamedType(FilterInputName(related.Name), false))
	addArgument(f, dialect.ArgSortDirection, schema.NamedType(SortDirectionEnum, false))
	addArgument(f, dialect.ArgLimit, schema.NamedType("Int", false))
	addArgument(f, dialect.ArgNextToken, schema.NamedType("String", false))

	switch len(sortFields) {
	case 0:
	case 1:
		scalar := schema.FieldType(related, sortFields[0])
		addArgument(f, resolver.SortKeyArgument(sortFields), schema.NamedType(ensureKeyCondition(doc, scalar), false))
	default:
		addArgument(f, resolver.SortKeyArgument(sortFields), schema.NamedType(ensureCompositeKeyCondition(doc, related, sortFields), false))
	}
	return nil
}

func addArgument(f *ast.FieldDefinition, name string, t *ast.Type) {
	if f.Arguments.ForName(name) == nil {
		f.Arguments = append(f.Arguments, schema.NewArgument(name, t))
	}
}

func ensureSortDirection(doc *ast.SchemaDocument) {
	schema.EnsureDefinition(doc, &ast.Definition{
		Kind: ast.Enum,
		Name: SortDirectionEnum,
		EnumValues: ast.EnumValueList{
			{Name: "ASC"},
			{Name: "DESC"},
		},
	})
}

func ensureConnection(doc *ast.SchemaDocument, related *ast.Definition) {
	schema.EnsureDefinition(doc, &ast.Definition{
		Kind: ast.Object,
		Name: ConnectionName(related.Name),
		Fields: ast.FieldList{
			schema.NewField("items", schema.ListType(schema.NamedType(related.Name, false), true)),
			schema.NewField("nextToken", schema.NamedType("String", false)),
		},
	})
}

func ensureFilterInput(doc *ast.SchemaDocument, related *ast.Definition) {
	name := FilterInputName(related.Name)
	if doc.Definitions.ForName(name) != nil {
		return
	}
	input := &ast.Definition{Kind: ast.InputObject, Name: name}
	for _, f := range related.Fields {
		base := schema.BaseType(f.Type)
		if schema.IsList(f.Type) || !schema.IsScalarOrEnum(doc, base) {
			continue
		}
		input.Fields = append(input.Fields, schema.NewField(f.Name, schema.NamedType(EnsureScalarFilter(doc, base), false)))
	}
	input.Fields = append(input.Fields,
		schema.NewField("and", schema.ListType(schema.NamedType(name, false), false)),
		schema.NewField("or", schema.ListType(schema.NamedType(name, false), false)),
		schema.NewField("not", schema.NamedType(name, false)),
	)
	doc.Definitions = append(doc.Definitions, input)
}

// filterOperators returns the filter operators supported on scalar.
func filterOperators(doc *ast.SchemaDocument, scalar string) []string {
	if d := doc.Definitions.ForName(scalar); d != nil && d.Kind == ast.Enum {
		return []string{"eq", "ne"}
	}
	switch scalar {
	case "Boolean":
		return []string{"eq", "ne"}
	case "Int", "Float", "AWSTimestamp":
		return []string{"eq", "ne", "le", "lt", "ge", "gt", "between"}
	default:
		return []string{"eq", "ne", "le", "lt", "ge", "gt", "contains", "notContains", "between", "beginsWith"}
	}
}

// EnsureScalarFilter adds the filter input of a scalar or enum unless present
// and returns its name.
func EnsureScalarFilter(doc *ast.SchemaDocument, scalar string) string {
	name := ScalarFilterName(scalar)
	if doc.Definitions.ForName(name) != nil {
		return name
	}
	input := &ast.Definition{Kind: ast.InputObject, Name: name}
	for _, op := range filterOperators(doc, scalar) {
		t := schema.NamedType(scalar, false)
		if op == "between" {
			t = schema.ListType(t, false)
		}
		input.Fields = append(input.Fields, schema.NewField(op, t))
	}
	input.Fields = append(input.Fields, schema.NewField("attributeExists", schema.NamedType("Boolean", false)))
	doc.Definitions = append(doc.Definitions, input)
	return name
}

var keyOperators = []string{"eq", "le", "lt", "ge", "gt", "between", "beginsWith"}

func keyConditionInput(name string, operand func() *ast.Type) *ast.Definition {
	input := &ast.Definition{Kind: ast.InputObject, Name: name}
	for _, op := range keyOperators {
		t := operand()
		if op == "between" {
			t = schema.ListType(t, false)
		}
		input.Fields = append(input.Fields, schema.NewField(op, t))
	}
	return input
}

func ensureKeyCondition(doc *ast.SchemaDocument, scalar string) string {
	name := "Model" + scalar + "KeyConditionInput"
	schema.EnsureDefinition(doc, keyConditionInput(name, func() *ast.Type {
		return schema.NamedType(scalar, false)
	}))
	return name
}

func ensureCompositeKeyCondition(doc *ast.SchemaDocument, related *ast.Definition, fields []string) string {
	prefix := "Model" + related.Name + schema.UpperFirst(resolver.SortKeyArgument(fields))
	keyInput := &ast.Definition{Kind: ast.InputObject, Name: prefix + "CompositeKeyInput"}
	for _, f := range fields {
		keyInput.Fields = append(keyInput.Fields, schema.NewField(f, schema.NamedType(schema.FieldType(related, f), false)))
	}
	schema.EnsureDefinition(doc, keyInput)
	name := prefix + "CompositeKeyConditionInput"
	schema.EnsureDefinition(doc, keyConditionInput(name, func() *ast.Type {
		return schema.NamedType(keyInput.Name, false)
	}))
	return name
}
