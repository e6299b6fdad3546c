package schema

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vektah/gqlparser/v2/parser"
)

// Parse parses a single schema source.
func Parse(name, input string) (*ast.SchemaDocument, error) {
	return Load(&ast.Source{Name: name, Input: input})
}

// Load parses and merges the given sources into one document.
func Load(sources ...*ast.Source) (*ast.SchemaDocument, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("schema: no sources")
	}
	doc, err := parser.ParseSchemas(sources...)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return doc, nil
}

// Print formats doc as GraphQL SDL.
func Print(doc *ast.SchemaDocument) string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	return buf.String()
}

// Clone returns a deep copy of the parts of doc the compiler rewrites:
// definitions, fields, arguments, directives, values and types. Positions and
// comments are shared.
func Clone(doc *ast.SchemaDocument) *ast.SchemaDocument {
	if doc == nil {
		return nil
	}
	c := *doc
	c.Schema = slices.Clone(doc.Schema)
	c.SchemaExtension = slices.Clone(doc.SchemaExtension)
	c.Directives = slices.Clone(doc.Directives)
	c.Definitions = cloneDefinitions(doc.Definitions)
	c.Extensions = cloneDefinitions(doc.Extensions)
	return &c
}

func cloneDefinitions(defs ast.DefinitionList) ast.DefinitionList {
	if defs == nil {
		return nil
	}
	out := make(ast.DefinitionList, len(defs))
	for i, d := range defs {
		out[i] = CloneDefinition(d)
	}
	return out
}

// CloneDefinition returns a deep copy of d.
func CloneDefinition(d *ast.Definition) *ast.Definition {
	if d == nil {
		return nil
	}
	c := *d
	c.Directives = CloneDirectives(d.Directives)
	c.Interfaces = slices.Clone(d.Interfaces)
	c.Types = slices.Clone(d.Types)
	if d.Fields != nil {
		c.Fields = make(ast.FieldList, len(d.Fields))
		for i, f := range d.Fields {
			c.Fields[i] = CloneField(f)
		}
	}
	if d.EnumValues != nil {
		c.EnumValues = make(ast.EnumValueList, len(d.EnumValues))
		for i, v := range d.EnumValues {
			ev := *v
			ev.Directives = CloneDirectives(v.Directives)
			c.EnumValues[i] = &ev
		}
	}
	return &c
}

// CloneField returns a deep copy of f.
func CloneField(f *ast.FieldDefinition) *ast.FieldDefinition {
	if f == nil {
		return nil
	}
	c := *f
	c.Type = CloneType(f.Type)
	c.DefaultValue = CloneValue(f.DefaultValue)
	c.Directives = CloneDirectives(f.Directives)
	if f.Arguments != nil {
		c.Arguments = make(ast.ArgumentDefinitionList, len(f.Arguments))
		for i, a := range f.Arguments {
			ac := *a
			ac.Type = CloneType(a.Type)
			ac.DefaultValue = CloneValue(a.DefaultValue)
			ac.Directives = CloneDirectives(a.Directives)
			c.Arguments[i] = &ac
		}
	}
	return &c
}

// CloneDirectives returns a deep copy of list.
func CloneDirectives(list ast.DirectiveList) ast.DirectiveList {
	if list == nil {
		return nil
	}
	out := make(ast.DirectiveList, len(list))
	for i, d := range list {
		c := *d
		if d.Arguments != nil {
			c.Arguments = make(ast.ArgumentList, len(d.Arguments))
			for j, a := range d.Arguments {
				ac := *a
				ac.Value = CloneValue(a.Value)
				c.Arguments[j] = &ac
			}
		}
		out[i] = &c
	}
	return out
}

// CloneValue returns a deep copy of v.
func CloneValue(v *ast.Value) *ast.Value {
	if v == nil {
		return nil
	}
	c := *v
	if v.Children != nil {
		c.Children = make(ast.ChildValueList, len(v.Children))
		for i, ch := range v.Children {
			cc := *ch
			cc.Value = CloneValue(ch.Value)
			c.Children[i] = &cc
		}
	}
	return &c
}

// CloneType returns a deep copy of t.
func CloneType(t *ast.Type) *ast.Type {
	if t == nil {
		return nil
	}
	c := *t
	c.Elem = CloneType(t.Elem)
	return &c
}
