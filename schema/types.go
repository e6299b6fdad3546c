package schema

import (
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/vektah/gqlparser/v2/ast"
)

// Scalars built into GraphQL and the AWS scalars accepted by the store.
var builtinScalars = map[string]bool{
	"ID":           true,
	"String":       true,
	"Int":          true,
	"Float":        true,
	"Boolean":      true,
	"AWSDate":      true,
	"AWSTime":      true,
	"AWSDateTime":  true,
	"AWSTimestamp": true,
	"AWSEmail":     true,
	"AWSJSON":      true,
	"AWSURL":       true,
	"AWSPhone":     true,
	"AWSIPAddress": true,
}

// IsBuiltinScalar reports whether name is a predefined scalar.
func IsBuiltinScalar(name string) bool { return builtinScalars[name] }

// IsList reports whether t is a list type.
func IsList(t *ast.Type) bool { return t != nil && t.Elem != nil }

// BaseType returns the named type at the bottom of t.
func BaseType(t *ast.Type) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

// Object returns the object type definition with the given name, or nil.
func Object(doc *ast.SchemaDocument, name string) *ast.Definition {
	d := doc.Definitions.ForName(name)
	if d == nil || d.Kind != ast.Object {
		return nil
	}
	return d
}

// Definition returns the definition with the given name, or nil.
func Definition(doc *ast.SchemaDocument, name string) *ast.Definition {
	return doc.Definitions.ForName(name)
}

// IsScalarOrEnum reports whether name is a scalar or enum type of doc.
func IsScalarOrEnum(doc *ast.SchemaDocument, name string) bool {
	if builtinScalars[name] {
		return true
	}
	d := doc.Definitions.ForName(name)
	return d != nil && (d.Kind == ast.Scalar || d.Kind == ast.Enum)
}

// Directive returns the first directive named name on list, or nil.
func Directive(list ast.DirectiveList, name string) *ast.Directive {
	return list.ForName(name)
}

// HasDirective reports whether list carries a directive named name.
func HasDirective(list ast.DirectiveList, name string) bool {
	return list.ForName(name) != nil
}

// RemoveDirective drops every directive named name from list.
func RemoveDirective(list ast.DirectiveList, name string) ast.DirectiveList {
	out := list[:0:0]
	for _, d := range list {
		if d.Name != name {
			out = append(out, d)
		}
	}
	return out
}

// Arg returns the value of the named directive argument, or nil.
func Arg(d *ast.Directive, name string) *ast.Value {
	if d == nil {
		return nil
	}
	a := d.Arguments.ForName(name)
	if a == nil {
		return nil
	}
	return a.Value
}

// SetArg sets the named directive argument, replacing any existing value.
func SetArg(d *ast.Directive, name string, v *ast.Value) {
	if a := d.Arguments.ForName(name); a != nil {
		a.Value = v
		return
	}
	d.Arguments = append(d.Arguments, &ast.Argument{Name: name, Value: v})
}

// StringsArg reads a string list argument. A single string is read as a
// one-element list. The boolean is false when the argument is absent or null.
func StringsArg(d *ast.Directive, name string) ([]string, bool, error) {
	v := Arg(d, name)
	if v == nil || v.Kind == ast.NullValue {
		return nil, false, nil
	}
	switch v.Kind {
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return []string{v.Raw}, true, nil
	case ast.ListValue:
		out := make([]string, 0, len(v.Children))
		for _, ch := range v.Children {
			if ch.Value == nil || (ch.Value.Kind != ast.StringValue && ch.Value.Kind != ast.BlockValue) {
				return nil, true, fmt.Errorf("@%s argument %q must be a list of strings", d.Name, name)
			}
			out = append(out, ch.Value.Raw)
		}
		return out, true, nil
	default:
		return nil, true, fmt.Errorf("@%s argument %q must be a list of strings", d.Name, name)
	}
}

// StringArg reads a string argument.
func StringArg(d *ast.Directive, name string) (string, bool) {
	v := Arg(d, name)
	if v == nil || (v.Kind != ast.StringValue && v.Kind != ast.BlockValue) {
		return "", false
	}
	return v.Raw, true
}

// IntArg reads an integer argument.
func IntArg(d *ast.Directive, name string) (int, bool, error) {
	v := Arg(d, name)
	if v == nil || v.Kind == ast.NullValue {
		return 0, false, nil
	}
	if v.Kind != ast.IntValue {
		return 0, true, fmt.Errorf("@%s argument %q must be an integer", d.Name, name)
	}
	n, err := strconv.Atoi(v.Raw)
	if err != nil {
		return 0, true, fmt.Errorf("@%s argument %q: %w", d.Name, name, err)
	}
	return n, true, nil
}

// NamedType returns a reference to the named type.
func NamedType(name string, nonNull bool) *ast.Type {
	return &ast.Type{NamedType: name, NonNull: nonNull}
}

// ListType returns a list of elem.
func ListType(elem *ast.Type, nonNull bool) *ast.Type {
	return &ast.Type{Elem: elem, NonNull: nonNull}
}

// NewField returns a field definition.
func NewField(name string, t *ast.Type, directives ...*ast.Directive) *ast.FieldDefinition {
	return &ast.FieldDefinition{Name: name, Type: t, Directives: directives}
}

// NewArgument returns an argument definition.
func NewArgument(name string, t *ast.Type) *ast.ArgumentDefinition {
	return &ast.ArgumentDefinition{Name: name, Type: t}
}

// NewDirective returns a directive with the given arguments.
func NewDirective(name string, args ...*ast.Argument) *ast.Directive {
	return &ast.Directive{Name: name, Arguments: args}
}

// NewArg returns a directive argument.
func NewArg(name string, v *ast.Value) *ast.Argument {
	return &ast.Argument{Name: name, Value: v}
}

// StringValue returns a string literal.
func StringValue(s string) *ast.Value {
	return &ast.Value{Kind: ast.StringValue, Raw: s}
}

// IntValue returns an integer literal.
func IntValue(n int) *ast.Value {
	return &ast.Value{Kind: ast.IntValue, Raw: strconv.Itoa(n)}
}

// StringListValue returns a list of string literals.
func StringListValue(items ...string) *ast.Value {
	v := &ast.Value{Kind: ast.ListValue, Children: make(ast.ChildValueList, 0, len(items))}
	for _, s := range items {
		v.Children = append(v.Children, &ast.ChildValue{Value: StringValue(s)})
	}
	return v
}

// ListValue returns a list of the given values.
func ListValue(items ...*ast.Value) *ast.Value {
	v := &ast.Value{Kind: ast.ListValue, Children: make(ast.ChildValueList, 0, len(items))}
	for _, item := range items {
		v.Children = append(v.Children, &ast.ChildValue{Value: item})
	}
	return v
}

// EnsureDefinition appends d to doc unless a definition with its name exists.
// It returns the definition present in doc afterwards.
func EnsureDefinition(doc *ast.SchemaDocument, d *ast.Definition) *ast.Definition {
	if existing := doc.Definitions.ForName(d.Name); existing != nil {
		return existing
	}
	doc.Definitions = append(doc.Definitions, d)
	return d
}

// LowerFirst lowers the first letter of s.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

// UpperFirst upper-cases the first letter of s.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
