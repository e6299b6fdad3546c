// Package compiler is the entry point of relgen: it compiles a schema
// annotated with relationship directives into the transformed schema, the
// table and index definitions and the relation resolvers.
package compiler

import (
	"context"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/compiler/gen"
	"github.com/syssam/relgen/compiler/load"
	"github.com/syssam/relgen/compiler/transformer"
)

// Compile compiles doc with the given options. doc is not modified. On error
// no output is returned.
func Compile(doc *ast.SchemaDocument, opts ...gen.Option) (*gen.Output, error) {
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	return CompileConfig(cfg, doc)
}

// CompileConfig is Compile with a prepared configuration.
func CompileConfig(cfg *gen.Config, doc *ast.SchemaDocument) (*gen.Output, error) {
	if doc == nil {
		return nil, gen.NewSchemaError("", "", "empty schema document", nil)
	}
	ctx := gen.NewContext(cfg, doc)
	if err := transformer.Run(ctx); err != nil {
		return nil, err
	}
	out := ctx.Output()
	ctx.Logger.Info("schema compiled",
		"tables", len(out.Tables),
		"resolvers", len(out.Resolvers),
		"join_types", len(out.JoinTypes),
	)
	return out, nil
}

// Generate compiles doc and writes the artifacts to the configured target.
func Generate(ctx context.Context, doc *ast.SchemaDocument, opts ...gen.Option) (*gen.Output, error) {
	out, err := Compile(doc, opts...)
	if err != nil {
		return nil, err
	}
	if err := gen.Write(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateFiles loads the schema files matched by patterns and generates
// their artifacts.
func GenerateFiles(ctx context.Context, patterns []string, opts ...gen.Option) (*gen.Output, error) {
	doc, err := load.Schema(patterns...)
	if err != nil {
		return nil, fmt.Errorf("relgen: load schema: %w", err)
	}
	return Generate(ctx, doc, opts...)
}
