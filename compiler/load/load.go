// Package load reads GraphQL schema files from disk.
package load

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/relgen/schema"
)

// Extensions are the file extensions of schema files.
var Extensions = []string{".graphql", ".graphqls", ".gql"}

// ErrNoSources is returned when the patterns match no schema file.
var ErrNoSources = errors.New("load: no schema files found")

// IsSchemaFile reports whether path has a schema file extension.
func IsSchemaFile(path string) bool {
	return slices.Contains(Extensions, filepath.Ext(path))
}

// Files expands patterns into schema file paths, sorted and deduplicated.
// A pattern is a file, a directory walked recursively or a glob.
func Files(patterns ...string) ([]string, error) {
	var files []string
	for _, p := range patterns {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("load: bad pattern %q: %w", p, err)
		}
		if matches == nil && !strings.ContainsAny(p, "*?[") {
			// A plain path; report it missing below.
			matches = []string{p}
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, fmt.Errorf("load: %w", err)
			}
			if !info.IsDir() {
				files = append(files, m)
				continue
			}
			err = filepath.WalkDir(m, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && IsSchemaFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("load: walk %s: %w", m, err)
			}
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Sources reads the schema files matched by patterns.
func Sources(patterns ...string) ([]*ast.Source, error) {
	files, err := Files(patterns...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSources
	}
	sources := make([]*ast.Source, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		sources = append(sources, &ast.Source{Name: f, Input: string(b)})
	}
	return sources, nil
}

// Schema reads and parses the schema files matched by patterns into one
// document.
func Schema(patterns ...string) (*ast.SchemaDocument, error) {
	sources, err := Sources(patterns...)
	if err != nil {
		return nil, err
	}
	return schema.Load(sources...)
}
