package gen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"
)

// BindingsFile is the name of the generated Go bindings file.
const BindingsFile = "keys_gen.go"

// Bindings renders the Go constants of the compiled tables: table names,
// index names and the key attributes of each index.
func Bindings(out *Output) ([]byte, error) {
	pkg := out.Config.Package
	if pkg == "" {
		pkg = packageName(out.Config.Target)
	}
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by relgen, DO NOT EDIT.")
	for _, t := range out.Tables {
		f.Commentf("%s stores %s records.", exported(t.TypeName)+"Table", t.TypeName)
		f.Const().Id(exported(t.TypeName) + "Table").Op("=").Lit(t.Name)
		if len(t.Indexes) == 0 {
			continue
		}
		f.Commentf("Indexes of %s.", t.Name)
		f.Const().DefsFunc(func(g *jen.Group) {
			seen := make(map[string]int)
			for _, idx := range t.Indexes {
				id := exported(t.TypeName) + exported(strings.TrimPrefix(idx.Name, "gsi-"))
				if n := seen[id]; n > 0 {
					seen[id]++
					id = fmt.Sprintf("%s%d", id, n+1)
				} else {
					seen[id] = 1
				}
				g.Id(id + "Index").Op("=").Lit(idx.Name)
				g.Id(id + "PartitionKey").Op("=").Lit(idx.PartitionKey.Name)
				if idx.SortKey != nil {
					g.Id(id + "SortKey").Op("=").Lit(idx.SortKey.Name)
				}
			}
		})
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", BindingsFile, err)
	}
	return imports.Process(BindingsFile, buf.Bytes(), nil)
}

func exported(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func packageName(dir string) string {
	base := filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "relgen"
	}
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, base)
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return "relgen"
	}
	return name
}
