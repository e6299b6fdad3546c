// Command relgen compiles GraphQL schemas annotated with relationship
// directives into tables, secondary indexes and relation resolvers.
//
// Usage:
//
//	relgen generate [--config relgen.yml] [--watch] [schema files or dirs...]
//	relgen validate [schema files or dirs...]
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
