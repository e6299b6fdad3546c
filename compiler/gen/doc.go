// Package gen holds the shared state and artifacts of relation compilation.
//
// A compilation runs over a Context: the configuration, a working copy of
// the schema document and the memoized per-model outputs.
//
//   - Table: the key schema and synthesized secondary indexes of a model
//   - DataSource: the backend bound to a model's resolvers
//   - Resolver: the compiled query or invocation plan of a relation field
//   - FieldMappings: attribute renames of models stored under another name
//
// The Writer renders an Output into the target directory:
//
//	schema.graphql   transformed schema
//	tables.json      tables, indexes and index overrides
//	resolvers.json   data sources and resolver plans
//	mappings.yaml    field mappings of renamed models
//	keys_gen.go      Go constants (bindings feature)
//
// Compilation errors are reported as DirectiveError values carrying an
// ErrorKind; use KindOf or errors.Is with the sentinel errors to classify
// them.
package gen
