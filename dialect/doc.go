// Package dialect identifies the backing stores a model can live in.
//
// Each model compiled by relgen is bound to exactly one store. The store's
// class decides which relationship strategy generates its resolvers:
//
//	dialect.DynamoDB = "dynamodb"  // key-value class
//	dialect.MySQL    = "mysql"     // relational class
//	dialect.Postgres = "postgres"  // relational class
//
// Key-value stores accept both the fields and references addressing modes of
// the relationship directives. Relational stores accept references only, and
// their resolvers are executed by an external SQL function.
//
// # Subpackages
//
//   - dialect/dynamodb: composite keys, key conditions, filters, index
//     specifications and the get/list query plans.
//   - dialect/sql: the invocation plan sent to the SQL function.
package dialect
