// Package schema reads, copies and prints GraphQL schema documents annotated
// with model and relationship directives.
//
// The compiler never edits the document it was given. Every pass works on a
// copy made with Clone:
//
//	doc, err := schema.Parse("schema.graphql", src)
//	if err != nil {
//	    return err
//	}
//	draft := schema.Clone(doc)
//	// ... rewrite draft ...
//	fmt.Print(schema.Print(draft))
//
// # Models
//
// A model is an object type carrying @model. Its primary key is the field
// annotated with @primaryKey (plus its sortKeyFields), or "id" when none is:
//
//	type Post @model @mapsTo(name: "Article") {
//	    slug: String! @primaryKey(sortKeyFields: ["createdAt"])
//	    createdAt: AWSDateTime!
//	    authorId: ID @index(name: "byAuthor", sortKeyFields: ["createdAt"])
//	}
//
// PrimaryKey, Indexes, MappedName and AuthRules read this metadata.
//
// # Builders
//
// NamedType, ListType, NewField, NewDirective and the value helpers build AST
// nodes for fields and types synthesized by the compiler.
package schema
