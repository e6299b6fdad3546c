// Package sql resolves relations of models stored in a relational database.
//
// Relational models are not queried directly. Each relation field compiles to
// an InvokePlan: a request addressed to an external SQL function that owns
// the database connection. The plan builds the request payload from the
// parent record and the field arguments, and interprets the function's
// response as a single record or a page of records.
//
//	plan := &sql.InvokePlan{
//	    TypeName:   "Author",
//	    FieldName:  "books",
//	    Function:   "relgen-sql",
//	    Operation:  sql.OpList,
//	    Table:      "Book",
//	    Conditions: []sql.Condition{{Field: "authorId", Value: dialect.ValueRef{Attribute: "id"}}},
//	    Limit:      100,
//	}
//	page, err := plan.Resolve(ctx, invoker, sql.Env{Source: author})
//
// # Invokers
//
// Invoker is the transport to the function. A Recorder wraps any Invoker
// with per-field statistics and payload logging:
//
//	rec := sql.NewRecorder(lambdaInvoker, logger, 200*time.Millisecond)
//	page, err := plan.Resolve(ctx, rec, env)
//	fmt.Println(rec.Stats()["Author.books"].Avg())
package sql
