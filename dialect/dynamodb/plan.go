package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect"
)

// QueryAPI is the subset of the DynamoDB client a plan needs.
type QueryAPI interface {
	Query(ctx context.Context, params *dynamodbv2.QueryInput, optFns ...func(*dynamodbv2.Options)) (*dynamodbv2.QueryOutput, error)
}

// KeyTerm is an equality term on one key attribute. Several values are
// condensed into one.
type KeyTerm struct {
	Attribute string             `json:"attribute"`
	Values    []dialect.ValueRef `json:"values"`
}

// Env carries the request-time values a plan reads.
type Env struct {
	Source map[string]any
	Stash  map[string]any
	Args   map[string]any
	// AuthFilter is supplied by the authorization layer and is AND-ed with
	// the caller filter.
	AuthFilter expression.ConditionBuilder
}

// QueryPlan resolves one relation field against a table or index.
type QueryPlan struct {
	TypeName  string `json:"typeName"`
	FieldName string `json:"fieldName"`
	TableName string `json:"tableName"`
	// IndexName is empty when the table's primary key serves the query.
	IndexName    string   `json:"indexName,omitempty"`
	Single       bool     `json:"single"`
	PartitionKey KeyTerm  `json:"partitionKey"`
	SortKey      *KeyTerm `json:"sortKey,omitempty"`
	// SortKeyArgument names the caller argument holding a key condition on
	// SortKeyAttribute. It is set only when the connection does not fix the
	// sort key.
	SortKeyArgument  string   `json:"sortKeyArgument,omitempty"`
	SortKeyAttribute string   `json:"sortKeyAttribute,omitempty"`
	SortKeyFields    []string `json:"sortKeyFields,omitempty"`
	Limit            int      `json:"limit,omitempty"`
}

// Empty returns the result of a short-circuited plan.
func (p *QueryPlan) Empty() any {
	if p.Single {
		return nil
	}
	return dialect.EmptyPage()
}

// Request builds the query for env. It returns a nil input when a required
// key value is null, in which case the relation is absent and Empty is the
// result.
func (p *QueryPlan) Request(env Env) (*dynamodbv2.QueryInput, error) {
	if len(p.PartitionKey.Values) == 0 {
		return nil, fmt.Errorf("plan %s.%s: missing partition key value", p.TypeName, p.FieldName)
	}
	pk := p.PartitionKey.Values[0].Resolve(env.Source, env.Stash)
	if pk == nil {
		return nil, nil
	}
	key := expression.Key(p.PartitionKey.Attribute).Equal(expression.Value(pk))
	switch {
	case p.SortKey != nil:
		sk, ok := p.sortKeyValue(env)
		if !ok {
			return nil, nil
		}
		key = key.And(expression.Key(p.SortKey.Attribute).Equal(expression.Value(sk)))
	case p.SortKeyArgument != "":
		if arg, ok := env.Args[p.SortKeyArgument].(map[string]any); ok && len(arg) > 0 {
			cond, err := SortKeyCondition(p.SortKeyAttribute, p.SortKeyFields, arg)
			if err != nil {
				return nil, err
			}
			key = key.And(cond)
		}
	}
	b := expression.NewBuilder().WithKeyCondition(key)

	var caller expression.ConditionBuilder
	if f, ok := env.Args[dialect.ArgFilter].(map[string]any); ok {
		c, err := FilterCondition(f)
		if err != nil {
			return nil, err
		}
		caller = c
	}
	if filter := And(env.AuthFilter, caller); filter.IsSet() {
		b = b.WithFilter(filter)
	}
	expr, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("plan %s.%s: build expression: %w", p.TypeName, p.FieldName, err)
	}
	in := &dynamodbv2.QueryInput{
		TableName:                aws.String(p.TableName),
		KeyConditionExpression:   expr.KeyCondition(),
		FilterExpression:         expr.Filter(),
		ExpressionAttributeNames: expr.Names(),
		ScanIndexForward:         aws.Bool(!dialect.Descending(env.Args)),
	}
	if values := expr.Values(); len(values) > 0 {
		in.ExpressionAttributeValues = values
	}
	if p.IndexName != "" {
		in.IndexName = aws.String(p.IndexName)
	}
	if !p.Single {
		limit := p.Limit
		if n, ok := dialect.IntArg(env.Args, dialect.ArgLimit); ok {
			limit = n
		}
		if limit > 0 {
			in.Limit = aws.Int32(int32(limit))
		}
		if token, ok := env.Args[dialect.ArgNextToken].(string); ok && token != "" {
			start, err := DecodeToken(token)
			if err != nil {
				return nil, err
			}
			in.ExclusiveStartKey = start
		}
	}
	return in, nil
}

func (p *QueryPlan) sortKeyValue(env Env) (any, bool) {
	refs := p.SortKey.Values
	if len(refs) == 1 {
		v := refs[0].Resolve(env.Source, env.Stash)
		if v == nil && p.Single {
			return nil, false
		}
		if v == nil {
			return None, true
		}
		return v, true
	}
	values := make([]any, len(refs))
	for i, r := range refs {
		values[i] = r.Resolve(env.Source, env.Stash)
		if values[i] == nil && p.Single {
			return nil, false
		}
	}
	return Condense(values...), true
}

// Response interprets a query result. A to-one relation resolves to its
// item only when exactly one item was scanned and returned. One scanned item
// filtered down to none means the caller may not see it, which is reported
// as relgen.ErrUnauthorized. Anything else is an absent relation.
func (p *QueryPlan) Response(out *dynamodbv2.QueryOutput) (any, error) {
	var items []map[string]any
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("plan %s.%s: decode items: %w", p.TypeName, p.FieldName, err)
	}
	if p.Single {
		switch {
		case len(items) > 0 && out.ScannedCount == 1:
			return items[0], nil
		case len(items) == 0 && out.ScannedCount == 1:
			return nil, relgen.NewUnauthorizedError(p.TypeName, p.FieldName)
		default:
			return nil, nil
		}
	}
	if items == nil {
		items = []map[string]any{}
	}
	token, err := EncodeToken(out.LastEvaluatedKey)
	if err != nil {
		return nil, err
	}
	return &dialect.Page{Items: items, NextToken: token}, nil
}

// Resolve runs the plan against the store.
func (p *QueryPlan) Resolve(ctx context.Context, api QueryAPI, env Env) (any, error) {
	in, err := p.Request(env)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return p.Empty(), nil
	}
	out, err := api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("plan %s.%s: query failed: %w", p.TypeName, p.FieldName, err)
	}
	return p.Response(out)
}
