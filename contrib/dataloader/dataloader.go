// Package dataloader provides a request-scoped query loader for relation
// plans.
//
// Sibling relation fields often resolve the same key: every post of a page
// asks for the same author. A Loader wraps the DynamoDB client, runs each
// distinct query once per request and shares the output with every caller:
//
//	func middleware(client *dynamodb.Client) func(http.Handler) http.Handler {
//	    return func(next http.Handler) http.Handler {
//	        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	            ctx := dataloader.NewContext(r.Context(), dataloader.New(client))
//	            next.ServeHTTP(w, r.WithContext(ctx))
//	        })
//	    }
//	}
//
// Resolvers then run plans against the loader of the request:
//
//	plan.Resolve(ctx, dataloader.API(ctx, client), env)
package dataloader

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/relgen/dialect/dynamodb"
)

// Loader coalesces identical queries and caches their outputs until Clear.
// It is safe for concurrent use.
type Loader struct {
	api   dynamodb.QueryAPI
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]*dynamodbv2.QueryOutput
	stats Stats
}

// Stats counts loader traffic.
type Stats struct {
	// Queries is the number of queries sent to the store.
	Queries int
	// Hits is the number of queries answered from the cache.
	Hits int
}

var _ dynamodb.QueryAPI = (*Loader)(nil)

// New returns a loader sending queries to api.
func New(api dynamodb.QueryAPI) *Loader {
	return &Loader{api: api, cache: make(map[string]*dynamodbv2.QueryOutput)}
}

// Query implements dynamodb.QueryAPI. Concurrent identical queries share
// one store call; failed queries are not cached.
func (l *Loader) Query(ctx context.Context, in *dynamodbv2.QueryInput, optFns ...func(*dynamodbv2.Options)) (*dynamodbv2.QueryOutput, error) {
	key, err := Key(in)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	if out, ok := l.cache[key]; ok {
		l.stats.Hits++
		l.mu.Unlock()
		return out, nil
	}
	l.mu.Unlock()

	v, err, _ := l.group.Do(key, func() (any, error) {
		l.mu.Lock()
		out, ok := l.cache[key]
		l.mu.Unlock()
		if ok {
			return out, nil
		}
		out, err := l.api.Query(ctx, in, optFns...)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.cache[key] = out
		l.stats.Queries++
		l.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dynamodbv2.QueryOutput), nil
}

// Clear drops every cached output. Call it after writes that may change a
// relation within the same request.
func (l *Loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.cache)
}

// Stats returns the traffic counters.
func (l *Loader) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// queryKey is the canonical form of a query. Attribute values are decoded
// so that strings and numbers stay distinct.
type queryKey struct {
	Table        string            `json:"t"`
	Index        string            `json:"i,omitempty"`
	KeyCondition string            `json:"k"`
	Filter       string            `json:"f,omitempty"`
	Names        map[string]string `json:"n,omitempty"`
	Values       map[string]any    `json:"v,omitempty"`
	Start        map[string]any    `json:"s,omitempty"`
	Limit        int32             `json:"l,omitempty"`
	Forward      *bool             `json:"o,omitempty"`
	Consistent   bool              `json:"c,omitempty"`
}

// Key returns the cache key of in.
func Key(in *dynamodbv2.QueryInput) (string, error) {
	k := queryKey{
		Table:        aws.ToString(in.TableName),
		Index:        aws.ToString(in.IndexName),
		KeyCondition: aws.ToString(in.KeyConditionExpression),
		Filter:       aws.ToString(in.FilterExpression),
		Names:        in.ExpressionAttributeNames,
		Limit:        aws.ToInt32(in.Limit),
		Forward:      in.ScanIndexForward,
		Consistent:   aws.ToBool(in.ConsistentRead),
	}
	var err error
	if k.Values, err = decode(in.ExpressionAttributeValues); err != nil {
		return "", err
	}
	if k.Start, err = decode(in.ExclusiveStartKey); err != nil {
		return "", err
	}
	b, err := json.Marshal(k)
	if err != nil {
		return "", fmt.Errorf("dataloader: encode key: %w", err)
	}
	return string(b), nil
}

func decode(av map[string]types.AttributeValue) (map[string]any, error) {
	if len(av) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := attributevalue.UnmarshalMap(av, &m); err != nil {
		return nil, fmt.Errorf("dataloader: decode key values: %w", err)
	}
	return m, nil
}

type ctxKey struct{}

// NewContext returns a context carrying l.
func NewContext(ctx context.Context, l *Loader) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the loader of ctx, or nil.
func FromContext(ctx context.Context) *Loader {
	l, _ := ctx.Value(ctxKey{}).(*Loader)
	return l
}

// API returns the loader of ctx, or fallback when ctx carries none.
func API(ctx context.Context, fallback dynamodb.QueryAPI) dynamodb.QueryAPI {
	if l := FromContext(ctx); l != nil {
		return l
	}
	return fallback
}
