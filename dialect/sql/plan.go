package sql

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/syssam/relgen/dialect"
)

// Operation is the kind of read the SQL function performs.
type Operation string

// Operations understood by the SQL function.
const (
	OpGet  Operation = "GET"
	OpList Operation = "LIST"
)

// Invoker sends a payload to the named function and returns its response.
type Invoker interface {
	Invoke(ctx context.Context, function string, payload []byte) ([]byte, error)
}

// Condition is an equality between a column of the target table and a value
// taken from the parent record.
type Condition struct {
	Field string           `json:"field"`
	Value dialect.ValueRef `json:"value"`
}

// InvokePlan resolves one relation field through the SQL function.
type InvokePlan struct {
	TypeName   string      `json:"typeName"`
	FieldName  string      `json:"fieldName"`
	Function   string      `json:"function"`
	Operation  Operation   `json:"operation"`
	Table      string      `json:"table"`
	Conditions []Condition `json:"conditions"`
	Limit      int         `json:"limit,omitempty"`
}

// Env carries the request-time values a plan reads.
type Env struct {
	Source map[string]any
	Stash  map[string]any
	Args   map[string]any
	// AuthFilter is a filter object supplied by the authorization layer.
	AuthFilter map[string]any
}

// Request is the payload sent to the SQL function.
type Request struct {
	Table     string      `json:"table"`
	Operation Operation   `json:"operation"`
	Args      RequestArgs `json:"args"`
}

// RequestArgs are the operation arguments of a Request.
type RequestArgs struct {
	Filter        map[string]any `json:"filter"`
	Limit         int            `json:"limit,omitempty"`
	NextToken     string         `json:"nextToken,omitempty"`
	SortDirection string         `json:"sortDirection,omitempty"`
}

// FunctionError is an error reported by the SQL function.
type FunctionError struct {
	Type    string `json:"errorType"`
	Message string `json:"errorMessage"`
}

// Error returns the error string.
func (e *FunctionError) Error() string {
	if e.Type == "" {
		return "sql function: " + e.Message
	}
	return fmt.Sprintf("sql function: %s: %s", e.Type, e.Message)
}

// Single reports whether the plan resolves a to-one relation.
func (p *InvokePlan) Single() bool { return p.Operation == OpGet }

// Empty returns the result of a short-circuited plan.
func (p *InvokePlan) Empty() any {
	if p.Single() {
		return nil
	}
	return dialect.EmptyPage()
}

// Build returns the request for env, or nil when a condition value is null
// and the relation is absent.
func (p *InvokePlan) Build(env Env) (*Request, error) {
	if len(p.Conditions) == 0 {
		return nil, fmt.Errorf("plan %s.%s: no conditions", p.TypeName, p.FieldName)
	}
	terms := make([]any, 0, len(p.Conditions)+2)
	for _, c := range p.Conditions {
		v := c.Value.Resolve(env.Source, env.Stash)
		if v == nil {
			return nil, nil
		}
		terms = append(terms, map[string]any{c.Field: map[string]any{"eq": v}})
	}
	if f, ok := env.Args[dialect.ArgFilter].(map[string]any); ok && len(f) > 0 {
		terms = append(terms, f)
	}
	if len(env.AuthFilter) > 0 {
		terms = append(terms, env.AuthFilter)
	}
	req := &Request{Table: p.Table, Operation: p.Operation}
	if len(terms) == 1 {
		req.Args.Filter = terms[0].(map[string]any)
	} else {
		req.Args.Filter = map[string]any{"and": terms}
	}
	if !p.Single() {
		req.Args.Limit = p.Limit
		if n, ok := dialect.IntArg(env.Args, dialect.ArgLimit); ok {
			req.Args.Limit = n
		}
		req.Args.NextToken, _ = env.Args[dialect.ArgNextToken].(string)
		if dialect.Descending(env.Args) {
			req.Args.SortDirection = "DESC"
		}
	}
	return req, nil
}

// Request returns the encoded payload for env, or nil when the relation is
// absent.
func (p *InvokePlan) Request(env Env) ([]byte, error) {
	req, err := p.Build(env)
	if err != nil || req == nil {
		return nil, err
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("plan %s.%s: encode request: %w", p.TypeName, p.FieldName, err)
	}
	return b, nil
}

// Response decodes the function response. A to-one relation resolves to a
// record or nil, a to-many relation to a page.
func (p *InvokePlan) Response(payload []byte) (any, error) {
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return p.Empty(), nil
	}
	var fe FunctionError
	if err := json.Unmarshal(payload, &fe); err == nil && fe.Message != "" {
		return nil, &fe
	}
	if p.Single() {
		var item map[string]any
		if err := json.Unmarshal(payload, &item); err != nil {
			return nil, fmt.Errorf("plan %s.%s: decode response: %w", p.TypeName, p.FieldName, err)
		}
		return item, nil
	}
	var page dialect.Page
	if err := json.Unmarshal(payload, &page); err != nil {
		return nil, fmt.Errorf("plan %s.%s: decode response: %w", p.TypeName, p.FieldName, err)
	}
	if page.Items == nil {
		page.Items = []map[string]any{}
	}
	return &page, nil
}

// Resolve runs the plan through inv.
func (p *InvokePlan) Resolve(ctx context.Context, inv Invoker, env Env) (any, error) {
	payload, err := p.Request(env)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return p.Empty(), nil
	}
	out, err := inv.Invoke(withRelation(ctx, p.TypeName, p.FieldName), p.Function, payload)
	if err != nil {
		var fe *FunctionError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, fmt.Errorf("plan %s.%s: invoke %s: %w", p.TypeName, p.FieldName, p.Function, err)
	}
	return p.Response(out)
}
