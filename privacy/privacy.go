package privacy

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"github.com/syssam/relgen"
	"github.com/syssam/relgen/dialect/dynamodb"
)

// Policy decision sentinel errors.
var (
	// Allow may be returned by rules to terminate evaluation with an allow
	// decision that drops every collected condition.
	Allow = errors.New("relgen/privacy: allow rule")

	// Deny may be returned by rules to terminate evaluation with a deny
	// decision.
	Deny = errors.New("relgen/privacy: deny rule")

	// Skip may be returned by rules to continue with the next rule.
	Skip = errors.New("relgen/privacy: skip rule")
)

// Allowf returns a formatted wrapped Allow decision.
func Allowf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Allow)...)
}

// Denyf returns a formatted wrapped Deny decision.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Deny)...)
}

// Skipf returns a formatted wrapped Skip decision.
func Skipf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, Skip)...)
}

// Request is the relation read under evaluation. Rules narrow it with Must
// and Either.
type Request struct {
	TypeName  string
	FieldName string

	must   []any
	either []any
}

// Must adds a filter every returned item has to satisfy.
func (r *Request) Must(filter map[string]any) {
	r.must = append(r.must, filter)
}

// Either adds an alternative filter. Items satisfying any alternative pass.
func (r *Request) Either(filter map[string]any) {
	r.either = append(r.either, filter)
}

// Filtered reports whether any rule narrowed the request.
func (r *Request) Filtered() bool {
	return len(r.must)+len(r.either) > 0
}

// Filter returns the collected conditions as a filter object, or nil.
func (r *Request) Filter() map[string]any {
	terms := append([]any(nil), r.must...)
	switch len(r.either) {
	case 0:
	case 1:
		terms = append(terms, r.either[0])
	default:
		terms = append(terms, map[string]any{"or": append([]any(nil), r.either...)})
	}
	switch len(terms) {
	case 0:
		return nil
	case 1:
		return terms[0].(map[string]any)
	default:
		return map[string]any{"and": terms}
	}
}

// Rule decides or narrows a relation read.
type Rule interface {
	EvalRelation(context.Context, *Request) error
}

// RuleFunc is an adapter to use ordinary functions as rules.
type RuleFunc func(context.Context, *Request) error

// EvalRelation returns f(ctx, r).
func (f RuleFunc) EvalRelation(ctx context.Context, r *Request) error {
	return f(ctx, r)
}

// Policy is an ordered list of rules.
type Policy []Rule

// Eval runs the rules against r. A nil error means the read may proceed
// with r.Filter applied.
func (p Policy) Eval(ctx context.Context, r *Request) error {
	if decision, ok := DecisionFromContext(ctx); ok {
		if decision == nil {
			r.must, r.either = nil, nil
		}
		return decision
	}
	for _, rule := range p {
		switch decision := rule.EvalRelation(ctx, r); {
		case decision == nil || errors.Is(decision, Skip):
		case errors.Is(decision, Allow):
			r.must, r.either = nil, nil
			return nil
		default:
			return decision
		}
	}
	return nil
}

// Filter evaluates the policy for the relation typeName.fieldName and returns
// the auth filter object for relational plans. A deny decision is returned
// as an error matching relgen.ErrUnauthorized.
func (p Policy) Filter(ctx context.Context, typeName, fieldName string) (map[string]any, error) {
	r := &Request{TypeName: typeName, FieldName: fieldName}
	if err := p.Eval(ctx, r); err != nil {
		if errors.Is(err, Deny) {
			return nil, fmt.Errorf("%w: %w", relgen.NewUnauthorizedError(typeName, fieldName), err)
		}
		return nil, err
	}
	return r.Filter(), nil
}

// AuthFilter is like Filter but returns the condition for key-value plans.
func (p Policy) AuthFilter(ctx context.Context, typeName, fieldName string) (expression.ConditionBuilder, error) {
	f, err := p.Filter(ctx, typeName, fieldName)
	if err != nil {
		return expression.ConditionBuilder{}, err
	}
	return dynamodb.FilterCondition(f)
}

type decisionCtxKey struct{}

// DecisionContext creates a new context from the given parent context with
// a policy decision attached to it. A decision in the context overrides
// every policy.
func DecisionContext(parent context.Context, decision error) context.Context {
	if decision == nil || errors.Is(decision, Skip) {
		return parent
	}
	return context.WithValue(parent, decisionCtxKey{}, decision)
}

// DecisionFromContext retrieves the policy decision from the context.
func DecisionFromContext(ctx context.Context) (error, bool) {
	decision, ok := ctx.Value(decisionCtxKey{}).(error)
	if ok && errors.Is(decision, Allow) {
		decision = nil
	}
	return decision, ok
}
