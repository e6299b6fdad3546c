package privacy

import (
	"context"
	"slices"
)

// Viewer represents the authenticated caller of a request.
type Viewer interface {
	// GetID returns the viewer's unique identifier.
	GetID() string
	// GetRoles returns the viewer's groups.
	GetRoles() []string
	// GetTenantID returns the viewer's tenant identifier, or "".
	GetTenantID() string
}

type viewerCtxKey struct{}

// WithViewer returns a new context with the viewer attached.
func WithViewer(ctx context.Context, viewer Viewer) context.Context {
	return context.WithValue(ctx, viewerCtxKey{}, viewer)
}

// ViewerFromContext retrieves the viewer from the context, or nil.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerCtxKey{}).(Viewer)
	return v
}

// SimpleViewer is a basic implementation of the Viewer interface.
type SimpleViewer struct {
	UserID   string
	Roles    []string
	TenantID string
}

// GetID returns the user ID.
func (v *SimpleViewer) GetID() string { return v.UserID }

// GetRoles returns the user's roles.
func (v *SimpleViewer) GetRoles() []string { return v.Roles }

// GetTenantID returns the tenant ID.
func (v *SimpleViewer) GetTenantID() string { return v.TenantID }

// AlwaysAllowRule returns a rule that always allows.
func AlwaysAllowRule() Rule {
	return fixedDecision{Allow}
}

// AlwaysDenyRule returns a rule that always denies.
func AlwaysDenyRule() Rule {
	return fixedDecision{Deny}
}

// ContextRule creates a rule from a context evaluation function. Returning
// nil is equivalent to returning Skip.
func ContextRule(eval func(context.Context) error) Rule {
	return RuleFunc(func(ctx context.Context, _ *Request) error {
		return eval(ctx)
	})
}

// DenyIfNoViewer denies requests without a viewer.
func DenyIfNoViewer() Rule {
	return ContextRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) == nil {
			return Denyf("privacy: viewer required")
		}
		return Skip
	})
}

// AllowIfViewer allows any authenticated request.
func AllowIfViewer() Rule {
	return ContextRule(func(ctx context.Context) error {
		if ViewerFromContext(ctx) != nil {
			return Allow
		}
		return Skip
	})
}

// HasRole allows viewers in the given role.
func HasRole(role string) Rule {
	return HasAnyRole(role)
}

// HasAnyRole allows viewers in any of the given roles.
func HasAnyRole(roles ...string) Rule {
	return ContextRule(func(ctx context.Context) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		for _, role := range roles {
			if slices.Contains(viewer.GetRoles(), role) {
				return Allow
			}
		}
		return Skip
	})
}

// OwnerRule restricts the read to items whose field holds the viewer ID. It
// is an alternative: items passing another owner rule also pass.
func OwnerRule(field string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil || viewer.GetID() == "" {
			return Skip
		}
		r.Either(map[string]any{field: map[string]any{"eq": viewer.GetID()}})
		return Skip
	})
}

// GroupFieldRule restricts the read to items whose field names one of the
// viewer's groups.
func GroupFieldRule(field string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		for _, role := range viewer.GetRoles() {
			r.Either(map[string]any{field: map[string]any{"eq": role}})
		}
		return Skip
	})
}

// TenantRule restricts every read to items of the viewer's tenant. It
// denies viewers without a tenant.
func TenantRule(field string) Rule {
	return RuleFunc(func(ctx context.Context, r *Request) error {
		viewer := ViewerFromContext(ctx)
		if viewer == nil {
			return Skip
		}
		if viewer.GetTenantID() == "" {
			return Denyf("privacy: tenant required")
		}
		r.Must(map[string]any{field: map[string]any{"eq": viewer.GetTenantID()}})
		return Skip
	})
}

// DenyUnlessFiltered denies requests no earlier rule allowed or narrowed.
func DenyUnlessFiltered() Rule {
	return RuleFunc(func(_ context.Context, r *Request) error {
		if r.Filtered() {
			return Skip
		}
		return Denyf("privacy: no rule grants %s.%s", r.TypeName, r.FieldName)
	})
}

type fixedDecision struct {
	decision error
}

func (f fixedDecision) EvalRelation(context.Context, *Request) error {
	return f.decision
}
