package privacy

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// Auth rule strategies.
const (
	AllowPublic  = "public"
	AllowPrivate = "private"
	AllowOwner   = "owner"
	AllowGroups  = "groups"
)

// DefaultOwnerField is the item attribute holding the owner when a rule
// names none.
const DefaultOwnerField = "owner"

// FromAuth builds the read policy of @auth rule values. Public and
// authenticated rules and matching static groups allow outright. Owner
// and dynamic group rules narrow the read. A request that neither rule
// grants is denied.
func FromAuth(rules []*ast.Value) (Policy, error) {
	if len(rules) == 0 {
		return Policy{AlwaysAllowRule()}, nil
	}
	var grants, narrows Policy
	for _, rule := range rules {
		if rule == nil || rule.Kind != ast.ObjectValue {
			return nil, fmt.Errorf("privacy: auth rule must be an object, got %v", rule)
		}
		if !readable(rule) {
			continue
		}
		switch allow := raw(rule, "allow"); allow {
		case AllowPublic:
			grants = append(grants, AlwaysAllowRule())
		case AllowPrivate:
			grants = append(grants, AllowIfViewer())
		case AllowOwner:
			field := raw(rule, "ownerField")
			if field == "" {
				field = DefaultOwnerField
			}
			narrows = append(narrows, OwnerRule(field))
		case AllowGroups:
			if field := raw(rule, "groupsField"); field != "" {
				narrows = append(narrows, GroupFieldRule(field))
				continue
			}
			groups := rawList(rule, "groups")
			if len(groups) == 0 {
				return nil, fmt.Errorf("privacy: groups rule needs groups or groupsField")
			}
			grants = append(grants, HasAnyRole(groups...))
		default:
			return nil, fmt.Errorf("privacy: unknown auth strategy %q", allow)
		}
	}
	policy := append(grants, narrows...)
	return append(policy, DenyUnlessFiltered()), nil
}

// readable reports whether rule grants reads. Rules without operations
// grant every operation.
func readable(rule *ast.Value) bool {
	ops := rawList(rule, "operations")
	if len(ops) == 0 {
		return true
	}
	for _, op := range ops {
		if op == "read" || op == "get" || op == "list" {
			return true
		}
	}
	return false
}

func child(v *ast.Value, name string) *ast.Value {
	for _, ch := range v.Children {
		if ch.Name == name {
			return ch.Value
		}
	}
	return nil
}

func raw(v *ast.Value, name string) string {
	ch := child(v, name)
	if ch == nil {
		return ""
	}
	return ch.Raw
}

func rawList(v *ast.Value, name string) []string {
	ch := child(v, name)
	if ch == nil {
		return nil
	}
	if ch.Kind != ast.ListValue {
		return []string{ch.Raw}
	}
	out := make([]string, 0, len(ch.Children))
	for _, item := range ch.Children {
		out = append(out, item.Value.Raw)
	}
	return out
}
