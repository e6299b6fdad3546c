// Package privacy evaluates authorization rules for relation fields at
// request time.
//
// A Policy is an ordered list of rules. Each rule returns one of three
// decisions:
//
//   - Allow: the caller may read the relation without restriction
//   - Deny: the caller may not read the relation
//   - Skip: the rule abstains and evaluation continues
//
// Rules may also narrow the read instead of deciding it. Owner and tenant
// rules add conditions to the Request; the conditions become the auth
// filter a relation plan AND-s with the caller's filter:
//
//	policy := privacy.Policy{
//	    privacy.DenyIfNoViewer(),
//	    privacy.HasAnyRole("Admin"),
//	    privacy.OwnerRule("owner"),
//	    privacy.DenyUnlessFiltered(),
//	}
//	env.AuthFilter, err = policy.AuthFilter(ctx, "Post", "author")
//
// Policies are usually built from the @auth rules of the related model:
//
//	policy, err := privacy.FromAuth(schema.AuthRules(def))
//
// A to-one relation whose item exists but is hidden by the auth filter
// resolves to relgen.ErrUnauthorized.
package privacy
