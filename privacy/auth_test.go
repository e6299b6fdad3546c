package privacy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/privacy"
	"github.com/syssam/relgen/schema"
)

func policyOf(t *testing.T, rules string) privacy.Policy {
	t.Helper()
	doc, err := schema.Parse("schema.graphql", `type Post @model @auth(rules: `+rules+`) { id: ID! }`)
	require.NoError(t, err)
	p, err := privacy.FromAuth(schema.AuthRules(doc.Definitions.ForName("Post")))
	require.NoError(t, err)
	return p
}

func TestFromAuth(t *testing.T) {
	admin := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u1", Roles: []string{"Admin"}})
	user := privacy.WithViewer(context.Background(), &privacy.SimpleViewer{UserID: "u2"})

	p := policyOf(t, `[{allow: owner}, {allow: groups, groups: ["Admin"]}]`)
	f, err := p.Filter(admin, "Post", "author")
	require.NoError(t, err)
	assert.Nil(t, f, "static group grants the whole relation")
	f, err = p.Filter(user, "Post", "author")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"owner": map[string]any{"eq": "u2"}}, f)
	_, err = p.Filter(context.Background(), "Post", "author")
	assert.ErrorIs(t, err, privacy.Deny)

	p = policyOf(t, `[{allow: owner, ownerField: "author"}]`)
	f, err = p.Filter(user, "Post", "author")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"author": map[string]any{"eq": "u2"}}, f)

	p = policyOf(t, `[{allow: private}]`)
	_, err = p.Filter(user, "Post", "author")
	assert.NoError(t, err)
	_, err = p.Filter(context.Background(), "Post", "author")
	assert.ErrorIs(t, err, privacy.Deny)

	p = policyOf(t, `{allow: public}`)
	_, err = p.Filter(context.Background(), "Post", "author")
	assert.NoError(t, err)

	p = policyOf(t, `[{allow: owner, operations: [create, update]}]`)
	_, err = p.Filter(user, "Post", "author")
	assert.ErrorIs(t, err, privacy.Deny, "rule does not grant reads")
}

func TestFromAuthNoRules(t *testing.T) {
	p, err := privacy.FromAuth(nil)
	require.NoError(t, err)
	f, err := p.Filter(context.Background(), "Post", "author")
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestFromAuthErrors(t *testing.T) {
	for _, rules := range []string{
		`[{allow: nobody}]`,
		`[{allow: groups}]`,
		`["owner"]`,
	} {
		doc, err := schema.Parse("schema.graphql", `type Post @model @auth(rules: `+rules+`) { id: ID! }`)
		require.NoError(t, err)
		_, err = privacy.FromAuth(schema.AuthRules(doc.Definitions.ForName("Post")))
		assert.Error(t, err, rules)
	}
}
