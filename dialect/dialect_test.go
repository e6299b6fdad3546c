package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassOf(t *testing.T) {
	tests := []struct {
		name string
		want Class
	}{
		{DynamoDB, KeyValue},
		{MySQL, Relational},
		{Postgres, Relational},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassOf(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	_, err := ClassOf("sqlite")
	assert.ErrorContains(t, err, `unknown store "sqlite"`)
	assert.Equal(t, "key-value", KeyValue.String())
	assert.Equal(t, "unknown", Unknown.String())
}

func TestValueRef(t *testing.T) {
	ref := ValueRef{Attribute: "id", StashKey: "postCommentsId"}
	source := map[string]any{"id": "p1"}

	assert.Equal(t, "p1", ref.Resolve(source, nil))
	assert.Equal(t, "p1", ref.Resolve(source, map[string]any{StashConnectionAttributes: map[string]any{}}))
	assert.Equal(t, "p2", ref.Resolve(source, map[string]any{
		StashConnectionAttributes: map[string]any{"postCommentsId": "p2"},
	}))
	assert.Nil(t, ValueRef{Attribute: "missing"}.Resolve(source, nil))
}

func TestArgs(t *testing.T) {
	assert.True(t, Descending(map[string]any{ArgSortDirection: "DESC"}))
	assert.False(t, Descending(map[string]any{ArgSortDirection: "ASC"}))
	assert.False(t, Descending(nil))

	n, ok := IntArg(map[string]any{ArgLimit: float64(20)}, ArgLimit)
	assert.True(t, ok)
	assert.Equal(t, 20, n)
	_, ok = IntArg(map[string]any{ArgLimit: "20"}, ArgLimit)
	assert.False(t, ok)

	page := EmptyPage()
	assert.NotNil(t, page.Items)
	assert.Nil(t, page.NextToken)
}
