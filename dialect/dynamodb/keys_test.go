package dynamodb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondense(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   string
	}{
		{name: "strings", values: []any{"a", "b"}, want: "a#b"},
		{name: "numbers", values: []any{"x", 3, 2.5}, want: "x#3#2.5"},
		{name: "absent middle", values: []any{"x", nil, "z"}, want: "x#NONE#z"},
		{name: "bool", values: []any{true, "y"}, want: "true#y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Condense(tt.values...))
		})
	}
}

func TestCondenseRoundTrip(t *testing.T) {
	values := []any{"2024-01-01", nil, "draft", 7}
	parts := Decondense(Condense(values...))
	require.Len(t, parts, len(values))
	assert.Equal(t, []string{"2024-01-01", None, "draft", "7"}, parts)
}

func TestCondensedName(t *testing.T) {
	assert.Equal(t, "title", CondensedName("title"))
	assert.Equal(t, "title#createdAt", CondensedName("title", "createdAt"))
}

func TestKeyString(t *testing.T) {
	s := "v"
	var nilStr *string
	for _, tt := range []struct {
		in   any
		want string
		ok   bool
	}{
		{in: nil, ok: false},
		{in: nilStr, ok: false},
		{in: &s, want: "v", ok: true},
		{in: int64(42), want: "42", ok: true},
		{in: int32(-1), want: "-1", ok: true},
		{in: float32(1.5), want: "1.5", ok: true},
	} {
		got, ok := KeyString(tt.in)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.want, got)
	}
}

func TestAttributeType(t *testing.T) {
	assert.Equal(t, types.ScalarAttributeTypeN, AttributeType("Int"))
	assert.Equal(t, types.ScalarAttributeTypeN, AttributeType("AWSTimestamp"))
	assert.Equal(t, types.ScalarAttributeTypeS, AttributeType("ID"))
	assert.Equal(t, types.ScalarAttributeTypeS, AttributeType("AWSDateTime"))
}

func TestIndexSpec(t *testing.T) {
	spec := &IndexSpec{
		Name:          "gsi-Post.comments",
		PartitionKey:  KeyAttribute{Name: "postCommentsId", Type: types.ScalarAttributeTypeS},
		SortKey:       &KeyAttribute{Name: "postCommentsTitle", Type: types.ScalarAttributeTypeS},
		Projection:    types.ProjectionTypeAll,
		SortKeyFields: []string{"postCommentsTitle"},
	}

	t.Run("provisioned", func(t *testing.T) {
		gsi := spec.GlobalSecondaryIndex(Throughput{BillingMode: types.BillingModeProvisioned, Read: 5, Write: 2})
		require.Len(t, gsi.KeySchema, 2)
		assert.Equal(t, "gsi-Post.comments", *gsi.IndexName)
		assert.Equal(t, types.KeyTypeHash, gsi.KeySchema[0].KeyType)
		assert.Equal(t, "postCommentsId", *gsi.KeySchema[0].AttributeName)
		assert.Equal(t, types.KeyTypeRange, gsi.KeySchema[1].KeyType)
		assert.Equal(t, types.ProjectionTypeAll, gsi.Projection.ProjectionType)
		require.NotNil(t, gsi.ProvisionedThroughput)
		assert.Equal(t, int64(5), *gsi.ProvisionedThroughput.ReadCapacityUnits)
		assert.Equal(t, int64(2), *gsi.ProvisionedThroughput.WriteCapacityUnits)
	})

	t.Run("on demand", func(t *testing.T) {
		gsi := spec.GlobalSecondaryIndex(Throughput{BillingMode: types.BillingModePayPerRequest})
		assert.Nil(t, gsi.ProvisionedThroughput)
	})

	t.Run("attribute definitions", func(t *testing.T) {
		defs := spec.AttributeDefinitions()
		require.Len(t, defs, 2)
		assert.Equal(t, "postCommentsTitle", *defs[1].AttributeName)
	})

	t.Run("same shape", func(t *testing.T) {
		other := *spec
		assert.True(t, spec.SameShape(&other))
		other.SortKey = nil
		assert.False(t, spec.SameShape(&other))
		other.SortKey = &KeyAttribute{Name: "other"}
		assert.False(t, spec.SameShape(&other))
	})
}
