package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/dialect"
)

type fakeInvoker struct {
	function string
	payloads [][]byte
	out      []byte
	err      error
}

func (f *fakeInvoker) Invoke(_ context.Context, function string, payload []byte) ([]byte, error) {
	f.function = function
	f.payloads = append(f.payloads, payload)
	return f.out, f.err
}

func listPlan() *InvokePlan {
	return &InvokePlan{
		TypeName:   "Author",
		FieldName:  "books",
		Function:   "relgen-sql",
		Operation:  OpList,
		Table:      "Book",
		Conditions: []Condition{{Field: "authorId", Value: dialect.ValueRef{Attribute: "id"}}},
		Limit:      100,
	}
}

func getPlan() *InvokePlan {
	return &InvokePlan{
		TypeName:   "Book",
		FieldName:  "author",
		Function:   "relgen-sql",
		Operation:  OpGet,
		Table:      "Author",
		Conditions: []Condition{{Field: "id", Value: dialect.ValueRef{Attribute: "authorId"}}},
	}
}

func TestInvokePlan_Build(t *testing.T) {
	t.Run("list defaults", func(t *testing.T) {
		req, err := listPlan().Build(Env{Source: map[string]any{"id": "a1"}})
		require.NoError(t, err)
		require.NotNil(t, req)
		assert.Equal(t, "Book", req.Table)
		assert.Equal(t, OpList, req.Operation)
		assert.Equal(t, map[string]any{"authorId": map[string]any{"eq": "a1"}}, req.Args.Filter)
		assert.Equal(t, 100, req.Args.Limit)
		assert.Empty(t, req.Args.SortDirection)
	})

	t.Run("list arguments", func(t *testing.T) {
		env := Env{
			Source: map[string]any{"id": "a1"},
			Args: map[string]any{
				dialect.ArgLimit:         5,
				dialect.ArgNextToken:     "tok",
				dialect.ArgSortDirection: "DESC",
				dialect.ArgFilter:        map[string]any{"title": map[string]any{"eq": "Go"}},
			},
			AuthFilter: map[string]any{"owner": map[string]any{"eq": "u1"}},
		}
		req, err := listPlan().Build(env)
		require.NoError(t, err)
		assert.Equal(t, 5, req.Args.Limit)
		assert.Equal(t, "tok", req.Args.NextToken)
		assert.Equal(t, "DESC", req.Args.SortDirection)
		and, ok := req.Args.Filter["and"].([]any)
		require.True(t, ok)
		assert.Len(t, and, 3)
	})

	t.Run("get omits paging", func(t *testing.T) {
		req, err := getPlan().Build(Env{Source: map[string]any{"authorId": "a1"}, Args: map[string]any{dialect.ArgLimit: 3}})
		require.NoError(t, err)
		assert.Zero(t, req.Args.Limit)
	})

	t.Run("null key", func(t *testing.T) {
		req, err := listPlan().Build(Env{Source: map[string]any{}})
		require.NoError(t, err)
		assert.Nil(t, req)
	})

	t.Run("no conditions", func(t *testing.T) {
		_, err := (&InvokePlan{TypeName: "A", FieldName: "b"}).Build(Env{})
		assert.Error(t, err)
	})
}

func TestInvokePlan_Resolve(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		inv := &fakeInvoker{out: []byte(`{"items":[{"id":"b1"}],"nextToken":"n"}`)}
		got, err := listPlan().Resolve(context.Background(), inv, Env{Source: map[string]any{"id": "a1"}})
		require.NoError(t, err)
		assert.Equal(t, "relgen-sql", inv.function)
		page := got.(*dialect.Page)
		require.Len(t, page.Items, 1)
		require.NotNil(t, page.NextToken)
		assert.Equal(t, "n", *page.NextToken)

		var sent Request
		require.NoError(t, json.Unmarshal(inv.payloads[0], &sent))
		assert.Equal(t, OpList, sent.Operation)
	})

	t.Run("list short circuit", func(t *testing.T) {
		inv := &fakeInvoker{}
		got, err := listPlan().Resolve(context.Background(), inv, Env{Source: map[string]any{"id": nil}})
		require.NoError(t, err)
		assert.Empty(t, inv.payloads)
		assert.Equal(t, dialect.EmptyPage(), got)
	})

	t.Run("list without items", func(t *testing.T) {
		inv := &fakeInvoker{out: []byte(`{}`)}
		got, err := listPlan().Resolve(context.Background(), inv, Env{Source: map[string]any{"id": "a1"}})
		require.NoError(t, err)
		assert.NotNil(t, got.(*dialect.Page).Items)
	})

	t.Run("get", func(t *testing.T) {
		inv := &fakeInvoker{out: []byte(`{"id":"a1","name":"Ann"}`)}
		got, err := getPlan().Resolve(context.Background(), inv, Env{Source: map[string]any{"authorId": "a1"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "a1", "name": "Ann"}, got)
	})

	t.Run("get null", func(t *testing.T) {
		inv := &fakeInvoker{out: []byte(` null `)}
		got, err := getPlan().Resolve(context.Background(), inv, Env{Source: map[string]any{"authorId": "a1"}})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("function error", func(t *testing.T) {
		inv := &fakeInvoker{out: []byte(`{"errorType":"QueryError","errorMessage":"relation does not exist"}`)}
		_, err := getPlan().Resolve(context.Background(), inv, Env{Source: map[string]any{"authorId": "a1"}})
		var fe *FunctionError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "QueryError", fe.Type)
		assert.EqualError(t, err, "sql function: QueryError: relation does not exist")
	})

	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := getPlan().Resolve(context.Background(), &fakeInvoker{err: boom}, Env{Source: map[string]any{"authorId": "a1"}})
		require.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "invoke relgen-sql")
	})

	t.Run("malformed response", func(t *testing.T) {
		_, err := listPlan().Resolve(context.Background(), &fakeInvoker{out: []byte(`[1]`)}, Env{Source: map[string]any{"id": "a1"}})
		assert.ErrorContains(t, err, "decode response")
	})
}
