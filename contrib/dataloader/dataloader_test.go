package dataloader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	dynamodbv2 "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/relgen/dialect"
	"github.com/syssam/relgen/dialect/dynamodb"
)

type countingAPI struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingAPI) Query(_ context.Context, in *dynamodbv2.QueryInput, _ ...func(*dynamodbv2.Options)) (*dynamodbv2.QueryOutput, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	if c.err != nil {
		return nil, c.err
	}
	return &dynamodbv2.QueryOutput{
		ScannedCount: 1,
		Items: []map[string]types.AttributeValue{
			{"id": &types.AttributeValueMemberS{Value: aws.ToString(in.TableName)}},
		},
	}, nil
}

func input(value types.AttributeValue) *dynamodbv2.QueryInput {
	return &dynamodbv2.QueryInput{
		TableName:                 aws.String("Author"),
		KeyConditionExpression:    aws.String("#0 = :0"),
		ExpressionAttributeNames:  map[string]string{"#0": "id"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":0": value},
	}
}

func TestKey(t *testing.T) {
	s, err := Key(input(&types.AttributeValueMemberS{Value: "1"}))
	require.NoError(t, err)
	n, err := Key(input(&types.AttributeValueMemberN{Value: "1"}))
	require.NoError(t, err)
	assert.NotEqual(t, s, n, "string and number keys differ")

	again, err := Key(input(&types.AttributeValueMemberS{Value: "1"}))
	require.NoError(t, err)
	assert.Equal(t, s, again)

	in := input(&types.AttributeValueMemberS{Value: "1"})
	in.ScanIndexForward = aws.Bool(false)
	desc, err := Key(in)
	require.NoError(t, err)
	assert.NotEqual(t, s, desc)
}

func TestLoaderCaches(t *testing.T) {
	api := &countingAPI{}
	l := New(api)
	ctx := context.Background()
	for range 3 {
		out, err := l.Query(ctx, input(&types.AttributeValueMemberS{Value: "a1"}))
		require.NoError(t, err)
		assert.Len(t, out.Items, 1)
	}
	_, err := l.Query(ctx, input(&types.AttributeValueMemberS{Value: "a2"}))
	require.NoError(t, err)
	assert.EqualValues(t, 2, api.calls.Load())
	assert.Equal(t, Stats{Queries: 2, Hits: 2}, l.Stats())

	l.Clear()
	_, err = l.Query(ctx, input(&types.AttributeValueMemberS{Value: "a1"}))
	require.NoError(t, err)
	assert.EqualValues(t, 3, api.calls.Load())
}

func TestLoaderCoalesces(t *testing.T) {
	api := &countingAPI{delay: 50 * time.Millisecond}
	l := New(api)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Query(context.Background(), input(&types.AttributeValueMemberS{Value: "a1"}))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, api.calls.Load())
}

func TestLoaderErrorsAreNotCached(t *testing.T) {
	api := &countingAPI{err: errors.New("throttled")}
	l := New(api)
	_, err := l.Query(context.Background(), input(&types.AttributeValueMemberS{Value: "a1"}))
	assert.EqualError(t, err, "throttled")
	api.err = nil
	_, err = l.Query(context.Background(), input(&types.AttributeValueMemberS{Value: "a1"}))
	require.NoError(t, err)
	assert.EqualValues(t, 2, api.calls.Load())
}

func TestContext(t *testing.T) {
	fallback := &countingAPI{}
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	assert.Same(t, fallback, API(ctx, fallback))

	l := New(fallback)
	ctx = NewContext(ctx, l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, l, API(ctx, fallback))
}

func TestLoaderResolvesPlans(t *testing.T) {
	api := &countingAPI{}
	ctx := NewContext(context.Background(), New(api))
	plan := &dynamodb.QueryPlan{
		TypeName:     "Post",
		FieldName:    "author",
		TableName:    "Author",
		Single:       true,
		PartitionKey: dynamodb.KeyTerm{Attribute: "id", Values: []dialect.ValueRef{{Attribute: "authorId"}}},
	}
	for _, post := range []string{"p1", "p2", "p3"} {
		v, err := plan.Resolve(ctx, API(ctx, api), dynamodb.Env{Source: map[string]any{"id": post, "authorId": "a1"}})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "Author"}, v)
	}
	assert.EqualValues(t, 1, api.calls.Load())
}
