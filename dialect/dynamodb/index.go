package dynamodb

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyAttribute is one key attribute of a table or index.
type KeyAttribute struct {
	Name string                    `json:"name"`
	Type types.ScalarAttributeType `json:"type"`
}

// IndexSpec describes a secondary index.
type IndexSpec struct {
	Name         string               `json:"name"`
	PartitionKey KeyAttribute         `json:"partitionKey"`
	SortKey      *KeyAttribute        `json:"sortKey,omitempty"`
	Projection   types.ProjectionType `json:"projection"`
	// SortKeyFields lists the fields condensed into SortKey, in order.
	SortKeyFields []string `json:"sortKeyFields,omitempty"`
}

// SameShape reports whether both specs key the same attributes.
func (s *IndexSpec) SameShape(o *IndexSpec) bool {
	if s.PartitionKey.Name != o.PartitionKey.Name {
		return false
	}
	switch {
	case s.SortKey == nil && o.SortKey == nil:
		return true
	case s.SortKey == nil || o.SortKey == nil:
		return false
	default:
		return s.SortKey.Name == o.SortKey.Name
	}
}

// Throughput holds the table environment parameters an index inherits.
type Throughput struct {
	BillingMode types.BillingMode `json:"billingMode" yaml:"billing_mode"`
	Read        int64             `json:"read" yaml:"read"`
	Write       int64             `json:"write" yaml:"write"`
}

// GlobalSecondaryIndex returns the low-level index record for the spec.
func (s *IndexSpec) GlobalSecondaryIndex(t Throughput) types.GlobalSecondaryIndex {
	keys := []types.KeySchemaElement{
		{AttributeName: aws.String(s.PartitionKey.Name), KeyType: types.KeyTypeHash},
	}
	if s.SortKey != nil {
		keys = append(keys, types.KeySchemaElement{AttributeName: aws.String(s.SortKey.Name), KeyType: types.KeyTypeRange})
	}
	projection := s.Projection
	if projection == "" {
		projection = types.ProjectionTypeAll
	}
	gsi := types.GlobalSecondaryIndex{
		IndexName:  aws.String(s.Name),
		KeySchema:  keys,
		Projection: &types.Projection{ProjectionType: projection},
	}
	if t.BillingMode != types.BillingModePayPerRequest {
		gsi.ProvisionedThroughput = &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(t.Read),
			WriteCapacityUnits: aws.Int64(t.Write),
		}
	}
	return gsi
}

// AttributeDefinitions returns the attribute definitions the index needs.
func (s *IndexSpec) AttributeDefinitions() []types.AttributeDefinition {
	defs := []types.AttributeDefinition{
		{AttributeName: aws.String(s.PartitionKey.Name), AttributeType: s.PartitionKey.Type},
	}
	if s.SortKey != nil {
		defs = append(defs, types.AttributeDefinition{AttributeName: aws.String(s.SortKey.Name), AttributeType: s.SortKey.Type})
	}
	return defs
}
