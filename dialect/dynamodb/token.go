package dynamodb

import (
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/goccy/go-json"
)

// EncodeToken turns the last evaluated key of a page into an opaque
// pagination token. A nil or empty key yields a nil token.
func EncodeToken(key map[string]types.AttributeValue) (*string, error) {
	if len(key) == 0 {
		return nil, nil
	}
	var m map[string]any
	if err := attributevalue.UnmarshalMap(key, &m); err != nil {
		return nil, fmt.Errorf("decode last evaluated key: %w", err)
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode pagination token: %w", err)
	}
	token := base64.StdEncoding.EncodeToString(b)
	return &token, nil
}

// DecodeToken is the inverse of EncodeToken.
func DecodeToken(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid pagination token: %w", err)
	}
	key, err := attributevalue.MarshalMap(m)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token: %w", err)
	}
	return key, nil
}
