// Package dynamodb holds the key-value pieces of relationship resolution:
// composite key encoding, key-condition and filter builders, secondary index
// specifications and the query plans that resolve to-one and to-many
// relations at read time.
package dynamodb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	// Separator joins the parts of a condensed key, both the attribute name
	// and the stored value.
	Separator = "#"

	// None stands in for an absent part of a condensed key value.
	None = "NONE"
)

// Condense joins the ordered sort-key values into the single stored value of
// a condensed attribute. Nil values are replaced with None so that every
// segment is defined.
func Condense(values ...any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		s, ok := KeyString(v)
		if !ok {
			s = None
		}
		parts[i] = s
	}
	return strings.Join(parts, Separator)
}

// Decondense splits a condensed value back into its ordered parts.
func Decondense(value string) []string {
	return strings.Split(value, Separator)
}

// CondensedName returns the attribute name holding the condensed value of
// the given fields. A single field keeps its own name.
func CondensedName(fields ...string) string {
	return strings.Join(fields, Separator)
}

// KeyString coerces a scalar key value to its string form. It reports false
// for nil values.
func KeyString(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case bool:
		return strconv.FormatBool(v), true
	case fmt.Stringer:
		return v.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// AttributeType maps a GraphQL scalar name to the attribute type used when
// the scalar is part of a key.
func AttributeType(scalar string) types.ScalarAttributeType {
	switch scalar {
	case "Int", "Float", "AWSTimestamp":
		return types.ScalarAttributeTypeN
	default:
		return types.ScalarAttributeTypeS
	}
}
