package dynamodb

import (
	"fmt"
	"maps"
	"slices"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
)

// FilterCondition translates a GraphQL filter input value into a condition
// expression. Field entries map operator names to operands; "and", "or" and
// "not" nest filters. An empty filter yields an unset condition.
func FilterCondition(filter map[string]any) (expression.ConditionBuilder, error) {
	var conds []expression.ConditionBuilder
	for _, k := range slices.Sorted(maps.Keys(filter)) {
		v := filter[k]
		if v == nil {
			continue
		}
		switch k {
		case "and", "or":
			list, ok := v.([]any)
			if !ok {
				return expression.ConditionBuilder{}, fmt.Errorf("filter %q expects a list, got %T", k, v)
			}
			var nested []expression.ConditionBuilder
			for _, item := range list {
				m, ok := item.(map[string]any)
				if !ok {
					return expression.ConditionBuilder{}, fmt.Errorf("filter %q expects objects, got %T", k, item)
				}
				c, err := FilterCondition(m)
				if err != nil {
					return expression.ConditionBuilder{}, err
				}
				if c.IsSet() {
					nested = append(nested, c)
				}
			}
			if len(nested) == 0 {
				continue
			}
			if k == "and" {
				conds = append(conds, And(nested...))
			} else {
				conds = append(conds, or(nested))
			}
		case "not":
			m, ok := v.(map[string]any)
			if !ok {
				return expression.ConditionBuilder{}, fmt.Errorf("filter \"not\" expects an object, got %T", v)
			}
			c, err := FilterCondition(m)
			if err != nil {
				return expression.ConditionBuilder{}, err
			}
			if c.IsSet() {
				conds = append(conds, expression.Not(c))
			}
		default:
			ops, ok := v.(map[string]any)
			if !ok {
				return expression.ConditionBuilder{}, fmt.Errorf("filter on field %q expects an object, got %T", k, v)
			}
			c, err := fieldCondition(k, ops)
			if err != nil {
				return expression.ConditionBuilder{}, err
			}
			conds = append(conds, c...)
		}
	}
	return And(conds...), nil
}

func fieldCondition(field string, ops map[string]any) ([]expression.ConditionBuilder, error) {
	name := expression.Name(field)
	var conds []expression.ConditionBuilder
	for _, op := range slices.Sorted(maps.Keys(ops)) {
		v := ops[op]
		switch op {
		case "eq":
			conds = append(conds, name.Equal(expression.Value(v)))
		case "ne":
			conds = append(conds, name.NotEqual(expression.Value(v)))
		case "le":
			conds = append(conds, name.LessThanEqual(expression.Value(v)))
		case "lt":
			conds = append(conds, name.LessThan(expression.Value(v)))
		case "ge":
			conds = append(conds, name.GreaterThanEqual(expression.Value(v)))
		case "gt":
			conds = append(conds, name.GreaterThan(expression.Value(v)))
		case "contains":
			conds = append(conds, name.Contains(fmt.Sprint(v)))
		case "notContains":
			conds = append(conds, expression.Not(name.Contains(fmt.Sprint(v))))
		case "beginsWith":
			conds = append(conds, name.BeginsWith(fmt.Sprint(v)))
		case "between":
			bounds, ok := v.([]any)
			if !ok || len(bounds) != 2 {
				return nil, fmt.Errorf("filter %s.between expects two values", field)
			}
			conds = append(conds, name.Between(expression.Value(bounds[0]), expression.Value(bounds[1])))
		case "in":
			list, ok := v.([]any)
			if !ok || len(list) == 0 {
				return nil, fmt.Errorf("filter %s.in expects a non-empty list", field)
			}
			rest := make([]expression.OperandBuilder, 0, len(list)-1)
			for _, item := range list[1:] {
				rest = append(rest, expression.Value(item))
			}
			conds = append(conds, name.In(expression.Value(list[0]), rest...))
		case "attributeExists":
			exists, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("filter %s.attributeExists expects a boolean", field)
			}
			if exists {
				conds = append(conds, name.AttributeExists())
			} else {
				conds = append(conds, name.AttributeNotExists())
			}
		default:
			return nil, fmt.Errorf("unsupported filter operator %q on field %q", op, field)
		}
	}
	return conds, nil
}

// And joins the set conditions with a logical AND. Unset conditions are
// skipped; with nothing left the result is unset.
func And(conds ...expression.ConditionBuilder) expression.ConditionBuilder {
	set := conds[:0:0]
	for _, c := range conds {
		if c.IsSet() {
			set = append(set, c)
		}
	}
	switch len(set) {
	case 0:
		return expression.ConditionBuilder{}
	case 1:
		return set[0]
	default:
		return expression.And(set[0], set[1], set[2:]...)
	}
}

func or(conds []expression.ConditionBuilder) expression.ConditionBuilder {
	if len(conds) == 1 {
		return conds[0]
	}
	return expression.Or(conds[0], conds[1], conds[2:]...)
}

// SortKeyCondition translates a caller key-condition argument on the sort
// key attribute. For condensed keys, operands are objects keyed by the
// original sort fields and are condensed in field order up to the first
// missing field.
func SortKeyCondition(attribute string, fields []string, arg map[string]any) (expression.KeyConditionBuilder, error) {
	if len(arg) != 1 {
		return expression.KeyConditionBuilder{}, fmt.Errorf("key condition on %q expects exactly one operator, got %d", attribute, len(arg))
	}
	key := expression.Key(attribute)
	for op, v := range arg {
		switch op {
		case "eq", "le", "lt", "ge", "gt":
			operand, err := keyOperand(fields, v)
			if err != nil {
				return expression.KeyConditionBuilder{}, err
			}
			val := expression.Value(operand)
			switch op {
			case "eq":
				return key.Equal(val), nil
			case "le":
				return key.LessThanEqual(val), nil
			case "lt":
				return key.LessThan(val), nil
			case "ge":
				return key.GreaterThanEqual(val), nil
			default:
				return key.GreaterThan(val), nil
			}
		case "beginsWith":
			operand, err := keyOperand(fields, v)
			if err != nil {
				return expression.KeyConditionBuilder{}, err
			}
			s, _ := KeyString(operand)
			return key.BeginsWith(s), nil
		case "between":
			bounds, ok := v.([]any)
			if !ok || len(bounds) != 2 {
				return expression.KeyConditionBuilder{}, fmt.Errorf("key condition %s.between expects two values", attribute)
			}
			lower, err := keyOperand(fields, bounds[0])
			if err != nil {
				return expression.KeyConditionBuilder{}, err
			}
			upper, err := keyOperand(fields, bounds[1])
			if err != nil {
				return expression.KeyConditionBuilder{}, err
			}
			return key.Between(expression.Value(lower), expression.Value(upper)), nil
		default:
			return expression.KeyConditionBuilder{}, fmt.Errorf("unsupported key condition operator %q on %q", op, attribute)
		}
	}
	return expression.KeyConditionBuilder{}, nil
}

func keyOperand(fields []string, v any) (any, error) {
	if len(fields) < 2 {
		return v, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("composite key condition expects an object with fields %v, got %T", fields, v)
	}
	var parts []any
	for _, f := range fields {
		part, ok := m[f]
		if !ok || part == nil {
			break
		}
		parts = append(parts, part)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("composite key condition sets none of %v", fields)
	}
	return Condense(parts...), nil
}
