package ddbstore

import (
	"fmt"
	"strings"

	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func extractKeyAttributes(item map[string]types.AttributeValue, keyDefs ...table.PrimaryKeyDefinition) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue)
	for _, keyDef := range keyDefs {
		for _, attr := range keyDef.Attributes() {
			if v, ok := item[attr]; ok {
				result[attr] = v
			}
		}
	}
	return result
}

func incrementBytes(b []byte) []byte {
	result := make([]byte, len(b))
	copy(result, b)
	for i := len(result) - 1; i >= 0; i-- {
		if result[i] < 0xFF {
			result[i]++
			return result
		}
		result[i] = 0
	}
	// Overflow - append 0x00
	return append(result, 0x00)
}

// projectionNames resolves a projection expression into top-level attribute
// names. Nested document paths are not supported.
func projectionNames(expr *string, names map[string]string) ([]string, error) {
	if expr == nil {
		return nil, nil
	}
	var attrs []string
	for _, part := range strings.Split(*expr, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			return nil, fmt.Errorf("%w: empty path in projection expression %q", ErrValidation, *expr)
		}
		if strings.ContainsAny(name, ".[] ") {
			return nil, fmt.Errorf("%w: nested paths are not supported in projection expression: %q", ErrValidation, name)
		}
		if strings.HasPrefix(name, "#") {
			resolved, ok := names[name]
			if !ok {
				return nil, fmt.Errorf("%w: expression attribute name %s is not defined", ErrValidation, name)
			}
			name = resolved
		}
		attrs = append(attrs, name)
	}
	return attrs, nil
}

func project(item map[string]types.AttributeValue, expr *string, names map[string]string) (map[string]types.AttributeValue, error) {
	items, err := projectAll([]map[string]types.AttributeValue{item}, expr, names)
	if err != nil {
		return nil, err
	}
	return items[0], nil
}

func projectAll(items []map[string]types.AttributeValue, expr *string, names map[string]string) ([]map[string]types.AttributeValue, error) {
	attrs, err := projectionNames(expr, names)
	if err != nil || attrs == nil {
		return items, err
	}
	out := make([]map[string]types.AttributeValue, len(items))
	for i, item := range items {
		proj := make(map[string]types.AttributeValue, len(attrs))
		for _, attr := range attrs {
			if v, ok := item[attr]; ok {
				proj[attr] = v
			}
		}
		out[i] = proj
	}
	return out, nil
}
