package table

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type PrimaryKeyDefinition struct {
	PartitionKey KeyDef
	SortKey      KeyDef // zero value when the key has no sort attribute
}

// HasSortKey reports whether the key has a sort attribute.
func (k PrimaryKeyDefinition) HasSortKey() bool {
	return k.SortKey.Name != ""
}

// Attributes returns the key attribute names, partition first.
func (k PrimaryKeyDefinition) Attributes() []string {
	if !k.HasSortKey() {
		return []string{k.PartitionKey.Name}
	}
	return []string{k.PartitionKey.Name, k.SortKey.Name}
}

// Has reports whether attr is one of the key attributes.
func (k PrimaryKeyDefinition) Has(attr string) bool {
	return attr != "" && (k.PartitionKey.Name == attr || k.SortKey.Name == attr)
}

type KeyDef struct {
	Name string
	Kind KeyKind
}

type KeyKind string

const (
	KeyKindS KeyKind = "S"
	KeyKindN KeyKind = "N"
	KeyKindB KeyKind = "B"
)

func (k KeyKind) Valid() bool {
	switch k {
	case KeyKindS, KeyKindN, KeyKindB:
		return true
	}
	return false
}

// Accepts reports whether a Go value can be used as a key value of this kind.
// Numbers may be given as any Go numeric type or as a numeric string.
func (k KeyKind) Accepts(v any) bool {
	switch k {
	case KeyKindS:
		_, ok := v.(string)
		return ok
	case KeyKindN:
		switch n := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return true
		case string:
			_, err := strconv.ParseFloat(n, 64)
			return err == nil
		}
		return false
	case KeyKindB:
		_, ok := v.([]byte)
		return ok
	default:
		return false
	}
}

// Type safety is ensured by validating values against the KeyDefinition before use.
type PrimaryKeyValues struct {
	PartitionKey any
	SortKey      any
}

type PrimaryKey struct {
	Definition PrimaryKeyDefinition
	Values     PrimaryKeyValues
}

// DDB returns the key as a dynamo key map.
func (k PrimaryKey) DDB() (map[string]types.AttributeValue, error) {
	pk, err := marshalKeyValue(k.Definition.PartitionKey, k.Values.PartitionKey)
	if err != nil {
		return nil, err
	}
	if !k.Definition.HasSortKey() {
		return map[string]types.AttributeValue{
			k.Definition.PartitionKey.Name: pk,
		}, nil
	}
	if k.Values.SortKey == nil {
		return nil, fmt.Errorf("sort key %q is required but got nil", k.Definition.SortKey.Name)
	}
	sk, err := marshalKeyValue(k.Definition.SortKey, k.Values.SortKey)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		k.Definition.PartitionKey.Name: pk,
		k.Definition.SortKey.Name:      sk,
	}, nil
}

func marshalKeyValue(def KeyDef, v any) (types.AttributeValue, error) {
	if !def.Kind.Accepts(v) {
		return nil, fmt.Errorf("key %q of kind %s does not accept %T value %v", def.Name, def.Kind, v, v)
	}
	// numeric strings would otherwise marshal as S
	if s, ok := v.(string); ok && def.Kind == KeyKindN {
		return &types.AttributeValueMemberN{Value: s}, nil
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key %q of type %T with value %v: %w", def.Name, v, v, err)
	}
	if err := attributeMatchesDefinition(def.Kind, av); err != nil {
		return nil, fmt.Errorf("key %q kind does not match dynamo value: %w", def.Name, err)
	}
	return av, nil
}

func attributeMatchesDefinition(want KeyKind, v types.AttributeValue) error {
	var got KeyKind
	switch v.(type) {
	case *types.AttributeValueMemberS:
		got = KeyKindS
	case *types.AttributeValueMemberN:
		got = KeyKindN
	case *types.AttributeValueMemberB:
		got = KeyKindB
	default:
		return fmt.Errorf("unexpected key attribute type %T", v)
	}
	if got != want {
		return fmt.Errorf("got KeyKind %q want %q", got, want)
	}
	return nil
}
