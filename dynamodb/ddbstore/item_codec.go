package ddbstore

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// storedValue is the gob form of an attribute value. Exactly one field is
// set, Kind says which.
type storedValue struct {
	Kind string
	Str  string
	Bin  []byte
	Bool bool
	Strs []string
	Bins [][]byte
	Map  map[string]storedValue
	List []storedValue
}

// SerializeItem encodes an item for storage.
func SerializeItem(item map[string]types.AttributeValue) ([]byte, error) {
	stored, err := toStoredMap(item)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(stored); err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	return buf.Bytes(), nil
}

// DeserializeItem decodes an item written by SerializeItem.
func DeserializeItem(data []byte) (map[string]types.AttributeValue, error) {
	var stored map[string]storedValue
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&stored); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	return fromStoredMap(stored)
}

func toStoredMap(m map[string]types.AttributeValue) (map[string]storedValue, error) {
	out := make(map[string]storedValue, len(m))
	for name, av := range m {
		sv, err := toStored(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = sv
	}
	return out, nil
}

func fromStoredMap(m map[string]storedValue) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(m))
	for name, sv := range m {
		av, err := fromStored(sv)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = av
	}
	return out, nil
}

func toStored(av types.AttributeValue) (storedValue, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return storedValue{Kind: "S", Str: v.Value}, nil
	case *types.AttributeValueMemberN:
		return storedValue{Kind: "N", Str: v.Value}, nil
	case *types.AttributeValueMemberB:
		return storedValue{Kind: "B", Bin: v.Value}, nil
	case *types.AttributeValueMemberBOOL:
		return storedValue{Kind: "BOOL", Bool: v.Value}, nil
	case *types.AttributeValueMemberNULL:
		return storedValue{Kind: "NULL", Bool: v.Value}, nil
	case *types.AttributeValueMemberSS:
		return storedValue{Kind: "SS", Strs: v.Value}, nil
	case *types.AttributeValueMemberNS:
		return storedValue{Kind: "NS", Strs: v.Value}, nil
	case *types.AttributeValueMemberBS:
		return storedValue{Kind: "BS", Bins: v.Value}, nil
	case *types.AttributeValueMemberM:
		m, err := toStoredMap(v.Value)
		return storedValue{Kind: "M", Map: m}, err
	case *types.AttributeValueMemberL:
		list := make([]storedValue, len(v.Value))
		for i, elem := range v.Value {
			sv, err := toStored(elem)
			if err != nil {
				return storedValue{}, fmt.Errorf("index %d: %w", i, err)
			}
			list[i] = sv
		}
		return storedValue{Kind: "L", List: list}, nil
	}
	return storedValue{}, fmt.Errorf("unsupported attribute value type %T", av)
}

func fromStored(sv storedValue) (types.AttributeValue, error) {
	switch sv.Kind {
	case "S":
		return &types.AttributeValueMemberS{Value: sv.Str}, nil
	case "N":
		return &types.AttributeValueMemberN{Value: sv.Str}, nil
	case "B":
		return &types.AttributeValueMemberB{Value: sv.Bin}, nil
	case "BOOL":
		return &types.AttributeValueMemberBOOL{Value: sv.Bool}, nil
	case "NULL":
		return &types.AttributeValueMemberNULL{Value: sv.Bool}, nil
	case "SS":
		return &types.AttributeValueMemberSS{Value: sv.Strs}, nil
	case "NS":
		return &types.AttributeValueMemberNS{Value: sv.Strs}, nil
	case "BS":
		return &types.AttributeValueMemberBS{Value: sv.Bins}, nil
	case "M":
		m, err := fromStoredMap(sv.Map)
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case "L":
		list := make([]types.AttributeValue, len(sv.List))
		for i, elem := range sv.List {
			av, err := fromStored(elem)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list[i] = av
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	}
	return nil, fmt.Errorf("unknown stored kind %q", sv.Kind)
}
