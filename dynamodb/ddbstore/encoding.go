package ddbstore

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/acksell/highscores/dynamodb/ddbstore/ddbnum"
	"github.com/acksell/highscores/dynamodb/ddbstore/keyconditionexpr/ast"
	"github.com/acksell/highscores/dynamodb/table"
)

// Key encoding for BadgerDB that supports proper lexicographic ordering.
//
// Table items:   [table][sep][partitionKey][sep][sortKey]
// Index entries: [table][$idx:][index][sep][partitionKey][sep][sortKey][sep][table partitionKey][sep][table sortKey]
//
// Index entries end with the item's table key, so items sharing index key
// values get distinct entries. The separator byte (0x00) never appears inside
// encoded string and binary values, and encoded numbers carry their own end
// marker (see ddbnum).

const (
	keySeparator byte = 0x00
	indexMarker       = "$idx:"
)

// Key type markers for encoding
const (
	keyTypeString byte = 'S'
	keyTypeNumber byte = 'N'
	keyTypeBinary byte = 'B'
)

// keyEncoder encodes the keys of a table or of one of its indexes.
type keyEncoder struct {
	prefix []byte
	keys   table.PrimaryKeyDefinition
}

func newTableEncoder(def table.TableDefinition) *keyEncoder {
	prefix := append([]byte(def.Name), keySeparator)
	return &keyEncoder{prefix: prefix, keys: def.KeyDefinitions}
}

func newIndexEncoder(tableName, indexName string, keys table.PrimaryKeyDefinition) *keyEncoder {
	var buf bytes.Buffer
	buf.WriteString(tableName)
	buf.WriteString(indexMarker)
	buf.WriteString(indexName)
	buf.WriteByte(keySeparator)
	return &keyEncoder{prefix: buf.Bytes(), keys: keys}
}

// partitionPrefix returns the prefix shared by all keys in one partition.
func (e *keyEncoder) partitionPrefix(partitionKey any) ([]byte, error) {
	pkBytes, err := encodeKeyValue(partitionKey, e.keys.PartitionKey.Kind)
	if err != nil {
		return nil, fmt.Errorf("encode partition key: %w", err)
	}
	buf := make([]byte, 0, len(e.prefix)+len(pkBytes)+1)
	buf = append(buf, e.prefix...)
	buf = append(buf, pkBytes...)
	return append(buf, keySeparator), nil
}

func (e *keyEncoder) encode(pk table.PrimaryKey) ([]byte, error) {
	buf, err := e.partitionPrefix(pk.Values.PartitionKey)
	if err != nil {
		return nil, err
	}
	if e.keys.HasSortKey() {
		skBytes, err := encodeKeyValue(pk.Values.SortKey, e.keys.SortKey.Kind)
		if err != nil {
			return nil, fmt.Errorf("encode sort key: %w", err)
		}
		buf = append(buf, skBytes...)
	}
	return buf, nil
}

// encodeIndexEntry encodes an index key followed by the item's table key.
// tableKey is the encoded table item key, tablePrefix its table prefix.
func (e *keyEncoder) encodeIndexEntry(pk table.PrimaryKey, tableKey, tablePrefix []byte) ([]byte, error) {
	buf, err := e.encode(pk)
	if err != nil {
		return nil, err
	}
	buf = append(buf, keySeparator)
	return append(buf, tableKey[len(tablePrefix):]...), nil
}

// sortKeyValue decodes the sort key of a key that starts with partitionPrefix.
func (e *keyEncoder) sortKeyValue(key, partitionPrefix []byte) (ast.KeyValue, error) {
	v, _, err := decodeKeyValue(key[len(partitionPrefix):])
	return v, err
}

// encodeKeyValue encodes a key value with proper ordering based on key kind.
func encodeKeyValue(value any, kind table.KeyKind) ([]byte, error) {
	var buf bytes.Buffer

	switch kind {
	case table.KeyKindS:
		buf.WriteByte(keyTypeString)
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string for S key, got %T", value)
		}
		buf.Write(escapeBytes([]byte(s)))

	case table.KeyKindN:
		buf.WriteByte(keyTypeNumber)
		// Numbers in DynamoDB are stored as strings
		var numStr string
		switch v := value.(type) {
		case string:
			numStr = v
		case float64:
			numStr = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			numStr = strconv.Itoa(v)
		case int64:
			numStr = strconv.FormatInt(v, 10)
		default:
			return nil, fmt.Errorf("expected number for N key, got %T", value)
		}
		n, err := ddbnum.Parse(numStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		buf.Write(n.AppendKey(nil))

	case table.KeyKindB:
		buf.WriteByte(keyTypeBinary)
		b, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected binary for B key, got %T", value)
		}
		buf.Write(escapeBytes(b))

	default:
		return nil, fmt.Errorf("unsupported key kind: %s", kind)
	}

	return buf.Bytes(), nil
}

// decodeKeyValue decodes the key value at the start of b and returns it with
// the number of bytes it took.
func decodeKeyValue(b []byte) (ast.KeyValue, int, error) {
	if len(b) == 0 {
		return ast.KeyValue{}, 0, fmt.Errorf("empty key value")
	}
	switch b[0] {
	case keyTypeNumber:
		n, l, err := ddbnum.DecodeKey(b[1:])
		if err != nil {
			return ast.KeyValue{}, 0, err
		}
		return ast.KeyValue{Value: n.String(), Type: ast.NUMBER}, 1 + l, nil
	case keyTypeString, keyTypeBinary:
		end := bytes.IndexByte(b, keySeparator)
		if end < 0 {
			end = len(b)
		}
		raw := unescapeBytes(b[1:end])
		if b[0] == keyTypeString {
			return ast.KeyValue{Value: string(raw), Type: ast.STRING}, end, nil
		}
		return ast.KeyValue{Value: raw, Type: ast.BINARY}, end, nil
	}
	return ast.KeyValue{}, 0, fmt.Errorf("unknown key type: %c", b[0])
}

// escapeBytes escapes null bytes (0x00) in the input to preserve separator integrity.
// Uses 0x01 0x01 for literal 0x00, and 0x01 0x02 for literal 0x01.
func escapeBytes(b []byte) []byte {
	var buf bytes.Buffer
	for _, c := range b {
		switch c {
		case 0x00:
			buf.WriteByte(0x01)
			buf.WriteByte(0x01)
		case 0x01:
			buf.WriteByte(0x01)
			buf.WriteByte(0x02)
		default:
			buf.WriteByte(c)
		}
	}
	return buf.Bytes()
}

// unescapeBytes reverses the escaping done by escapeBytes.
func unescapeBytes(b []byte) []byte {
	var buf bytes.Buffer
	for i := 0; i < len(b); i++ {
		if b[i] == 0x01 && i+1 < len(b) {
			switch b[i+1] {
			case 0x01:
				buf.WriteByte(0x00)
				i++
			case 0x02:
				buf.WriteByte(0x01)
				i++
			default:
				buf.WriteByte(b[i])
			}
		} else {
			buf.WriteByte(b[i])
		}
	}
	return buf.Bytes()
}
