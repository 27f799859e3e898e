package ddbstore

import (
	"bytes"
	"testing"

	"github.com/acksell/highscores/dynamodb/ddbstore/keyconditionexpr/ast"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeKeyValue_Number(t *testing.T) {
	enc := func(n string) []byte {
		t.Helper()
		b, err := encodeKeyValue(n, table.KeyKindN)
		require.NoError(t, err)
		return b
	}

	t.Run("numeric order", func(t *testing.T) {
		nums := []string{"-1e10", "-100", "-1.5", "-0.001", "0", "0.001", "1", "1.5", "10", "100", "9007199254740992", "9007199254740993", "1e10"}
		for i := 1; i < len(nums); i++ {
			assert.Negative(t, bytes.Compare(enc(nums[i-1]), enc(nums[i])), "%s should sort before %s", nums[i-1], nums[i])
		}
	})

	t.Run("equal numbers share a key", func(t *testing.T) {
		assert.Equal(t, enc("0"), enc("-0"))
		assert.Equal(t, enc("1.50"), enc("1.5"))
		assert.Equal(t, enc("1e2"), enc("100"))
	})

	t.Run("invalid", func(t *testing.T) {
		for _, n := range []string{"abc", "", "1e", "123456789012345678901234567890123456789", "1e200"} {
			_, err := encodeKeyValue(n, table.KeyKindN)
			assert.ErrorIs(t, err, ErrValidation, n)
		}
	})

	t.Run("decode", func(t *testing.T) {
		for n, want := range map[string]string{
			"-100": "-100", "-1.5": "-1.5", "0": "0", "-0": "0", "42": "42", "3.250": "3.25", "1e3": "1000", "9007199254740993": "9007199254740993",
		} {
			got, l, err := decodeKeyValue(enc(n))
			require.NoError(t, err)
			assert.Equal(t, ast.KeyValue{Value: want, Type: ast.NUMBER}, got, n)
			assert.Equal(t, len(enc(n)), l)
		}
	})
}

func TestEscapeBytes(t *testing.T) {
	in := []byte{'a', 0x00, 'b', 0x01, 0x02}
	esc := escapeBytes(in)
	assert.NotContains(t, esc, keySeparator)
	assert.Equal(t, in, unescapeBytes(esc))
}

func TestKeyEncoder_SortKeyValue(t *testing.T) {
	def := table.TableDefinition{
		Name: "t",
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: "pk", Kind: table.KeyKindS},
			SortKey:      table.KeyDef{Name: "sk", Kind: table.KeyKindS},
		},
	}
	tableEnc := newTableEncoder(def)

	tests := []struct {
		name string
		kind table.KeyKind
		sk   any
		want ast.KeyValue
	}{
		{"string", table.KeyKindS, "a\x00b", ast.KeyValue{Value: "a\x00b", Type: ast.STRING}},
		{"number", table.KeyKindN, "-12.5", ast.KeyValue{Value: "-12.5", Type: ast.NUMBER}},
		{"binary", table.KeyKindB, []byte{0x00, 0x01, 0xff}, ast.KeyValue{Value: []byte{0x00, 0x01, 0xff}, Type: ast.BINARY}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idxKeys := table.PrimaryKeyDefinition{
				PartitionKey: table.KeyDef{Name: "g", Kind: table.KeyKindS},
				SortKey:      table.KeyDef{Name: "s", Kind: tt.kind},
			}
			idxEnc := newIndexEncoder("t", "idx", idxKeys)

			tableKey, err := tableEnc.encode(table.PrimaryKey{
				Definition: def.KeyDefinitions,
				Values:     table.PrimaryKeyValues{PartitionKey: "user", SortKey: "game"},
			})
			require.NoError(t, err)

			key, err := idxEnc.encodeIndexEntry(table.PrimaryKey{
				Definition: idxKeys,
				Values:     table.PrimaryKeyValues{PartitionKey: "part", SortKey: tt.sk},
			}, tableKey, tableEnc.prefix)
			require.NoError(t, err)

			prefix, err := idxEnc.partitionPrefix("part")
			require.NoError(t, err)
			require.True(t, bytes.HasPrefix(key, prefix))
			assert.False(t, bytes.HasPrefix(key, tableEnc.prefix), "index keys must not share the table prefix")

			got, err := idxEnc.sortKeyValue(key, prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
