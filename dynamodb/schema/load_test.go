package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/acksell/highscores/dynamodb/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const highScoresYAML = `
tables:
  - name: HighScores
    partitionKey: {name: Username, kind: S}
    sortKey: {name: Game, kind: S}
    indexes:
      - name: TimestampIndex
        kind: LOCAL
        sortKey: {name: Timestamp, kind: S}
        projection: {type: ALL}
      - name: GameIndex
        kind: GLOBAL
        partitionKey: {name: Game, kind: S}
        sortKey: {name: TopScore, kind: N}
        projection:
          type: INCLUDE
          nonKeyAttributes: [Timestamp]
`

func TestParse_HighScores(t *testing.T) {
	s, err := Parse([]byte(highScoresYAML))
	require.NoError(t, err)

	reg, err := s.Registry()
	require.NoError(t, err)

	def, err := reg.Resolve("HighScores")
	require.NoError(t, err)
	assert.Equal(t, table.KeyDef{Name: "Username", Kind: table.KeyKindS}, def.KeyDefinitions.PartitionKey)
	assert.Equal(t, table.KeyDef{Name: "Game", Kind: table.KeyKindS}, def.KeyDefinitions.SortKey)

	lsi, err := reg.ResolveIndex("HighScores", "TimestampIndex")
	require.NoError(t, err)
	assert.Equal(t, table.IndexKindLocal, lsi.Kind)
	// local indexes inherit the table partition key
	assert.Equal(t, "Username", lsi.KeyDefinitions.PartitionKey.Name)
	assert.Equal(t, table.ProjectAll, lsi.Projection.Kind)

	gsi, err := reg.ResolveIndex("HighScores", "GameIndex")
	require.NoError(t, err)
	assert.Equal(t, table.IndexKindGlobal, gsi.Kind)
	assert.Equal(t, table.KeyDef{Name: "TopScore", Kind: table.KeyKindN}, gsi.KeyDefinitions.SortKey)
	assert.Equal(t, table.Projection{Kind: table.ProjectSubset, NonKeyAttributes: []string{"Timestamp"}}, gsi.Projection)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no tables", "tables: []"},
		{"unknown field", "tables:\n  - name: T\n    partitionKey: {name: pk, kind: S}\n    ttl: expires\n"},
		{"not yaml", "tables: [::"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestSchema_Registry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing index kind",
			yaml: `
tables:
  - name: T
    partitionKey: {name: pk, kind: S}
    sortKey: {name: sk, kind: S}
    indexes:
      - name: idx
        partitionKey: {name: other, kind: S}
`,
		},
		{
			name: "bad key kind",
			yaml: `
tables:
  - name: T
    partitionKey: {name: pk, kind: X}
`,
		},
		{
			name: "local index with foreign partition key",
			yaml: `
tables:
  - name: T
    partitionKey: {name: pk, kind: S}
    sortKey: {name: sk, kind: S}
    indexes:
      - name: idx
        kind: LOCAL
        partitionKey: {name: other, kind: S}
        sortKey: {name: ts, kind: S}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = s.Registry()
			require.ErrorIs(t, err, table.ErrInvalidDefinition)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(highScoresYAML), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	require.Len(t, s.Tables, 1)
	assert.Len(t, s.Tables[0].Indexes, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFromDefinitions(t *testing.T) {
	s, err := Parse([]byte(highScoresYAML))
	require.NoError(t, err)
	defs, err := s.TableDefinitions()
	require.NoError(t, err)

	out, err := FromDefinitions(defs...).Marshal()
	require.NoError(t, err)

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}
