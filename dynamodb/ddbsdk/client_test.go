package ddbsdk

import (
	"context"
	"testing"

	"github.com/acksell/highscores/dynamodb/ddbstore"
	"github.com/acksell/highscores/dynamodb/planner"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/require"
)

var highScoresTable = table.TableDefinition{
	Name: "HighScores",
	KeyDefinitions: table.PrimaryKeyDefinition{
		PartitionKey: table.KeyDef{Name: "Username", Kind: table.KeyKindS},
		SortKey:      table.KeyDef{Name: "Game", Kind: table.KeyKindS},
	},
	Indexes: []table.IndexDefinition{
		{
			Name: "TimestampIndex",
			Kind: table.IndexKindLocal,
			KeyDefinitions: table.PrimaryKeyDefinition{
				SortKey: table.KeyDef{Name: "Timestamp", Kind: table.KeyKindS},
			},
		},
		{
			Name: "GameIndex",
			Kind: table.IndexKindGlobal,
			KeyDefinitions: table.PrimaryKeyDefinition{
				PartitionKey: table.KeyDef{Name: "Game", Kind: table.KeyKindS},
				SortKey:      table.KeyDef{Name: "TopScore", Kind: table.KeyKindN},
			},
		},
	},
}

type testScore struct {
	Username  string
	Game      string
	TopScore  int
	Timestamp string `dynamodbav:",omitempty"`
}

func newTestStore(t *testing.T) *ddbstore.Store {
	t.Helper()
	store, err := ddbstore.New(ddbstore.StoreOptions{InMemory: true}, highScoresTable)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestPlanner(t *testing.T) *planner.Planner {
	t.Helper()
	reg, err := table.NewRegistry(highScoresTable)
	require.NoError(t, err)
	return planner.New(reg)
}

func mustPlan(t *testing.T, intent planner.Intent) planner.Plan {
	t.Helper()
	plan, err := newTestPlanner(t).Plan(intent)
	require.NoError(t, err)
	return plan
}

// recordingClient wraps a client and records the requests sent through it.
type recordingClient struct {
	*ddbstore.Store
	queries []*dynamodb.QueryInput
	batches []*dynamodb.BatchWriteItemInput
}

func (r *recordingClient) Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	r.queries = append(r.queries, in)
	return r.Store.Query(ctx, in, optFns...)
}

func (r *recordingClient) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	r.batches = append(r.batches, in)
	return r.Store.BatchWriteItem(ctx, in, optFns...)
}
