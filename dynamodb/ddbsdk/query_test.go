package ddbsdk

import (
	"context"
	"errors"
	"testing"

	"github.com/acksell/highscores/dynamodb/planner"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, c *Client) {
	t.Helper()
	items := []any{
		testScore{"CFGV", "Tetris", 42, "2024-01-03T00:00:00Z"},
		testScore{"CFGV", "Donkey Kong", 7, "2024-01-05T00:00:00Z"},
		testScore{"CFGV", "Legend of Zelda", 88, "2024-01-01T00:00:00Z"},
		testScore{"CFGV", "Super Mario Bros", 13, "2024-01-02T00:00:00Z"},
		testScore{"ABCD", "Tetris", 99, "2024-01-04T00:00:00Z"},
		testScore{"WXYZ", "Tetris", 5, ""},
	}
	require.NoError(t, c.PutItems(context.Background(), "HighScores", items))
}

func games(t *testing.T, items []Item) []string {
	t.Helper()
	var scores []testScore
	require.NoError(t, attributevalue.UnmarshalListOfMaps(items, &scores))
	out := make([]string, len(scores))
	for i, s := range scores {
		out[i] = s.Username + "/" + s.Game
	}
	return out
}

func TestQuerier_QueryAll(t *testing.T) {
	rec := &recordingClient{Store: newTestStore(t)}
	c := New(rec)
	seed(t, c)
	ctx := context.Background()

	tests := []struct {
		name     string
		intent   planner.Intent
		pageSize int
		want     []string
		requests int
	}{
		{
			name:     "all games for user across pages",
			intent:   planner.Intent{Table: "HighScores", PartitionValue: "CFGV"},
			pageSize: 3,
			want:     []string{"CFGV/Donkey Kong", "CFGV/Legend of Zelda", "CFGV/Super Mario Bros", "CFGV/Tetris"},
			requests: 2,
		},
		{
			name: "most recent by local index",
			intent: planner.Intent{
				Table:          "HighScores",
				IndexName:      "TimestampIndex",
				PartitionValue: "CFGV",
				Order:          planner.Descending,
				Limit:          aws.Int32(1),
			},
			want:     []string{"CFGV/Donkey Kong"},
			requests: 1,
		},
		{
			name: "top scores by global index",
			intent: planner.Intent{
				Table:          "HighScores",
				IndexName:      "GameIndex",
				PartitionValue: "Tetris",
				Order:          planner.Descending,
				Limit:          aws.Int32(2),
			},
			pageSize: 1,
			want:     []string{"ABCD/Tetris", "CFGV/Tetris"},
			requests: 2,
		},
		{
			name: "limit larger than partition",
			intent: planner.Intent{
				Table:          "HighScores",
				PartitionValue: "CFGV",
				Sort:           planner.BeginsWith("Super"),
				Limit:          aws.Int32(5),
			},
			want:     []string{"CFGV/Super Mario Bros"},
			requests: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.queries = nil
			q := c.NewQuery(mustPlan(t, tt.intent)).WithPageSize(tt.pageSize)
			res, err := q.QueryAll(ctx)
			require.NoError(t, err)
			assert.True(t, res.IsDone)
			assert.Equal(t, tt.want, games(t, res.Items))
			assert.Len(t, rec.queries, tt.requests)
		})
	}
}

func TestQuerier_PageLimit(t *testing.T) {
	rec := &recordingClient{Store: newTestStore(t)}
	c := New(rec)
	seed(t, c)

	plan := mustPlan(t, planner.Intent{Table: "HighScores", PartitionValue: "CFGV", Limit: aws.Int32(3)})
	q := c.NewQuery(plan).WithPageSize(2)

	first, err := q.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, first.Items, 2)
	assert.False(t, first.IsDone)

	second, err := q.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.Items, 1)
	assert.True(t, second.IsDone)

	require.Len(t, rec.queries, 2)
	assert.EqualValues(t, 2, aws.ToInt32(rec.queries[0].Limit))
	assert.EqualValues(t, 1, aws.ToInt32(rec.queries[1].Limit))
	assert.NotNil(t, rec.queries[1].ExclusiveStartKey)

	done, err := q.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, done.IsDone)
	assert.Empty(t, done.Items)
	assert.Len(t, rec.queries, 2)
}

func TestQuerier_ConsistentRead(t *testing.T) {
	rec := &recordingClient{Store: newTestStore(t)}
	c := New(rec)
	ctx := context.Background()

	tests := []struct {
		name       string
		intent     planner.Intent
		eventually bool
		want       *bool
	}{
		{"primary defaults to consistent", planner.Intent{Table: "HighScores", PartitionValue: "CFGV"}, false, aws.Bool(true)},
		{"primary eventually consistent", planner.Intent{Table: "HighScores", PartitionValue: "CFGV"}, true, aws.Bool(false)},
		{"local index consistent", planner.Intent{Table: "HighScores", IndexName: "TimestampIndex", PartitionValue: "CFGV"}, false, aws.Bool(true)},
		{"global index never consistent", planner.Intent{Table: "HighScores", IndexName: "GameIndex", PartitionValue: "Tetris"}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.queries = nil
			q := c.NewQuery(mustPlan(t, tt.intent))
			if tt.eventually {
				q = q.WithEventuallyConsistentReads()
			}
			_, err := q.QueryAll(ctx)
			require.NoError(t, err)
			require.Len(t, rec.queries, 1)
			assert.Equal(t, tt.want, rec.queries[0].ConsistentRead)
		})
	}
}

type failingClient struct {
	recordingClient
	err error
}

func (f *failingClient) Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return nil, f.err
}

func TestQuerier_Error(t *testing.T) {
	boom := errors.New("boom")
	c := New(&failingClient{err: boom})
	_, err := c.NewQuery(mustPlan(t, planner.Intent{Table: "HighScores", PartitionValue: "CFGV"})).QueryAll(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "HighScores")
}
