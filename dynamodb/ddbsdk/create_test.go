package ddbsdk

import (
	"context"
	"testing"

	"github.com/acksell/highscores/dynamodb/ddbstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTable(t *testing.T) {
	store, err := ddbstore.New(ddbstore.StoreOptions{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	ctx := context.Background()

	require.NoError(t, CreateTable(ctx, store, highScoresTable))

	err = CreateTable(ctx, store, highScoresTable)
	require.ErrorIs(t, err, ErrTableExists)
	assert.Contains(t, err.Error(), "HighScores")
}
