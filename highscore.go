// Package highscores is a leaderboard on top of the DynamoDB HighScores
// table.
//
// The table is keyed by player and game. Two secondary indexes serve the
// remaining lookups: TimestampIndex (local) orders a player's scores by time,
// and GameIndex (global) orders a game's scores by value.
//
//	lb := highscores.New(registry, dynamodbClient)
//	res, err := lb.TopForGame(ctx, "Tetris")
package highscores

import (
	"fmt"
	"time"

	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	TableName = "HighScores"

	TimestampIndex = "TimestampIndex"
	GameIndex      = "GameIndex"

	AttrUsername  = "Username"
	AttrGame      = "Game"
	AttrTopScore  = "TopScore"
	AttrTimestamp = "Timestamp"
)

// TimestampLayout is how Timestamp is stored. It is fixed width and UTC, so
// TimestampIndex orders entries by time.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// HighScore is a player's best score in one game. A zero Timestamp is not
// stored, which leaves the score out of TimestampIndex.
type HighScore struct {
	Username  string
	Game      string
	TopScore  int
	Timestamp time.Time
}

type storedHighScore struct {
	Username  string `dynamodbav:"Username"`
	Game      string `dynamodbav:"Game"`
	TopScore  int    `dynamodbav:"TopScore"`
	Timestamp string `dynamodbav:"Timestamp,omitempty"`
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func (h HighScore) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	s := storedHighScore{Username: h.Username, Game: h.Game, TopScore: h.TopScore}
	if !h.Timestamp.IsZero() {
		s.Timestamp = FormatTimestamp(h.Timestamp)
	}
	return attributevalue.Marshal(s)
}

func (h *HighScore) UnmarshalDynamoDBAttributeValue(av types.AttributeValue) error {
	var s storedHighScore
	if err := attributevalue.Unmarshal(av, &s); err != nil {
		return err
	}
	*h = HighScore{Username: s.Username, Game: s.Game, TopScore: s.TopScore}
	if s.Timestamp == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, s.Timestamp)
	if err != nil {
		return fmt.Errorf("timestamp of %s/%s: %w", s.Username, s.Game, err)
	}
	h.Timestamp = ts
	return nil
}

// Schema returns the HighScores table definition.
func Schema() table.TableDefinition {
	return table.TableDefinition{
		Name: TableName,
		KeyDefinitions: table.PrimaryKeyDefinition{
			PartitionKey: table.KeyDef{Name: AttrUsername, Kind: table.KeyKindS},
			SortKey:      table.KeyDef{Name: AttrGame, Kind: table.KeyKindS},
		},
		Indexes: []table.IndexDefinition{
			{
				Name: TimestampIndex,
				Kind: table.IndexKindLocal,
				KeyDefinitions: table.PrimaryKeyDefinition{
					SortKey: table.KeyDef{Name: AttrTimestamp, Kind: table.KeyKindS},
				},
				Projection: table.Projection{Kind: table.ProjectAll},
			},
			{
				Name: GameIndex,
				Kind: table.IndexKindGlobal,
				KeyDefinitions: table.PrimaryKeyDefinition{
					PartitionKey: table.KeyDef{Name: AttrGame, Kind: table.KeyKindS},
					SortKey:      table.KeyDef{Name: AttrTopScore, Kind: table.KeyKindN},
				},
				Projection: table.Projection{Kind: table.ProjectAll},
			},
		},
	}
}

// NewRegistry returns a registry holding only the HighScores table.
func NewRegistry() (*table.Registry, error) {
	return table.NewRegistry(Schema())
}
