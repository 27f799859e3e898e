package highscores

import (
	"context"
	"fmt"
	"time"

	"github.com/acksell/highscores/dynamodb/ddbiface"
	"github.com/acksell/highscores/dynamodb/ddbsdk"
	"github.com/acksell/highscores/dynamodb/planner"
	"github.com/acksell/highscores/dynamodb/shape"
	"github.com/acksell/highscores/dynamodb/table"
	"github.com/aws/aws-sdk-go-v2/aws"
)

type Leaderboard struct {
	planner *planner.Planner
	client  *ddbsdk.Client
	shaper  *shape.Shaper
}

// New returns a leaderboard reading through ddb. The registry must hold the
// HighScores table.
func New(reg *table.Registry, ddb ddbiface.AWSDynamoClientV2) *Leaderboard {
	return &Leaderboard{
		planner: planner.New(reg),
		client:  ddbsdk.New(ddb),
		shaper:  shape.New(shape.Fields{Score: AttrTopScore, Timestamp: AttrTimestamp}),
	}
}

// Result is the outcome of one lookup.
type Result struct {
	Plan planner.Plan
	Rows []shape.Row
}

// NamedIntent is a lookup intent with a display name.
type NamedIntent struct {
	Name   string
	Intent planner.Intent
}

// Intents returns the four standard lookups in the order they are run.
func Intents(user, game, topGame string) []NamedIntent {
	return []NamedIntent{
		{"AllForUser", AllForUserIntent(user)},
		{"ForUserAndGame", ForUserAndGameIntent(user, game)},
		{"MostRecentForUser", MostRecentForUserIntent(user)},
		{"TopForGame", TopForGameIntent(topGame)},
	}
}

// AllForUserIntent reads every score of user by partition key, ordered by
// game.
func AllForUserIntent(user string) planner.Intent {
	return planner.Intent{Table: TableName, PartitionValue: user}
}

func ForUserAndGameIntent(user, game string) planner.Intent {
	return planner.Intent{Table: TableName, PartitionValue: user, Sort: planner.SortEquals(game)}
}

// MostRecentForUserIntent reads the latest score of user through the local
// timestamp index.
func MostRecentForUserIntent(user string) planner.Intent {
	return planner.Intent{
		Table:          TableName,
		IndexName:      TimestampIndex,
		PartitionValue: user,
		Order:          planner.Descending,
		Limit:          aws.Int32(1),
	}
}

// TopForGameIntent reads the best score of game through the global game
// index.
func TopForGameIntent(game string) planner.Intent {
	return planner.Intent{
		Table:          TableName,
		IndexName:      GameIndex,
		PartitionValue: game,
		Order:          planner.Descending,
		Limit:          aws.Int32(1),
	}
}

func (l *Leaderboard) AllForUser(ctx context.Context, user string) (Result, error) {
	return l.Lookup(ctx, AllForUserIntent(user))
}

func (l *Leaderboard) ForUserAndGame(ctx context.Context, user, game string) (Result, error) {
	return l.Lookup(ctx, ForUserAndGameIntent(user, game))
}

func (l *Leaderboard) MostRecentForUser(ctx context.Context, user string) (Result, error) {
	return l.Lookup(ctx, MostRecentForUserIntent(user))
}

func (l *Leaderboard) TopForGame(ctx context.Context, game string) (Result, error) {
	return l.Lookup(ctx, TopForGameIntent(game))
}

// Plan resolves intent without running it.
func (l *Leaderboard) Plan(intent planner.Intent) (planner.Plan, error) {
	return l.planner.Plan(intent)
}

// Lookup plans intent, runs it to completion and shapes the items.
func (l *Leaderboard) Lookup(ctx context.Context, intent planner.Intent) (Result, error) {
	plan, err := l.planner.Plan(intent)
	if err != nil {
		return Result{}, err
	}
	res, err := l.client.NewQuery(plan).QueryAll(ctx)
	if err != nil {
		return Result{Plan: plan}, fmt.Errorf("lookup: %w", err)
	}
	rows := l.shaper.Shape(plan, res.Items)
	for i := range rows {
		rows[i].Timestamp = displayTimestamp(rows[i].Timestamp)
	}
	return Result{Plan: plan, Rows: rows}, nil
}

// displayTimestamp drops the zero padding of stored timestamps. Values not
// written by this package are shown as stored.
func displayTimestamp(s string) string {
	if s == "" {
		return s
	}
	ts, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return s
	}
	return ts.Format(time.RFC3339Nano)
}
