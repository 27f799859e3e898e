package highscores

import (
	"context"
	"math/rand/v2"
	"time"
)

// Games are the titles scores are generated for.
var Games = []string{"Super Mario Bros", "Donkey Kong", "Legend of Zelda", "Tetris"}

const (
	usernameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	usernameLength   = 4
	maxScore         = 100
	// generated timestamps fall within this window before now
	timestampWindow = 30 * 24 * time.Hour
)

// RandomUsername returns n random upper case letters.
func RandomUsername(r *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = usernameAlphabet[r.IntN(len(usernameAlphabet))]
	}
	return string(b)
}

// GenerateScores returns one score per game for each of users random
// players. Scores are in [0, 100).
func GenerateScores(r *rand.Rand, users int, now time.Time) []HighScore {
	scores := make([]HighScore, 0, users*len(Games))
	for range users {
		name := RandomUsername(r, usernameLength)
		for _, game := range Games {
			scores = append(scores, HighScore{
				Username:  name,
				Game:      game,
				TopScore:  r.IntN(maxScore),
				Timestamp: now.Add(-time.Duration(r.Int64N(int64(timestampWindow)))).UTC().Truncate(time.Second),
			})
		}
	}
	return scores
}

// Seed writes scores to the HighScores table.
func (l *Leaderboard) Seed(ctx context.Context, scores []HighScore) error {
	items := make([]any, len(scores))
	for i, s := range scores {
		items[i] = s
	}
	return l.client.PutItems(ctx, TableName, items)
}
