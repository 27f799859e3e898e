package main

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/acksell/highscores"
	"github.com/acksell/highscores/dynamodb/ddbsdk"
	"github.com/spf13/cobra"
)

func (a *app) seedCmd() *cobra.Command {
	var (
		users int
		seed  uint64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the table with random scores",
		Long: "Writes one random score per game for each of --users random four letter\n" +
			"players. The same --seed always generates the same players and scores.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if users <= 0 {
				return fmt.Errorf("--users must be positive, got %d", users)
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			ctx := cmd.Context()

			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			r := rand.New(rand.NewPCG(seed, seed))
			scores := highscores.GenerateScores(r, users, time.Now())
			if err := highscores.New(b.registry, b.client).Seed(ctx, scores); err != nil {
				return err
			}
			a.log.Info("seeded scores", "users", users, "items", len(scores), "seed", seed)

			seen := map[string]bool{}
			for _, s := range scores {
				if !seen[s.Username] {
					seen[s.Username] = true
					fmt.Fprintln(cmd.OutOrStdout(), s.Username)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 10, "number of players to generate")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (default: current time)")
	return cmd
}

func (a *app) createTableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-table",
		Short: "Create every table in the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			for _, def := range b.registry.Tables() {
				err := ddbsdk.CreateTable(ctx, b.client, def)
				switch {
				case errors.Is(err, ddbsdk.ErrTableExists):
					a.log.Warn("table already exists", "table", def.Name)
				case err != nil:
					return err
				default:
					a.log.Info("created table", "table", def.Name, "indexes", len(def.Indexes))
				}
			}
			return nil
		},
	}
}
