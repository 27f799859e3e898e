package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/acksell/highscores"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spf13/cobra"
)

type lookupFlags struct {
	user    string
	game    string
	topGame string
}

func (f *lookupFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.user, "user", "CFGV", "player to look up")
	cmd.Flags().StringVar(&f.game, "game", "Tetris", "game for the user and game lookup")
	cmd.Flags().StringVar(&f.topGame, "top-game", "Legend of Zelda", "game for the top score lookup")
}

func (f *lookupFlags) intents() []highscores.NamedIntent {
	return highscores.Intents(f.user, f.game, f.topGame)
}

func (a *app) queryCmd() *cobra.Command {
	var lf lookupFlags
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run the four leaderboard lookups",
		Long: "Runs AllForUser, ForUserAndGame, MostRecentForUser and TopForGame and\n" +
			"prints the rows of each.\n\n" +
			"With --local and no --db the store lives in memory and starts empty, so\n" +
			"every lookup comes back without rows. Seed a store with\n" +
			"'highscores seed --local --db DIR' and query it with the same --db.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Launched!")
			if a.cfg.Local && a.cfg.DB == "" {
				a.log.Warn("local store is in memory and empty, pass --db to query seeded data")
			}

			b, err := a.openBackend(ctx)
			if err != nil {
				return err
			}
			defer b.Close()
			lb := highscores.New(b.registry, b.client)

			// a failed lookup does not stop the others
			var errs []error
			for _, ni := range lf.intents() {
				fmt.Fprintln(out, ni.Name)
				res, err := lb.Lookup(ctx, ni.Intent)
				if err != nil {
					a.log.Error("lookup failed", "lookup", ni.Name, "error", err)
					errs = append(errs, fmt.Errorf("%s: %w", ni.Name, err))
					continue
				}
				a.log.Debug("lookup done", "lookup", ni.Name, "plan", res.Plan.String(), "rows", len(res.Rows))
				for _, row := range res.Rows {
					fmt.Fprintln(out, row)
				}
			}
			return errors.Join(errs...)
		},
	}
	lf.register(cmd)
	return cmd
}

func (a *app) planCmd() *cobra.Command {
	var lf lookupFlags
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the query plans without running them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			lb := highscores.New(reg, nil)

			out := cmd.OutOrStdout()
			var errs []error
			for _, ni := range lf.intents() {
				plan, err := lb.Plan(ni.Intent)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", ni.Name, err))
					continue
				}
				expr, err := plan.Expression()
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", ni.Name, err))
					continue
				}
				fmt.Fprintf(out, "%s\n  plan: %s\n  key condition: %s\n", ni.Name, plan, keyConditionString(expr))
			}
			return errors.Join(errs...)
		},
	}
	lf.register(cmd)
	return cmd
}

// keyConditionString renders a key condition with its placeholders
// substituted, e.g. (Username = "CFGV") AND (Game = "Tetris").
func keyConditionString(expr expression.Expression) string {
	subst := map[string]string{}
	for k, v := range expr.Names() {
		subst[k] = v
	}
	for k, v := range expr.Values() {
		subst[k] = renderValue(v)
	}
	// longest placeholder first so #1 never matches inside #10
	keys := make([]string, 0, len(subst))
	for k := range subst {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, subst[k])
	}
	return strings.NewReplacer(pairs...).Replace(aws.ToString(expr.KeyCondition()))
}

func renderValue(av types.AttributeValue) string {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return fmt.Sprintf("%q", v.Value)
	case *types.AttributeValueMemberN:
		return v.Value
	case *types.AttributeValueMemberB:
		return fmt.Sprintf("0x%x", v.Value)
	}
	return fmt.Sprintf("%v", av)
}
