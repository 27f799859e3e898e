package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

type app struct {
	configPath string
	flags      Config
	cfg        Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "highscores",
		Short:             "Query the HighScores leaderboard table",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default: "+configFileName+" searched upwards)")
	pf.StringVar(&a.flags.Profile, "profile", "", "shared AWS credentials profile")
	pf.StringVar(&a.flags.Region, "region", "", "AWS region")
	pf.StringVar(&a.flags.Endpoint, "endpoint", "", "DynamoDB endpoint URL, e.g. DynamoDB Local")
	pf.BoolVar(&a.flags.Local, "local", false, "use the local badger store instead of DynamoDB")
	pf.StringVar(&a.flags.DB, "db", "", "local store directory (in-memory when empty)")
	pf.StringVar(&a.flags.Schema, "schema", "", "schema file (default: built-in HighScores table)")
	pf.StringVar(&a.flags.LogLevel, "log-level", defaultLogLevel, "log level: debug, info, warn or error")
	pf.StringVar(&a.flags.LogFormat, "log-format", defaultLogFormat, "log format: text or json")

	root.AddCommand(
		a.queryCmd(),
		a.planCmd(),
		a.seedCmd(),
		a.createTableCmd(),
		a.whoamiCmd(),
		versionCmd(),
	)
	return root
}

// setup loads the config file, applies flags on top and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	cfg.merge(a.flags, cmd.Flags().Changed)
	a.cfg = cfg

	a.log, err = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.log = a.log.With("command", cmd.Name())
	if path != "" {
		a.log.Debug("loaded config", "path", path)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// no config or logger needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "highscores version %s\n", version)
		},
	}
}
