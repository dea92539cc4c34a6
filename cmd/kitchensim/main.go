// Command kitchensim runs the restaurant floor simulation and its HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/mini-kitchen/internal/config"
)

var configPath string

// NewRootCommand creates the root command for the CLI.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kitchensim",
		Short: "Kitchen simulation - run and inspect a restaurant floor",
		Long: `kitchensim drives the kitchen and front-of-house job loop in real time,
persists progress to SQLite and serves a read/admin HTTP API.

Examples:
  kitchensim run --config configs/config.yaml
  kitchensim status
  kitchensim journal --category sale --limit 20
  kitchensim reset --yes`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config file (default: ./config.yaml or ./configs/config.yaml)")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewJournalCommand())
	rootCmd.AddCommand(NewResetCommand())

	return rootCmd
}

// loadConfig reads the config and installs its logger as the default.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return cfg, nil
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
