// Package main implements the crate-influence CLI, the command surface of
// the influence-tracing engine: path tracing, bridge finding, mention
// extraction, review search, and graph cache operations.
package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmoody1973/crate-cli-sub000/internal/config"
	"github.com/tmoody1973/crate-cli-sub000/internal/logging"
)

var (
	// flagConfig is the config file path override.
	flagConfig string
	// flagLogLevel overrides the configured log level.
	flagLogLevel string
	// flagJSON switches output to machine-readable JSON.
	flagJSON bool
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "crate-influence",
	Short: "Trace artistic influence between musicians via music criticism",
	Long: `crate-influence discovers influence relationships between musicians by
mining co-mentions in music criticism. Discovered connections are cached in
a local graph, so tracing gets faster and richer with use.

A legitimate negative (no path, no bridges) exits 0 with a message; only
actual failures exit non-zero.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.config/crate/influence.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "print machine-readable JSON output")

	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(bridgesCmd)
	rootCmd.AddCommand(mentionsCmd)
	rootCmd.AddCommand(reviewsCmd)
	rootCmd.AddCommand(cacheCmd)
}

// loadConfig loads configuration honoring the global flags.
func loadConfig() (*config.Config, error) {
	if err := config.EnsureConfigDir(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadWithFile(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
		if err := cfg.Logging.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// newLogger builds the CLI logger from config.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.New(cfg.Logging)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
