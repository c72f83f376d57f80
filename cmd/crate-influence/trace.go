package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmoody1973/crate-cli-sub000/internal/graph"
	"github.com/tmoody1973/crate-cli-sub000/internal/influence"
	"github.com/tmoody1973/crate-cli-sub000/internal/mentions"
	"github.com/tmoody1973/crate-cli-sub000/internal/websearch"
)

var traceDepth int

var traceCmd = &cobra.Command{
	Use:   "trace FROM TO",
	Short: "Trace an influence path between two artists",
	Long: `Trace an influence path between two artists.

The cached graph is consulted first; on a miss, live searches of music
criticism look for direct co-mentions and bridge artists. Discovered
connections are written back to the cache.

Examples:
  # Trace with the default depth
  crate-influence trace "Kraftwerk" "Depeche Mode"

  # Allow longer chains
  crate-influence trace "Can" "LCD Soundsystem" --depth 4

  # Machine-readable output
  crate-influence trace "Kraftwerk" "Depeche Mode" --json`,
	Args: cobra.ExactArgs(2),
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().IntVar(&traceDepth, "depth", 0, "maximum path depth, 2 to 5 (default from config)")
}

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := graph.Open(cfg.Graph, logger.Named("graph"))
	if err != nil {
		return err
	}
	defer store.Close()

	agg, err := websearch.NewAggregator(cfg.Search, logger.Named("websearch"))
	if err != nil {
		return err
	}

	tracer, err := influence.NewTracer(store, agg, mentions.NewHeuristicExtractor(cfg.Mentions), cfg.Influence, logger.Named("influence"))
	if err != nil {
		return err
	}

	result, err := tracer.TracePath(cmd.Context(), args[0], args[1], traceDepth)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(result)
	}

	if !result.Found {
		fmt.Printf("No influence path found between %s and %s (%d sources explored).\n",
			args[0], args[1], result.SourcesExplored)
		fmt.Println("Try a larger --depth to allow longer chains.")
		return nil
	}

	fmt.Println(result.Path.Render())
	for _, step := range result.Path.Steps[1:] {
		fmt.Printf("  %s: %s\n", step.Artist, step.Connection)
		if step.Evidence != "" {
			fmt.Printf("    %q\n", step.Evidence)
		}
	}
	return nil
}
