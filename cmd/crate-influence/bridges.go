package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmoody1973/crate-cli-sub000/internal/influence"
	"github.com/tmoody1973/crate-cli-sub000/internal/mentions"
	"github.com/tmoody1973/crate-cli-sub000/internal/websearch"
)

var bridgesLimit int

var bridgesCmd = &cobra.Command{
	Use:   "bridges GENRE_A GENRE_B",
	Short: "Find artists bridging two genres or scenes",
	Long: `Find artists whose critical mentions span two genres or scenes.

Candidates score higher for appearing independently in the top results of
both genres than for one co-occurrence in a crossover article.

Examples:
  # Who connects jazz and electronic music?
  crate-influence bridges jazz electronic

  # Top three only, as JSON
  crate-influence bridges "post-punk" dub --limit 3 --json`,
	Args: cobra.ExactArgs(2),
	RunE: runBridges,
}

func init() {
	bridgesCmd.Flags().IntVar(&bridgesLimit, "limit", 10, "maximum candidates to return")
}

func runBridges(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	agg, err := websearch.NewAggregator(cfg.Search, logger.Named("websearch"))
	if err != nil {
		return err
	}

	finder, err := influence.NewBridgeFinder(agg, mentions.NewHeuristicExtractor(cfg.Mentions), cfg.Influence, logger.Named("influence"))
	if err != nil {
		return err
	}

	candidates, err := finder.FindBridges(cmd.Context(), args[0], args[1], bridgesLimit)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(candidates)
	}

	if len(candidates) == 0 {
		fmt.Printf("No bridge artists found between %s and %s.\n", args[0], args[1])
		return nil
	}

	for i, c := range candidates {
		fmt.Printf("%d. %s (score %d)\n", i+1, c.Artist, c.Score)
		if c.Evidence != "" {
			fmt.Printf("   %q\n", c.Evidence)
		}
	}
	return nil
}
