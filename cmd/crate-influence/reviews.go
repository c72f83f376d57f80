package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tmoody1973/crate-cli-sub000/internal/websearch"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews ARTIST [ALBUM]",
	Short: "Search music criticism for reviews of an artist or album",
	Long: `Search the music-criticism allow-list for reviews of an artist,
optionally narrowed to one album. Top results are upgraded with extracted
page text where extraction succeeds.

Examples:
  crate-influence reviews "Stereolab"
  crate-influence reviews "Stereolab" "Dots and Loops" --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runReviews,
}

func runReviews(cmd *cobra.Command, args []string) error {
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

	album := ""
	if len(args) > 1 {
		album = args[1]
	}

	results, err := agg.SearchReviews(cmd.Context(), args[0], album)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(results)
	}

	if len(results) == 0 {
		fmt.Println("No reviews found.")
		return nil
	}

	for _, ev := range results {
		fmt.Printf("%s (%s)\n  %s\n", ev.Title, ev.Domain, ev.URL)
	}
	return nil
}
