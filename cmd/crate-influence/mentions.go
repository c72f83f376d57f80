package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmoody1973/crate-cli-sub000/internal/mentions"
)

var mentionsCmd = &cobra.Command{
	Use:   "mentions SUBJECT [file]",
	Short: "Extract artist co-mentions from review text",
	Long: `Extract candidate artist co-mentions from review text about a subject
artist. Reads from a file or stdin.

Examples:
  # Extract from a saved review
  crate-influence mentions "Oneohtrix Point Never" review.txt

  # Extract from stdin
  pbpaste | crate-influence mentions "Radiohead" -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runMentions,
}

func runMentions(cmd *cobra.Command, args []string) error {
	var (
		text []byte
		err  error
	)
	if len(args) < 2 || args[1] == "-" {
		text, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		text, err = os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[1], err)
		}
	}
	if len(text) == 0 {
		return fmt.Errorf("no text to extract from")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	extractor := mentions.NewHeuristicExtractor(cfg.Mentions)
	found := extractor.Extract(string(text), args[0])

	if flagJSON {
		return printJSON(found)
	}

	if len(found) == 0 {
		fmt.Println("No co-mentions found.")
		return nil
	}

	for _, m := range found {
		marker := " "
		if m.Influence {
			marker = "*"
		}
		fmt.Printf("%s %s (x%d)\n", marker, m.Name, m.Count)
	}
	fmt.Println("\n* appeared in influence language")
	return nil
}
