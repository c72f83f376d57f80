package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tmoody1973/crate-cli-sub000/internal/graph"
)

var (
	cacheSourceType string
	cacheSourceName string
	cacheMinWeight  float64
	cacheHops       int
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and edit the influence graph cache",
}

var cacheAddCmd = &cobra.Command{
	Use:   "add FROM TO WEIGHT",
	Short: "Record an influence edge",
	Long: `Record a weighted influence edge in the graph cache. Writing an edge
for an existing artist pair keeps the higher weight and appends the new
provenance; evidence is never lost.

Examples:
  crate-influence cache add "Kraftwerk" "Depeche Mode" 0.9
  crate-influence cache add "Can" "Radiohead" 0.7 --source-type manual --source-name liner-notes`,
	Args: cobra.ExactArgs(3),
	RunE: runCacheAdd,
}

var cacheLookupCmd = &cobra.Command{
	Use:   "lookup ARTIST",
	Short: "List cached edges touching an artist",
	Long: `List cached edges touching an artist, strongest first. The match is
undirected: edges into the artist are listed alongside edges out of it.

Examples:
  crate-influence cache lookup "Kraftwerk"
  crate-influence cache lookup "Kraftwerk" --min-weight 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheLookup,
}

var cachePathCmd = &cobra.Command{
	Use:   "path FROM TO",
	Short: "Find a path using only cached edges",
	Long: `Find a chain of cached edges connecting two artists, without any live
search. Among equally short chains the one with the strongest weakest link
wins.

Examples:
  crate-influence cache path "Kraftwerk" "LCD Soundsystem"
  crate-influence cache path "Can" "Radiohead" --hops 4`,
	Args: cobra.ExactArgs(2),
	RunE: runCachePath,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func init() {
	cacheAddCmd.Flags().StringVar(&cacheSourceType, "source-type", "manual", "provenance source type")
	cacheAddCmd.Flags().StringVar(&cacheSourceName, "source-name", "user", "provenance source name")
	cacheLookupCmd.Flags().Float64Var(&cacheMinWeight, "min-weight", 0, "minimum edge weight")
	cachePathCmd.Flags().IntVar(&cacheHops, "hops", 3, "maximum path length in hops")

	cacheCmd.AddCommand(cacheAddCmd)
	cacheCmd.AddCommand(cacheLookupCmd)
	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
}

// openStore loads config and opens the graph database for a cache command.
func openStore() (*graph.Store, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := graph.Open(cfg.Graph, logger.Named("graph"))
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return store, logger, nil
}

func runCacheAdd(cmd *cobra.Command, args []string) error {
	weight, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid weight %q: %w", args[2], err)
	}

	store, logger, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	defer func() { _ = logger.Sync() }()

	edge := graph.Edge{
		From:       args[0],
		To:         args[1],
		Weight:     weight,
		SourceType: cacheSourceType,
		SourceName: cacheSourceName,
	}
	if err := store.CacheEdge(cmd.Context(), edge); err != nil {
		return err
	}

	fmt.Printf("Cached %s -> %s (weight %.2f)\n", args[0], args[1], weight)
	return nil
}

func runCacheLookup(cmd *cobra.Command, args []string) error {
	store, logger, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	defer func() { _ = logger.Sync() }()

	edges, err := store.LookupEdges(cmd.Context(), args[0], cacheMinWeight)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(edges)
	}

	if len(edges) == 0 {
		fmt.Printf("No cached edges for %s.\n", args[0])
		return nil
	}

	for _, e := range edges {
		sources := make([]string, 0, len(e.Sources))
		for _, s := range e.Sources {
			sources = append(sources, s.Type+"/"+s.Name)
		}
		fmt.Printf("%s -> %s (weight %.2f, sources: %s)\n",
			e.From, e.To, e.Weight, strings.Join(sources, ", "))
	}
	return nil
}

func runCachePath(cmd *cobra.Command, args []string) error {
	store, logger, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	defer func() { _ = logger.Sync() }()

	path, err := store.FindPath(cmd.Context(), args[0], args[1], cacheHops)
	if err != nil {
		return err
	}

	if path == nil {
		if flagJSON {
			return printJSON(map[string]bool{"found": false})
		}
		fmt.Printf("No cached path between %s and %s within %d hops.\n", args[0], args[1], cacheHops)
		return nil
	}

	if flagJSON {
		return printJSON(path)
	}

	fmt.Println(strings.Join(path.Artists, " → "))
	fmt.Printf("weakest link: %.2f\n", path.Bottleneck)
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, logger, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	defer func() { _ = logger.Sync() }()

	edges, sources, err := store.Stats(cmd.Context())
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(map[string]int{"edges": edges, "sources": sources})
	}

	fmt.Printf("%d edges, %d provenance records\n", edges, sources)
	return nil
}
