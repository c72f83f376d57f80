// Package influence composes the graph cache, evidence aggregator, and
// mention extractor into the two discovery operations: tracing an influence
// path between two artists and finding bridge artists between two genres.
package influence

import (
	"context"
	"strings"

	"github.com/tmoody1973/crate-cli-sub000/internal/graph"
	"github.com/tmoody1973/crate-cli-sub000/internal/websearch"
)

// PathStep is one artist in an influence chain. Connection and Evidence
// describe how the artist links to the previous step; both are empty on the
// first step.
type PathStep struct {
	Artist     string `json:"artist"`
	Connection string `json:"connection,omitempty"`
	Evidence   string `json:"evidence,omitempty"`
}

// Path is an ordered chain of artists linking a source to a target.
type Path struct {
	From  string     `json:"from"`
	To    string     `json:"to"`
	Steps []PathStep `json:"steps"`

	// Depth is the number of connections, always len(Steps)-1.
	Depth int `json:"depth"`

	// Bridge names the intermediate artist on a depth-2 path.
	Bridge string `json:"bridge,omitempty"`
}

// Render returns the path as a human-readable arrow chain ("A → B → C").
func (p *Path) Render() string {
	names := make([]string, len(p.Steps))
	for i, step := range p.Steps {
		names[i] = step.Artist
	}
	return strings.Join(names, " → ")
}

// TraceResult is the outcome of a trace. Found=false is a legitimate
// negative, not an error; SourcesExplored reports how much evidence was
// examined before giving up so the caller can decide whether widening
// maxDepth is worth it.
type TraceResult struct {
	Path            *Path `json:"path,omitempty"`
	Found           bool  `json:"found"`
	SourcesExplored int   `json:"sources_explored"`
}

// BridgeCandidate is an artist whose mentions span two genres.
type BridgeCandidate struct {
	Artist   string `json:"artist"`
	Evidence string `json:"evidence,omitempty"`
	Score    int    `json:"score"`
}

// Config holds tracing and bridge-finding configuration.
type Config struct {
	// MaxDepth is the default trace depth when a caller passes none.
	MaxDepth int `koanf:"max_depth"`

	// StrongThreshold is the weakest-link weight a cached path needs to
	// answer a trace without any live search.
	StrongThreshold float64 `koanf:"strong_threshold"`

	// DirectWeight is the weight written for a directly evidenced edge.
	DirectWeight float64 `koanf:"direct_weight"`

	// BridgeWeight is the weight written for each hop of a bridge path.
	BridgeWeight float64 `koanf:"bridge_weight"`

	// SearchResults caps results per sub-search.
	SearchResults int `koanf:"search_results"`
}

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 3
	}
	if c.StrongThreshold <= 0 {
		c.StrongThreshold = 0.7
	}
	if c.DirectWeight <= 0 {
		c.DirectWeight = 0.8
	}
	if c.BridgeWeight <= 0 {
		c.BridgeWeight = 0.6
	}
	if c.SearchResults <= 0 {
		c.SearchResults = 5
	}
}

// Searcher is the slice of the evidence aggregator this package needs.
// Tests substitute deterministic fakes.
type Searcher interface {
	SearchMusic(ctx context.Context, query string, maxResults int) ([]websearch.Evidence, error)
}

// EdgeCache is the slice of the graph store the tracer needs.
type EdgeCache interface {
	FindPath(ctx context.Context, from, to string, maxHops int) (*graph.CachedPath, error)
	CacheEdges(ctx context.Context, edges []graph.Edge) (graph.BatchResult, error)
}

// Compile-time checks that the real implementations satisfy the seams.
var (
	_ Searcher  = (*websearch.Aggregator)(nil)
	_ EdgeCache = (*graph.Store)(nil)
)
