// Package graph persists the influence graph cache: weighted directed edges
// between artists with accumulated provenance, stored in a local SQLite
// database.
//
// Edges are written directionally, preserving who influenced whom when that
// is known, but lookup and path queries treat the graph as undirected:
// co-mention evidence rarely implies direction, and a connection A-B should
// be discoverable from either end. Each unordered artist pair holds one
// logical edge whose weight only ever increases and whose provenance list
// only ever grows.
package graph

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Validation errors. ErrInvalidEdge is the umbrella the specific reasons
// wrap, so callers can match either level with errors.Is.
var (
	ErrInvalidEdge = errors.New("invalid edge")
	ErrEmptyArtist = fmt.Errorf("%w: from and to artists are required", ErrInvalidEdge)
	ErrSelfEdge    = fmt.Errorf("%w: from and to must be different artists", ErrInvalidEdge)
	ErrWeightRange = fmt.Errorf("%w: weight must be in [0,1]", ErrInvalidEdge)
)

// Source is one provenance record behind an edge.
type Source struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Edge is a weighted influence connection between two artists.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`

	// SourceType and SourceName describe where this write came from
	// ("search"/"pitchfork.com", "manual"/"user"). On reads they reflect
	// the most recent provenance record.
	SourceType string `json:"source_type"`
	SourceName string `json:"source_name"`

	UpdatedAt time.Time `json:"updated_at"`

	// Sources holds every provenance record accumulated for the edge.
	// Populated on reads, ignored on writes.
	Sources []Source `json:"sources,omitempty"`
}

// Validate checks the edge is storable.
func (e Edge) Validate() error {
	fromKey, toKey := normalizeKey(e.From), normalizeKey(e.To)
	if fromKey == "" || toKey == "" {
		return ErrEmptyArtist
	}
	if fromKey == toKey {
		return ErrSelfEdge
	}
	if math.IsNaN(e.Weight) || e.Weight < 0 || e.Weight > 1 {
		return ErrWeightRange
	}
	return nil
}

// RejectedEdge is a batch entry that failed validation or storage.
type RejectedEdge struct {
	Edge   Edge   `json:"edge"`
	Reason string `json:"reason"`
}

// BatchResult reports the outcome of a batched write.
type BatchResult struct {
	Written  int            `json:"written"`
	Rejected []RejectedEdge `json:"rejected,omitempty"`
}

// CachedPath is a chain of cached edges connecting two artists. Weights has
// one entry per hop; Bottleneck is the smallest of them.
type CachedPath struct {
	Artists    []string  `json:"artists"`
	Weights    []float64 `json:"weights"`
	Bottleneck float64   `json:"bottleneck"`
}

// Hops returns the number of edges in the path.
func (p *CachedPath) Hops() int {
	if p == nil || len(p.Artists) == 0 {
		return 0
	}
	return len(p.Artists) - 1
}

// Config holds graph cache configuration.
type Config struct {
	// Path is the SQLite database file. Defaults to
	// ~/.config/crate/influence.db; "~" expands to the home directory.
	Path string `koanf:"path"`
}

// normalizeKey returns the matching key for an artist name: lowercased,
// trimmed, internal whitespace collapsed.
func normalizeKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// pairKey identifies the unordered artist pair an edge belongs to.
func pairKey(from, to string) string {
	a, b := normalizeKey(from), normalizeKey(to)
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
