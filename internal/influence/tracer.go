package influence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tmoody1973/crate-cli-sub000/internal/graph"
	"github.com/tmoody1973/crate-cli-sub000/internal/mentions"
	"github.com/tmoody1973/crate-cli-sub000/internal/websearch"
)

const (
	minTraceDepth = 2
	maxTraceDepth = 5
)

// Tracer finds influence paths between artists, cache first, live evidence
// second. Connections it discovers are written back to the cache so the
// graph gets richer with use.
type Tracer struct {
	cache     EdgeCache
	search    Searcher
	extractor mentions.Extractor
	cfg       Config
	logger    *zap.Logger
}

// NewTracer creates a path tracer.
func NewTracer(cache EdgeCache, search Searcher, extractor mentions.Extractor, cfg Config, logger *zap.Logger) (*Tracer, error) {
	if cache == nil {
		return nil, fmt.Errorf("edge cache cannot be nil")
	}
	if search == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()

	return &Tracer{
		cache:     cache,
		search:    search,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// TracePath finds an influence chain from one artist to another within
// maxDepth connections.
//
// The cache is consulted first: a cached path whose weakest edge meets the
// strong threshold answers immediately with no live search. Otherwise one
// combined search looks for direct co-mention evidence (depth 1), then two
// concurrent neighborhood searches look for a shared mention bridging the
// artists (depth 2). Discovered edges are persisted. No path is a
// legitimate negative returned as Found=false, never as an error; only all
// searches failing with no cached evidence surfaces an error.
func (t *Tracer) TracePath(ctx context.Context, from, to string, maxDepth int) (TraceResult, error) {
	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" || to == "" {
		return TraceResult{}, fmt.Errorf("from and to artists are required")
	}
	if maxDepth <= 0 {
		maxDepth = t.cfg.MaxDepth
	}
	if maxDepth < minTraceDepth {
		maxDepth = minTraceDepth
	}
	if maxDepth > maxTraceDepth {
		maxDepth = maxTraceDepth
	}

	log := t.logger.With(
		zap.String("trace_id", uuid.NewString()),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("max_depth", maxDepth),
	)

	// Step 0: cache first.
	cached, err := t.cache.FindPath(ctx, from, to, maxDepth)
	if err != nil {
		log.Warn("cached path query failed", zap.Error(err))
		cached = nil
	}
	if cached != nil && cached.Hops() > 0 && cached.Bottleneck >= t.cfg.StrongThreshold {
		log.Debug("strong cached path hit",
			zap.Int("hops", cached.Hops()),
			zap.Float64("bottleneck", cached.Bottleneck))
		return TraceResult{Path: pathFromCache(cached), Found: true}, nil
	}

	var (
		sources    int
		searchErrs []error
	)

	// Step 1: one combined search for direct co-mention evidence.
	directQuery := fmt.Sprintf("%q %q influence connection", from, to)
	results, err := t.search.SearchMusic(ctx, directQuery, t.cfg.SearchResults)
	if err != nil {
		log.Debug("direct search failed", zap.Error(err))
		searchErrs = append(searchErrs, err)
	}
	sources += len(results)
	for _, ev := range results {
		text := ev.Title + " " + ev.Snippet
		if containsFold(text, from) && containsFold(text, to) {
			log.Debug("direct connection found", zap.String("domain", ev.Domain))
			path := &Path{
				From:  from,
				To:    to,
				Depth: 1,
				Steps: []PathStep{
					{Artist: from},
					{Artist: to, Connection: "co-mentioned in " + ev.Domain, Evidence: ev.Snippet},
				},
			}
			t.persist(ctx, log, graph.Edge{
				From: from, To: to, Weight: t.cfg.DirectWeight,
				SourceType: "search", SourceName: ev.Domain,
			})
			return TraceResult{Path: path, Found: true, SourcesExplored: sources}, nil
		}
	}

	// Step 2: neighborhood searches from both ends, looking for a shared
	// mention to bridge through.
	fromSide, toSide := t.searchNeighborhoods(ctx, log, from, to)
	sources += len(fromSide.results) + len(toSide.results)
	if fromSide.err != nil {
		searchErrs = append(searchErrs, fromSide.err)
	}
	if toSide.err != nil {
		searchErrs = append(searchErrs, toSide.err)
	}

	if bridge := t.findBridgeMention(from, to, fromSide, toSide); bridge != nil {
		log.Debug("bridge connection found", zap.String("bridge", bridge.Bridge))
		t.persist(ctx, log,
			graph.Edge{
				From: from, To: bridge.Bridge, Weight: t.cfg.BridgeWeight,
				SourceType: "search", SourceName: firstDomain(fromSide.results),
			},
			graph.Edge{
				From: bridge.Bridge, To: to, Weight: t.cfg.BridgeWeight,
				SourceType: "search", SourceName: firstDomain(toSide.results),
			},
		)
		return TraceResult{Path: bridge, Found: true, SourcesExplored: sources}, nil
	}

	// Every search failed and nothing cached: that is a malfunction, not
	// a negative result.
	if len(searchErrs) == 3 && cached == nil {
		return TraceResult{}, fmt.Errorf("all influence searches failed: %w", errors.Join(searchErrs...))
	}

	// A weak cached path still beats claiming no connection exists.
	if cached != nil && cached.Hops() > 0 {
		log.Debug("falling back to weak cached path",
			zap.Float64("bottleneck", cached.Bottleneck))
		return TraceResult{Path: pathFromCache(cached), Found: true, SourcesExplored: sources}, nil
	}

	log.Debug("no influence path found", zap.Int("sources_explored", sources))
	return TraceResult{SourcesExplored: sources}, nil
}

// sideResult holds one neighborhood search outcome.
type sideResult struct {
	results  []websearch.Evidence
	mentions []mentions.CoMention
	err      error
}

// searchNeighborhoods runs the two seed searches concurrently, bounded to
// two outbound calls, and extracts each side's co-mentions with the seed
// artist as the filtered subject.
func (t *Tracer) searchNeighborhoods(ctx context.Context, log *zap.Logger, from, to string) (fromSide, toSide sideResult) {
	run := func(seed string, out *sideResult) func() error {
		return func() error {
			query := fmt.Sprintf("%q similar artists influences review", seed)
			results, err := t.search.SearchMusic(ctx, query, t.cfg.SearchResults)
			if err != nil {
				log.Debug("neighborhood search failed",
					zap.String("seed", seed), zap.Error(err))
				out.err = err
				return nil
			}
			out.results = results
			out.mentions = t.extractor.Extract(joinEvidence(results), seed)
			return nil
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(2)
	g.Go(run(from, &fromSide))
	g.Go(run(to, &toSide))
	_ = g.Wait() // sub-search failures are collected, not returned
	return fromSide, toSide
}

// findBridgeMention intersects the mention sets from both sides and builds
// a 3-node path through the first shared candidate, in from-side ranking
// order. Returns nil when the intersection is empty.
func (t *Tracer) findBridgeMention(from, to string, fromSide, toSide sideResult) *Path {
	byKey := make(map[string]mentions.CoMention, len(toSide.mentions))
	for _, m := range toSide.mentions {
		byKey[m.Key] = m
	}

	fromKey, toKey := mentions.Normalize(from), mentions.Normalize(to)
	for _, m := range fromSide.mentions {
		if m.Key == fromKey || m.Key == toKey {
			continue
		}
		other, ok := byKey[m.Key]
		if !ok {
			continue
		}
		return &Path{
			From:   from,
			To:     to,
			Depth:  2,
			Bridge: m.Name,
			Steps: []PathStep{
				{Artist: from},
				{Artist: m.Name, Connection: "mentioned alongside " + from, Evidence: m.Context},
				{Artist: to, Connection: "mentioned alongside " + to, Evidence: other.Context},
			},
		}
	}
	return nil
}

// persist writes discovered edges back to the cache. Persistence failures
// degrade the cache, not the trace, so they are logged and swallowed.
func (t *Tracer) persist(ctx context.Context, log *zap.Logger, edges ...graph.Edge) {
	result, err := t.cache.CacheEdges(ctx, edges)
	if err != nil {
		log.Warn("failed to persist discovered edges", zap.Error(err))
		return
	}
	for _, rej := range result.Rejected {
		log.Warn("discovered edge rejected",
			zap.String("from", rej.Edge.From),
			zap.String("to", rej.Edge.To),
			zap.String("reason", rej.Reason))
	}
}

// pathFromCache converts a cached chain into a Path with per-hop weight
// labels.
func pathFromCache(cp *graph.CachedPath) *Path {
	steps := make([]PathStep, len(cp.Artists))
	steps[0] = PathStep{Artist: cp.Artists[0]}
	for i := 1; i < len(cp.Artists); i++ {
		steps[i] = PathStep{
			Artist:     cp.Artists[i],
			Connection: fmt.Sprintf("cached connection (weight %.2f)", cp.Weights[i-1]),
		}
	}

	p := &Path{
		From:  cp.Artists[0],
		To:    cp.Artists[len(cp.Artists)-1],
		Steps: steps,
		Depth: cp.Hops(),
	}
	if len(cp.Artists) == 3 {
		p.Bridge = cp.Artists[1]
	}
	return p
}

// joinEvidence concatenates search results into one text for extraction,
// sentence-terminated so result boundaries become sentence boundaries.
func joinEvidence(results []websearch.Evidence) string {
	var sb strings.Builder
	for _, ev := range results {
		sb.WriteString(ev.Title)
		sb.WriteString(". ")
		sb.WriteString(ev.Snippet)
		sb.WriteString(". ")
	}
	return sb.String()
}

// firstDomain returns the first result's domain, or a generic fallback.
func firstDomain(results []websearch.Evidence) string {
	if len(results) > 0 && results[0].Domain != "" {
		return results[0].Domain
	}
	return "websearch"
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
