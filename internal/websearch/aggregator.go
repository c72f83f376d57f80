package websearch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// extractParallel bounds concurrent full-text extraction calls.
const extractParallel = 3

// Aggregator fronts the configured search providers with one uniform
// search/extract surface. Either provider may be absent; calls fall back to
// whichever is configured, and fail with ErrNoProvider when neither is.
//
// The aggregator holds no request state and is safe for concurrent use.
type Aggregator struct {
	keyword  Provider
	semantic Provider
	cfg      Config
	logger   *zap.Logger
}

// NewAggregator builds an aggregator from config, constructing a provider
// for each configured API key. Neither key set is not an error here: the
// failure surfaces as ErrNoProvider on first use, so a cache-only setup
// still works.
func NewAggregator(cfg Config, logger *zap.Logger) (*Aggregator, error) {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &Aggregator{cfg: cfg, logger: logger}

	if cfg.TavilyAPIKey != "" {
		client, err := NewTavilyClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating tavily client: %w", err)
		}
		a.keyword = client
	}
	if cfg.ExaAPIKey != "" {
		client, err := NewExaClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("creating exa client: %w", err)
		}
		a.semantic = client
	}

	return a, nil
}

// NewAggregatorWithProviders builds an aggregator around explicit providers.
// Tests inject deterministic fakes through this constructor.
func NewAggregatorWithProviders(keyword, semantic Provider, cfg Config, logger *zap.Logger) *Aggregator {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{keyword: keyword, semantic: semantic, cfg: cfg, logger: logger}
}

// provider selects the backend for the requested mode, falling back to the
// other when the requested one is not configured.
func (a *Aggregator) provider(mode Mode) (Provider, error) {
	requested, other := a.keyword, a.semantic
	if mode == ModeSemantic {
		requested, other = a.semantic, a.keyword
	}
	if requested != nil {
		return requested, nil
	}
	if other != nil {
		a.logger.Debug("requested search mode not configured, falling back",
			zap.String("mode", string(mode)),
			zap.String("provider", other.Name()))
		return other, nil
	}
	return nil, ErrNoProvider
}

// Search runs one query against the provider for opts.Mode, normalizing and
// truncating results. A backend failure is reported as a wrapped
// ErrProviderRequest so callers can absorb it where a degraded result
// remains meaningful.
func (a *Aggregator) Search(ctx context.Context, query string, opts Options) ([]Evidence, error) {
	p, err := a.provider(opts.Mode)
	if err != nil {
		return nil, err
	}

	if opts.MaxResults <= 0 {
		opts.MaxResults = a.cfg.MaxResults
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Timeout)*time.Second)
	defer cancel()

	results, err := p.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderRequest, p.Name(), err)
	}

	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	for i := range results {
		results[i].Snippet = truncateRunes(results[i].Snippet, a.cfg.SnippetMax)
	}

	a.logger.Debug("search completed",
		zap.String("provider", p.Name()),
		zap.String("query", query),
		zap.Int("results", len(results)))
	return results, nil
}

// SearchMusic runs a keyword search restricted to the music-criticism
// domain allow-list. Path tracing and bridge finding go through here so
// their evidence comes from review sources, not arbitrary pages.
func (a *Aggregator) SearchMusic(ctx context.Context, query string, maxResults int) ([]Evidence, error) {
	return a.Search(ctx, query, Options{
		Domains:    a.cfg.ReviewDomains,
		MaxResults: maxResults,
		Mode:       ModeKeyword,
	})
}

// SearchReviews finds reviews for an artist (optionally a specific album)
// on the criticism allow-list, then upgrades the top results with full page
// text where extraction succeeds. Extraction is best effort: a failed URL
// keeps its search snippet.
func (a *Aggregator) SearchReviews(ctx context.Context, artist, album string) ([]Evidence, error) {
	query := fmt.Sprintf("%s album review", artist)
	if album != "" {
		query = fmt.Sprintf("%s %q album review", artist, album)
	}

	results, err := a.SearchMusic(ctx, query, a.cfg.MaxResults)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return results, nil
	}

	a.enrichWithFullText(ctx, results)
	return results, nil
}

// enrichWithFullText replaces result snippets with extracted page text for
// the first MaxExtract results, in place. Failures leave the snippet alone.
func (a *Aggregator) enrichWithFullText(ctx context.Context, results []Evidence) {
	p, err := a.provider(ModeKeyword)
	if err != nil {
		return
	}

	n := a.cfg.MaxExtract
	if n > len(results) {
		n = len(results)
	}

	var mu sync.Mutex
	texts := make(map[int]string, n)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extractParallel)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			urlCtx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Timeout)*time.Second)
			defer cancel()

			extracted, err := p.Extract(urlCtx, []string{results[i].URL})
			if err != nil || len(extracted) == 0 || extracted[0].Failed {
				a.logger.Debug("full-text extraction failed, keeping snippet",
					zap.String("url", results[i].URL), zap.Error(err))
				return nil
			}
			mu.Lock()
			texts[i] = truncateRunes(extracted[0].Text, a.cfg.ContentMax)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures degrade per URL

	for i, text := range texts {
		results[i].Snippet = text
	}
}

// Extract fetches full text for each URL through the configured provider.
// Per-URL failures are flagged in the results; only a whole-batch backend
// failure is an error.
func (a *Aggregator) Extract(ctx context.Context, urls []string) ([]ExtractResult, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	p, err := a.provider(ModeKeyword)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(a.cfg.Timeout)*time.Second)
	defer cancel()

	results, err := p.Extract(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderRequest, p.Name(), err)
	}
	for i := range results {
		results[i].Text = truncateRunes(results[i].Text, a.cfg.ContentMax)
	}
	return results, nil
}

// MusicDomains returns the configured criticism allow-list.
func (a *Aggregator) MusicDomains() []string {
	return a.cfg.ReviewDomains
}

// truncateRunes bounds s to n runes, marking the cut.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
