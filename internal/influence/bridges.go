package influence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tmoody1973/crate-cli-sub000/internal/mentions"
	"github.com/tmoody1973/crate-cli-sub000/internal/websearch"
)

// defaultBridgeLimit caps returned candidates when a caller passes none.
const defaultBridgeLimit = 10

// Bridge-candidate scores.
//
// An artist named in a crossover article scores 1, or 2 inside influence
// language. Appearing independently in the top results for both genres adds
// a flat 2: that dual appearance is the core bridge signal, stronger than
// one co-occurrence in a crossover piece.
const (
	crossoverScore = 1
	influenceBonus = 1
	dualGenreBonus = 2
)

// BridgeFinder finds artists whose mentions span two genres or scenes.
type BridgeFinder struct {
	search    Searcher
	extractor mentions.Extractor
	cfg       Config
	logger    *zap.Logger
}

// NewBridgeFinder creates a bridge finder.
func NewBridgeFinder(search Searcher, extractor mentions.Extractor, cfg Config, logger *zap.Logger) (*BridgeFinder, error) {
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

	return &BridgeFinder{
		search:    search,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// FindBridges returns up to limit artists connecting genreA and genreB,
// scored by where their mentions appear. It runs a crossover search naming
// both genres, then a best-of search per genre concurrently; the genre
// labels act as the extraction subject so they are never candidates
// themselves. Zero overlap across all three searches is an empty result,
// not an error; a partial search failure degrades the scoring rather than
// failing the call.
func (b *BridgeFinder) FindBridges(ctx context.Context, genreA, genreB string, limit int) ([]BridgeCandidate, error) {
	genreA, genreB = strings.TrimSpace(genreA), strings.TrimSpace(genreB)
	if genreA == "" || genreB == "" {
		return nil, fmt.Errorf("both genres are required")
	}
	if limit <= 0 {
		limit = defaultBridgeLimit
	}

	log := b.logger.With(
		zap.String("trace_id", uuid.NewString()),
		zap.String("genre_a", genreA),
		zap.String("genre_b", genreB),
	)

	crossResults, crossErr := b.search.SearchMusic(ctx,
		fmt.Sprintf("artists bridging %s and %s crossover", genreA, genreB),
		b.cfg.SearchResults)
	if crossErr != nil {
		log.Debug("crossover search failed", zap.Error(crossErr))
	}

	var (
		aResults, bResults []websearch.Evidence
		aErr, bErr         error
	)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(2)
	g.Go(func() error {
		aResults, aErr = b.search.SearchMusic(ctx,
			fmt.Sprintf("best %s artists albums", genreA), b.cfg.SearchResults)
		return nil
	})
	g.Go(func() error {
		bResults, bErr = b.search.SearchMusic(ctx,
			fmt.Sprintf("best %s artists albums", genreB), b.cfg.SearchResults)
		return nil
	})
	_ = g.Wait() // per-search failures are collected, not returned

	if crossErr != nil && aErr != nil && bErr != nil {
		return nil, fmt.Errorf("all bridge searches failed: %w", errors.Join(crossErr, aErr, bErr))
	}

	crossMentions := b.extractor.Extract(joinEvidence(crossResults), genreA+" "+genreB)
	aMentions := b.extractor.Extract(joinEvidence(aResults), genreA)
	bMentions := b.extractor.Extract(joinEvidence(bResults), genreB)

	candidates := scoreBridges(genreA, genreB, crossMentions, aMentions, bMentions)
	log.Debug("bridge candidates scored",
		zap.Int("crossover_mentions", len(crossMentions)),
		zap.Int("candidates", len(candidates)))

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// scoreBridges merges the three extraction passes into ranked candidates.
func scoreBridges(genreA, genreB string, cross, aSide, bSide []mentions.CoMention) []BridgeCandidate {
	genreKeys := map[string]struct{}{
		mentions.Normalize(genreA): {},
		mentions.Normalize(genreB): {},
	}

	scores := make(map[string]*BridgeCandidate)
	for _, m := range cross {
		if _, isGenre := genreKeys[m.Key]; isGenre {
			continue
		}
		score := crossoverScore
		if m.Influence {
			score += influenceBonus
		}
		scores[m.Key] = &BridgeCandidate{Artist: m.Name, Evidence: m.Context, Score: score}
	}

	inB := make(map[string]struct{}, len(bSide))
	for _, m := range bSide {
		inB[m.Key] = struct{}{}
	}
	for _, m := range aSide {
		if _, isGenre := genreKeys[m.Key]; isGenre {
			continue
		}
		if _, ok := inB[m.Key]; !ok {
			continue
		}
		if c, ok := scores[m.Key]; ok {
			c.Score += dualGenreBonus
			if c.Evidence == "" {
				c.Evidence = m.Context
			}
			continue
		}
		scores[m.Key] = &BridgeCandidate{Artist: m.Name, Evidence: m.Context, Score: dualGenreBonus}
	}

	out := make([]BridgeCandidate, 0, len(scores))
	for _, c := range scores {
		out = append(out, *c)
	}
	// Alphabetical among equal scores keeps the ranking reproducible
	// regardless of search-result order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return strings.ToLower(out[i].Artist) < strings.ToLower(out[j].Artist)
	})
	return out
}
