package websearch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a deterministic in-memory Provider for aggregator tests.
type fakeProvider struct {
	name       string
	results    []Evidence
	extracted  map[string]string // url -> text; missing urls fail
	searchErr  error
	extractErr error

	searchCalls  int
	lastQuery    string
	lastOpts     Options
	extractCalls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Search(ctx context.Context, query string, opts Options) ([]Evidence, error) {
	f.searchCalls++
	f.lastQuery = query
	f.lastOpts = opts
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

func (f *fakeProvider) Extract(ctx context.Context, urls []string) ([]ExtractResult, error) {
	f.extractCalls++
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	out := make([]ExtractResult, 0, len(urls))
	for _, u := range urls {
		if text, ok := f.extracted[u]; ok {
			out = append(out, ExtractResult{URL: u, Text: text})
		} else {
			out = append(out, ExtractResult{URL: u, Failed: true})
		}
	}
	return out, nil
}

func evidenceFixture(n int) []Evidence {
	out := make([]Evidence, n)
	for i := range out {
		out[i] = Evidence{
			Domain:  "pitchfork.com",
			URL:     fmt.Sprintf("https://pitchfork.com/reviews/%d", i),
			Title:   fmt.Sprintf("Review %d", i),
			Snippet: fmt.Sprintf("snippet %d", i),
		}
	}
	return out
}

func TestAggregator_NoProvider(t *testing.T) {
	a := NewAggregatorWithProviders(nil, nil, Config{}, nil)

	_, err := a.Search(context.Background(), "anything", Options{Mode: ModeKeyword})
	assert.ErrorIs(t, err, ErrNoProvider)

	_, err = a.Extract(context.Background(), []string{"https://example.com"})
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestAggregator_ModeSelection(t *testing.T) {
	keyword := &fakeProvider{name: "keyword", results: evidenceFixture(1)}
	semantic := &fakeProvider{name: "semantic", results: evidenceFixture(1)}
	a := NewAggregatorWithProviders(keyword, semantic, Config{}, nil)

	_, err := a.Search(context.Background(), "q", Options{Mode: ModeKeyword})
	require.NoError(t, err)
	_, err = a.Search(context.Background(), "q", Options{Mode: ModeSemantic})
	require.NoError(t, err)

	assert.Equal(t, 1, keyword.searchCalls)
	assert.Equal(t, 1, semantic.searchCalls)
}

func TestAggregator_FallbackToConfiguredProvider(t *testing.T) {
	keyword := &fakeProvider{name: "keyword", results: evidenceFixture(1)}
	a := NewAggregatorWithProviders(keyword, nil, Config{}, nil)

	// Semantic requested, only keyword configured: fall back.
	got, err := a.Search(context.Background(), "q", Options{Mode: ModeSemantic})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, keyword.searchCalls)
}

func TestAggregator_ProviderErrorWrapped(t *testing.T) {
	keyword := &fakeProvider{name: "keyword", searchErr: errors.New("boom")}
	a := NewAggregatorWithProviders(keyword, nil, Config{}, nil)

	_, err := a.Search(context.Background(), "q", Options{Mode: ModeKeyword})
	assert.ErrorIs(t, err, ErrProviderRequest)
	assert.NotErrorIs(t, err, ErrNoProvider)
}

func TestAggregator_SnippetTruncationAndResultCap(t *testing.T) {
	results := evidenceFixture(4)
	results[0].Snippet = strings.Repeat("x", 1000)
	keyword := &fakeProvider{name: "keyword", results: results}
	a := NewAggregatorWithProviders(keyword, nil, Config{SnippetMax: 100}, nil)

	got, err := a.Search(context.Background(), "q", Options{Mode: ModeKeyword, MaxResults: 2})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Len(t, []rune(strings.TrimSuffix(got[0].Snippet, "...")), 100)
}

func TestAggregator_SearchMusicAppliesDomains(t *testing.T) {
	keyword := &fakeProvider{name: "keyword", results: evidenceFixture(1)}
	a := NewAggregatorWithProviders(keyword, nil, Config{}, nil)

	_, err := a.SearchMusic(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Equal(t, DefaultReviewDomains(), keyword.lastOpts.Domains)
	assert.Equal(t, ModeKeyword, keyword.lastOpts.Mode)
	assert.Equal(t, 3, keyword.lastOpts.MaxResults)
}

func TestAggregator_SearchReviews(t *testing.T) {
	results := evidenceFixture(3)
	keyword := &fakeProvider{
		name:    "keyword",
		results: results,
		extracted: map[string]string{
			results[0].URL: "full page text for result zero",
			// result one fails extraction, keeps snippet
			results[2].URL: "full page text for result two",
		},
	}
	a := NewAggregatorWithProviders(keyword, nil, Config{MaxExtract: 3}, nil)

	got, err := a.SearchReviews(context.Background(), "Stereolab", "Dots and Loops")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Contains(t, keyword.lastQuery, "Stereolab")
	assert.Contains(t, keyword.lastQuery, "Dots and Loops")

	assert.Equal(t, "full page text for result zero", got[0].Snippet)
	assert.Equal(t, "snippet 1", got[1].Snippet, "failed extraction keeps the search snippet")
	assert.Equal(t, "full page text for result two", got[2].Snippet)
}

func TestAggregator_SearchReviewsExtractCap(t *testing.T) {
	results := evidenceFixture(5)
	extracted := make(map[string]string)
	for _, ev := range results {
		extracted[ev.URL] = "full text"
	}
	keyword := &fakeProvider{name: "keyword", results: results, extracted: extracted}
	a := NewAggregatorWithProviders(keyword, nil, Config{MaxExtract: 2, MaxResults: 5}, nil)

	got, err := a.SearchReviews(context.Background(), "Stereolab", "")
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.Equal(t, "full text", got[0].Snippet)
	assert.Equal(t, "full text", got[1].Snippet)
	// Results past the extraction cap keep their snippets.
	assert.Equal(t, "snippet 2", got[2].Snippet)
	assert.Equal(t, "snippet 4", got[4].Snippet)
}

func TestAggregator_ExtractEmptyInput(t *testing.T) {
	keyword := &fakeProvider{name: "keyword"}
	a := NewAggregatorWithProviders(keyword, nil, Config{}, nil)

	got, err := a.Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, keyword.extractCalls)
}

func TestAggregator_ExtractPartialFailure(t *testing.T) {
	keyword := &fakeProvider{
		name:      "keyword",
		extracted: map[string]string{"https://a.example": "text a"},
	}
	a := NewAggregatorWithProviders(keyword, nil, Config{}, nil)

	got, err := a.Extract(context.Background(), []string{"https://a.example", "https://b.example"})
	require.NoError(t, err, "one failed URL must not fail the batch")
	require.Len(t, got, 2)
	assert.False(t, got[0].Failed)
	assert.Equal(t, "text a", got[0].Text)
	assert.True(t, got[1].Failed)
}

func TestAggregator_ExtractContentTruncation(t *testing.T) {
	keyword := &fakeProvider{
		name:      "keyword",
		extracted: map[string]string{"https://a.example": strings.Repeat("y", 5000)},
	}
	a := NewAggregatorWithProviders(keyword, nil, Config{ContentMax: 1000}, nil)

	got, err := a.Extract(context.Background(), []string{"https://a.example"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, []rune(strings.TrimSuffix(got[0].Text, "...")), 1000)
}
