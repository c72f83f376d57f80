// Package websearch aggregates evidence from external web-search providers.
//
// It normalizes heterogeneous provider payloads into one Evidence shape,
// selects between a keyword-mode provider (Tavily) and a semantic-mode
// provider (Exa) with automatic fallback, restricts music-relevant searches
// to a curated list of criticism domains, and performs best-effort full-text
// extraction of result URLs.
package websearch

import (
	"context"
	"time"
)

// Mode selects the search backend style.
type Mode string

const (
	// ModeKeyword requests keyword-filtered search (Tavily).
	ModeKeyword Mode = "keyword"

	// ModeSemantic requests semantic/neural search (Exa).
	ModeSemantic Mode = "semantic"
)

// Evidence is one normalized search result.
type Evidence struct {
	// Domain is the host part of the result URL.
	Domain string `json:"domain"`

	// URL is the full result URL.
	URL string `json:"url"`

	// Title is the result title.
	Title string `json:"title"`

	// Snippet is the result text, truncated to the configured bound. After
	// full-text extraction it may hold extracted page content instead of
	// the provider's summary.
	Snippet string `json:"snippet"`
}

// ExtractResult is the outcome of extracting full text from one URL.
// A failed extraction is flagged, never reported as an error, so one bad
// URL cannot fail a batch.
type ExtractResult struct {
	URL    string `json:"url"`
	Text   string `json:"text,omitempty"`
	Failed bool   `json:"failed,omitempty"`
}

// Options control a single search call.
type Options struct {
	// Domains restricts results to these hosts. Empty means unrestricted.
	Domains []string

	// MaxResults caps the number of results returned.
	MaxResults int

	// Mode selects keyword or semantic search. The aggregator falls back
	// to whichever provider is configured when the requested one is not.
	Mode Mode
}

// Provider is one search backend. Implementations adapt the provider's
// payload shape to Evidence at this boundary so nothing loosely typed
// propagates upward.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string

	// Search runs one query and returns normalized results.
	Search(ctx context.Context, query string, opts Options) ([]Evidence, error)

	// Extract fetches full text for each URL. Per-URL failures are
	// flagged in the result, not returned as errors.
	Extract(ctx context.Context, urls []string) ([]ExtractResult, error)
}

// Config holds search configuration.
type Config struct {
	// TavilyAPIKey enables the keyword provider when set.
	TavilyAPIKey string `koanf:"tavily_api_key"`

	// TavilyBaseURL overrides the Tavily API endpoint (tests).
	TavilyBaseURL string `koanf:"tavily_base_url"`

	// ExaAPIKey enables the semantic provider when set.
	ExaAPIKey string `koanf:"exa_api_key"`

	// ExaBaseURL overrides the Exa API endpoint (tests).
	ExaBaseURL string `koanf:"exa_base_url"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `koanf:"timeout"`

	// MaxResults is the default result cap when a caller passes none.
	MaxResults int `koanf:"max_results"`

	// MaxExtract caps how many review URLs get full-text extraction.
	MaxExtract int `koanf:"max_extract"`

	// SnippetMax bounds result snippets, in runes.
	SnippetMax int `koanf:"snippet_max"`

	// ContentMax bounds extracted full text, in runes.
	ContentMax int `koanf:"content_max"`

	// ReviewDomains is the music-criticism allow-list applied to review,
	// path, and bridge searches. Defaults to the curated set.
	ReviewDomains []string `koanf:"review_domains"`
}

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.TavilyBaseURL == "" {
		c.TavilyBaseURL = defaultTavilyBaseURL
	}
	if c.ExaBaseURL == "" {
		c.ExaBaseURL = defaultExaBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeoutSeconds
	}
	if c.MaxResults <= 0 {
		c.MaxResults = defaultMaxResults
	}
	if c.MaxExtract <= 0 {
		c.MaxExtract = defaultMaxExtract
	}
	if c.SnippetMax <= 0 {
		c.SnippetMax = defaultSnippetMax
	}
	if c.ContentMax <= 0 {
		c.ContentMax = defaultContentMax
	}
	if len(c.ReviewDomains) == 0 {
		c.ReviewDomains = DefaultReviewDomains()
	}
}

const (
	defaultTavilyBaseURL  = "https://api.tavily.com"
	defaultExaBaseURL     = "https://api.exa.ai"
	defaultTimeoutSeconds = 12
	defaultMaxResults     = 5
	defaultMaxExtract     = 3
	defaultSnippetMax     = 500
	defaultContentMax     = 4000

	defaultRateLimit  = 2 // requests per second
	defaultBurst      = 4
	defaultMaxRetries = 2
	baseBackoff       = 500 * time.Millisecond
)

// DefaultReviewDomains returns the curated music-criticism domains used for
// review, path, and bridge searches.
func DefaultReviewDomains() []string {
	return []string{
		"pitchfork.com",
		"rollingstone.com",
		"thequietus.com",
		"stereogum.com",
		"allmusic.com",
		"residentadvisor.net",
		"ra.co",
		"thewire.co.uk",
		"nme.com",
		"mojo4music.com",
		"uncut.co.uk",
		"pastemagazine.com",
		"consequence.net",
		"popmatters.com",
		"thefader.com",
		"factmag.com",
		"bandcamp.com",
		"theguardian.com",
	}
}
