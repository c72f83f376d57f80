package websearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// TavilyClient implements Provider against the Tavily search API. Tavily is
// the keyword-mode backend.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewTavilyClient creates a Tavily provider from config.
func NewTavilyClient(cfg Config) (*TavilyClient, error) {
	if cfg.TavilyAPIKey == "" {
		return nil, fmt.Errorf("tavily API key required")
	}

	baseURL := cfg.TavilyBaseURL
	if baseURL == "" {
		baseURL = defaultTavilyBaseURL
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}

	return &TavilyClient{
		apiKey:  cfg.TavilyAPIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		maxRetries: defaultMaxRetries,
	}, nil
}

// Name identifies the provider.
func (t *TavilyClient) Name() string { return "tavily" }

// tavilySearchRequest is the Tavily /search payload.
type tavilySearchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results,omitempty"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	SearchDepth    string   `json:"search_depth,omitempty"`
}

type tavilySearchResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type tavilyExtractRequest struct {
	APIKey string   `json:"api_key"`
	URLs   []string `json:"urls"`
}

type tavilyExtractResponse struct {
	Results []struct {
		URL        string `json:"url"`
		RawContent string `json:"raw_content"`
	} `json:"results"`
	FailedResults []struct {
		URL   string `json:"url"`
		Error string `json:"error"`
	} `json:"failed_results"`
}

// Search runs one keyword query against Tavily.
func (t *TavilyClient) Search(ctx context.Context, query string, opts Options) ([]Evidence, error) {
	req := tavilySearchRequest{
		APIKey:         t.apiKey,
		Query:          query,
		MaxResults:     opts.MaxResults,
		IncludeDomains: opts.Domains,
		SearchDepth:    "basic",
	}

	var resp tavilySearchResponse
	if err := t.doRequest(ctx, "/search", req, &resp); err != nil {
		return nil, err
	}

	out := make([]Evidence, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, Evidence{
			Domain:  domainOf(r.URL),
			URL:     r.URL,
			Title:   r.Title,
			Snippet: r.Content,
		})
	}
	return out, nil
}

// Extract fetches full page text for each URL via Tavily's extract endpoint.
func (t *TavilyClient) Extract(ctx context.Context, urls []string) ([]ExtractResult, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	req := tavilyExtractRequest{APIKey: t.apiKey, URLs: urls}
	var resp tavilyExtractResponse
	if err := t.doRequest(ctx, "/extract", req, &resp); err != nil {
		return nil, err
	}

	byURL := make(map[string]string, len(resp.Results))
	for _, r := range resp.Results {
		byURL[r.URL] = r.RawContent
	}

	out := make([]ExtractResult, 0, len(urls))
	for _, u := range urls {
		if text, ok := byURL[u]; ok && text != "" {
			out = append(out, ExtractResult{URL: u, Text: text})
			continue
		}
		out = append(out, ExtractResult{URL: u, Failed: true})
	}
	return out, nil
}

// doRequest posts a JSON payload with rate limiting and retry on transient
// failures, decoding the response into v.
func (t *TavilyClient) doRequest(ctx context.Context, path string, payload, v any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := t.doOnce(ctx, path, payload, v)
		if err == nil {
			return nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return err
		}
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (t *TavilyClient) doOnce(ctx context.Context, path string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return &retryableError{err: fmt.Errorf("tavily request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &retryableError{err: fmt.Errorf("tavily rate limited (429)")}
	}
	if resp.StatusCode >= 500 {
		return &retryableError{err: fmt.Errorf("tavily server error (%d): %s", resp.StatusCode, string(respBody))}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tavily API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// domainOf returns the host of a URL without a www prefix, or the input
// itself when it does not parse.
func domainOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// Ensure TavilyClient implements Provider.
var _ Provider = (*TavilyClient)(nil)
