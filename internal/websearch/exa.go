package websearch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// ExaClient implements Provider against the Exa search API. Exa is the
// semantic-mode backend: queries are matched by meaning, not keywords.
type ExaClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewExaClient creates an Exa provider from config.
func NewExaClient(cfg Config) (*ExaClient, error) {
	if cfg.ExaAPIKey == "" {
		return nil, fmt.Errorf("exa API key required")
	}

	baseURL := cfg.ExaBaseURL
	if baseURL == "" {
		baseURL = defaultExaBaseURL
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds * time.Second
	}

	return &ExaClient{
		apiKey:  cfg.ExaAPIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
		maxRetries: defaultMaxRetries,
	}, nil
}

// Name identifies the provider.
func (e *ExaClient) Name() string { return "exa" }

// exaSearchRequest is the Exa /search payload.
type exaSearchRequest struct {
	Query          string       `json:"query"`
	NumResults     int          `json:"numResults,omitempty"`
	IncludeDomains []string     `json:"includeDomains,omitempty"`
	Type           string       `json:"type,omitempty"`
	Contents       *exaContents `json:"contents,omitempty"`
}

type exaContents struct {
	Text exaTextOpts `json:"text"`
}

type exaTextOpts struct {
	MaxCharacters int `json:"maxCharacters,omitempty"`
}

type exaSearchResponse struct {
	Results []exaResult `json:"results"`
}

type exaResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

type exaContentsRequest struct {
	URLs []string `json:"urls"`
	Text bool     `json:"text"`
}

type exaContentsResponse struct {
	Results []exaResult `json:"results"`
}

// Search runs one semantic query against Exa.
func (e *ExaClient) Search(ctx context.Context, query string, opts Options) ([]Evidence, error) {
	req := exaSearchRequest{
		Query:          query,
		NumResults:     opts.MaxResults,
		IncludeDomains: opts.Domains,
		Type:           "neural",
		Contents:       &exaContents{Text: exaTextOpts{MaxCharacters: defaultSnippetMax * 2}},
	}

	var resp exaSearchResponse
	if err := e.doRequest(ctx, "/search", req, &resp); err != nil {
		return nil, err
	}

	out := make([]Evidence, 0, len(resp.Results))
	for _, r := range resp.Results {
		out = append(out, Evidence{
			Domain:  domainOf(r.URL),
			URL:     r.URL,
			Title:   r.Title,
			Snippet: r.Text,
		})
	}
	return out, nil
}

// Extract fetches full page text for each URL via Exa's contents endpoint.
func (e *ExaClient) Extract(ctx context.Context, urls []string) ([]ExtractResult, error) {
	if len(urls) == 0 {
		return nil, nil
	}

	req := exaContentsRequest{URLs: urls, Text: true}
	var resp exaContentsResponse
	if err := e.doRequest(ctx, "/contents", req, &resp); err != nil {
		return nil, err
	}

	byURL := make(map[string]string, len(resp.Results))
	for _, r := range resp.Results {
		byURL[r.URL] = r.Text
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

func (e *ExaClient) doRequest(ctx context.Context, path string, payload, v any) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := e.doOnce(ctx, path, payload, v)
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

func (e *ExaClient) doOnce(ctx context.Context, path string, payload, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", e.apiKey)

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return &retryableError{err: fmt.Errorf("exa request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return &retryableError{err: fmt.Errorf("exa rate limited (429)")}
	}
	if resp.StatusCode >= 500 {
		return &retryableError{err: fmt.Errorf("exa server error (%d): %s", resp.StatusCode, string(respBody))}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("exa API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Ensure ExaClient implements Provider.
var _ Provider = (*ExaClient)(nil)
