package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTavily(t *testing.T, baseURL string) *TavilyClient {
	t.Helper()
	client, err := NewTavilyClient(Config{TavilyAPIKey: "test-key", TavilyBaseURL: baseURL, Timeout: 2})
	require.NoError(t, err)
	return client
}

func TestNewTavilyClient_RequiresKey(t *testing.T) {
	_, err := NewTavilyClient(Config{})
	assert.Error(t, err)
}

func TestTavilyClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req tavilySearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "kraftwerk review", req.Query)
		assert.Equal(t, []string{"pitchfork.com"}, req.IncludeDomains)

		_ = json.NewEncoder(w).Encode(tavilySearchResponse{Results: []tavilyResult{
			{Title: "Kraftwerk: Autobahn", URL: "https://www.pitchfork.com/reviews/autobahn", Content: "motorik"},
		}})
	}))
	defer srv.Close()

	got, err := newTavily(t, srv.URL).Search(context.Background(), "kraftwerk review",
		Options{Domains: []string{"pitchfork.com"}, MaxResults: 3})
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Provider payloads are adapted to the common Evidence shape here.
	assert.Equal(t, "pitchfork.com", got[0].Domain)
	assert.Equal(t, "Kraftwerk: Autobahn", got[0].Title)
	assert.Equal(t, "motorik", got[0].Snippet)
}

func TestTavilyClient_SearchRetriesServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(tavilySearchResponse{Results: []tavilyResult{{Title: "ok", URL: "https://x.example"}}})
	}))
	defer srv.Close()

	got, err := newTavily(t, srv.URL).Search(context.Background(), "q", Options{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTavilyClient_SearchClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTavily(t, srv.URL).Search(context.Background(), "q", Options{})
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTavilyClient_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"results":        []map[string]string{{"url": "https://a.example", "raw_content": "page text"}},
			"failed_results": []map[string]string{{"url": "https://b.example", "error": "timeout"}},
		})
	}))
	defer srv.Close()

	got, err := newTavily(t, srv.URL).Extract(context.Background(), []string{"https://a.example", "https://b.example"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "page text", got[0].Text)
	assert.False(t, got[0].Failed)
	assert.True(t, got[1].Failed)
}

func TestTavilyClient_ExtractEmpty(t *testing.T) {
	got, err := newTavily(t, "http://unused.invalid").Extract(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "pitchfork.com", domainOf("https://www.pitchfork.com/reviews/x"))
	assert.Equal(t, "ra.co", domainOf("https://ra.co/reviews/y"))
	assert.Equal(t, "not a url", domainOf("not a url"))
}
