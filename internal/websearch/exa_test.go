package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExa(t *testing.T, baseURL string) *ExaClient {
	t.Helper()
	client, err := NewExaClient(Config{ExaAPIKey: "exa-key", ExaBaseURL: baseURL, Timeout: 2})
	require.NoError(t, err)
	return client
}

func TestNewExaClient_RequiresKey(t *testing.T) {
	_, err := NewExaClient(Config{})
	assert.Error(t, err)
}

func TestExaClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "exa-key", r.Header.Get("X-API-Key"))

		var req exaSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "neural", req.Type)
		assert.Equal(t, 2, req.NumResults)

		_ = json.NewEncoder(w).Encode(exaSearchResponse{Results: []exaResult{
			{Title: "Krautrock lineage", URL: "https://thequietus.com/articles/k", Text: "semantic match"},
		}})
	}))
	defer srv.Close()

	got, err := newExa(t, srv.URL).Search(context.Background(), "who influenced kraftwerk",
		Options{MaxResults: 2, Mode: ModeSemantic})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "thequietus.com", got[0].Domain)
	assert.Equal(t, "semantic match", got[0].Snippet)
}

func TestExaClient_Extract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/contents", r.URL.Path)
		_ = json.NewEncoder(w).Encode(exaContentsResponse{Results: []exaResult{
			{URL: "https://a.example", Text: "full text"},
		}})
	}))
	defer srv.Close()

	got, err := newExa(t, srv.URL).Extract(context.Background(), []string{"https://a.example", "https://missing.example"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "full text", got[0].Text)
	assert.True(t, got[1].Failed, "urls absent from the response are flagged failed")
}

func TestExaClient_SearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad request"}`))
	}))
	defer srv.Close()

	_, err := newExa(t, srv.URL).Search(context.Background(), "q", Options{})
	assert.Error(t, err)
}
