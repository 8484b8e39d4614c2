package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSerperFixture(t *testing.T, handler http.HandlerFunc) *SerperProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewSerperProvider(SerperConfig{APIKey: "serper-key", BaseURL: server.URL}, zap.NewNop())
}

func TestSerper_Search(t *testing.T) {
	p := newSerperFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "serper-key", r.Header.Get("X-API-KEY"))

		var req serperRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "AI governance", req.Query)
		assert.Equal(t, 10, req.Num)
		assert.Equal(t, "en", req.Language)

		w.Write([]byte(`{
			"organic": [
				{"title": "First", "link": "https://a.example", "snippet": "s1", "position": 1},
				{"title": "Second", "link": "https://b.example", "snippet": "s2", "position": 2}
			]
		}`))
	})

	results, err := p.Search(context.Background(), "AI governance", DefaultWebSearchOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "First", results[0].Title)
	assert.Equal(t, "https://b.example", results[1].URL)
	assert.Equal(t, 2, results[1].Position)
}

func TestSerper_AnswerBoxAndKnowledgeGraphFirst(t *testing.T) {
	p := newSerperFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"answerBox": {"answer": "42", "title": "The Answer", "link": "https://answer.example"},
			"knowledgeGraph": {"title": "AI Act", "type": "Regulation", "description": "EU framework"},
			"organic": [{"title": "Org", "link": "https://org.example", "snippet": "s", "position": 1}]
		}`))
	})

	results, err := p.Search(context.Background(), "q", DefaultWebSearchOptions())
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "42", results[0].Snippet)
	assert.Equal(t, "AI Act (Regulation)", results[1].Title)
	assert.Equal(t, "Org", results[2].Title)
}

func TestSerper_MaxResultsTruncation(t *testing.T) {
	p := newSerperFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"organic": [
				{"title": "1", "link": "u1", "snippet": "s", "position": 1},
				{"title": "2", "link": "u2", "snippet": "s", "position": 2},
				{"title": "3", "link": "u3", "snippet": "s", "position": 3}
			]
		}`))
	})

	opts := WebSearchOptions{MaxResults: 2}
	results, err := p.Search(context.Background(), "q", opts)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSerper_HTTPError(t *testing.T) {
	p := newSerperFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := p.Search(context.Background(), "q", DefaultWebSearchOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=403")
}

func TestSerper_EmptyResponse(t *testing.T) {
	p := newSerperFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"organic": []}`))
	})

	results, err := p.Search(context.Background(), "nothing", DefaultWebSearchOptions())
	require.NoError(t, err)
	assert.Empty(t, results)
}
