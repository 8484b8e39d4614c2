package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/llm"
	"github.com/scribeflow/scribeflow/llm/providers"
	"github.com/scribeflow/scribeflow/types"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
	}, zap.NewNop())
}

func TestCompletion_Success(t *testing.T) {
	var gotReq providers.CompatRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(providers.CompatResponse{
			ID:    "chatcmpl-1",
			Model: "gpt-4o-mini",
			Choices: []providers.CompatChoice{{
				FinishReason: "stop",
				Message:      providers.CompatMessage{Role: "assistant", Content: "hello"},
			}},
			Usage: &providers.CompatUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5},
		})
	})

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages:    []types.Message{types.NewUserMessage("hi")},
		Temperature: 0.7,
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.First().Content)
	assert.Equal(t, 5, resp.Usage.TotalTokens)
	assert.Equal(t, "openai", resp.Provider)
	// Default model applied when the request doesn't name one.
	assert.Equal(t, "gpt-4o-mini", gotReq.Model)
	assert.Equal(t, float32(0.7), gotReq.Temperature)
}

func TestCompletion_ToolDefinitionsOnWire(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var req providers.CompatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Tools, 1)
		assert.Equal(t, "web_search", req.Tools[0].Function.Name)
		assert.Equal(t, "auto", req.ToolChoice)

		json.NewEncoder(w).Encode(providers.CompatResponse{
			Choices: []providers.CompatChoice{{
				FinishReason: "tool_calls",
				Message: providers.CompatMessage{
					Role: "assistant",
					ToolCalls: []providers.CompatToolCall{{
						ID:   "call_1",
						Type: "function",
						Function: providers.CompatFunctionCall{
							Name:      "web_search",
							Arguments: json.RawMessage(`{"query":"x"}`),
						},
					}},
				},
			}},
		})
	})

	resp, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages:   []types.Message{types.NewUserMessage("search for x")},
		Tools:      []types.ToolSchema{{Name: "web_search", Parameters: json.RawMessage(`{"type":"object"}`)}},
		ToolChoice: "auto",
	})

	require.NoError(t, err)
	require.Len(t, resp.First().ToolCalls, 1)
	assert.Equal(t, "web_search", resp.First().ToolCalls[0].Name)
}

func TestCompletion_ErrorMapping(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	})

	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []types.Message{types.NewUserMessage("hi")},
	})

	require.Error(t, err)
	assert.Equal(t, types.ErrRateLimited, types.CodeOf(err))
	assert.True(t, types.IsRetryable(err))
}

func TestCompletion_OrganizationHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "org-123", r.Header.Get("OpenAI-Organization"))
		json.NewEncoder(w).Encode(providers.CompatResponse{
			Choices: []providers.CompatChoice{{Message: providers.CompatMessage{Role: "assistant", Content: "ok"}}},
		})
	}))
	defer server.Close()

	p := New(Config{APIKey: "k", BaseURL: server.URL, Organization: "org-123"}, zap.NewNop())
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []types.Message{types.NewUserMessage("hi")},
	})
	require.NoError(t, err)
}

func TestCompletion_NetworkErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // force connection refused

	p := New(Config{APIKey: "k", BaseURL: server.URL}, zap.NewNop())
	_, err := p.Completion(context.Background(), &llm.ChatRequest{
		Messages: []types.Message{types.NewUserMessage("hi")},
	})

	require.Error(t, err)
	assert.True(t, types.IsRetryable(err))
}
