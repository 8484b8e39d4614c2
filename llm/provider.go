// Package llm defines the provider contract for chat completion backends.
package llm

import (
	"context"
	"time"

	"github.com/scribeflow/scribeflow/types"
)

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	TraceID     string             `json:"trace_id,omitempty"`
	Model       string             `json:"model"`
	Messages    []types.Message    `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
	TopP        float32            `json:"top_p,omitempty"`
	Stop        []string           `json:"stop,omitempty"`
	Tools       []types.ToolSchema `json:"tools,omitempty"`
	ToolChoice  string             `json:"tool_choice,omitempty"` // auto/none/<tool name>
}

// ChatChoice is a single completion choice.
type ChatChoice struct {
	Index        int           `json:"index"`
	FinishReason string        `json:"finish_reason"`
	Message      types.Message `json:"message"`
}

// ChatUsage reports token consumption for one completion.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is a provider-agnostic chat completion response.
type ChatResponse struct {
	ID        string       `json:"id"`
	Provider  string       `json:"provider"`
	Model     string       `json:"model"`
	Choices   []ChatChoice `json:"choices"`
	Usage     ChatUsage    `json:"usage"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

// First returns the first choice message, or a zero message if there are no choices.
func (r *ChatResponse) First() types.Message {
	if r == nil || len(r.Choices) == 0 {
		return types.Message{}
	}
	return r.Choices[0].Message
}

// Provider is the minimal contract a chat completion backend must satisfy.
// Errors should be *types.Error so callers can inspect code and retryability.
type Provider interface {
	// Name returns the provider's unique identifier (e.g. "openai").
	Name() string
	// Completion performs a non-streaming chat completion.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}
