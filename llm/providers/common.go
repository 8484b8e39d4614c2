// Package providers holds wire types and helpers shared by OpenAI-compatible
// chat completion backends.
package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/scribeflow/scribeflow/llm"
	"github.com/scribeflow/scribeflow/types"
)

// MapHTTPError maps an HTTP status code to a *types.Error with the
// appropriate retryable marking. Shared by all providers.
func MapHTTPError(status int, msg string, provider string) *types.Error {
	switch status {
	case http.StatusUnauthorized:
		return types.NewError(types.ErrUnauthorized, msg).
			WithHTTPStatus(status).WithProvider(provider)
	case http.StatusForbidden:
		return types.NewError(types.ErrForbidden, msg).
			WithHTTPStatus(status).WithProvider(provider)
	case http.StatusTooManyRequests:
		return types.NewError(types.ErrRateLimited, msg).
			WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	case http.StatusBadRequest:
		// Quota errors surface as 400 on some backends.
		msgLower := strings.ToLower(msg)
		if strings.Contains(msgLower, "quota") ||
			strings.Contains(msgLower, "credit") ||
			strings.Contains(msgLower, "limit") {
			return types.NewError(types.ErrQuotaExceeded, msg).
				WithHTTPStatus(status).WithProvider(provider)
		}
		return types.NewError(types.ErrInvalidRequest, msg).
			WithHTTPStatus(status).WithProvider(provider)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	case 529: // model overloaded (used by some providers)
		return types.NewError(types.ErrModelOverloaded, msg).
			WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	default:
		return types.NewError(types.ErrUpstreamError, msg).
			WithHTTPStatus(status).WithRetryable(status >= 500).WithProvider(provider)
	}
}

// ReadErrorMessage extracts an error message from a response body.
// Tries the standard {"error":{"message":...}} shape, falls back to raw text.
func ReadErrorMessage(body io.Reader) string {
	data, err := io.ReadAll(body)
	if err != nil {
		return "failed to read error response"
	}

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    any    `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		if errResp.Error.Type != "" {
			return fmt.Sprintf("%s (type: %s)", errResp.Error.Message, errResp.Error.Type)
		}
		return errResp.Error.Message
	}

	return string(data)
}

// OpenAI-compatible API wire types.

// CompatMessage is the OpenAI-compatible message format.
type CompatMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content,omitempty"`
	Name       string           `json:"name,omitempty"`
	ToolCalls  []CompatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

// CompatToolCall is an OpenAI-compatible tool invocation.
type CompatToolCall struct {
	ID       string             `json:"id"`
	Type     string             `json:"type"`
	Function CompatFunctionCall `json:"function"`
}

// CompatFunctionCall carries the function name and call arguments.
type CompatFunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// CompatTool is an OpenAI-compatible tool definition.
type CompatTool struct {
	Type     string            `json:"type"`
	Function CompatFunctionDef `json:"function"`
}

// CompatFunctionDef carries a function definition with its JSON Schema.
type CompatFunctionDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters"`
}

// CompatRequest is an OpenAI-compatible chat completion request.
type CompatRequest struct {
	Model       string          `json:"model"`
	Messages    []CompatMessage `json:"messages"`
	Tools       []CompatTool    `json:"tools,omitempty"`
	ToolChoice  any             `json:"tool_choice,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float32         `json:"temperature,omitempty"`
	TopP        float32         `json:"top_p,omitempty"`
	Stop        []string        `json:"stop,omitempty"`
}

// CompatChoice is a single choice in an OpenAI-compatible response.
type CompatChoice struct {
	Index        int           `json:"index"`
	FinishReason string        `json:"finish_reason"`
	Message      CompatMessage `json:"message"`
}

// CompatUsage is the token usage block of an OpenAI-compatible response.
type CompatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CompatResponse is an OpenAI-compatible chat completion response.
type CompatResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []CompatChoice `json:"choices"`
	Usage   *CompatUsage   `json:"usage,omitempty"`
	Created int64          `json:"created,omitempty"`
}

// ConvertMessages converts types.Message values to the compat wire format.
func ConvertMessages(msgs []types.Message) []CompatMessage {
	out := make([]CompatMessage, 0, len(msgs))
	for _, m := range msgs {
		cm := CompatMessage{
			Role:       string(m.Role),
			Name:       m.Name,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			cm.ToolCalls = make([]CompatToolCall, 0, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				cm.ToolCalls = append(cm.ToolCalls, CompatToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: CompatFunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
		}
		out = append(out, cm)
	}
	return out
}

// ConvertTools converts tool schemas to the compat wire format.
func ConvertTools(tools []types.ToolSchema) []CompatTool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]CompatTool, 0, len(tools))
	for _, t := range tools {
		out = append(out, CompatTool{
			Type: "function",
			Function: CompatFunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

// ToChatResponse converts a compat response to llm.ChatResponse.
func ToChatResponse(cr CompatResponse, provider string) *llm.ChatResponse {
	choices := make([]llm.ChatChoice, 0, len(cr.Choices))
	for _, c := range cr.Choices {
		msg := types.Message{
			Role:    types.RoleAssistant,
			Content: c.Message.Content,
			Name:    c.Message.Name,
		}
		if len(c.Message.ToolCalls) > 0 {
			msg.ToolCalls = make([]types.ToolCall, 0, len(c.Message.ToolCalls))
			for _, tc := range c.Message.ToolCalls {
				msg.ToolCalls = append(msg.ToolCalls, types.ToolCall{
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}
		}
		choices = append(choices, llm.ChatChoice{
			Index:        c.Index,
			FinishReason: c.FinishReason,
			Message:      msg,
		})
	}
	resp := &llm.ChatResponse{
		ID:       cr.ID,
		Provider: provider,
		Model:    cr.Model,
		Choices:  choices,
	}
	if cr.Usage != nil {
		resp.Usage = llm.ChatUsage{
			PromptTokens:     cr.Usage.PromptTokens,
			CompletionTokens: cr.Usage.CompletionTokens,
			TotalTokens:      cr.Usage.TotalTokens,
		}
	}
	return resp
}

// ChooseModel picks the model for a request: request override, then the
// configured default, then the fallback.
func ChooseModel(req *llm.ChatRequest, defaultModel, fallbackModel string) string {
	if req != nil && req.Model != "" {
		return req.Model
	}
	if defaultModel != "" {
		return defaultModel
	}
	return fallbackModel
}
