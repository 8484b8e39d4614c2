package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	e := NewError(ErrRateLimited, "too many requests")
	assert.Equal(t, "[RATE_LIMITED] too many requests", e.Error())

	cause := errors.New("connection reset")
	e = NewError(ErrUpstreamError, "openai call failed").WithCause(cause)
	assert.Equal(t, "[UPSTREAM_ERROR] openai call failed: connection reset", e.Error())
	assert.Equal(t, cause, errors.Unwrap(e))
}

func TestError_Builders(t *testing.T) {
	e := NewError(ErrUnauthorized, "bad key").
		WithHTTPStatus(401).
		WithRetryable(false).
		WithProvider("openai")

	assert.Equal(t, 401, e.HTTPStatus)
	assert.False(t, e.Retryable)
	assert.Equal(t, "openai", e.Provider)
}

func TestIsRetryable(t *testing.T) {
	retryable := NewError(ErrUpstreamError, "502").WithRetryable(true)
	assert.True(t, IsRetryable(retryable))
	assert.False(t, IsRetryable(NewError(ErrInvalidRequest, "bad json")))
	assert.False(t, IsRetryable(errors.New("plain error")))

	// Retryable survives %w wrapping.
	wrapped := fmt.Errorf("completion failed: %w", retryable)
	assert.True(t, IsRetryable(wrapped))
}

func TestCodeOf(t *testing.T) {
	e := NewError(ErrToolNotFound, "no such tool")
	require.Equal(t, ErrToolNotFound, CodeOf(fmt.Errorf("exec: %w", e)))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}

func TestToolResult_ToMessage(t *testing.T) {
	ok := ToolResult{ToolCallID: "call_1", Name: "web_search", Result: []byte(`{"hits":3}`)}
	msg := ok.ToMessage()
	assert.Equal(t, RoleTool, msg.Role)
	assert.Equal(t, `{"hits":3}`, msg.Content)
	assert.Equal(t, "call_1", msg.ToolCallID)
	assert.False(t, ok.IsError())

	failed := ToolResult{ToolCallID: "call_2", Name: "write_file", Error: "permission denied"}
	assert.True(t, failed.IsError())
	assert.Equal(t, "Error: permission denied", failed.ToMessage().Content)
}

func TestNewMessageConstructors(t *testing.T) {
	sys := NewSystemMessage("you are a researcher")
	assert.Equal(t, RoleSystem, sys.Role)
	assert.False(t, sys.Timestamp.IsZero())

	tool := NewToolMessage("call_9", "web_search", "{}")
	assert.Equal(t, RoleTool, tool.Role)
	assert.Equal(t, "web_search", tool.Name)
	assert.Equal(t, "call_9", tool.ToolCallID)
}
