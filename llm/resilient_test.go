package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/llm/retry"
	"github.com/scribeflow/scribeflow/types"
)

// flakyProvider fails n times before succeeding.
type flakyProvider struct {
	failures int
	calls    int
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, types.NewError(types.ErrUpstreamError, "502").WithRetryable(true)
	}
	return &ChatResponse{
		Choices: []ChatChoice{{Message: types.NewAssistantMessage("ok")}},
	}, nil
}

func fastRetryPolicy(maxRetries int) *retry.Policy {
	return &retry.Policy{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestResilientProvider_RetriesThenSucceeds(t *testing.T) {
	inner := &flakyProvider{failures: 2}
	rp := NewResilientProvider(inner, fastRetryPolicy(3), zap.NewNop())

	resp, err := rp.Completion(context.Background(), &ChatRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.First().Content)
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, "flaky", rp.Name())
}

func TestResilientProvider_NonRetryablePassesThrough(t *testing.T) {
	inner := &failingProvider{}
	rp := NewResilientProvider(inner, fastRetryPolicy(3), zap.NewNop())

	_, err := rp.Completion(context.Background(), &ChatRequest{})
	require.Error(t, err)
	assert.Equal(t, types.ErrUnauthorized, types.CodeOf(err))
	assert.Equal(t, 1, inner.calls)
}

type failingProvider struct {
	calls int
}

func (f *failingProvider) Name() string { return "failing" }

func (f *failingProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	f.calls++
	return nil, types.NewError(types.ErrUnauthorized, "bad key")
}
