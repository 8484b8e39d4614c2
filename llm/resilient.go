package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/llm/retry"
)

// ResilientProvider decorates a Provider with retry behavior.
// The underlying provider is never modified.
type ResilientProvider struct {
	provider Provider
	retryer  retry.Retryer
	logger   *zap.Logger
}

// NewResilientProvider wraps provider with the given retry policy.
// A nil policy uses retry.DefaultPolicy.
func NewResilientProvider(provider Provider, policy *retry.Policy, logger *zap.Logger) *ResilientProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResilientProvider{
		provider: provider,
		retryer:  retry.NewBackoffRetryer(policy, logger),
		logger:   logger,
	}
}

// Name returns the underlying provider's name.
func (rp *ResilientProvider) Name() string { return rp.provider.Name() }

// Completion performs a chat completion, retrying retryable failures.
func (rp *ResilientProvider) Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	result, err := rp.retryer.DoWithResult(ctx, func() (any, error) {
		return rp.provider.Completion(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return result.(*ChatResponse), nil
}
