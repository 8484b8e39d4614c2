// Package openai implements the llm.Provider contract against the OpenAI
// Chat Completions API. Any OpenAI-compatible backend works by overriding
// the base URL.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/llm"
	"github.com/scribeflow/scribeflow/llm/providers"
	"github.com/scribeflow/scribeflow/types"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultTimeout = 60 * time.Second
	endpointPath   = "/v1/chat/completions"
	fallbackModel  = "gpt-4o-mini"
	providerName   = "openai"
)

// Config holds the configuration for the OpenAI provider.
type Config struct {
	// APIKey is the authentication key. Required.
	APIKey string
	// BaseURL overrides the API base URL (e.g. for compatible backends).
	BaseURL string
	// Model is the default model when a request doesn't name one.
	Model string
	// Organization sets the OpenAI-Organization header when non-empty.
	Organization string
	// Timeout is the HTTP client timeout. Defaults to 60s.
	Timeout time.Duration
}

// Provider is an llm.Provider backed by the Chat Completions API.
type Provider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// New creates an OpenAI provider.
func New(cfg Config, logger *zap.Logger) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("provider", providerName)),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return providerName }

func (p *Provider) endpoint() string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + endpointPath
}

func (p *Provider) buildHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	if p.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", p.cfg.Organization)
	}
	req.Header.Set("Content-Type", "application/json")
}

// Completion performs a non-streaming chat completion.
func (p *Provider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	model := providers.ChooseModel(req, p.cfg.Model, fallbackModel)

	body := providers.CompatRequest{
		Model:       model,
		Messages:    providers.ConvertMessages(req.Messages),
		Tools:       providers.ConvertTools(req.Tools),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        req.Stop,
	}
	if req.ToolChoice != "" {
		body.ToolChoice = req.ToolChoice
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	p.buildHeaders(httpReq)

	start := time.Now()
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, types.NewError(types.ErrUpstreamError, err.Error()).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true).WithProvider(p.Name())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := providers.ReadErrorMessage(resp.Body)
		return nil, providers.MapHTTPError(resp.StatusCode, msg, p.Name())
	}

	var compatResp providers.CompatResponse
	if err := json.NewDecoder(resp.Body).Decode(&compatResp); err != nil {
		return nil, types.NewError(types.ErrUpstreamError, err.Error()).
			WithHTTPStatus(http.StatusBadGateway).WithRetryable(true).WithProvider(p.Name())
	}

	result := providers.ToChatResponse(compatResp, p.Name())
	if compatResp.Created != 0 {
		result.CreatedAt = time.Unix(compatResp.Created, 0)
	}

	p.logger.Debug("completion finished",
		zap.String("model", model),
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}
