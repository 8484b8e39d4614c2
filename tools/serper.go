package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const serperDefaultBaseURL = "https://google.serper.dev"

// SerperConfig configures the Serper search backend.
type SerperConfig struct {
	// APIKey is the Serper API key. Required.
	APIKey string
	// BaseURL overrides the API base URL (used in tests).
	BaseURL string
	// Timeout is the HTTP client timeout. Defaults to 10s.
	Timeout time.Duration
}

// SerperProvider implements WebSearchProvider against google.serper.dev.
type SerperProvider struct {
	cfg    SerperConfig
	client *http.Client
	logger *zap.Logger
}

// NewSerperProvider creates a Serper-backed search provider.
func NewSerperProvider(cfg SerperConfig, logger *zap.Logger) *SerperProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = serperDefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SerperProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("search_provider", "serper")),
	}
}

// Name returns the provider name.
func (s *SerperProvider) Name() string { return "serper" }

// serperRequest is the google.serper.dev/search request body.
type serperRequest struct {
	Query    string `json:"q"`
	Num      int    `json:"num,omitempty"`
	Language string `json:"hl,omitempty"`
	Region   string `json:"gl,omitempty"`
}

// serperResponse is the subset of the Serper response we consume.
type serperResponse struct {
	AnswerBox *struct {
		Answer  string `json:"answer"`
		Snippet string `json:"snippet"`
		Title   string `json:"title"`
		Link    string `json:"link"`
	} `json:"answerBox,omitempty"`
	KnowledgeGraph *struct {
		Title       string `json:"title"`
		Type        string `json:"type"`
		Description string `json:"description"`
		Website     string `json:"website"`
	} `json:"knowledgeGraph,omitempty"`
	Organic []struct {
		Title    string `json:"title"`
		Link     string `json:"link"`
		Snippet  string `json:"snippet"`
		Position int    `json:"position"`
	} `json:"organic"`
}

// Search performs a web search via the Serper API.
func (s *SerperProvider) Search(ctx context.Context, query string, opts WebSearchOptions) ([]WebSearchResult, error) {
	body := serperRequest{
		Query:    query,
		Num:      opts.MaxResults,
		Language: opts.Language,
		Region:   opts.Region,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal serper request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("X-API-KEY", s.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("serper request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper search failed: status=%d", resp.StatusCode)
	}

	var sr serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode serper response: %w", err)
	}

	results := make([]WebSearchResult, 0, len(sr.Organic)+2)

	// Answer box and knowledge graph, when present, are the most direct
	// answers; surface them ahead of organic hits.
	if ab := sr.AnswerBox; ab != nil {
		snippet := ab.Answer
		if snippet == "" {
			snippet = ab.Snippet
		}
		if snippet != "" {
			results = append(results, WebSearchResult{
				Title:   ab.Title,
				URL:     ab.Link,
				Snippet: snippet,
			})
		}
	}
	if kg := sr.KnowledgeGraph; kg != nil && kg.Description != "" {
		title := kg.Title
		if kg.Type != "" {
			title = fmt.Sprintf("%s (%s)", kg.Title, kg.Type)
		}
		results = append(results, WebSearchResult{
			Title:   title,
			URL:     kg.Website,
			Snippet: kg.Description,
		})
	}

	for _, o := range sr.Organic {
		results = append(results, WebSearchResult{
			Title:    o.Title,
			URL:      o.Link,
			Snippet:  o.Snippet,
			Position: o.Position,
		})
	}

	if opts.MaxResults > 0 && len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}

	s.logger.Debug("serper search completed",
		zap.String("query", query),
		zap.Int("results", len(results)))

	return results, nil
}
