// Package scribeflow provides a top-level entry point for running the
// research and writing pipeline with minimal boilerplate.
//
// Usage:
//
//	import "github.com/scribeflow/scribeflow"
//
//	p, err := scribeflow.New()
//	result, err := p.Run(ctx, "AI audits in the public sector")
//
// Configuration comes from the environment by default; use options to
// override pieces of the assembly.
package scribeflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/article"
	"github.com/scribeflow/scribeflow/config"
	"github.com/scribeflow/scribeflow/llm"
	"github.com/scribeflow/scribeflow/llm/providers/openai"
	"github.com/scribeflow/scribeflow/tools"
)

// Option configures the pipeline created by [New].
type Option func(*Pipeline)

// WithConfig supplies a pre-loaded configuration instead of reading
// the environment.
func WithConfig(cfg *config.Config) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithProvider sets a pre-built LLM provider, bypassing the OpenAI
// assembly. Useful for tests and alternative backends.
func WithProvider(provider llm.Provider) Option {
	return func(p *Pipeline) { p.provider = provider }
}

// WithSearchProvider sets a pre-built web search backend.
func WithSearchProvider(search tools.WebSearchProvider) Option {
	return func(p *Pipeline) { p.search = search }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// Pipeline holds the assembled two-agent article crew dependencies.
type Pipeline struct {
	cfg      *config.Config
	provider llm.Provider
	search   tools.WebSearchProvider
	logger   *zap.Logger
}

// Result summarizes one pipeline run.
type Result struct {
	Topic       string
	FinalOutput string
	TotalTokens int
	Duration    time.Duration

	// ArticlePath is where the article was expected to land.
	ArticlePath    string
	ArticleCreated bool
	// ArticleChars counts characters (runes) in the saved article.
	ArticleChars int
}

// New assembles a pipeline. Without options, configuration is loaded
// from the environment and the OpenAI provider is used.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}

	if p.cfg == nil {
		cfg, err := config.NewLoader().Load()
		if err != nil {
			return nil, err
		}
		p.cfg = cfg
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.provider == nil {
		base := openai.New(openai.Config{
			APIKey:  p.cfg.OpenAI.APIKey,
			BaseURL: p.cfg.OpenAI.BaseURL,
			Model:   p.cfg.OpenAI.Model,
			Timeout: p.cfg.OpenAI.Timeout,
		}, p.logger)
		p.provider = llm.NewResilientProvider(base, nil, p.logger)
	}
	if p.search == nil && p.cfg.SearchEnabled() {
		p.search = tools.NewSerperProvider(tools.SerperConfig{
			APIKey:  p.cfg.Serper.APIKey,
			BaseURL: p.cfg.Serper.BaseURL,
		}, p.logger)
	}
	return p, nil
}

// Config exposes the resolved configuration.
func (p *Pipeline) Config() *config.Config { return p.cfg }

// Run executes the crew for the given topic and reports on the saved
// article. An empty topic falls back to the default.
func (p *Pipeline) Run(ctx context.Context, topic string) (*Result, error) {
	topic = article.NormalizeTopic(topic)

	researcherTools := tools.NewDefaultRegistry(p.logger)
	if p.search != nil {
		searchCfg := tools.DefaultWebSearchToolConfig()
		searchCfg.Provider = p.search
		if err := tools.RegisterWebSearchTool(researcherTools, searchCfg, p.logger); err != nil {
			return nil, fmt.Errorf("failed to register web search tool: %w", err)
		}
	}

	writerTools := tools.NewDefaultRegistry(p.logger)
	if err := tools.RegisterFileWriterTool(writerTools, tools.FileWriterConfig{
		BaseDir: p.cfg.Article.OutputDir,
	}, p.logger); err != nil {
		return nil, fmt.Errorf("failed to register file writer tool: %w", err)
	}

	agentOpts := article.AgentOptions{
		Model:         p.cfg.OpenAI.Model,
		Temperature:   p.cfg.Agent.Temperature,
		MaxIterations: p.cfg.Agent.MaxIterations,
		Verbose:       p.cfg.Agent.Verbose,
	}
	researcher, err := article.NewResearchAgent(p.provider, researcherTools, agentOpts, p.logger)
	if err != nil {
		return nil, err
	}
	writer, err := article.NewWriterAgent(p.provider, writerTools, agentOpts, p.logger)
	if err != nil {
		return nil, err
	}

	crew := article.NewCrew(researcher, writer, topic, p.cfg.Article.Filename, p.cfg.Agent.Verbose, p.logger)
	crewResult, err := crew.Execute(ctx)
	if err != nil {
		return nil, err
	}
	// Agent errors are recorded per task rather than aborting the crew.
	for _, id := range []string{article.TaskResearch, article.TaskWriting} {
		if tr, ok := crewResult.TaskResults[id]; ok && tr.IsError() {
			return nil, errors.New(tr.Error)
		}
	}

	result := &Result{
		Topic:       topic,
		FinalOutput: crewResult.FinalOutput,
		TotalTokens: crewResult.TotalTokens,
		Duration:    crewResult.Duration,
		ArticlePath: filepath.Join(p.cfg.Article.OutputDir, p.cfg.Article.Filename),
	}
	if data, err := os.ReadFile(result.ArticlePath); err == nil {
		result.ArticleCreated = true
		result.ArticleChars = utf8.RuneCount(data)
	}
	return result, nil
}
