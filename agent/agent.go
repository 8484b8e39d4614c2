// Package agent implements a persona-driven LLM agent. An agent is
// defined by its role, goal, and backstory, and executes crew tasks
// through a reasoning loop with optional tool use.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/crews"
	"github.com/scribeflow/scribeflow/llm"
	"github.com/scribeflow/scribeflow/llm/tokenizer"
	"github.com/scribeflow/scribeflow/tools"
	"github.com/scribeflow/scribeflow/types"
)

// Config defines an agent's persona and runtime limits.
type Config struct {
	Role          string  `json:"role"`
	Goal          string  `json:"goal"`
	Backstory     string  `json:"backstory"`
	Model         string  `json:"model,omitempty"`
	Temperature   float32 `json:"temperature,omitempty"`
	MaxTokens     int     `json:"max_tokens,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
	Verbose       bool    `json:"verbose,omitempty"`
}

// Agent executes tasks on behalf of a crew using an LLM provider and
// a tool registry. It satisfies crews.Agent.
type Agent struct {
	id        string
	config    Config
	provider  llm.Provider
	registry  tools.Registry
	react     *tools.ReActExecutor
	tokenizer *tokenizer.Tokenizer
	logger    *zap.Logger
}

// New creates an agent from a persona config. The registry may be nil
// for agents that work without tools.
func New(config Config, provider llm.Provider, registry tools.Registry, logger *zap.Logger) (*Agent, error) {
	if config.Role == "" {
		return nil, types.NewError(types.ErrInvalidRequest, "agent role is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "agent"), zap.String("role", config.Role))

	a := &Agent{
		id:        uuid.NewString(),
		config:    config,
		provider:  provider,
		registry:  registry,
		tokenizer: tokenizer.New(config.Model),
		logger:    logger,
	}
	if provider != nil {
		executor := tools.NewDefaultExecutor(registry, logger)
		a.react = tools.NewReActExecutor(provider, executor, tools.ReActConfig{
			MaxIterations: config.MaxIterations,
		}, logger)
	}
	return a, nil
}

// ID returns the agent's unique identifier.
func (a *Agent) ID() string { return a.id }

// Name returns the agent's role.
func (a *Agent) Name() string { return a.config.Role }

// Role returns the configured role.
func (a *Agent) Role() string { return a.config.Role }

// Goal returns the configured goal.
func (a *Agent) Goal() string { return a.config.Goal }

// Backstory returns the configured backstory.
func (a *Agent) Backstory() string { return a.config.Backstory }

// Execute runs one crew task through the reasoning loop and returns
// the final model output.
func (a *Agent) Execute(ctx context.Context, task crews.Task) (*crews.TaskResult, error) {
	if a.provider == nil {
		return nil, types.NewError(types.ErrProviderNotSet, "agent has no LLM provider")
	}

	start := time.Now()
	messages := []types.Message{
		types.NewSystemMessage(a.systemPrompt()),
		types.NewUserMessage(a.taskPrompt(task)),
	}

	req := &llm.ChatRequest{
		Model:       a.config.Model,
		Messages:    messages,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
	}
	if a.registry != nil {
		req.Tools = a.registry.List()
	}

	if estimate, err := a.tokenizer.CountMessages(messages); err == nil {
		a.logger.Debug("prompt token estimate",
			zap.String("task", task.ID),
			zap.Int("tokens", estimate))
	}

	a.logger.Info("executing task",
		zap.String("task", task.ID),
		zap.Int("tools", len(req.Tools)))

	resp, steps, err := a.react.Execute(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("task %s failed: %w", task.ID, err)
	}

	tokens := 0
	for _, step := range steps {
		tokens += step.TokensUsed
	}

	result := &crews.TaskResult{
		TaskID:     task.ID,
		AgentID:    a.id,
		Output:     resp.First().Content,
		TokensUsed: tokens,
		Duration:   time.Since(start),
	}
	a.logger.Info("task completed",
		zap.String("task", task.ID),
		zap.Int("iterations", len(steps)),
		zap.Int("tokens_used", tokens),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// systemPrompt renders the persona into a system message. Tool
// guidance is appended only when the agent actually has tools.
func (a *Agent) systemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s.", a.config.Role)
	if a.config.Goal != "" {
		fmt.Fprintf(&b, "\n\nYour goal: %s", a.config.Goal)
	}
	if a.config.Backstory != "" {
		fmt.Fprintf(&b, "\n\nBackground: %s", a.config.Backstory)
	}
	if a.registry != nil {
		schemas := a.registry.List()
		if len(schemas) > 0 {
			b.WriteString("\n\nYou have access to the following tools:")
			for _, schema := range schemas {
				fmt.Fprintf(&b, "\n- %s: %s", schema.Name, schema.Description)
			}
			b.WriteString("\nUse tools when they help you complete the task. " +
				"When you have everything you need, give your final answer directly.")
		}
	}
	return b.String()
}

// taskPrompt renders a task into the user message.
func (a *Agent) taskPrompt(task crews.Task) string {
	var b strings.Builder
	b.WriteString(task.Description)
	if task.ExpectedOutput != "" {
		fmt.Fprintf(&b, "\n\nExpected output: %s", task.ExpectedOutput)
	}
	if task.Context != "" {
		fmt.Fprintf(&b, "\n\nContext:\n%s", task.Context)
	}
	return b.String()
}
