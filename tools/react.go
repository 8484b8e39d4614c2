package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/llm"
	"github.com/scribeflow/scribeflow/types"
)

// ReActConfig defines the reasoning loop configuration.
type ReActConfig struct {
	MaxIterations int  // maximum iterations (prevents infinite loops)
	StopOnError   bool // stop on tool execution error
}

// ReActExecutor implements the ReAct (Reasoning and Acting) loop.
// It drives "LLM -> tools -> LLM" multi-turn conversations until the
// model answers without requesting tools.
type ReActExecutor struct {
	provider     llm.Provider
	toolExecutor Executor
	logger       *zap.Logger
	config       ReActConfig
}

// NewReActExecutor creates a ReAct executor.
func NewReActExecutor(provider llm.Provider, toolExecutor Executor, config ReActConfig, logger *zap.Logger) *ReActExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxIterations == 0 {
		config.MaxIterations = 10
	}
	return &ReActExecutor{
		provider:     provider,
		toolExecutor: toolExecutor,
		logger:       logger,
		config:       config,
	}
}

// ReActStep records one loop iteration (thought, actions, observations).
type ReActStep struct {
	StepNumber   int                `json:"step_number"`
	Thought      string             `json:"thought,omitempty"`
	Actions      []types.ToolCall   `json:"actions,omitempty"`
	Observations []types.ToolResult `json:"observations,omitempty"`
	TokensUsed   int                `json:"tokens_used,omitempty"`
}

// Execute runs the loop and returns the final response with all steps taken.
func (r *ReActExecutor) Execute(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, []ReActStep, error) {
	steps := make([]ReActStep, 0)
	messages := append([]types.Message{}, req.Messages...)

	for i := 0; i < r.config.MaxIterations; i++ {
		r.logger.Debug("reasoning iteration", zap.Int("iteration", i+1))

		callReq := *req
		callReq.Messages = messages
		resp, err := r.provider.Completion(ctx, &callReq)
		if err != nil {
			return nil, steps, fmt.Errorf("LLM call failed at iteration %d: %w", i+1, err)
		}

		if len(resp.Choices) == 0 {
			return resp, steps, fmt.Errorf("no choices in LLM response")
		}

		choice := resp.Choices[0]
		toolCalls := choice.Message.ToolCalls

		step := ReActStep{
			StepNumber: i + 1,
			Thought:    choice.Message.Content,
			TokensUsed: resp.Usage.TotalTokens,
		}

		if len(toolCalls) == 0 {
			r.logger.Info("reasoning completed",
				zap.Int("iterations", i+1),
				zap.String("finish_reason", choice.FinishReason))
			steps = append(steps, step)
			return resp, steps, nil
		}

		r.logger.Info("executing tools", zap.Int("count", len(toolCalls)))
		step.Actions = toolCalls
		toolResults := r.toolExecutor.Execute(ctx, toolCalls)
		step.Observations = toolResults

		hasError := false
		for _, result := range toolResults {
			if result.IsError() {
				hasError = true
				r.logger.Warn("tool execution failed",
					zap.String("tool", result.Name),
					zap.String("error", result.Error))
			}
		}

		if hasError && r.config.StopOnError {
			steps = append(steps, step)
			return resp, steps, fmt.Errorf("tool execution failed, stopping reasoning loop")
		}

		messages = append(messages, choice.Message)
		for _, result := range toolResults {
			messages = append(messages, result.ToMessage())
		}
		steps = append(steps, step)
	}

	r.logger.Warn("max iterations reached", zap.Int("max", r.config.MaxIterations))
	return nil, steps, types.NewError(types.ErrMaxIterations,
		fmt.Sprintf("max iterations reached (%d)", r.config.MaxIterations))
}
