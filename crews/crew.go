// Package crews coordinates a set of agents working through an ordered
// task list.
package crews

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Agent is the contract a crew member must satisfy.
type Agent interface {
	// ID returns the agent's unique identifier.
	ID() string
	// Name returns the agent's display name (its role).
	Name() string
	// Execute runs one task and returns the result.
	Execute(ctx context.Context, task Task) (*TaskResult, error)
}

// MemberStatus represents a crew member's availability.
type MemberStatus string

const (
	MemberStatusIdle    MemberStatus = "idle"
	MemberStatusWorking MemberStatus = "working"
)

// Member wraps an agent with its crew-local state.
type Member struct {
	ID     string       `json:"id"`
	Agent  Agent        `json:"-"`
	Status MemberStatus `json:"status"`
}

// Task describes one unit of work for the crew.
type Task struct {
	ID             string   `json:"id"`
	Description    string   `json:"description"`
	ExpectedOutput string   `json:"expected_output"`
	Context        string   `json:"context,omitempty"`
	AssignedTo     string   `json:"assigned_to,omitempty"`
	// DependsOn lists task IDs whose outputs are injected into this
	// task's context before execution.
	DependsOn []string `json:"depends_on,omitempty"`
}

// TaskResult represents the outcome of one task.
type TaskResult struct {
	TaskID     string        `json:"task_id"`
	AgentID    string        `json:"agent_id,omitempty"`
	Output     string        `json:"output"`
	Error      string        `json:"error,omitempty"`
	TokensUsed int           `json:"tokens_used,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// IsError returns true if the task failed.
func (tr *TaskResult) IsError() bool { return tr.Error != "" }

// ProcessType defines how the crew works through its tasks.
type ProcessType string

const (
	ProcessSequential ProcessType = "sequential"
)

// CrewConfig configures a crew.
type CrewConfig struct {
	Name    string
	Process ProcessType
	Verbose bool
}

// Crew represents a group of agents executing tasks together.
type Crew struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Members map[string]*Member `json:"members"`
	Tasks   []*Task            `json:"tasks"`
	Process ProcessType        `json:"process"`
	Verbose bool               `json:"verbose"`
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewCrew creates a new crew.
func NewCrew(config CrewConfig, logger *zap.Logger) *Crew {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Process == "" {
		config.Process = ProcessSequential
	}
	return &Crew{
		ID:      uuid.NewString(),
		Name:    config.Name,
		Members: make(map[string]*Member),
		Tasks:   make([]*Task, 0),
		Process: config.Process,
		Verbose: config.Verbose,
		logger:  logger.With(zap.String("component", "crew"), zap.String("crew", config.Name)),
	}
}

// AddMember adds an agent to the crew.
func (c *Crew) AddMember(agent Agent) *Member {
	c.mu.Lock()
	defer c.mu.Unlock()

	member := &Member{
		ID:     agent.ID(),
		Agent:  agent,
		Status: MemberStatusIdle,
	}
	c.Members[member.ID] = member
	c.logger.Info("added crew member",
		zap.String("id", member.ID),
		zap.String("role", agent.Name()))
	return member
}

// AddTask appends a task to the crew's task list.
func (c *Crew) AddTask(task Task) *Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	if task.ID == "" {
		task.ID = fmt.Sprintf("task_%d", len(c.Tasks)+1)
	}
	t := &task
	c.Tasks = append(c.Tasks, t)
	return t
}

// CrewResult holds the outcome of a crew run.
type CrewResult struct {
	CrewID      string                 `json:"crew_id"`
	TaskResults map[string]*TaskResult `json:"task_results"`
	// FinalOutput is the output of the last task in execution order.
	FinalOutput string        `json:"final_output"`
	TotalTokens int           `json:"total_tokens"`
	StartTime   time.Time     `json:"start_time"`
	EndTime     time.Time     `json:"end_time"`
	Duration    time.Duration `json:"duration"`
}

// Execute runs all tasks under the configured process.
func (c *Crew) Execute(ctx context.Context) (*CrewResult, error) {
	c.logger.Info("starting crew execution",
		zap.Int("tasks", len(c.Tasks)),
		zap.Int("members", len(c.Members)))
	start := time.Now()

	result := &CrewResult{
		CrewID:      c.ID,
		TaskResults: make(map[string]*TaskResult),
		StartTime:   start,
	}

	switch c.Process {
	case ProcessSequential:
		if err := c.executeSequential(ctx, result); err != nil {
			return result, err
		}
	default:
		return result, fmt.Errorf("unsupported process type: %s", c.Process)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(start)
	for _, tr := range result.TaskResults {
		result.TotalTokens += tr.TokensUsed
	}
	c.logger.Info("crew execution completed",
		zap.Duration("duration", result.Duration),
		zap.Int("total_tokens", result.TotalTokens))
	return result, nil
}

func (c *Crew) executeSequential(ctx context.Context, result *CrewResult) error {
	for _, task := range c.Tasks {
		member := c.findMember(task)
		if member == nil {
			return fmt.Errorf("no member found for task: %s", task.ID)
		}

		// Inject dependency outputs before handing the task over.
		resolved := *task
		resolved.Context = c.buildTaskContext(task, result)

		if c.Verbose {
			c.logger.Info("executing task",
				zap.String("task", task.ID),
				zap.String("agent", member.ID))
		}

		member.Status = MemberStatusWorking
		taskStart := time.Now()
		taskResult, err := member.Agent.Execute(ctx, resolved)
		member.Status = MemberStatusIdle

		if err != nil {
			taskResult = &TaskResult{
				TaskID:   task.ID,
				AgentID:  member.ID,
				Error:    err.Error(),
				Duration: time.Since(taskStart),
			}
		}
		if taskResult.AgentID == "" {
			taskResult.AgentID = member.ID
		}
		result.TaskResults[task.ID] = taskResult
		if !taskResult.IsError() {
			result.FinalOutput = taskResult.Output
		}
	}
	return nil
}

// buildTaskContext combines the task's own context with the outputs of
// the tasks it depends on, in dependency order.
func (c *Crew) buildTaskContext(task *Task, result *CrewResult) string {
	parts := make([]string, 0, len(task.DependsOn)+1)
	if task.Context != "" {
		parts = append(parts, task.Context)
	}
	for _, dep := range task.DependsOn {
		depResult, ok := result.TaskResults[dep]
		if !ok {
			c.logger.Warn("dependency has no result yet",
				zap.String("task", task.ID),
				zap.String("dependency", dep))
			continue
		}
		if depResult.IsError() {
			c.logger.Warn("dependency failed, skipping its output",
				zap.String("task", task.ID),
				zap.String("dependency", dep))
			continue
		}
		parts = append(parts, fmt.Sprintf("Output of %s:\n%s", dep, depResult.Output))
	}
	return strings.Join(parts, "\n\n")
}

// findMember returns the assigned member if the task names one,
// otherwise any idle member.
func (c *Crew) findMember(task *Task) *Member {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if task.AssignedTo != "" {
		if member, ok := c.Members[task.AssignedTo]; ok {
			return member
		}
	}
	for _, member := range c.Members {
		if member.Status == MemberStatusIdle {
			return member
		}
	}
	return nil
}
