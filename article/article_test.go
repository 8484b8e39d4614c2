package article

import (
	"context"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/scribeflow/scribeflow/crews"
	"github.com/scribeflow/scribeflow/llm"
	"github.com/scribeflow/scribeflow/types"
)

func TestNormalizeTopic(t *testing.T) {
	assert.Equal(t, DefaultTopic, NormalizeTopic(""))
	assert.Equal(t, DefaultTopic, NormalizeTopic("   \t\n"))
	assert.Equal(t, "AI audits", NormalizeTopic("  AI audits  "))
}

func TestNormalizeTopic_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		topic := rapid.String().Draw(t, "topic")
		got := NormalizeTopic(topic)

		if strings.TrimSpace(topic) == "" {
			assert.Equal(t, DefaultTopic, got)
			return
		}
		assert.Equal(t, strings.TrimSpace(topic), got)
		if len(got) > 0 {
			first := []rune(got)[0]
			last := []rune(got)[len([]rune(got))-1]
			assert.False(t, unicode.IsSpace(first))
			assert.False(t, unicode.IsSpace(last))
		}
	})
}

func TestResearchTask_ContainsTopicAndBackground(t *testing.T) {
	task := NewResearchTask("Algorithmic accountability")

	assert.Equal(t, TaskResearch, task.ID)
	assert.Contains(t, task.Description, "Investigate the topic: Algorithmic accountability")
	assert.Contains(t, task.Description, "Stanford's Ethics, Technology, and Public Policy")
	assert.Contains(t, task.ExpectedOutput, "structured research memo")
	assert.Empty(t, task.DependsOn)
}

func TestWritingTask_DependsOnResearch(t *testing.T) {
	task := NewWritingTask("Algorithmic accountability", "")

	assert.Equal(t, TaskWriting, task.ID)
	assert.Equal(t, []string{TaskResearch}, task.DependsOn)
	assert.Contains(t, task.Description, "policy-oriented article on: Algorithmic accountability")
	assert.Contains(t, task.Description, "Save the article to 'article.md'")
	assert.Contains(t, task.Description, "800-1000 words")
	assert.Contains(t, task.ExpectedOutput, "article.md")
}

func TestWritingTask_CustomFilename(t *testing.T) {
	task := NewWritingTask("Topic", "briefing.md")

	assert.Contains(t, task.Description, "Save the article to 'briefing.md'")
	assert.Contains(t, task.ExpectedOutput, "briefing.md")
	assert.NotContains(t, task.Description, "article.md")
}

// stubProvider returns a fixed answer so agents complete in one turn.
type stubProvider struct {
	output string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Completion(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return &llm.ChatResponse{
		Choices: []llm.ChatChoice{{
			Message:      types.NewAssistantMessage(s.output),
			FinishReason: "stop",
		}},
	}, nil
}

func TestAgents_CarryConfiguredPersonas(t *testing.T) {
	provider := &stubProvider{output: "ok"}
	opts := AgentOptions{Model: "gpt-4o-mini"}

	researcher, err := NewResearchAgent(provider, nil, opts, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Ethics and Emerging Technology Research Lead", researcher.Role())
	assert.Contains(t, researcher.Goal(), "Synthesize cross-sector research")
	assert.Contains(t, researcher.Backstory(), "Government Accountability Office")

	writer, err := NewWriterAgent(provider, nil, opts, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "Policy Communicator and Storyteller", writer.Role())
	assert.Contains(t, writer.Goal(), "compelling narratives")
	assert.Contains(t, writer.Backstory(), "GAO reports for Congress")
}

func TestNewCrew_SequentialPipeline(t *testing.T) {
	provider := &stubProvider{output: "the article"}
	opts := AgentOptions{Model: "gpt-4o-mini"}

	researcher, err := NewResearchAgent(provider, nil, opts, zap.NewNop())
	require.NoError(t, err)
	writer, err := NewWriterAgent(provider, nil, opts, zap.NewNop())
	require.NoError(t, err)

	crew := NewCrew(researcher, writer, "test topic", Filename, false, zap.NewNop())
	require.Len(t, crew.Tasks, 2)
	assert.Equal(t, researcher.ID(), crew.Tasks[0].AssignedTo)
	assert.Equal(t, writer.ID(), crew.Tasks[1].AssignedTo)
	assert.Equal(t, crews.ProcessSequential, crew.Process)

	result, err := crew.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "the article", result.FinalOutput)
	require.Contains(t, result.TaskResults, TaskResearch)
	require.Contains(t, result.TaskResults, TaskWriting)
	assert.False(t, result.TaskResults[TaskWriting].IsError())
}
