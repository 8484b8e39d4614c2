// Package article assembles the research and writing crew that turns a
// topic into a policy-oriented Markdown article.
package article

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/scribeflow/scribeflow/agent"
	"github.com/scribeflow/scribeflow/crews"
	"github.com/scribeflow/scribeflow/llm"
	"github.com/scribeflow/scribeflow/tools"
)

const (
	// DefaultTopic is used when the user provides no topic.
	DefaultTopic = "Public interest safeguards for generative AI systems"

	// Filename is where the writer agent saves the finished article.
	Filename = "article.md"

	// Task IDs, in execution order.
	TaskResearch = "research"
	TaskWriting  = "writing"
)

// backgroundContext grounds both agents in the profile of a public
// interest technologist.
const backgroundContext = `You bring together experiences such as:
- Guiding Stanford's Ethics, Technology, and Public Policy cohort alongside
  Professors Mehran Sahami, Jeremy Weinstein, and Rob Reich
- Examining artificial intelligence and software innovations as a U.S. Patent
  Examiner and GAO technology auditor
- Advising Federal leaders across the White House, OMB, SBA, GSA, and the
  Department of Education on data transparency, emerging technology, and
  digital service delivery
- Championing human-centered design at IDEO and launching civic technology and
  economic development initiatives with governments, nonprofits, and industry
- Supporting academic and civic communities at the University of Pennsylvania,
  University of Michigan, USC, and international forums such as UNICEF USA
Use this lived experience to ground every analysis, highlight ethical and
equity implications, and surface cross-sector collaboration opportunities.`

// NormalizeTopic trims whitespace and falls back to DefaultTopic when
// the input is empty.
func NormalizeTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return DefaultTopic
	}
	return topic
}

// AgentOptions carries the runtime settings shared by both agents.
type AgentOptions struct {
	Model         string
	Temperature   float32
	MaxIterations int
	Verbose       bool
}

// NewResearchAgent creates the research agent. The registry should
// hold the web_search tool when a search provider is configured, or be
// empty when it is not.
func NewResearchAgent(provider llm.Provider, registry tools.Registry, opts AgentOptions, logger *zap.Logger) (*agent.Agent, error) {
	return agent.New(agent.Config{
		Role: "Ethics and Emerging Technology Research Lead",
		Goal: "Synthesize cross-sector research into AI governance, civic technology," +
			" and human-centered innovation so complex topics are ready for policy" +
			" and design discussions.",
		Backstory: "You guide conversations on technology ethics at Stanford, advise on AI" +
			" accountability from service at the U.S. Government Accountability Office" +
			" and the U.S. Patent and Trademark Office, and" +
			" translate research for public servants, engineers, and designers.",
		Model:         opts.Model,
		Temperature:   opts.Temperature,
		MaxIterations: opts.MaxIterations,
		Verbose:       opts.Verbose,
	}, provider, registry, logger)
}

// NewWriterAgent creates the writing agent. The registry should hold
// the write_file tool so the article can be saved.
func NewWriterAgent(provider llm.Provider, registry tools.Registry, opts AgentOptions, logger *zap.Logger) (*agent.Agent, error) {
	return agent.New(agent.Config{
		Role: "Policy Communicator and Storyteller",
		Goal: "Transform nuanced research into compelling narratives with" +
			" clear recommendations for civic leaders, technologists, and academics.",
		Backstory: "Drawing on experience moderating discussions with global leaders," +
			" crafting GAO reports for Congress, and briefing White House stakeholders," +
			" you excel at weaving evidence, ethics, and inclusive" +
			" design into accessible writing.",
		Model:         opts.Model,
		Temperature:   opts.Temperature,
		MaxIterations: opts.MaxIterations,
		Verbose:       opts.Verbose,
	}, provider, registry, logger)
}

// NewResearchTask builds the research task for the given topic.
func NewResearchTask(topic string) crews.Task {
	description := fmt.Sprintf(`Investigate the topic: %s

Anchor your thinking in the following background:
%s

Focus your review on:
1. Ethical, societal, and economic implications across government, industry, and civil society
2. Practical case studies from Federal initiatives, academia, and mission-driven organizations
3. Key policy, legal, and governance debates shaping the technology's deployment
4. Opportunities to align innovation with public interest outcomes and inclusive design

Deliver concise, sourced findings suitable for collaboration with product, policy, and research partners.`,
		topic, backgroundContext)

	expected := `A structured research memo that includes:
- Executive summary highlighting the most relevant developments
- Table of key benefits, risks, and mitigation strategies
- Case studies with short annotations on impact and lessons learned
- Policy or governance considerations with references
- Bibliography of credible sources consulted`

	return crews.Task{
		ID:             TaskResearch,
		Description:    description,
		ExpectedOutput: expected,
	}
}

// NewWritingTask builds the writing task for the given topic. It
// depends on the research task and instructs the agent to save the
// article to filename (Filename when empty). The name must match what
// the caller checks for after the run.
func NewWritingTask(topic, filename string) crews.Task {
	if filename == "" {
		filename = Filename
	}
	description := fmt.Sprintf(`Using the research findings, craft a policy-oriented article on: %s

Keep this lived experience in mind while writing:
%s

Requirements:
1. Open with a concise briefing that situates the issue for technology and policy leaders
2. Organize sections for context, current state of the field, governance considerations, and future outlook
3. Showcase real-world examples that resonate with multi-sector stakeholders
4. Recommend actionable steps for researchers, product teams, and public officials
5. Save the article to '%s' in Markdown format

Aim for 800-1000 words with clear headings and accessible explanations.
Maintain a tone that reflects a collaborative civic technologist.`,
		topic, backgroundContext, filename)

	expected := fmt.Sprintf(`A Markdown article saved as '%s' containing:
- Briefing-style introduction
- Thematic sections with descriptive headings
- Integrated examples and stakeholder perspectives
- Actionable recommendations and closing reflection
- Reference list for further reading`, filename)

	return crews.Task{
		ID:             TaskWriting,
		Description:    description,
		ExpectedOutput: expected,
		DependsOn:      []string{TaskResearch},
	}
}

// NewCrew assembles the sequential two-agent crew for a topic. Tasks
// are pinned to their agents so the writer never picks up research.
// filename is where the writer is told to save the article.
func NewCrew(researcher, writer crews.Agent, topic, filename string, verbose bool, logger *zap.Logger) *crews.Crew {
	crew := crews.NewCrew(crews.CrewConfig{
		Name:    "article-crew",
		Process: crews.ProcessSequential,
		Verbose: verbose,
	}, logger)

	crew.AddMember(researcher)
	crew.AddMember(writer)

	research := NewResearchTask(topic)
	research.AssignedTo = researcher.ID()
	crew.AddTask(research)

	writing := NewWritingTask(topic, filename)
	writing.AssignedTo = writer.ID()
	crew.AddTask(writing)

	return crew
}
