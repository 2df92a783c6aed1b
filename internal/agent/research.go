package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pydevup/research-email-multi-agent-system/internal/search"
)

// ResearchAgentName identifies the research agent.
const ResearchAgentName = "research_agent"

const researchSystemPrompt = `You are an expert research assistant with the ability to search the web, summarize research findings, and create email drafts. Your primary goal is to help users find relevant information and communicate findings effectively.

Your capabilities:
1. **Web Search**: Use web search to find current, relevant information on any topic
2. **Research Summarization**: Create comprehensive summaries of search results
3. **Email Creation**: Create professional email drafts through Gmail when requested

**IMPORTANT WORKFLOW:**
- When conducting research, FIRST use the search_web tool to gather information
- Store the search results from search_web - you MUST pass these results to summarize_research
- THEN use the summarize_research tool with the search results to create a summary
- The summarize_research tool REQUIRES search_results parameter from a previous search_web call
- You CANNOT call summarize_research without first calling search_web and passing the results

When conducting research:
- Use specific, targeted search queries
- Analyze search results for relevance and credibility
- Pass search results to the summarize_research tool for comprehensive summaries
- Synthesize information from multiple sources
- Provide clear, well-organized summaries
- Include source URLs for reference
- If results are marked as coming from the "mock" source, tell the user the
  live search service was unavailable and the findings are placeholders

When creating emails:
- Use research findings to create informed, professional content
- Adapt tone and detail level to the intended recipient
- Include relevant sources and citations when appropriate
- Ensure emails are clear, concise, and actionable

Always strive to provide accurate, helpful, and actionable information.`

type searcher interface {
	Search(ctx context.Context, query string, maxResults int) (*search.Response, error)
}

// EmailAgentFactory builds a fresh email agent runner for one delegation.
type EmailAgentFactory func(deps EmailDeps) *Runner

// NewResearchAgent assembles the research agent. Delegation constructs a
// fresh email agent from the research agent's own credentials and session and
// runs it synchronously; the research agent's turn does not complete until
// the nested run finishes.
func NewResearchAgent(client LLMClient, model string, deps ResearchDeps, s searcher, newEmailAgent EmailAgentFactory, log *zap.Logger) *Runner {
	if deps.SessionID != "" {
		log = log.With(zap.String("session_id", deps.SessionID))
	}

	delegate := func(ctx context.Context, prompt string) DelegationResponse {
		runner := newEmailAgent(deps.EmailDeps())

		result, err := runner.Run(ctx, prompt, nil)
		if err != nil {
			log.Error("delegation to email agent failed", zap.Error(err))
			return DelegationResponse{
				Success:       false,
				AgentResponse: "Delegation failed: " + err.Error(),
				TargetAgent:   EmailAgentName,
			}
		}

		return DelegationResponse{
			Success:       true,
			AgentResponse: result.Output,
			TargetAgent:   EmailAgentName,
		}
	}

	tools := []ToolDef{
		{
			Name:        "search_web",
			Description: "Search the web for current information on a topic",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":       map[string]any{"type": "string", "description": "Search query"},
					"max_results": map[string]any{"type": "integer", "description": "Maximum number of results to return (1-20)"},
				},
				"required": []string{"query"},
			},
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Query      string `json:"query"`
					MaxResults int    `json:"max_results"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}

				resp, err := s.Search(ctx, in.Query, in.MaxResults)
				if err != nil {
					log.Error("web search failed", zap.Error(err))
					return []map[string]any{{"error": "Search failed: " + err.Error()}}, nil
				}

				log.Info("search_web completed",
					zap.Int("result_count", len(resp.Results)),
					zap.String("source", string(resp.Source)))

				return resp, nil
			},
		},
		{
			Name:        "summarize_research",
			Description: "Create a comprehensive summary of research findings. Requires search results from a previous search_web call.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"topic":          map[string]any{"type": "string", "description": "Main research topic"},
					"search_results": map[string]any{"type": "array", "items": map[string]any{"type": "object"}, "description": "Search results from the search_web tool"},
					"focus_areas":    map[string]any{"type": "string", "description": "Optional specific areas to focus on"},
				},
				"required": []string{"topic"},
			},
			Handler: func(_ context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Topic         string           `json:"topic"`
					SearchResults []map[string]any `json:"search_results"`
					FocusAreas    string           `json:"focus_areas"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}
				return SummarizeResearch(in.Topic, in.SearchResults, in.FocusAreas), nil
			},
		},
		{
			Name:        "delegate_to_email_agent",
			Description: "Delegate a task to the email agent",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"prompt":  map[string]any{"type": "string", "description": "Prompt for the email agent"},
					"context": map[string]any{"type": "object", "description": "Optional additional context"},
				},
				"required": []string{"prompt"},
			},
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					Prompt string `json:"prompt"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}
				return delegate(ctx, in.Prompt), nil
			},
		},
		{
			Name:        "create_email_draft",
			Description: "Create an email draft based on research context using the email agent",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"recipient_email":  map[string]any{"type": "string", "description": "Email address of the recipient"},
					"subject":          map[string]any{"type": "string", "description": "Email subject line"},
					"context":          map[string]any{"type": "string", "description": "Context or purpose for the email"},
					"research_summary": map[string]any{"type": "string", "description": "Optional research findings to include"},
				},
				"required": []string{"recipient_email", "subject", "context"},
			},
			Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
				var in struct {
					RecipientEmail  string `json:"recipient_email"`
					Subject         string `json:"subject"`
					Context         string `json:"context"`
					ResearchSummary string `json:"research_summary"`
				}
				if err := json.Unmarshal(args, &in); err != nil {
					return nil, fmt.Errorf("invalid arguments: %w", err)
				}

				prompt := draftPrompt(in.RecipientEmail, in.Subject, in.Context, in.ResearchSummary)
				resp := delegate(ctx, prompt)

				if resp.Success {
					return map[string]any{
						"success":        true,
						"agent_response": resp.AgentResponse,
						"recipient":      in.RecipientEmail,
						"subject":        in.Subject,
						"context":        in.Context,
					}, nil
				}
				return map[string]any{
					"success":   false,
					"error":     resp.AgentResponse,
					"recipient": in.RecipientEmail,
					"subject":   in.Subject,
				}, nil
			},
		},
	}

	return NewRunner(ResearchAgentName, client, model, researchSystemPrompt, tools, log)
}

// SummaryResult is the payload of the summarize_research tool.
type SummaryResult struct {
	Summary      string   `json:"summary"`
	Topic        string   `json:"topic,omitempty"`
	SourcesCount int      `json:"sources_count,omitempty"`
	KeyPoints    []string `json:"key_points"`
	Sources      []string `json:"sources,omitempty"`
}

// SummarizeResearch builds a summary from prior search results. Called
// without results it returns an explicit error payload so the model can
// self-correct by searching first.
func SummarizeResearch(topic string, results []map[string]any, focusAreas string) SummaryResult {
	if results == nil {
		return SummaryResult{
			Summary:   "ERROR: No search results provided. You must first call search_web to get results, then pass those results to summarize_research.",
			KeyPoints: []string{},
			Sources:   []string{},
		}
	}

	if len(results) == 0 {
		return SummaryResult{
			Summary:   "No search results provided for summarization.",
			KeyPoints: []string{},
			Sources:   []string{},
		}
	}

	if len(results) == 1 {
		if errMsg, ok := results[0]["error"].(string); ok {
			return SummaryResult{
				Summary:   "Unable to summarize research due to search error: " + errMsg,
				KeyPoints: []string{},
				Sources:   []string{},
			}
		}
	}

	var sources, descriptions []string
	for _, r := range results {
		if _, hasErr := r["error"]; hasErr {
			continue
		}

		title, hasTitle := r["title"].(string)
		url, hasURL := r["url"].(string)
		if !hasTitle || !hasURL {
			continue
		}

		sources = append(sources, fmt.Sprintf("- %s: %s", title, url))
		if content, ok := r["content"].(string); ok {
			descriptions = append(descriptions, content)
		}
	}

	if len(sources) == 0 {
		return SummaryResult{
			Summary:   "No valid search results available for summarization.",
			KeyPoints: []string{},
			Sources:   []string{},
		}
	}

	if len(descriptions) > 5 {
		descriptions = descriptions[:5]
	}
	if len(sources) > 10 {
		sources = sources[:10]
	}

	focusText := ""
	if focusAreas != "" {
		focusText = "\nSpecific focus areas: " + focusAreas
	}

	summary := fmt.Sprintf(`Research Summary: %s%s

Key Findings:
%s

Sources:
%s`, topic, focusText, strings.Join(descriptions, "\n"), strings.Join(sources, "\n"))

	return SummaryResult{
		Summary:      summary,
		Topic:        topic,
		SourcesCount: len(sources),
		KeyPoints:    descriptions,
	}
}

func draftPrompt(recipient, subject, context, researchSummary string) string {
	if researchSummary != "" {
		return fmt.Sprintf(`Create a professional email to %s with the subject "%s".

Context: %s

Research Summary:
%s

Please create a well-structured email that:
1. Has an appropriate greeting
2. Provides clear context
3. Summarizes the key research findings professionally
4. Includes actionable next steps if appropriate
5. Ends with a professional closing

The email should be informative but concise, and maintain a professional yet friendly tone.`, recipient, subject, context, researchSummary)
	}

	return fmt.Sprintf(`Create a professional email to %s with the subject "%s".

Context: %s

Please create a well-structured email that addresses the context provided.`, recipient, subject, context)
}
