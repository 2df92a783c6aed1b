package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pydevup/research-email-multi-agent-system/internal/agent"
	"github.com/pydevup/research-email-multi-agent-system/internal/auth"
	"github.com/pydevup/research-email-multi-agent-system/internal/config"
	"github.com/pydevup/research-email-multi-agent-system/internal/gmail"
	"github.com/pydevup/research-email-multi-agent-system/internal/llm"
	"github.com/pydevup/research-email-multi-agent-system/internal/logging"
	"github.com/pydevup/research-email-multi-agent-system/internal/ratelimit"
	"github.com/pydevup/research-email-multi-agent-system/internal/search"
)

func newLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.NewLimiter(map[string]ratelimit.Rule{
		search.ServiceName: {
			MaxRequests: cfg.Search.MaxRequests,
			Window:      time.Duration(cfg.Search.WindowSeconds) * time.Second,
		},
	})
}

func newSearchClient(cfg *config.Config) *search.Client {
	return search.NewClient(cfg.Tavily.APIKey, newLimiter(cfg), logging.Named("search"))
}

func newDrafts(cfg *config.Config) *gmail.Drafts {
	authn := auth.NewAuthenticator(
		cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath, nil, logging.Named("auth"))
	return gmail.NewDrafts(authn, logging.Named("gmail"))
}

// newResearchAgent wires the full agent graph: LLM client, rate-limited
// search, and an email agent factory that authenticates against Gmail with
// the same credentials.
func newResearchAgent(cfg *config.Config, sessionID string) *agent.Runner {
	client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey)

	deps := agent.ResearchDeps{
		TavilyAPIKey:         cfg.Tavily.APIKey,
		GmailCredentialsPath: cfg.Gmail.CredentialsPath,
		GmailTokenPath:       cfg.Gmail.TokenPath,
		SessionID:            sessionID,
	}

	factory := func(ed agent.EmailDeps) *agent.Runner {
		authn := auth.NewAuthenticator(
			ed.GmailCredentialsPath, ed.GmailTokenPath, nil, logging.Named("auth"))
		drafts := gmail.NewDrafts(authn, logging.Named("gmail"))
		return agent.NewEmailAgent(client, cfg.LLM.Model, ed, authn, drafts, logging.Named("email-agent"))
	}

	return agent.NewResearchAgent(
		client, cfg.LLM.Model, deps, newSearchClient(cfg), factory, logging.Named("research-agent"))
}

// renderEvent prints agent events as they arrive: text deltas inline, tool
// activity as labeled lines.
func renderEvent(inText *bool) func(agent.Event) {
	return func(ev agent.Event) {
		switch e := ev.(type) {
		case agent.TextDeltaEvent:
			fmt.Print(e.Delta)
			*inText = true
		case agent.ToolCallStartedEvent:
			breakLine(inText)
			fmt.Printf("-> %s %s\n", e.Tool, compactJSON(e.Arguments))
		case agent.ToolCallResultEvent:
			breakLine(inText)
			fmt.Printf("<- %s: %s\n", e.Tool, truncate(e.Result, 400))
		case agent.RunEndedEvent:
			breakLine(inText)
		}
	}
}

func breakLine(inText *bool) {
	if *inText {
		fmt.Println()
		*inText = false
	}
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return truncate(string(raw), 200)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
