// Package tool exposes the research and email capabilities over MCP so other
// MCP-capable hosts can call them directly.
package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer creates an MCP server with the web search and Gmail tools.
func NewServer(search searchSvc, drafts draftSvc) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "research-email-agent", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "web_search",
		Description: "Search the web for current information on a topic",
	}, NewWebSearch(search).WebSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_emails",
		Description: "Validate email addresses and flag suspicious domains",
	}, NewValidateEmails().ValidateEmails)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_gmail_draft",
		Description: "Create a Gmail draft after validating all recipients",
	}, NewCreateDraft(drafts).CreateDraft)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "suggest_email_improvements",
		Description: "Suggest improvements for email content",
	}, NewSuggestImprovements().SuggestImprovements)

	return server
}
