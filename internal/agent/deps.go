package agent

// ResearchDeps is the immutable configuration bundle for one research agent
// run.
type ResearchDeps struct {
	TavilyAPIKey         string
	GmailCredentialsPath string
	GmailTokenPath       string
	SessionID            string
}

// EmailDeps is the immutable configuration bundle for one email agent run.
type EmailDeps struct {
	GmailCredentialsPath string
	GmailTokenPath       string
	SessionID            string
}

// EmailDeps derives email agent dependencies from the research agent's own
// credentials and session, for delegation.
func (d ResearchDeps) EmailDeps() EmailDeps {
	return EmailDeps{
		GmailCredentialsPath: d.GmailCredentialsPath,
		GmailTokenPath:       d.GmailTokenPath,
		SessionID:            d.SessionID,
	}
}

// DelegationResponse is produced exactly once per delegation call.
type DelegationResponse struct {
	Success       bool   `json:"success"`
	AgentResponse string `json:"agent_response"`
	TargetAgent   string `json:"target_agent"`
}
