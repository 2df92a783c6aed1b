package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pydevup/research-email-multi-agent-system/internal/agent"
	"github.com/pydevup/research-email-multi-agent-system/internal/logging"
	"github.com/pydevup/research-email-multi-agent-system/internal/session"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with the research agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func init() {
	chatCmd.Flags().StringVar(&chatSessionID, "session", "", "session ID to resume (default: new session)")
}

func runChat() error {
	fmt.Println("Research Email Multi-Agent System")
	fmt.Println("Type 'quit' to exit, 'help' for commands")
	fmt.Println()

	if !cfg.ValidateLLM() {
		return fmt.Errorf("LLM configuration validation failed, check your .env file")
	}
	if !cfg.ValidateTavily() {
		fmt.Println("Warning: Tavily API configuration may be incomplete, search will use mock results.")
	}
	if !cfg.ValidateGmail() {
		fmt.Println("Warning: Gmail API configuration may be incomplete.")
	}

	sessionID := chatSessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	store, err := session.NewStore(cfg.Session.StorePath, logging.Named("session"))
	if err != nil {
		return fmt.Errorf("session store open failed: %w", err)
	}
	defer func() { _ = store.Close() }()

	researcher := newResearchAgent(cfg, sessionID)
	log := logging.Named("chat").With(zap.String("session_id", sessionID))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou> ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return nil
		case "help", "h":
			printChatHelp()
			continue
		case "history", "hist":
			printHistory(store, sessionID)
			continue
		case "agents", "agent":
			printAgentInfo()
			continue
		case "clear", "cls":
			if err := store.Clear(sessionID); err != nil {
				fmt.Println("Error clearing history:", err)
				continue
			}
			fmt.Println("Conversation history cleared.")
			continue
		}

		if err := store.Append(sessionID, session.Message{Role: "user", Content: input}); err != nil {
			log.Warn("history append failed", zap.Error(err))
		}

		inText := false
		result, err := researcher.Run(context.Background(), input, renderEvent(&inText))
		if err != nil {
			fmt.Println("Error:", err)
			if aerr := store.Append(sessionID, session.Message{
				Role:    "assistant",
				Content: "Error during agent execution: " + err.Error(),
			}); aerr != nil {
				log.Warn("history append failed", zap.Error(aerr))
			}
			continue
		}

		if err := store.Append(sessionID, session.Message{Role: "assistant", Content: result.Output}); err != nil {
			log.Warn("history append failed", zap.Error(err))
		}
	}
}

func printChatHelp() {
	fmt.Println(`Available commands:
  history  - show conversation history
  agents   - show available agents
  clear    - clear conversation history
  help     - show this help
  quit     - exit

Anything else is sent to the research agent. It can search the web,
summarize findings, and delegate email drafting to the email agent.`)
}

func printHistory(store *session.Store, sessionID string) {
	history, err := store.History(sessionID)
	if err != nil {
		fmt.Println("Error reading history:", err)
		return
	}
	if len(history) == 0 {
		fmt.Println("No conversation history yet.")
		return
	}

	fmt.Println("\nConversation history:")
	for _, msg := range history {
		fmt.Printf("[%s] %s: %s\n", msg.Timestamp.Format("15:04:05"), msg.Role, msg.Content)
	}
}

func printAgentInfo() {
	fmt.Printf("%-16s %-45s %s\n", "AGENT", "DESCRIPTION", "TOOLS")
	fmt.Printf("%-16s %-45s %d\n",
		agent.ResearchAgentName, "Searches the web, summarizes, delegates email work", 4)
	fmt.Printf("%-16s %-45s %d\n",
		agent.EmailAgentName, "Validates recipients and creates Gmail drafts", 4)
}
