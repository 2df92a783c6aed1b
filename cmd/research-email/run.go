package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var researchCmd = &cobra.Command{
	Use:   "research <query>",
	Short: "Perform a one-shot research query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Researching: %s\n\n", args[0])
		return runOneShot("Research: " + args[0])
	},
}

var emailResearchQuery string

var emailCmd = &cobra.Command{
	Use:   "email <recipient> <subject> <context>",
	Short: "Create an email draft, optionally backed by research",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		recipient, subject, emailContext := args[0], args[1], args[2]

		var prompt string
		if emailResearchQuery != "" {
			prompt = fmt.Sprintf(`Create an email to %s with subject "%s".

Context: %s

Please research: %s

Then create a professional email draft based on the research findings.`,
				recipient, subject, emailContext, emailResearchQuery)
		} else {
			prompt = fmt.Sprintf(`Create an email to %s with subject "%s".

Context: %s`, recipient, subject, emailContext)
		}

		fmt.Printf("Creating email draft for %s\n\n", recipient)
		return runOneShot(prompt)
	},
}

func init() {
	emailCmd.Flags().StringVar(&emailResearchQuery, "research", "", "research this query before drafting")
}

func runOneShot(prompt string) error {
	if !cfg.ValidateLLM() {
		return fmt.Errorf("LLM configuration validation failed, check your .env file")
	}

	researcher := newResearchAgent(cfg, uuid.NewString())

	// The final answer is already streamed through renderEvent.
	inText := false
	_, err := researcher.Run(context.Background(), prompt, renderEvent(&inText))
	return err
}
