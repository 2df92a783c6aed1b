package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Validate system configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Validating system configuration")
		fmt.Println()

		checks := []struct {
			name  string
			valid bool
		}{
			{"LLM Configuration", cfg.ValidateLLM()},
			{"Tavily API", cfg.ValidateTavily()},
			{"Gmail API", cfg.ValidateGmail()},
		}

		allValid := true
		for _, check := range checks {
			status := "valid"
			if !check.valid {
				status = "invalid"
				allValid = false
			}
			fmt.Printf("%-20s %s\n", check.name, status)
		}

		if !allValid {
			return fmt.Errorf("one or more configuration checks failed")
		}
		return nil
	},
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Show available agents",
	Run: func(cmd *cobra.Command, args []string) {
		printAgentInfo()
	},
}
