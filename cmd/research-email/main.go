// Command research-email runs the research and email multi-agent system:
// an interactive chat console, one-shot research and email commands, and an
// MCP server exposing the tool layer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pydevup/research-email-multi-agent-system/internal/config"
	"github.com/pydevup/research-email-multi-agent-system/internal/logging"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
)

var (
	cfgFile string
	showVer bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "research-email",
	Short: "Research email multi-agent system",
	Long: `A multi-agent system pairing a web research agent with a Gmail
email agent. The research agent searches the web and summarizes findings;
the email agent validates recipients and creates Gmail drafts. The research
agent can delegate email work as if it were a tool.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("config load failed: %w", err)
		}

		logging.Init(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		if showVer {
			fmt.Printf("research-email %s (built %s)\n", Version, BuildDate)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().BoolVarP(&showVer, "version", "v", false, "show version")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(emailCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(agentsCmd)
}

func main() {
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
