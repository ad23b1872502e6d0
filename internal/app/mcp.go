package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/mcp"
)

var mcpRules string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the analyses over MCP stdio",
	Long: `Start a Model Context Protocol stdio server. Every tool takes its
activity data in the call arguments; nothing is read from disk except the
config and the optional community rules file.

  score_focus           Session focus scores and daily averages
  detect_anomalies      Anomalous days from events or daily totals
  analyze_trends        Rising/falling categories and weekday seasonality
  categorize_event      Category, confidence, and rationale for one event
  match_community_rule  First matching community glob rule
  detect_idle_patterns  AFK stretches longer than the idle threshold
  focus_report          All of the above over one timeline

Example MCP client configuration:
  {"mcpServers":{"focuslens":{"command":"focuslens","args":["mcp"]}}}`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpRules, "rules", "", "JSON file of community rules (default: rules_file from config)")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rulesPath := mcpRules
	if rulesPath == "" {
		rulesPath = cfg.RulesFile
	}
	rules, err := loadRules(rulesPath)
	if err != nil {
		return err
	}

	srv, err := mcp.NewServer(cfg, rules, appVersion)
	if err != nil {
		return fmt.Errorf("starting MCP server: %w", err)
	}
	slog.Debug("mcp server ready", "rules", rules.Len())
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
