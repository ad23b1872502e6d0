package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/output"
)

var reportCmd = &cobra.Command{
	Use:   "report [timeline]",
	Short: "Run every analysis over one timeline",
	Long: `Load a timeline once and run the focus, anomaly, trend, and idle
analyses over it concurrently, then print all results together.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := timelinePath(cfg, args)
	if err != nil {
		return err
	}
	events, err := loadTimeline(path)
	if err != nil {
		return err
	}

	report, err := analyzer.BuildReport(cmd.Context(), events, cfg.AnalyzerOptions())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		return writeJSON(w, report)
	}

	fmt.Fprintf(w, " %s %d events over %d days (%s)\n",
		output.StyleBold.Render("Timeline"), report.EventCount, len(report.DailyTotals), report.TimeZone)
	renderFocus(w, report.Focus)
	renderAnomalies(w, report.Anomalies)
	renderTrends(w, report.Trends)
	renderIdle(w, report.IdlePatterns)
	return nil
}
