package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/config"
	"github.com/blackwell-systems/focuslens/internal/insight"
	"github.com/blackwell-systems/focuslens/internal/output"
	"github.com/blackwell-systems/focuslens/internal/store"
)

var (
	insightsLimit     int
	insightsType      string
	insightsSinceLast bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights [timeline]",
	Short: "Summarize a timeline as ranked findings",
	Long: `Run every analysis over a timeline and turn the results into ranked
findings: focus quality, fragmented sessions, anomalous days, shifting
categories, weekly rhythm, and long breaks. Findings are scored by impact
and sorted from highest to lowest.

With --since-last, the focus average is also compared against the most
recent snapshot stored by 'focuslens track'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInsights,
}

func init() {
	insightsCmd.Flags().IntVar(&insightsLimit, "limit", 10, "Maximum number of insights to show")
	insightsCmd.Flags().StringVar(&insightsType, "type", "", "Filter by type (focus_insight, anomaly_summary, behavioral_trend)")
	insightsCmd.Flags().BoolVar(&insightsSinceLast, "since-last", false, "Compare against the latest tracked snapshot")
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(cmd *cobra.Command, args []string) error {
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
	ictx := &insight.Context{Report: report}
	if insightsSinceLast {
		ictx.PreviousFocusAverage = latestFocusAverage(cfg)
	}

	insights := insight.NewEngine().Run(ictx)
	if insightsType != "" {
		insights = filterInsights(insights, insightsType)
	}
	if insightsLimit > 0 && len(insights) > insightsLimit {
		insights = insights[:insightsLimit]
	}

	if flagJSON {
		if insights == nil {
			insights = []insight.Insight{}
		}
		return writeJSON(cmd.OutOrStdout(), insights)
	}
	renderInsights(cmd.OutOrStdout(), insights)
	return nil
}

// latestFocusAverage reads the focus average of the newest snapshot. A
// missing database or metric is not an error: there is simply no baseline.
func latestFocusAverage(cfg *config.Config) *float64 {
	if _, err := os.Stat(cfg.Storage.DBPath); err != nil {
		slog.Debug("no snapshot database", "path", cfg.Storage.DBPath)
		return nil
	}
	db, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		slog.Warn("opening database", "error", err)
		return nil
	}
	defer func() { _ = db.Close() }()

	snap, err := db.GetLatestSnapshot()
	if err != nil || snap == nil {
		return nil
	}
	metrics, err := db.GetAggregateMetrics(snap.ID)
	if err != nil {
		slog.Warn("loading snapshot metrics", "snapshot", snap.ID, "error", err)
		return nil
	}
	for _, m := range metrics {
		if m.MetricName == metricFocusAverage {
			v := m.MetricValue
			return &v
		}
	}
	return nil
}

func filterInsights(insights []insight.Insight, typ string) []insight.Insight {
	var filtered []insight.Insight
	for _, in := range insights {
		if in.Type == typ {
			filtered = append(filtered, in)
		}
	}
	return filtered
}

func renderInsights(w io.Writer, insights []insight.Insight) {
	fmt.Fprintln(w, output.Section("Insights"))
	fmt.Fprintln(w)

	if len(insights) == 0 {
		fmt.Fprintln(w, " Nothing stands out in this timeline.")
		return
	}

	for i, in := range insights {
		fmt.Fprintf(w, " #%d %s %s\n", i+1, stylePriority(in.Priority), output.StyleBold.Render(in.Title))
		fmt.Fprintf(w, "    Impact: %.1f  |  Type: %s\n", in.ImpactScore, in.Type)
		fmt.Fprintf(w, "    %s\n\n", in.Summary)
	}
}

func priorityLabel(priority int) string {
	switch priority {
	case insight.PriorityCritical:
		return "[CRITICAL]"
	case insight.PriorityHigh:
		return "[HIGH]"
	case insight.PriorityMedium:
		return "[MEDIUM]"
	case insight.PriorityLow:
		return "[LOW]"
	default:
		return "[UNKNOWN]"
	}
}

func stylePriority(priority int) string {
	label := priorityLabel(priority)
	switch priority {
	case insight.PriorityCritical, insight.PriorityHigh:
		return output.StyleError.Render(label)
	case insight.PriorityMedium:
		return output.StyleWarning.Render(label)
	default:
		return output.StyleMuted.Render(label)
	}
}
