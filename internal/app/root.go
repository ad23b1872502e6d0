// Package app contains the Cobra command tree for focuslens.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
	flagZone    string
)

var rootCmd = &cobra.Command{
	Use:   "focuslens",
	Short: "Focus, anomaly, and trend analytics for device activity timelines",
	Long: `focuslens reads a timeline of foreground-application events and derives
behavioral signals from it: per-session focus quality scores, anomalous days,
rising and falling categories, weekday seasonality, categorization of apps and
titles, and idle stretches.

Timelines are JSON arrays or JSONL files, optionally zstd-compressed (.zst).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupEnvironment,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "focuslens", appVersion)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Use a subcommand:")
		fmt.Fprintln(w, "  focus       Score sessions for focus quality")
		fmt.Fprintln(w, "  anomalies   Flag days with unusual total activity")
		fmt.Fprintln(w, "  trends      Show rising and falling categories")
		fmt.Fprintln(w, "  categorize  Categorize events by keywords and community rules")
		fmt.Fprintln(w, "  report      Run every analysis over one timeline")
		fmt.Fprintln(w, "  insights    Summarize a timeline as ranked findings")
		fmt.Fprintln(w, "  track       Snapshot results and compare over time")
		fmt.Fprintln(w, "  watch       Re-analyze a timeline as it changes")
		fmt.Fprintln(w, "  mcp         Serve the analyses over MCP stdio")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupEnvironment installs the stderr logger and decides on color before
// any command runs.
func setupEnvironment(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if flagNoColor || !output.ColorEnabled(os.Stdout) {
		output.SetNoColor(true)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/focuslens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagZone, "tz", "", "IANA time zone for local hours and days (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging on stderr")
}
