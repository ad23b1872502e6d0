package app

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

var focusCmd = &cobra.Command{
	Use:   "focus [timeline]",
	Short: "Score sessions for focus quality",
	Long: `Segment a timeline into sessions and score each qualifying session from
0 to 100. Context switches, passive input, distraction categories, and the
local time of day adjust the score. Sessions shorter than the minimum or
containing idle time are not scored.

Examples:
  focuslens focus events.jsonl
  focuslens focus events.jsonl.zst --tz Europe/Berlin --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFocus,
}

func init() {
	rootCmd.AddCommand(focusCmd)
}

func runFocus(cmd *cobra.Command, args []string) error {
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

	result, err := analyzer.AnalyzeFocus(events, cfg.TimeZone, cfg.Sessions, cfg.Focus)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	renderFocus(cmd.OutOrStdout(), result)
	return nil
}
