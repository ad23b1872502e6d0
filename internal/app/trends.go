package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

var (
	trendsCategories string
	trendsWindow     int
)

var trendsCmd = &cobra.Command{
	Use:   "trends [timeline]",
	Short: "Show rising and falling categories",
	Long: `Fit a line through each category's daily active time and classify it as
rising, falling, or stable. With more than a week of data, weekdays whose
average sits well above or below the overall daily average are reported.

Pre-aggregated category totals can be supplied instead of a timeline:
  focuslens trends --categories days.json

where days.json is a JSON array of {"date": "YYYY-MM-DD", "categories": {"coding": N}}.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrends,
}

func init() {
	trendsCmd.Flags().StringVar(&trendsCategories, "categories", "", "JSON file of pre-aggregated per-category daily totals")
	trendsCmd.Flags().IntVar(&trendsWindow, "window", 0, "Only analyze the last N days (0 = all)")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var days []activity.CategoryDailyTotal
	if trendsCategories != "" {
		days, err = activity.LoadCategoryDailyTotals(trendsCategories)
		if err != nil {
			return fmt.Errorf("loading category totals: %w", err)
		}
	} else {
		series, err := dailySeries(cfg, args)
		if err != nil {
			return err
		}
		days = series.Categories
	}

	if trendsWindow > 0 && len(days) > trendsWindow {
		days = days[len(days)-trendsWindow:]
	}
	result, err := analyzer.AnalyzeTrends(days, len(days), cfg.Trends)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	renderTrends(cmd.OutOrStdout(), result)
	return nil
}
