package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

var anomaliesDaily string

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies [timeline]",
	Short: "Flag days with unusual total activity",
	Long: `Sum active time per local day and flag the days whose total deviates from
the mean by more than the z-score threshold. At least five days are needed
before anything is flagged.

Pre-aggregated totals can be supplied instead of a timeline:
  focuslens anomalies --daily totals.json

where totals.json is a JSON array of {"date": "YYYY-MM-DD", "total_seconds": N}.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnomalies,
}

func init() {
	anomaliesCmd.Flags().StringVar(&anomaliesDaily, "daily", "", "JSON file of pre-aggregated daily totals")
	rootCmd.AddCommand(anomaliesCmd)
}

func runAnomalies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var days []activity.DailyTotal
	if anomaliesDaily != "" {
		days, err = activity.LoadDailyTotals(anomaliesDaily)
		if err != nil {
			return fmt.Errorf("loading daily totals: %w", err)
		}
	} else {
		series, err := dailySeries(cfg, args)
		if err != nil {
			return err
		}
		days = series.Totals
	}

	result, err := analyzer.DetectAnomalies(days, cfg.Anomaly)
	if err != nil {
		return err
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), result)
	}
	renderAnomalies(cmd.OutOrStdout(), result)
	return nil
}
