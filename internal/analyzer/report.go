package analyzer

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/focuslens/internal/activity"
)

// Options bundles the parameters of every analysis run over one timeline.
type Options struct {
	TimeZone string
	Sessions SessionParams
	Focus    FocusParams
	Anomaly  AnomalyParams
	Trends   TrendParams
	Idle     IdleParams
}

// DefaultOptions returns the built-in parameters in UTC.
func DefaultOptions() Options {
	return Options{
		TimeZone: "UTC",
		Sessions: DefaultSessionParams(),
		Focus:    DefaultFocusParams(),
		Anomaly:  DefaultAnomalyParams(),
		Trends:   DefaultTrendParams(),
		Idle:     DefaultIdleParams(),
	}
}

// Report is the combined result of all timeline analyses.
type Report struct {
	TimeZone     string                `json:"time_zone"`
	EventCount   int                   `json:"event_count"`
	DailyTotals  []activity.DailyTotal `json:"daily_totals"`
	Focus        FocusAnalysis         `json:"focus"`
	Anomalies    AnomalyAnalysis       `json:"anomalies"`
	Trends       TrendAnalysis         `json:"trends"`
	IdlePatterns []IdlePattern         `json:"idle_patterns"`
}

// BuildReport validates events once, aggregates them into local days, and
// runs the focus, anomaly, trend and idle analyses concurrently. The analyses
// share only read-only inputs.
func BuildReport(ctx context.Context, events []activity.Event, opts Options) (*Report, error) {
	if err := activity.ValidateEvents(events); err != nil {
		return nil, err
	}
	loc, err := activity.LoadLocation(opts.TimeZone)
	if err != nil {
		return nil, err
	}
	series := activity.AggregateDaily(events, loc)

	report := &Report{
		TimeZone:    loc.String(),
		EventCount:  len(events),
		DailyTotals: series.Totals,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		focus, err := AnalyzeFocus(events, opts.TimeZone, opts.Sessions, opts.Focus)
		if err != nil {
			return fmt.Errorf("focus: %w", err)
		}
		report.Focus = focus
		return nil
	})
	g.Go(func() error {
		anomalies, err := DetectAnomalies(series.Totals, opts.Anomaly)
		if err != nil {
			return fmt.Errorf("anomalies: %w", err)
		}
		report.Anomalies = anomalies
		return nil
	})
	g.Go(func() error {
		trends, err := AnalyzeTrends(series.Categories, len(series.Categories), opts.Trends)
		if err != nil {
			return fmt.Errorf("trends: %w", err)
		}
		report.Trends = trends
		return nil
	})
	g.Go(func() error {
		idle, err := DetectIdlePatterns(events, opts.Idle)
		if err != nil {
			return fmt.Errorf("idle patterns: %w", err)
		}
		report.IdlePatterns = idle
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return report, nil
}
