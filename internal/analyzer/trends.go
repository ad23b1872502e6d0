package analyzer

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/stats"
)

// AnalyzeTrends fits a least-squares line per category over day index and
// classifies its direction, then looks for weekdays that deviate from the
// overall daily average. days must be in chronological order; a category
// missing from a day counts as zero for that day. window is recorded on the
// result but does not change the fit.
func AnalyzeTrends(days []activity.CategoryDailyTotal, window int, params TrendParams) (TrendAnalysis, error) {
	if err := activity.ValidateCategoryDailyTotals(days); err != nil {
		return TrendAnalysis{}, err
	}

	result := TrendAnalysis{
		TrendingCategories: []TrendingCategory{},
		Seasonality:        []SeasonalityNote{},
		Days:               len(days),
		Window:             window,
	}
	if len(days) < 2 {
		result.InsufficientData = true
		result.Summary = fmt.Sprintf("Not enough data for trend analysis: %d day(s) supplied, at least 2 required.", len(days))
		return result, nil
	}

	type fitted struct {
		TrendingCategory
		raw float64
	}
	var fits []fitted
	for _, name := range activity.CategoryNames(days) {
		points := make([]stats.Point, len(days))
		for i, d := range days {
			points[i] = stats.Point{X: float64(i), Y: d.Categories[name]}
		}
		line := stats.LinearRegression(points)
		slope := line.At(1) - line.At(0)
		fits = append(fits, fitted{
			TrendingCategory: TrendingCategory{
				Category:    name,
				Trend:       classifyTrend(slope, params),
				SlopePerDay: stats.Round(slope, 2),
			},
			raw: slope,
		})
	}

	sort.SliceStable(fits, func(i, j int) bool {
		return math.Abs(fits[i].raw) > math.Abs(fits[j].raw)
	})
	if params.MaxCategories > 0 && len(fits) > params.MaxCategories {
		fits = fits[:params.MaxCategories]
	}
	for _, f := range fits {
		result.TrendingCategories = append(result.TrendingCategories, f.TrendingCategory)
	}

	if len(days) > params.SeasonalityMinDays {
		result.Seasonality = detectSeasonality(days, params)
	}
	result.Summary = trendSummary(result)
	return result, nil
}

func classifyTrend(slope float64, params TrendParams) TrendDirection {
	switch {
	case slope > params.RisingSlope:
		return TrendRising
	case slope < params.FallingSlope:
		return TrendFalling
	default:
		return TrendStable
	}
}

// detectSeasonality compares each weekday's mean daily total against the
// mean over all days. Weekdays come from the calendar date itself.
func detectSeasonality(days []activity.CategoryDailyTotal, params TrendParams) []SeasonalityNote {
	var byWeekday [7][]float64
	totals := make([]float64, 0, len(days))
	for _, d := range days {
		date, err := time.Parse(activity.DateLayout, d.Date)
		if err != nil {
			continue
		}
		total := d.Total()
		totals = append(totals, total)
		byWeekday[date.Weekday()] = append(byWeekday[date.Weekday()], total)
	}
	overall := stats.Mean(totals)

	notes := []SeasonalityNote{}
	for wd, values := range byWeekday {
		if len(values) < params.SeasonalityMinObservations {
			continue
		}
		mean, stddev := stats.MeanStdDev(values)
		if stddev == 0 {
			continue
		}
		name := time.Weekday(wd).String()
		switch {
		case mean > overall*(1+params.SeasonalityBand):
			notes = append(notes, SeasonalityNote{
				Period:    "weekly",
				Weekday:   name,
				Direction: "above",
				Pattern:   name + "s show above-average activity",
			})
		case mean < overall*(1-params.SeasonalityBand):
			notes = append(notes, SeasonalityNote{
				Period:    "weekly",
				Weekday:   name,
				Direction: "below",
				Pattern:   name + "s show below-average activity",
			})
		}
	}
	return notes
}

func trendSummary(r TrendAnalysis) string {
	var rising, falling int
	for _, c := range r.TrendingCategories {
		switch c.Trend {
		case TrendRising:
			rising++
		case TrendFalling:
			falling++
		}
	}
	return fmt.Sprintf("%d categories over %d days: %d rising, %d falling, %d weekly pattern(s).",
		len(r.TrendingCategories), r.Days, rising, falling, len(r.Seasonality))
}
