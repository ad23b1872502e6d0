package analyzer

import (
	"fmt"
	"math"
	"sort"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/stats"
)

// DetectAnomalies flags days whose total deviates from the series baseline.
// The whole series is its own baseline. With fewer than params.MinDataPoints
// days the result is empty and marked InsufficientData.
func DetectAnomalies(days []activity.DailyTotal, params AnomalyParams) (AnomalyAnalysis, error) {
	if err := activity.ValidateDailyTotals(days); err != nil {
		return AnomalyAnalysis{}, err
	}

	result := AnomalyAnalysis{
		Anomalies:  []Anomaly{},
		DataPoints: len(days),
	}
	if len(days) < params.MinDataPoints {
		result.InsufficientData = true
		result.Explanation = fmt.Sprintf("Not enough data for anomaly detection: %d days supplied, at least %d required.",
			len(days), params.MinDataPoints)
		return result, nil
	}

	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = d.TotalSeconds
	}
	mean, stddev := stats.MeanStdDev(values)

	for _, d := range days {
		a, ok := scoreDay(d, mean, stddev, params)
		if ok {
			result.Anomalies = append(result.Anomalies, a)
		}
	}

	sort.SliceStable(result.Anomalies, func(i, j int) bool {
		return result.Anomalies[i].AnomalyScore > result.Anomalies[j].AnomalyScore
	})
	if params.MaxResults > 0 && len(result.Anomalies) > params.MaxResults {
		result.Anomalies = result.Anomalies[:params.MaxResults]
	}
	for i := range result.Anomalies {
		a := &result.Anomalies[i]
		a.AnomalyScore = stats.Round(a.AnomalyScore, 2)
		a.DeviationPercent = stats.Round(a.DeviationPercent, 2)
		a.ZScore = stats.Round(a.ZScore, 2)
	}

	result.BaselineMean = stats.Round(mean, 2)
	result.BaselineStddev = stats.Round(stddev, 2)
	if len(result.Anomalies) > 0 {
		result.Explanation = fmt.Sprintf("Found %d anomalous day(s) against a baseline of %.2f ± %.2f seconds.",
			len(result.Anomalies), result.BaselineMean, result.BaselineStddev)
	} else {
		result.Explanation = "No anomalous days found."
	}
	return result, nil
}

// scoreDay evaluates one day against the baseline. Scores are unrounded.
func scoreDay(d activity.DailyTotal, mean, stddev float64, params AnomalyParams) (Anomaly, bool) {
	a := Anomaly{Date: d.Date, TotalSeconds: d.TotalSeconds}

	if stddev == 0 {
		if d.TotalSeconds == mean {
			return a, false
		}
		a.IsAnomaly = true
		a.AnomalyScore = 1
		a.DeviationPercent = (d.TotalSeconds - mean) / math.Max(mean, 1) * 100
		a.Explanation = "Activity differs from an otherwise constant baseline."
		return a, true
	}

	z := (d.TotalSeconds - mean) / stddev
	if math.Abs(z) < params.ZScoreThreshold {
		return a, false
	}
	a.IsAnomaly = true
	a.ZScore = z
	a.AnomalyScore = anomalyScore(z, params.ScoreDivisor)
	a.DeviationPercent = (d.TotalSeconds - mean) / mean * 100
	a.Explanation = fmt.Sprintf("Unusual activity: %.2f%% deviation (z-score %.2f).", a.DeviationPercent, z)
	return a, true
}

// anomalyScore maps |z| onto [0, 1], saturating at the divisor.
func anomalyScore(z, divisor float64) float64 {
	if divisor <= 0 {
		return 1
	}
	return math.Min(1, math.Abs(z)/divisor)
}
