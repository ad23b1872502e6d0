package insight

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

func intPtr(v int) *int { return &v }

func sessions(scores ...int) []analyzer.SessionScore {
	out := make([]analyzer.SessionScore, len(scores))
	for i, s := range scores {
		out[i] = analyzer.SessionScore{FocusQualityScore: s}
	}
	return out
}

func focusReport(avg int, scores ...int) *analyzer.Report {
	return &analyzer.Report{Focus: analyzer.FocusAnalysis{
		DailyAverage:       intPtr(avg),
		SessionScores:      sessions(scores...),
		QualifyingSessions: len(scores),
		TotalSessions:      len(scores),
	}}
}

func TestEngineRun_NilContext(t *testing.T) {
	assert.Nil(t, NewEngine().Run(nil))
	assert.Nil(t, NewEngine().Run(&Context{}))
}

func TestEngineRun_EmptyReport(t *testing.T) {
	got := NewEngine().Run(&Context{Report: &analyzer.Report{
		Anomalies: analyzer.AnomalyAnalysis{InsufficientData: true},
		Trends:    analyzer.TrendAnalysis{InsufficientData: true},
	}})
	assert.Empty(t, got)
}

func TestEngineRun_RankedByImpact(t *testing.T) {
	report := focusReport(40, 20, 30, 90)
	report.Anomalies = analyzer.AnomalyAnalysis{
		DataPoints: 6,
		Anomalies:  []analyzer.Anomaly{{Date: "2026-03-07", DeviationPercent: 250}},
	}
	report.Trends = analyzer.TrendAnalysis{TrendingCategories: []analyzer.TrendingCategory{
		{Category: "coding", Trend: analyzer.TrendRising, SlopePerDay: 400},
	}}

	got := NewEngine().Run(&Context{Report: report})
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].ImpactScore, got[i].ImpactScore)
	}
	for _, in := range got {
		assert.NotEmpty(t, in.Title)
		assert.NotEmpty(t, in.Type)
	}
}

func TestRank_TieBreaksOnPriority(t *testing.T) {
	got := Rank([]Insight{
		{Title: "low", Priority: PriorityLow, ImpactScore: 1},
		{Title: "high", Priority: PriorityHigh, ImpactScore: 1},
		{Title: "big", Priority: PriorityLow, ImpactScore: 5},
	})
	assert.Equal(t, []string{"big", "high", "low"}, []string{got[0].Title, got[1].Title, got[2].Title})
}

func TestComputeImpact(t *testing.T) {
	assert.Equal(t, 6.0, ComputeImpact(3, 0.5, 4))
	assert.Equal(t, 12.0, ComputeImpact(3, 2, 4))
	assert.Equal(t, 0.0, ComputeImpact(0, 1, 4))
	assert.Equal(t, 0.0, ComputeImpact(3, 1, 0))
}

func TestFocusSummary_Priorities(t *testing.T) {
	tests := []struct {
		avg      int
		priority int
		title    string
	}{
		{avg: 85, priority: PriorityLow, title: "Focus quality"},
		{avg: 45, priority: PriorityHigh, title: "Low focus quality"},
		{avg: 20, priority: PriorityCritical, title: "Very low focus quality"},
	}
	for _, tt := range tests {
		got := FocusSummary(&Context{Report: focusReport(tt.avg, tt.avg, tt.avg)})
		require.Len(t, got, 1)
		assert.Equal(t, tt.priority, got[0].Priority, "avg %d", tt.avg)
		assert.Equal(t, tt.title, got[0].Title)
		assert.Equal(t, TypeFocusInsight, got[0].Type)
	}
}

func TestFocusSummary_CountsLowSessions(t *testing.T) {
	got := FocusSummary(&Context{Report: focusReport(60, 40, 80)})
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Summary, "1 scored below 50")
	assert.Equal(t, 5.0, got[0].ImpactScore)
}

func TestFocusSummary_NoAverage(t *testing.T) {
	assert.Empty(t, FocusSummary(&Context{Report: &analyzer.Report{}}))
}

func TestFocusDrop(t *testing.T) {
	prev := 80.0
	got := FocusDrop(&Context{Report: focusReport(65, 65), PreviousFocusAverage: &prev})
	require.Len(t, got, 1)
	assert.Equal(t, "Average focus score fell 15 points (80 -> 65).", got[0].Summary)

	assert.Empty(t, FocusDrop(&Context{Report: focusReport(75, 75), PreviousFocusAverage: &prev}))
	assert.Empty(t, FocusDrop(&Context{Report: focusReport(10, 10)}))
}

func TestDistractionLoad(t *testing.T) {
	report := &analyzer.Report{Focus: analyzer.FocusAnalysis{SessionScores: []analyzer.SessionScore{
		{DistractionCount: 6},
		{DistractionCount: 1},
		{DistractionCount: 0},
	}}}
	got := DistractionLoad(&Context{Report: report})
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Summary, "1 of 3 sessions")

	report.Focus.SessionScores[0].DistractionCount = 4
	assert.Empty(t, DistractionLoad(&Context{Report: report}))
}

func TestAnomalySummary(t *testing.T) {
	report := &analyzer.Report{Anomalies: analyzer.AnomalyAnalysis{
		DataPoints:     6,
		BaselineMean:   5400,
		BaselineStddev: 600,
		Anomalies: []analyzer.Anomaly{
			{Date: "2026-03-07", DeviationPercent: 60},
			{Date: "2026-03-08", DeviationPercent: -70},
		},
	}}
	got := AnomalySummary(&Context{Report: report})
	require.Len(t, got, 1)
	assert.Equal(t, "2 anomalous days", got[0].Title)
	assert.Equal(t, PriorityMedium, got[0].Priority)
	assert.Equal(t, "Unusual total activity on 2026-03-07 (+60%), 2026-03-08 (-70%). The baseline is 1h30m ± 10m per day.", got[0].Summary)

	report.Anomalies.Anomalies[0].DeviationPercent = 150
	got = AnomalySummary(&Context{Report: report})
	assert.Equal(t, PriorityHigh, got[0].Priority)
}

func TestAnomalySummary_Insufficient(t *testing.T) {
	report := &analyzer.Report{Anomalies: analyzer.AnomalyAnalysis{InsufficientData: true}}
	assert.Empty(t, AnomalySummary(&Context{Report: report}))
}

func TestBehavioralTrend(t *testing.T) {
	report := &analyzer.Report{Trends: analyzer.TrendAnalysis{TrendingCategories: []analyzer.TrendingCategory{
		{Category: "coding", Trend: analyzer.TrendRising, SlopePerDay: 300},
		{Category: "social", Trend: analyzer.TrendFalling, SlopePerDay: -150},
		{Category: "email", Trend: analyzer.TrendStable, SlopePerDay: 10},
	}}}
	got := BehavioralTrend(&Context{Report: report})
	require.Len(t, got, 1)
	assert.Equal(t, "Rising: coding (+300s/day). Falling: social (-150s/day).", got[0].Summary)
	assert.Equal(t, TypeBehavioralTrend, got[0].Type)
}

func TestBehavioralTrend_AllStable(t *testing.T) {
	report := &analyzer.Report{Trends: analyzer.TrendAnalysis{TrendingCategories: []analyzer.TrendingCategory{
		{Category: "email", Trend: analyzer.TrendStable},
	}}}
	assert.Empty(t, BehavioralTrend(&Context{Report: report}))
}

func TestWeeklyRhythm(t *testing.T) {
	report := &analyzer.Report{Trends: analyzer.TrendAnalysis{Seasonality: []analyzer.SeasonalityNote{
		{Weekday: "Monday", Direction: "above", Pattern: "Mondays run above average."},
	}}}
	got := WeeklyRhythm(&Context{Report: report})
	require.Len(t, got, 1)
	assert.Equal(t, "Mondays run above average.", got[0].Summary)
}

func TestIdleBreaks(t *testing.T) {
	start := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	report := &analyzer.Report{IdlePatterns: []analyzer.IdlePattern{
		{Timestamp: start, DurationSeconds: 900},
		{Timestamp: start.Add(2 * time.Hour), DurationSeconds: 3600},
	}}
	got := IdleBreaks(&Context{Report: report})
	require.Len(t, got, 1)
	assert.Equal(t, "2 idle stretches totalling 1h15m; the longest began 2026-03-02 15:00 and lasted 1h.", got[0].Summary)
}

func TestHours(t *testing.T) {
	assert.Equal(t, "0m", hours(0))
	assert.Equal(t, "10m", hours(600))
	assert.Equal(t, "1h", hours(3600))
	assert.Equal(t, "1h30m", hours(5400))
}
