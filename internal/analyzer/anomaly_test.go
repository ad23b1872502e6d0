package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuslens/internal/activity"
)

func TestDetectAnomalies_Spike(t *testing.T) {
	days := dailyTotals("2026-01-01", 100, 102, 98, 101, 99, 500)

	result, err := DetectAnomalies(days, DefaultAnomalyParams())
	require.NoError(t, err)
	require.Len(t, result.Anomalies, 1)

	a := result.Anomalies[0]
	assert.Equal(t, "2026-01-06", a.Date)
	assert.True(t, a.IsAnomaly)
	assert.Equal(t, 200.0, a.DeviationPercent)
	assert.Equal(t, 2.24, a.ZScore)
	assert.Equal(t, 0.75, a.AnomalyScore)
	assert.NotEmpty(t, a.Explanation)

	assert.Equal(t, 166.67, result.BaselineMean)
	assert.Equal(t, 149.08, result.BaselineStddev)
	assert.Equal(t, 6, result.DataPoints)
	assert.False(t, result.InsufficientData)
}

func TestDetectAnomalies_InsufficientData(t *testing.T) {
	result, err := DetectAnomalies(dailyTotals("2026-01-01", 100, 200, 300), DefaultAnomalyParams())
	require.NoError(t, err)
	assert.Empty(t, result.Anomalies)
	assert.NotNil(t, result.Anomalies)
	assert.True(t, result.InsufficientData)
	assert.NotEmpty(t, result.Explanation)
}

func TestDetectAnomalies_ConstantSeries(t *testing.T) {
	result, err := DetectAnomalies(dailyTotals("2026-01-01", 60, 60, 60, 60, 60), DefaultAnomalyParams())
	require.NoError(t, err)
	assert.Empty(t, result.Anomalies)
	assert.Equal(t, 0.0, result.BaselineStddev)
	assert.Equal(t, "No anomalous days found.", result.Explanation)
}

func TestDetectAnomalies_SortedAndTruncated(t *testing.T) {
	values := make([]float64, 0, 22)
	values = append(values, 800)
	for i := 0; i < 20; i++ {
		values = append(values, 100)
	}
	values = append(values, 1000)
	days := dailyTotals("2026-01-01", values...)

	result, err := DetectAnomalies(days, DefaultAnomalyParams())
	require.NoError(t, err)
	require.Len(t, result.Anomalies, 2)
	assert.Equal(t, days[21].Date, result.Anomalies[0].Date)
	assert.Equal(t, days[0].Date, result.Anomalies[1].Date)
	assert.GreaterOrEqual(t, result.Anomalies[0].AnomalyScore, result.Anomalies[1].AnomalyScore)

	params := DefaultAnomalyParams()
	params.MaxResults = 1
	result, err = DetectAnomalies(days, params)
	require.NoError(t, err)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, days[21].Date, result.Anomalies[0].Date)
}

func TestDetectAnomalies_InvalidInput(t *testing.T) {
	days := dailyTotals("2026-01-01", 1, 2, 3, 4, 5)
	days[2].TotalSeconds = -10

	_, err := DetectAnomalies(days, DefaultAnomalyParams())
	assert.ErrorIs(t, err, activity.ErrInvalidInput)
}

func TestAnomalyScore_Saturates(t *testing.T) {
	assert.Equal(t, 1.0, anomalyScore(3, 3))
	assert.Equal(t, 1.0, anomalyScore(-3, 3))
	assert.Equal(t, 1.0, anomalyScore(7.5, 3))
	assert.InDelta(t, 2.0/3.0, anomalyScore(-2, 3), 1e-12)
}

func TestScoreDay_Symmetric(t *testing.T) {
	params := DefaultAnomalyParams()
	mean, sd := 100.0, 10.0

	high, ok := scoreDay(activity.DailyTotal{Date: "2026-01-01", TotalSeconds: mean + 3*sd}, mean, sd, params)
	require.True(t, ok)
	low, ok := scoreDay(activity.DailyTotal{Date: "2026-01-02", TotalSeconds: mean - 3*sd}, mean, sd, params)
	require.True(t, ok)

	assert.Equal(t, 1.0, high.AnomalyScore)
	assert.Equal(t, 1.0, low.AnomalyScore)
	assert.InDelta(t, 30.0, high.DeviationPercent, 1e-9)
	assert.InDelta(t, -30.0, low.DeviationPercent, 1e-9)
}

func TestScoreDay_ZeroVariance(t *testing.T) {
	params := DefaultAnomalyParams()

	_, ok := scoreDay(activity.DailyTotal{TotalSeconds: 100}, 100, 0, params)
	assert.False(t, ok)

	a, ok := scoreDay(activity.DailyTotal{TotalSeconds: 150}, 100, 0, params)
	require.True(t, ok)
	assert.Equal(t, 1.0, a.AnomalyScore)
	assert.Equal(t, 50.0, a.DeviationPercent)

	// The denominator never drops below 1.
	a, ok = scoreDay(activity.DailyTotal{TotalSeconds: 5}, 0, 0, params)
	require.True(t, ok)
	assert.Equal(t, 500.0, a.DeviationPercent)
}
