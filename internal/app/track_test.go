package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/config"
	"github.com/blackwell-systems/focuslens/internal/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBuildAggregateMetrics(t *testing.T) {
	report, err := analyzer.BuildReport(context.Background(), sampleEvents(), analyzer.DefaultOptions())
	require.NoError(t, err)

	m := buildAggregateMetrics(report)
	assert.Equal(t, 100.0, m[metricFocusAverage])
	assert.Equal(t, 6.0, m[metricQualifyingSessions])
	assert.Equal(t, 7.0, m[metricTotalSessions])
	assert.Equal(t, 1.0, m[metricAnomalyDays])
	assert.Equal(t, 1.0, m[metricRisingCategories])
	assert.Equal(t, 0.0, m[metricFallingCategories])
	assert.Equal(t, 1.0, m[metricIdleStretches])
}

func TestBuildAggregateMetrics_NoFocusAverage(t *testing.T) {
	m := buildAggregateMetrics(&analyzer.Report{})
	_, ok := m[metricFocusAverage]
	assert.False(t, ok)
	assert.Equal(t, 0.0, m[metricTotalSessions])
}

func TestRecordSnapshot(t *testing.T) {
	db := openTestDB(t)
	cfg := config.Default()

	rec, err := recordSnapshot(context.Background(), db, cfg, "events.jsonl", sampleEvents(), false)
	require.NoError(t, err)
	require.NotNil(t, rec.Snapshot)
	assert.Equal(t, "track", rec.Snapshot.Command)
	assert.Equal(t, "events.jsonl", rec.Snapshot.Source)
	assert.Nil(t, rec.Archive)

	scores, err := db.GetFocusScores(rec.Snapshot.ID)
	require.NoError(t, err)
	assert.Len(t, scores, 6)

	anomalies, err := db.GetAnomalies(rec.Snapshot.ID)
	require.NoError(t, err)
	require.Len(t, anomalies, 1)
	assert.Equal(t, "2026-03-07", anomalies[0].Date)

	trends, err := db.GetCategoryTrends(rec.Snapshot.ID)
	require.NoError(t, err)
	require.NotEmpty(t, trends)
	assert.Equal(t, "coding", trends[0].Category)
}

func TestRecordSnapshot_Archive(t *testing.T) {
	db := openTestDB(t)
	cfg := config.Default()
	cfg.Storage.ArchiveDir = filepath.Join(t.TempDir(), "archive")

	rec, err := recordSnapshot(context.Background(), db, cfg, "events.jsonl", sampleEvents(), true)
	require.NoError(t, err)
	require.NotNil(t, rec.Archive)
	assert.Equal(t, len(sampleEvents()), rec.Archive.Events)
	assert.Positive(t, rec.Archive.Bytes)
	assert.FileExists(t, rec.Archive.Path)
}

func TestRecordSnapshot_InvalidTimeline(t *testing.T) {
	db := openTestDB(t)
	events := sampleEvents()
	events[0].DurationSeconds = -1

	_, err := recordSnapshot(context.Background(), db, config.Default(), "x", events, false)
	require.Error(t, err)

	latest, err := db.GetLatestSnapshot()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestLoadHistory(t *testing.T) {
	db := openTestDB(t)
	cfg := config.Default()
	for i := 0; i < 3; i++ {
		_, err := recordSnapshot(context.Background(), db, cfg, "events.jsonl", sampleEvents(), false)
		require.NoError(t, err)
	}

	hist, err := loadHistory(db, 2)
	require.NoError(t, err)
	require.Len(t, hist.Snapshots, 2)
	assert.Less(t, hist.Snapshots[0].ID, hist.Snapshots[1].ID)
	require.Len(t, hist.Metrics[metricQualifyingSessions], 2)
	assert.Equal(t, 6.0, hist.Metrics[metricQualifyingSessions][1].Value)

	var buf bytes.Buffer
	renderHistory(&buf, hist)
	assert.Contains(t, buf.String(), "Showing 2 most recent snapshots")
	assert.Contains(t, buf.String(), "Scored Sessions")
}

func TestRenderHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, &metricHistory{})
	assert.Contains(t, buf.String(), "No snapshots found")
}
