package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/insight"
	"github.com/blackwell-systems/focuslens/internal/watcher"
)

// testEnv is a temp dir with a config file that keeps the database and
// archives inside it.
type testEnv struct {
	dir    string
	config string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	cfg := "output:\n  color: false\n" +
		"storage:\n  db_path: " + filepath.Join(dir, "focuslens.db") + "\n" +
		"  archive_dir: " + filepath.Join(dir, "archive") + "\n"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return testEnv{dir: dir, config: path}
}

// sampleEvents is six days of morning coding with a spike on the last day
// and one long idle stretch.
func sampleEvents() []activity.Event {
	day := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	var events []activity.Event
	for i := 0; i < 6; i++ {
		seconds := 600.0
		if i == 5 {
			seconds = 5000
		}
		start := day.AddDate(0, 0, i)
		events = append(events, activity.Event{
			ID:              "e" + string(rune('0'+i)),
			TimestampStart:  start,
			TimestampEnd:    start.Add(time.Duration(seconds) * time.Second),
			DurationSeconds: seconds,
			App:             "code.exe",
			Title:           "fixing a bug",
			Category:        "coding",
			InputFrequency:  0.5,
		})
	}
	idle := day.Add(3 * time.Hour)
	events = append(events, activity.Event{
		ID:              "afk",
		TimestampStart:  idle,
		TimestampEnd:    idle.Add(15 * time.Minute),
		DurationSeconds: 900,
		App:             "idle",
		IsAFK:           true,
	})
	return events
}

func (e testEnv) writeTimeline(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, ev := range sampleEvents() {
		require.NoError(t, enc.Encode(ev))
	}
	path := filepath.Join(e.dir, "events.jsonl")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func resetFlags() {
	flagNoColor, flagJSON, flagVerbose = false, false, false
	flagConfig, flagZone = "", ""
	anomaliesDaily = ""
	trendsCategories, trendsWindow = "", 0
	categorizeRules, categorizeApp, categorizeTitle, categorizeURL = "", "", "", ""
	trackCompare, trackHistory, trackArchive = 1, 0, false
	insightsLimit, insightsType, insightsSinceLast = 10, "", false
	watchDaemon, watchStop, watchQuiet = false, false, false
	watchInterval, watchDebounce = 0, 0
}

// execute runs the root command with args and returns its stdout.
func (e testEnv) execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--config", e.config))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_Registered(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"focus", "anomalies", "trends", "categorize", "report", "insights", "track", "watch", "mcp"} {
		assert.Contains(t, names, want)
	}
}

func TestFocusCommand_JSON(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.execute(t, "focus", env.writeTimeline(t), "--json")
	require.NoError(t, err)

	var result analyzer.FocusAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	require.NotNil(t, result.DailyAverage)
	assert.Equal(t, 100, *result.DailyAverage)
	assert.Equal(t, 6, result.QualifyingSessions)
}

func TestFocusCommand_ZoneOverride(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.execute(t, "focus", env.writeTimeline(t), "--json", "--tz", "Asia/Tokyo")
	require.NoError(t, err)

	var result analyzer.FocusAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, "Asia/Tokyo", result.TimeZone)

	_, err = env.execute(t, "focus", env.writeTimeline(t), "--tz", "Nowhere/Land")
	assert.ErrorIs(t, err, activity.ErrInvalidInput)
}

func TestFocusCommand_NoTimeline(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.execute(t, "focus")
	assert.ErrorContains(t, err, "no timeline given")
}

func TestAnomaliesCommand_Daily(t *testing.T) {
	env := newTestEnv(t)
	daily := filepath.Join(env.dir, "daily.json")
	require.NoError(t, os.WriteFile(daily, []byte(`[
		{"date":"2026-01-01","total_seconds":100},
		{"date":"2026-01-02","total_seconds":102},
		{"date":"2026-01-03","total_seconds":98},
		{"date":"2026-01-04","total_seconds":101},
		{"date":"2026-01-05","total_seconds":99},
		{"date":"2026-01-06","total_seconds":500}]`), 0o644))

	out, err := env.execute(t, "anomalies", "--daily", daily)
	require.NoError(t, err)
	assert.Contains(t, out, "Anomalous Days")
	assert.Contains(t, out, "2026-01-06")
	assert.Contains(t, out, "+200%")
}

func TestAnomaliesCommand_FromTimeline(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.execute(t, "anomalies", env.writeTimeline(t), "--json")
	require.NoError(t, err)

	var result analyzer.AnomalyAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	require.Len(t, result.Anomalies, 1)
	assert.Equal(t, "2026-03-07", result.Anomalies[0].Date)
}

func TestTrendsCommand_Categories(t *testing.T) {
	env := newTestEnv(t)
	days := filepath.Join(env.dir, "days.json")
	require.NoError(t, os.WriteFile(days, []byte(`[
		{"date":"2026-01-01","categories":{"coding":0}},
		{"date":"2026-01-02","categories":{"coding":50}},
		{"date":"2026-01-03","categories":{"coding":100}},
		{"date":"2026-01-04","categories":{"coding":150}},
		{"date":"2026-01-05","categories":{"coding":200}}]`), 0o644))

	out, err := env.execute(t, "trends", "--categories", days, "--json")
	require.NoError(t, err)

	var result analyzer.TrendAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	require.Len(t, result.TrendingCategories, 1)
	assert.Equal(t, analyzer.TrendStable, result.TrendingCategories[0].Trend)

	out, err = env.execute(t, "trends", "--categories", days, "--window", "2", "--json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &result), out)
	assert.Equal(t, 2, result.Days)
}

func TestCategorizeCommand_Single(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.execute(t, "categorize", "--app", "code.exe", "--title", "fixing a bug on github", "--json")
	require.NoError(t, err)

	var results []analyzer.EventCategorization
	require.NoError(t, json.Unmarshal([]byte(out), &results), out)
	require.Len(t, results, 1)
	assert.Equal(t, "coding", results[0].Category)
	assert.Equal(t, "keywords", results[0].Source)
}

func TestCategorizeCommand_Rules(t *testing.T) {
	env := newTestEnv(t)
	rules := filepath.Join(env.dir, "rules.json")
	require.NoError(t, os.WriteFile(rules, []byte(`[{"pattern":"code*","category":"deep-work","popularity":3}]`), 0o644))

	out, err := env.execute(t, "categorize", env.writeTimeline(t), "--rules", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "deep-work")
	assert.Contains(t, out, "community")
}

func TestCategorizeCommand_BothModes(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.execute(t, "categorize", env.writeTimeline(t), "--app", "x")
	assert.Error(t, err)
}

func TestReportCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.execute(t, "report", env.writeTimeline(t))
	require.NoError(t, err)

	for _, section := range []string{"Focus Quality", "Anomalous Days", "Category Trends", "Idle Stretches"} {
		assert.Contains(t, out, section)
	}
	assert.Contains(t, out, "7 events over 6 days")
}

func TestTrackCommand(t *testing.T) {
	env := newTestEnv(t)
	timeline := env.writeTimeline(t)

	out, err := env.execute(t, "track", timeline)
	require.NoError(t, err)
	assert.Contains(t, out, "First snapshot recorded")

	out, err = env.execute(t, "track", timeline, "--archive")
	require.NoError(t, err)
	assert.Contains(t, out, "Comparing against snapshot #1")
	assert.Contains(t, out, "Focus Average")
	assert.FileExists(t, filepath.Join(env.dir, "archive", "snapshot-2.jsonl.zst"))

	archived, err := activity.LoadFile(filepath.Join(env.dir, "archive", "snapshot-2.jsonl.zst"))
	require.NoError(t, err)
	assert.Len(t, archived, len(sampleEvents()))

	out, err = env.execute(t, "track", timeline, "--history", "2", "--json")
	require.NoError(t, err)
	var hist metricHistory
	require.NoError(t, json.Unmarshal([]byte(out), &hist), out)
	require.Len(t, hist.Snapshots, 2)
	assert.Equal(t, int64(2), hist.Snapshots[0].ID)
	assert.Len(t, hist.Metrics[metricFocusAverage], 2)
}

func TestInsightsCommand(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.execute(t, "insights", env.writeTimeline(t), "--json")
	require.NoError(t, err)

	var insights []insight.Insight
	require.NoError(t, json.Unmarshal([]byte(out), &insights), out)
	var types []string
	for _, in := range insights {
		types = append(types, in.Type)
	}
	assert.Contains(t, types, insight.TypeAnomalySummary)
	assert.Contains(t, types, insight.TypeBehavioralTrend)

	out, err = env.execute(t, "insights", env.writeTimeline(t), "--type", insight.TypeAnomalySummary)
	require.NoError(t, err)
	assert.Contains(t, out, "1 anomalous day")
	assert.NotContains(t, out, "Shifting categories")
}

func TestInsightsCommand_SinceLast(t *testing.T) {
	env := newTestEnv(t)
	timeline := env.writeTimeline(t)

	// Without a database there is no baseline and no drop.
	out, err := env.execute(t, "insights", timeline, "--since-last")
	require.NoError(t, err)
	assert.NotContains(t, out, "Focus fell")

	_, err = env.execute(t, "track", timeline)
	require.NoError(t, err)
	out, err = env.execute(t, "insights", timeline, "--since-last")
	require.NoError(t, err)
	assert.NotContains(t, out, "Focus fell")
}

func TestPrintAlert(t *testing.T) {
	var buf bytes.Buffer
	printAlert(&buf, watcher.Alert{
		Level:   "warning",
		Title:   "Anomalous day: 2026-03-07",
		Message: "5000s active",
		Time:    time.Date(2026, 3, 7, 18, 30, 0, 0, time.UTC),
	})
	assert.Contains(t, buf.String(), "[18:30:00]")
	assert.Contains(t, buf.String(), "Anomalous day: 2026-03-07")
	assert.Contains(t, buf.String(), "5000s active")
}

func TestWatchCommand_IntervalTooShort(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.execute(t, "watch", env.writeTimeline(t), "--interval", "1s")
	assert.ErrorContains(t, err, "interval must be at least 10s")
}
