package activity

import (
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestValidateEvents_Valid(t *testing.T) {
	events := []Event{{
		TimestampStart:  ts("2026-01-15T10:00:00Z"),
		TimestampEnd:    ts("2026-01-15T10:10:00Z"),
		DurationSeconds: 600,
		App:             "vscode",
	}}
	assert.NoError(t, ValidateEvents(events))
}

func TestValidateEvents_Rejections(t *testing.T) {
	base := Event{
		TimestampStart:  ts("2026-01-15T10:00:00Z"),
		TimestampEnd:    ts("2026-01-15T10:10:00Z"),
		DurationSeconds: 600,
	}

	tests := []struct {
		name  string
		mut   func(e *Event)
		field string
	}{
		{"missing start", func(e *Event) { e.TimestampStart = time.Time{} }, "timestamp_start"},
		{"missing end", func(e *Event) { e.TimestampEnd = time.Time{} }, "timestamp_end"},
		{"end before start", func(e *Event) { e.TimestampEnd = ts("2026-01-15T09:00:00Z") }, "timestamp_end"},
		{"negative duration", func(e *Event) { e.DurationSeconds = -1 }, "duration_sec"},
		{"nan duration", func(e *Event) { e.DurationSeconds = math.NaN() }, "duration_sec"},
		{"inf input", func(e *Event) { e.InputFrequency = math.Inf(1) }, "input_frequency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := base
			tt.mut(&e)
			err := ValidateEvents([]Event{base, e})
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))

			var ie *InvalidInputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, 1, ie.Index)
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestSortedByStart_DoesNotMutate(t *testing.T) {
	events := []Event{
		{App: "b", TimestampStart: ts("2026-01-15T11:00:00Z")},
		{App: "a", TimestampStart: ts("2026-01-15T10:00:00Z")},
	}
	sorted := SortedByStart(events)
	assert.Equal(t, "a", sorted[0].App)
	assert.Equal(t, "b", events[0].App)
}

func TestValidateDailyTotals(t *testing.T) {
	assert.NoError(t, ValidateDailyTotals([]DailyTotal{{Date: "2026-01-01", TotalSeconds: 10}}))
	assert.ErrorIs(t, ValidateDailyTotals([]DailyTotal{{Date: "01/01/2026"}}), ErrInvalidInput)
	assert.ErrorIs(t, ValidateDailyTotals([]DailyTotal{{Date: "2026-01-01", TotalSeconds: -5}}), ErrInvalidInput)
}

func TestValidateCategoryDailyTotals(t *testing.T) {
	ok := []CategoryDailyTotal{{Date: "2026-01-01", Categories: map[string]float64{"coding": 5}}}
	assert.NoError(t, ValidateCategoryDailyTotals(ok))

	bad := []CategoryDailyTotal{{Date: "2026-01-01", Categories: map[string]float64{"coding": -5}}}
	assert.ErrorIs(t, ValidateCategoryDailyTotals(bad), ErrInvalidInput)
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	_, err = LoadLocation("Not/AZone")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

const sampleJSONL = `{"timestamp_start":"2026-01-15T10:00:00Z","timestamp_end":"2026-01-15T10:10:00Z","duration_sec":600,"app":"vscode","title":"main.py","category":"coding","input_frequency":0.5,"is_afk":false}

{"timestamp_start":"2026-01-15T10:12:00Z","timestamp_end":"2026-01-15T10:20:00Z","duration_sec":480,"app":"firefox","title":"reddit","category":"social","input_frequency":0.05,"is_afk":false}
`

func TestReadEvents_JSONL(t *testing.T) {
	events, err := ReadEvents(strings.NewReader(sampleJSONL))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "vscode", events[0].App)
	assert.Equal(t, 600.0, events[0].DurationSeconds)
	assert.Equal(t, "social", events[1].Category)
}

func TestReadEvents_Array(t *testing.T) {
	data := `  [{"timestamp_start":"2026-01-15T10:00:00Z","timestamp_end":"2026-01-15T10:10:00Z","duration_sec":600,"app":"vscode"}]`
	events, err := ReadEvents(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].TimestampEnd.Equal(ts("2026-01-15T10:10:00Z")))
}

func TestReadEvents_Empty(t *testing.T) {
	events, err := ReadEvents(strings.NewReader("   \n"))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestReadEvents_MalformedLine(t *testing.T) {
	_, err := ReadEvents(strings.NewReader("{\"app\":\"a\"}\n{broken\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteCompressed_RoundTrip(t *testing.T) {
	events, err := ReadEvents(strings.NewReader(sampleJSONL))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "archive", "timeline.jsonl.zst")
	size, err := WriteCompressed(events, path)
	require.NoError(t, err)
	assert.Greater(t, size, int64(0))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "firefox", loaded[1].App)
	assert.True(t, loaded[1].TimestampStart.Equal(events[1].TimestampStart))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadDailyTotals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daily.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"date":"2026-01-01","total_seconds":100}]`), 0o644))

	days, err := LoadDailyTotals(path)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 100.0, days[0].TotalSeconds)
}

func TestAggregateDaily(t *testing.T) {
	events := []Event{
		{TimestampStart: ts("2026-01-15T10:00:00Z"), DurationSeconds: 600, Category: "coding"},
		{TimestampStart: ts("2026-01-15T11:00:00Z"), DurationSeconds: 300},
		{TimestampStart: ts("2026-01-15T12:00:00Z"), DurationSeconds: 900, IsAFK: true},
		{TimestampStart: ts("2026-01-17T09:00:00Z"), DurationSeconds: 120, Category: "social"},
	}

	series := AggregateDaily(events, time.UTC)
	require.Len(t, series.Totals, 3)
	assert.Equal(t, DailyTotal{Date: "2026-01-15", TotalSeconds: 900}, series.Totals[0])
	assert.Equal(t, DailyTotal{Date: "2026-01-16", TotalSeconds: 0}, series.Totals[1])
	assert.Equal(t, 120.0, series.Totals[2].TotalSeconds)
	assert.Equal(t, 300.0, series.Categories[0].Categories[UncategorizedLabel])
	assert.Equal(t, []string{"coding", "social", "uncategorized"}, CategoryNames(series.Categories))
}

func TestAggregateDaily_LocalDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:00 UTC on the 16th is still the 15th in New York.
	events := []Event{{TimestampStart: ts("2026-01-16T02:00:00Z"), DurationSeconds: 60}}
	series := AggregateDaily(events, loc)
	require.Len(t, series.Totals, 1)
	assert.Equal(t, "2026-01-15", series.Totals[0].Date)
}

func TestAggregateDaily_Empty(t *testing.T) {
	series := AggregateDaily(nil, nil)
	assert.Empty(t, series.Totals)
	assert.Empty(t, series.Categories)
}
