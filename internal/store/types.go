// Package store provides SQLite persistence for focuslens snapshots: the
// derived focus scores, anomalies, and category trends of each run.
package store

import "time"

// Snapshot is one recorded analysis run.
type Snapshot struct {
	ID       int64     `json:"id"`
	TakenAt  time.Time `json:"taken_at"`
	Command  string    `json:"command"`
	Version  string    `json:"version"`
	Source   string    `json:"source"`
	TimeZone string    `json:"time_zone"`
}

// AggregateMetric is a named metric value within a snapshot.
type AggregateMetric struct {
	ID          int64   `json:"id"`
	SnapshotID  int64   `json:"snapshot_id"`
	MetricName  string  `json:"metric_name"`
	MetricValue float64 `json:"metric_value"`
	Detail      string  `json:"detail,omitempty"`
}

// MetricPoint is one snapshot's value of a metric.
type MetricPoint struct {
	SnapshotID int64     `json:"snapshot_id"`
	TakenAt    time.Time `json:"taken_at"`
	Value      float64   `json:"value"`
}

// FocusScoreRow is a stored session score.
type FocusScoreRow struct {
	ID                   int64     `json:"id"`
	SnapshotID           int64     `json:"snapshot_id"`
	SessionID            string    `json:"session_id"`
	Start                time.Time `json:"start"`
	End                  time.Time `json:"end"`
	Score                int       `json:"focus_quality_score"`
	DistractionCount     int       `json:"distraction_count"`
	ContextSwitchPenalty int       `json:"context_switch_penalty"`
}

// AnomalyRow is a stored anomalous day.
type AnomalyRow struct {
	ID               int64   `json:"id"`
	SnapshotID       int64   `json:"snapshot_id"`
	Date             string  `json:"date"`
	TotalSeconds     float64 `json:"total_seconds"`
	AnomalyScore     float64 `json:"anomaly_score"`
	DeviationPercent float64 `json:"deviation_percent"`
	ZScore           float64 `json:"z_score"`
	Explanation      string  `json:"explanation,omitempty"`
}

// CategoryTrendRow is a stored category trend.
type CategoryTrendRow struct {
	ID          int64   `json:"id"`
	SnapshotID  int64   `json:"snapshot_id"`
	Category    string  `json:"category"`
	Trend       string  `json:"trend"`
	SlopePerDay float64 `json:"slope_per_day"`
}

// ArchiveRow records a compressed copy of the timeline a snapshot was
// computed from.
type ArchiveRow struct {
	ID         int64  `json:"id"`
	SnapshotID int64  `json:"snapshot_id"`
	Path       string `json:"path"`
	Bytes      int64  `json:"bytes"`
	Events     int    `json:"events"`
}

// SnapshotDiff represents the comparison between two snapshots.
type SnapshotDiff struct {
	Previous *Snapshot     `json:"previous"`
	Current  *Snapshot     `json:"current"`
	Deltas   []MetricDelta `json:"deltas"`

	// NewAnomalyDates lists anomalous days in Current that Previous did not flag.
	NewAnomalyDates []string `json:"new_anomaly_dates"`
}

// Delta directions.
const (
	DirectionImproved  = "improved"
	DirectionRegressed = "regressed"
	DirectionUnchanged = "unchanged"
)

// MetricDelta represents the change in a single metric between snapshots.
type MetricDelta struct {
	Name      string  `json:"name"`
	Previous  float64 `json:"previous"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Direction string  `json:"direction"`
}
