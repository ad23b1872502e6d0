// Package analyzer turns activity timelines into behavioral signals:
// session focus quality, daily anomalies, category trends, weekly
// seasonality, and event categorization.
package analyzer

import "time"

// SessionScore is the focus-quality result for one qualifying session.
type SessionScore struct {
	// SessionID is "<start>-<end>" in RFC 3339 UTC, stable for identical input.
	SessionID string `json:"session_id"`

	// Start and End bound the session's wall-clock span.
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// FocusQualityScore is in [0, 100].
	FocusQualityScore int `json:"focus_quality_score"`

	// DistractionCount counts context switches plus one if any event fell
	// in a distraction category.
	DistractionCount int `json:"distraction_count"`

	// ContextSwitchPenalty is the number of adjacent event pairs whose app
	// or title differ.
	ContextSwitchPenalty int `json:"context_switch_penalty"`

	// EventCount is the number of events in the session.
	EventCount int `json:"event_count"`
}

// DayFocus is the focus average for one local calendar day.
type DayFocus struct {
	Date               string `json:"date"`
	Average            int    `json:"average"`
	QualifyingSessions int    `json:"qualifying_sessions"`
}

// FocusAnalysis aggregates session scores over a timeline.
type FocusAnalysis struct {
	TimeZone string `json:"time_zone"`

	// SessionScores holds one entry per qualifying session, in start order.
	SessionScores []SessionScore `json:"session_scores"`

	// DailyAverage is the rounded mean score over qualifying sessions, or nil
	// when no session qualifies.
	DailyAverage *int `json:"daily_average"`

	// Days breaks the average down by the local day each session started on.
	Days []DayFocus `json:"days"`

	QualifyingSessions int    `json:"qualifying_sessions"`
	TotalSessions      int    `json:"total_sessions"`
	InsufficientData   bool   `json:"insufficient_data"`
	Explanation        string `json:"explanation"`
}

// Anomaly is one flagged day.
type Anomaly struct {
	Date         string  `json:"date"`
	TotalSeconds float64 `json:"total_seconds"`
	IsAnomaly    bool    `json:"is_anomaly"`

	// AnomalyScore is in [0, 1]; z-scores beyond the score divisor saturate.
	AnomalyScore float64 `json:"anomaly_score"`

	DeviationPercent float64 `json:"deviation_percent"`

	// ZScore is 0 when the baseline has no variance.
	ZScore float64 `json:"z_score"`

	Explanation string `json:"explanation"`
}

// AnomalyAnalysis is the result of scanning a daily-total series.
type AnomalyAnalysis struct {
	// Anomalies is sorted by AnomalyScore descending and truncated.
	Anomalies        []Anomaly `json:"anomalies"`
	BaselineMean     float64   `json:"baseline_mean"`
	BaselineStddev   float64   `json:"baseline_stddev"`
	DataPoints       int       `json:"data_points"`
	InsufficientData bool      `json:"insufficient_data"`
	Explanation      string    `json:"explanation"`
}

// TrendDirection classifies a category's fitted slope.
type TrendDirection string

const (
	TrendRising  TrendDirection = "rising"
	TrendFalling TrendDirection = "falling"
	TrendStable  TrendDirection = "stable"
)

// TrendingCategory is the fitted trend for one category.
type TrendingCategory struct {
	Category string         `json:"category"`
	Trend    TrendDirection `json:"trend"`

	// SlopePerDay is seconds of change per day, rounded to 2 decimals.
	SlopePerDay float64 `json:"slope_per_day"`
}

// SeasonalityNote describes a weekday that deviates from the overall average.
type SeasonalityNote struct {
	Period    string `json:"period"`
	Weekday   string `json:"weekday"`
	Direction string `json:"direction"`
	Pattern   string `json:"pattern"`
}

// TrendAnalysis is the result of fitting per-category trends.
type TrendAnalysis struct {
	TrendingCategories []TrendingCategory `json:"trending_categories"`
	Seasonality        []SeasonalityNote  `json:"seasonality"`
	Days               int                `json:"days"`
	Window             int                `json:"window,omitempty"`
	InsufficientData   bool               `json:"insufficient_data"`
	Summary            string             `json:"summary"`
}

// Categorization is a classifier's verdict for one event.
type Categorization struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// IdlePattern is a rule-based behavioral observation about one event.
type IdlePattern struct {
	Timestamp         time.Time `json:"timestamp"`
	PatternType       string    `json:"pattern_type"`
	Description       string    `json:"description"`
	ConfidenceScore   float64   `json:"confidence_score"`
	DurationSeconds   float64   `json:"duration_sec"`
	RelatedActivityID string    `json:"related_activity_id,omitempty"`
}
