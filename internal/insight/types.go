// Package insight turns analysis results into ranked, readable findings.
package insight

import "github.com/blackwell-systems/focuslens/internal/analyzer"

// Priority levels for insights.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// Insight types.
const (
	TypeAnomalySummary  = "anomaly_summary"
	TypeBehavioralTrend = "behavioral_trend"
	TypeFocusInsight    = "focus_insight"
)

// Insight is one finding about a timeline.
type Insight struct {
	Type        string  `json:"type"`
	Priority    int     `json:"priority"`
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	ImpactScore float64 `json:"impact_score"`
}

// Context is the input every rule inspects.
type Context struct {
	Report *analyzer.Report

	// PreviousFocusAverage is the focus average of the last stored snapshot,
	// or nil when there is none.
	PreviousFocusAverage *float64
}

// Rule examines the context and produces zero or more insights. Rules must
// tolerate a report whose analyses all lack data.
type Rule func(ctx *Context) []Insight
