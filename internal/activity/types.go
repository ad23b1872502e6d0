// Package activity defines the raw device-activity timeline types and the
// adapters that load, validate, and aggregate them before analysis.
package activity

import (
	"sort"
	"time"
)

// UncategorizedLabel is the category used for events with no category.
const UncategorizedLabel = "uncategorized"

// DateLayout is the calendar-day format used by daily series.
const DateLayout = "2006-01-02"

// Event is a single focus interval of a foreground application.
type Event struct {
	ID                string    `json:"id,omitempty"`
	TimestampStart    time.Time `json:"timestamp_start"`
	TimestampEnd      time.Time `json:"timestamp_end"`
	DurationSeconds   float64   `json:"duration_sec"`
	App               string    `json:"app"`
	Title             string    `json:"title"`
	Category          string    `json:"category,omitempty"`
	WindowChangeCount float64   `json:"window_change_count"`
	InputFrequency    float64   `json:"input_frequency"`
	IsAFK             bool      `json:"is_afk"`
	URL               string    `json:"url,omitempty"`
}

// CategoryOrDefault returns the event's category, or UncategorizedLabel
// when none was recorded.
func (e Event) CategoryOrDefault() string {
	if e.Category == "" {
		return UncategorizedLabel
	}
	return e.Category
}

// DailyTotal is one calendar day's pre-aggregated active time.
type DailyTotal struct {
	Date         string  `json:"date"`
	TotalSeconds float64 `json:"total_seconds"`
}

// CategoryDailyTotal is one calendar day's active time split by category.
type CategoryDailyTotal struct {
	Date       string             `json:"date"`
	Categories map[string]float64 `json:"categories"`
}

// Total returns the sum of all category seconds for the day. Categories are
// summed in name order so the result does not depend on map iteration.
func (c CategoryDailyTotal) Total() float64 {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	for _, name := range names {
		sum += c.Categories[name]
	}
	return sum
}
