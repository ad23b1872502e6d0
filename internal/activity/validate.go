package activity

import (
	"math"
	"sort"
	"time"
)

// ValidateEvents checks every event for values that cannot be scored:
// missing timestamps, end before start, negative durations, and non-finite
// numeric signals. It returns the first problem found.
func ValidateEvents(events []Event) error {
	for i, e := range events {
		if e.TimestampStart.IsZero() {
			return invalid(i, "timestamp_start", "missing")
		}
		if e.TimestampEnd.IsZero() {
			return invalid(i, "timestamp_end", "missing")
		}
		if e.TimestampEnd.Before(e.TimestampStart) {
			return invalid(i, "timestamp_end", "before timestamp_start")
		}
		if !finite(e.DurationSeconds) {
			return invalid(i, "duration_sec", "not a finite number")
		}
		if e.DurationSeconds < 0 {
			return invalid(i, "duration_sec", "negative")
		}
		if !finite(e.InputFrequency) {
			return invalid(i, "input_frequency", "not a finite number")
		}
		if !finite(e.WindowChangeCount) {
			return invalid(i, "window_change_count", "not a finite number")
		}
	}
	return nil
}

// SortedByStart returns a copy of events ordered ascending by start time.
// Events with equal starts keep their input order.
func SortedByStart(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimestampStart.Before(sorted[j].TimestampStart)
	})
	return sorted
}

// ValidateDailyTotals checks that each row has a parseable date and a
// finite, non-negative total.
func ValidateDailyTotals(days []DailyTotal) error {
	for i, d := range days {
		if _, err := time.Parse(DateLayout, d.Date); err != nil {
			return invalid(i, "date", "expected YYYY-MM-DD")
		}
		if !finite(d.TotalSeconds) {
			return invalid(i, "total_seconds", "not a finite number")
		}
		if d.TotalSeconds < 0 {
			return invalid(i, "total_seconds", "negative")
		}
	}
	return nil
}

// ValidateCategoryDailyTotals checks dates and per-category values.
func ValidateCategoryDailyTotals(days []CategoryDailyTotal) error {
	for i, d := range days {
		if _, err := time.Parse(DateLayout, d.Date); err != nil {
			return invalid(i, "date", "expected YYYY-MM-DD")
		}
		for name, v := range d.Categories {
			if !finite(v) {
				return invalid(i, "categories."+name, "not a finite number")
			}
			if v < 0 {
				return invalid(i, "categories."+name, "negative")
			}
		}
	}
	return nil
}

// LoadLocation resolves an IANA zone name. An empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, invalid(-1, "time_zone", "unknown zone "+name)
	}
	return loc, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
