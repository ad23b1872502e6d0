package watcher

import (
	"fmt"
	"sort"
	"time"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

// FocusDropThreshold is the fall in average focus score, in points, that
// raises a critical alert.
const FocusDropThreshold = 10

// maxSessionAlerts caps per-session info alerts in one cycle; the rest are
// summarized.
const maxSessionAlerts = 3

// Compare detects notable changes between two watch states and returns alerts.
// It checks for critical, warning, and info-level changes.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical detects critical-level changes.
func compareCritical(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	if prev.HasFocus && curr.HasFocus {
		drop := prev.FocusAverage - curr.FocusAverage
		if drop >= FocusDropThreshold {
			alerts = append(alerts, Alert{
				Level:   "critical",
				Title:   "Focus quality dropped",
				Message: fmt.Sprintf("Average focus score fell %d points (%d -> %d)", drop, prev.FocusAverage, curr.FocusAverage),
				Time:    now,
			})
		}
	}

	return alerts
}

// compareWarning detects warning-level changes.
func compareWarning(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	seen := make(map[string]bool, len(prev.AnomalyDates))
	for _, d := range prev.AnomalyDates {
		seen[d] = true
	}
	for _, d := range curr.AnomalyDates {
		if !seen[d] {
			alerts = append(alerts, Alert{
				Level:   "warning",
				Title:   fmt.Sprintf("Anomalous day: %s", d),
				Message: "Total active time deviates sharply from the recent baseline",
				Time:    now,
			})
		}
	}

	categories := make([]string, 0, len(curr.Trends))
	for name := range curr.Trends {
		categories = append(categories, name)
	}
	sort.Strings(categories)
	for _, name := range categories {
		if curr.Trends[name] != analyzer.TrendFalling {
			continue
		}
		before, ok := prev.Trends[name]
		if ok && before == analyzer.TrendFalling {
			continue
		}
		was := "untracked"
		if ok {
			was = string(before)
		}
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   fmt.Sprintf("Falling trend: %s", name),
			Message: fmt.Sprintf("Daily time in %s is now falling (was %s)", name, was),
			Time:    now,
		})
	}

	return alerts
}

// compareInfo detects info-level changes.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	fresh := findNewSessions(prev, curr)
	for i, s := range fresh {
		if i == maxSessionAlerts {
			alerts = append(alerts, Alert{
				Level:   "info",
				Title:   "More sessions scored",
				Message: fmt.Sprintf("%d more new session(s) qualified", len(fresh)-maxSessionAlerts),
				Time:    now,
			})
			break
		}
		msg := fmt.Sprintf("%s - %s scored %d (%d distraction(s))",
			s.Start.Format("Jan 2 15:04"), s.End.Format("15:04"), s.FocusQualityScore, s.DistractionCount)
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   "New focus session",
			Message: msg,
			Time:    now,
		})
	}

	return alerts
}

// findNewSessions returns qualifying sessions in curr that were not in prev,
// in start order.
func findNewSessions(prev, curr *WatchState) []analyzer.SessionScore {
	known := make(map[string]bool, len(prev.SessionIDs))
	for _, id := range prev.SessionIDs {
		known[id] = true
	}
	var out []analyzer.SessionScore
	for _, id := range curr.SessionIDs {
		if known[id] {
			continue
		}
		if s, ok := curr.sessions[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
