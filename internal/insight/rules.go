package insight

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

const (
	// LowFocusScore marks a session or average as poorly focused.
	LowFocusScore = 50
	// CriticalFocusScore marks an average that needs attention first.
	CriticalFocusScore = 30
	// FocusDropPoints is the fall in focus average since the last snapshot
	// that produces an insight.
	FocusDropPoints = 10
	// HeavyDistractionCount is the distraction count at which a session
	// counts as fragmented.
	HeavyDistractionCount = 5
	// FragmentedShare is the share of fragmented sessions that produces an
	// insight.
	FragmentedShare = 0.3
	// LargeDeviationPercent escalates an anomaly summary to high priority.
	LargeDeviationPercent = 100
)

// FocusSummary reports the average focus score. The priority rises as the
// average falls.
func FocusSummary(ctx *Context) []Insight {
	f := ctx.Report.Focus
	if f.DailyAverage == nil || f.QualifyingSessions == 0 {
		return nil
	}
	avg := *f.DailyAverage

	low := 0
	for _, s := range f.SessionScores {
		if s.FocusQualityScore < LowFocusScore {
			low++
		}
	}

	in := Insight{
		Type:     TypeFocusInsight,
		Priority: PriorityLow,
		Title:    "Focus quality",
		Summary: fmt.Sprintf("Average focus score is %d across %d qualifying sessions; %d scored below %d.",
			avg, f.QualifyingSessions, low, LowFocusScore),
		ImpactScore: ComputeImpact(f.QualifyingSessions, float64(low)/float64(f.QualifyingSessions), 5),
	}
	switch {
	case avg < CriticalFocusScore:
		in.Priority = PriorityCritical
		in.Title = "Very low focus quality"
	case avg < LowFocusScore:
		in.Priority = PriorityHigh
		in.Title = "Low focus quality"
	}
	return []Insight{in}
}

// FocusDrop flags a fall in the focus average since the last snapshot.
func FocusDrop(ctx *Context) []Insight {
	f := ctx.Report.Focus
	if ctx.PreviousFocusAverage == nil || f.DailyAverage == nil {
		return nil
	}
	prev := *ctx.PreviousFocusAverage
	drop := prev - float64(*f.DailyAverage)
	if drop < FocusDropPoints {
		return nil
	}
	return []Insight{{
		Type:        TypeFocusInsight,
		Priority:    PriorityHigh,
		Title:       "Focus fell since the last snapshot",
		Summary:     fmt.Sprintf("Average focus score fell %.0f points (%.0f -> %d).", drop, prev, *f.DailyAverage),
		ImpactScore: ComputeImpact(f.QualifyingSessions, drop/100, 5),
	}}
}

// DistractionLoad flags timelines where many sessions are fragmented by
// context switches and distracting categories.
func DistractionLoad(ctx *Context) []Insight {
	scores := ctx.Report.Focus.SessionScores
	if len(scores) == 0 {
		return nil
	}
	fragmented, total := 0, 0
	for _, s := range scores {
		total += s.DistractionCount
		if s.DistractionCount >= HeavyDistractionCount {
			fragmented++
		}
	}
	share := float64(fragmented) / float64(len(scores))
	if share < FragmentedShare {
		return nil
	}
	return []Insight{{
		Type:     TypeFocusInsight,
		Priority: PriorityMedium,
		Title:    "Frequent context switching",
		Summary: fmt.Sprintf("%d of %d sessions had %d or more distractions (%d in total). Batching messages and closing unrelated windows would lengthen uninterrupted stretches.",
			fragmented, len(scores), HeavyDistractionCount, total),
		ImpactScore: ComputeImpact(fragmented, share, 4),
	}}
}

// AnomalySummary lists the days with unusual total activity.
func AnomalySummary(ctx *Context) []Insight {
	a := ctx.Report.Anomalies
	if a.InsufficientData || len(a.Anomalies) == 0 {
		return nil
	}

	priority := PriorityMedium
	days := make([]string, 0, len(a.Anomalies))
	for _, an := range a.Anomalies {
		if math.Abs(an.DeviationPercent) >= LargeDeviationPercent {
			priority = PriorityHigh
		}
		days = append(days, fmt.Sprintf("%s (%+.0f%%)", an.Date, an.DeviationPercent))
	}

	title := "1 anomalous day"
	if n := len(a.Anomalies); n > 1 {
		title = fmt.Sprintf("%d anomalous days", n)
	}
	return []Insight{{
		Type:     TypeAnomalySummary,
		Priority: priority,
		Title:    title,
		Summary: fmt.Sprintf("Unusual total activity on %s. The baseline is %s ± %s per day.",
			strings.Join(days, ", "), hours(a.BaselineMean), hours(a.BaselineStddev)),
		ImpactScore: ComputeImpact(len(a.Anomalies), float64(len(a.Anomalies))/float64(max(a.DataPoints, 1)), 3),
	}}
}

// BehavioralTrend summarizes the categories that are rising or falling.
func BehavioralTrend(ctx *Context) []Insight {
	t := ctx.Report.Trends
	if t.InsufficientData || len(t.TrendingCategories) == 0 {
		return nil
	}

	var rising, falling []string
	for _, c := range t.TrendingCategories {
		entry := fmt.Sprintf("%s (%+.0fs/day)", c.Category, c.SlopePerDay)
		switch c.Trend {
		case analyzer.TrendRising:
			rising = append(rising, entry)
		case analyzer.TrendFalling:
			falling = append(falling, entry)
		}
	}
	moving := len(rising) + len(falling)
	if moving == 0 {
		return nil
	}

	var parts []string
	if len(rising) > 0 {
		parts = append(parts, "Rising: "+strings.Join(rising, ", ")+".")
	}
	if len(falling) > 0 {
		parts = append(parts, "Falling: "+strings.Join(falling, ", ")+".")
	}
	return []Insight{{
		Type:        TypeBehavioralTrend,
		Priority:    PriorityMedium,
		Title:       "Shifting categories",
		Summary:     strings.Join(parts, " "),
		ImpactScore: ComputeImpact(moving, float64(moving)/float64(len(t.TrendingCategories)), 2),
	}}
}

// WeeklyRhythm reports weekdays that sit consistently above or below the
// average.
func WeeklyRhythm(ctx *Context) []Insight {
	notes := ctx.Report.Trends.Seasonality
	if len(notes) == 0 {
		return nil
	}
	patterns := make([]string, 0, len(notes))
	for _, n := range notes {
		patterns = append(patterns, n.Pattern)
	}
	return []Insight{{
		Type:        TypeBehavioralTrend,
		Priority:    PriorityLow,
		Title:       "Weekly rhythm",
		Summary:     strings.Join(patterns, " "),
		ImpactScore: ComputeImpact(len(notes), float64(len(notes))/7, 1),
	}}
}

// IdleBreaks summarizes long idle stretches.
func IdleBreaks(ctx *Context) []Insight {
	idle := ctx.Report.IdlePatterns
	if len(idle) == 0 {
		return nil
	}
	sorted := make([]analyzer.IdlePattern, len(idle))
	copy(sorted, idle)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].DurationSeconds > sorted[j].DurationSeconds
	})

	var total float64
	for _, p := range idle {
		total += p.DurationSeconds
	}
	longest := sorted[0]
	days := max(len(ctx.Report.DailyTotals), 1)
	return []Insight{{
		Type:     TypeFocusInsight,
		Priority: PriorityLow,
		Title:    "Long breaks",
		Summary: fmt.Sprintf("%d idle stretches totalling %s; the longest began %s and lasted %s.",
			len(idle), hours(total), longest.Timestamp.Format("2006-01-02 15:04"), hours(longest.DurationSeconds)),
		ImpactScore: ComputeImpact(len(idle), float64(len(idle))/float64(days), 1),
	}}
}

// hours renders seconds rounded to the minute, e.g. "1h30m".
func hours(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Round(time.Minute)
	s := d.String()
	s = strings.TrimSuffix(s, "0s")
	if strings.HasSuffix(s, "h0m") {
		s = strings.TrimSuffix(s, "0m")
	}
	if s == "" {
		return "0m"
	}
	return s
}
