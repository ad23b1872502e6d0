package activity

import (
	"sort"
	"time"
)

// DailySeries holds both daily views of a timeline over the same days.
type DailySeries struct {
	Totals     []DailyTotal         `json:"daily_totals"`
	Categories []CategoryDailyTotal `json:"category_daily_totals"`
}

// AggregateDaily sums non-AFK event durations per local calendar day in loc.
// The series spans every day from the first to the last active day, with
// zero rows for days without activity. Events are attributed to the day on
// which they start.
func AggregateDaily(events []Event, loc *time.Location) DailySeries {
	if loc == nil {
		loc = time.UTC
	}

	perDay := make(map[string]map[string]float64)
	var first, last time.Time
	for _, e := range events {
		if e.IsAFK {
			continue
		}
		local := e.TimestampStart.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		key := day.Format(DateLayout)

		cats, ok := perDay[key]
		if !ok {
			cats = make(map[string]float64)
			perDay[key] = cats
		}
		cats[e.CategoryOrDefault()] += e.DurationSeconds

		if first.IsZero() || day.Before(first) {
			first = day
		}
		if day.After(last) {
			last = day
		}
	}

	var series DailySeries
	if len(perDay) == 0 {
		return series
	}

	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		cats := perDay[key]
		if cats == nil {
			cats = map[string]float64{}
		}
		row := CategoryDailyTotal{Date: key, Categories: cats}
		series.Categories = append(series.Categories, row)
		series.Totals = append(series.Totals, DailyTotal{Date: key, TotalSeconds: row.Total()})
	}
	return series
}

// CategoryNames returns every category that appears in days, sorted.
func CategoryNames(days []CategoryDailyTotal) []string {
	seen := make(map[string]struct{})
	for _, d := range days {
		for name := range d.Categories {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
