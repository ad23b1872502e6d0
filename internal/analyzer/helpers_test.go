package analyzer

import (
	"time"

	"github.com/blackwell-systems/focuslens/internal/activity"
)

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// ev builds an active event starting at start and lasting seconds.
func ev(start string, seconds float64, app, title string) activity.Event {
	t := mustTime(start)
	return activity.Event{
		TimestampStart:  t,
		TimestampEnd:    t.Add(time.Duration(seconds * float64(time.Second))),
		DurationSeconds: seconds,
		App:             app,
		Title:           title,
		InputFrequency:  0.5,
	}
}

func dailyTotals(start string, values ...float64) []activity.DailyTotal {
	day, err := time.Parse(activity.DateLayout, start)
	if err != nil {
		panic(err)
	}
	out := make([]activity.DailyTotal, len(values))
	for i, v := range values {
		out[i] = activity.DailyTotal{Date: day.AddDate(0, 0, i).Format(activity.DateLayout), TotalSeconds: v}
	}
	return out
}

func categoryDays(start string, series map[string][]float64, n int) []activity.CategoryDailyTotal {
	day, err := time.Parse(activity.DateLayout, start)
	if err != nil {
		panic(err)
	}
	out := make([]activity.CategoryDailyTotal, n)
	for i := range out {
		cats := make(map[string]float64)
		for name, values := range series {
			if i < len(values) {
				cats[name] = values[i]
			}
		}
		out[i] = activity.CategoryDailyTotal{Date: day.AddDate(0, 0, i).Format(activity.DateLayout), Categories: cats}
	}
	return out
}
