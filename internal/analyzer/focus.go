package analyzer

import (
	"fmt"
	"math"
	"time"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/stats"
)

const baseFocusScore = 100

// ScoreSession computes the focus-quality score of one session with local
// time in loc. It returns nil when the session does not qualify: its span is
// shorter than params.MinSessionSeconds or any event is AFK.
func ScoreSession(s Session, loc *time.Location, params FocusParams) *SessionScore {
	if len(s.Events) == 0 {
		return nil
	}
	if s.Span().Seconds() < params.MinSessionSeconds {
		return nil
	}
	for _, e := range s.Events {
		if e.IsAFK {
			return nil
		}
	}
	if loc == nil {
		loc = time.UTC
	}

	score := float64(baseFocusScore)

	switches := 0
	for i := 1; i < len(s.Events); i++ {
		prev, cur := s.Events[i-1], s.Events[i]
		if prev.App != cur.App || prev.Title != cur.Title {
			switches++
		}
	}
	score -= float64(switches) * params.ContextSwitchPenalty
	distractions := switches

	for _, e := range s.Events {
		if e.InputFrequency < params.PassiveInputThreshold {
			score -= params.PassivePenaltyPerMinute * (e.DurationSeconds / 60)
		}
	}

	if hasDistractionCategory(s.Events, params.DistractionCategories) {
		score -= params.DistractionPenalty
		distractions++
	}

	hour := s.Start().In(loc).Hour()
	for _, w := range params.TimeOfDay {
		if w.Contains(hour) {
			score += w.Points
			break
		}
	}

	return &SessionScore{
		SessionID:            s.ID(),
		Start:                s.Start(),
		End:                  s.End(),
		FocusQualityScore:    int(math.Round(stats.Clamp(score, 0, 100))),
		DistractionCount:     distractions,
		ContextSwitchPenalty: switches,
		EventCount:           len(s.Events),
	}
}

func hasDistractionCategory(events []activity.Event, categories []string) bool {
	for _, e := range events {
		if e.Category == "" {
			continue
		}
		for _, c := range categories {
			if e.Category == c {
				return true
			}
		}
	}
	return false
}

// AnalyzeFocus validates events, segments them into sessions, scores each
// session in the named IANA time zone, and averages the qualifying scores.
// Zero qualifying sessions is reported through InsufficientData and a nil
// DailyAverage, not an error.
func AnalyzeFocus(events []activity.Event, timeZone string, sp SessionParams, fp FocusParams) (FocusAnalysis, error) {
	if err := activity.ValidateEvents(events); err != nil {
		return FocusAnalysis{}, err
	}
	loc, err := activity.LoadLocation(timeZone)
	if err != nil {
		return FocusAnalysis{}, err
	}

	sessions := SegmentSessions(events, sp)
	result := FocusAnalysis{
		TimeZone:      loc.String(),
		SessionScores: []SessionScore{},
		Days:          []DayFocus{},
		TotalSessions: len(sessions),
	}

	var all []float64
	perDay := make(map[string][]float64)
	var dayOrder []string
	for _, s := range sessions {
		score := ScoreSession(s, loc, fp)
		if score == nil {
			continue
		}
		result.SessionScores = append(result.SessionScores, *score)
		v := float64(score.FocusQualityScore)
		all = append(all, v)

		day := s.Start().In(loc).Format(activity.DateLayout)
		if _, ok := perDay[day]; !ok {
			dayOrder = append(dayOrder, day)
		}
		perDay[day] = append(perDay[day], v)
	}
	result.QualifyingSessions = len(all)

	if len(all) == 0 {
		result.InsufficientData = true
		result.Explanation = fmt.Sprintf("No qualifying sessions among %d. A session needs at least %s of continuous activity with no AFK time.",
			len(sessions), time.Duration(fp.MinSessionSeconds*float64(time.Second)))
		return result, nil
	}

	avg := int(math.Round(stats.Mean(all)))
	result.DailyAverage = &avg
	for _, day := range dayOrder {
		scores := perDay[day]
		result.Days = append(result.Days, DayFocus{
			Date:               day,
			Average:            int(math.Round(stats.Mean(scores))),
			QualifyingSessions: len(scores),
		})
	}
	result.Explanation = fmt.Sprintf("Average focus quality %d across %d of %d sessions.",
		avg, len(all), len(sessions))
	return result, nil
}
