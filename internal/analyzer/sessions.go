package analyzer

import (
	"time"

	"github.com/blackwell-systems/focuslens/internal/activity"
)

// Session is a run of chronologically adjacent events. It always holds at
// least one event.
type Session struct {
	Events []activity.Event
}

// Start is the first event's start.
func (s Session) Start() time.Time {
	return s.Events[0].TimestampStart
}

// End is the last event's end.
func (s Session) End() time.Time {
	return s.Events[len(s.Events)-1].TimestampEnd
}

// Span is the wall-clock length of the session.
func (s Session) Span() time.Duration {
	return s.End().Sub(s.Start())
}

// ID is a deterministic identifier built from the session's bounds.
func (s Session) ID() string {
	return s.Start().UTC().Format(time.RFC3339) + "-" + s.End().UTC().Format(time.RFC3339)
}

// SegmentSessions groups events into sessions. An event continues the
// current session when the gap from the previous event's end to its start
// is at most params.GapSeconds. Events are sorted by start first; the input
// slice is not modified. No AFK or duration filtering happens here.
func SegmentSessions(events []activity.Event, params SessionParams) []Session {
	if len(events) == 0 {
		return nil
	}

	sorted := activity.SortedByStart(events)
	maxGap := time.Duration(params.GapSeconds * float64(time.Second))

	var sessions []Session
	current := []activity.Event{sorted[0]}
	for _, e := range sorted[1:] {
		last := current[len(current)-1]
		if e.TimestampStart.Sub(last.TimestampEnd) <= maxGap {
			current = append(current, e)
			continue
		}
		sessions = append(sessions, Session{Events: current})
		current = []activity.Event{e}
	}
	return append(sessions, Session{Events: current})
}
