package analyzer

import (
	"fmt"

	"github.com/blackwell-systems/focuslens/internal/activity"
)

// PatternIdleDetection is the pattern type for long AFK stretches.
const PatternIdleDetection = "idle_detection"

const idleConfidence = 0.8

// DetectIdlePatterns reports every AFK event lasting longer than
// params.MinAFKSeconds, in start order.
func DetectIdlePatterns(events []activity.Event, params IdleParams) ([]IdlePattern, error) {
	if err := activity.ValidateEvents(events); err != nil {
		return nil, err
	}

	patterns := []IdlePattern{}
	for _, e := range activity.SortedByStart(events) {
		if !e.IsAFK || e.DurationSeconds <= params.MinAFKSeconds {
			continue
		}
		patterns = append(patterns, IdlePattern{
			Timestamp:         e.TimestampStart,
			PatternType:       PatternIdleDetection,
			Description:       fmt.Sprintf("Idle for more than %d minutes.", int(e.DurationSeconds/60)),
			ConfidenceScore:   idleConfidence,
			DurationSeconds:   e.DurationSeconds,
			RelatedActivityID: e.ID,
		})
	}
	return patterns, nil
}
