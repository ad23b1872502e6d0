package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuslens/internal/activity"
)

func TestDetectIdlePatterns(t *testing.T) {
	long := ev("2026-01-15T12:00:00Z", 900, "", "")
	long.IsAFK = true
	long.ID = "evt-2"

	boundary := ev("2026-01-15T11:00:00Z", 300, "", "")
	boundary.IsAFK = true

	events := []activity.Event{long, ev("2026-01-15T10:00:00Z", 1200, "vscode", "main.py"), boundary}

	patterns, err := DetectIdlePatterns(events, DefaultIdleParams())
	require.NoError(t, err)
	require.Len(t, patterns, 1)

	p := patterns[0]
	assert.Equal(t, PatternIdleDetection, p.PatternType)
	assert.Equal(t, 0.8, p.ConfidenceScore)
	assert.Equal(t, "evt-2", p.RelatedActivityID)
	assert.Equal(t, "Idle for more than 15 minutes.", p.Description)
	assert.True(t, p.Timestamp.Equal(long.TimestampStart))
}

func TestDetectIdlePatterns_None(t *testing.T) {
	patterns, err := DetectIdlePatterns([]activity.Event{ev("2026-01-15T10:00:00Z", 60, "a", "b")}, DefaultIdleParams())
	require.NoError(t, err)
	assert.Empty(t, patterns)
	assert.NotNil(t, patterns)
}

func TestDetectIdlePatterns_InvalidInput(t *testing.T) {
	bad := ev("2026-01-15T10:00:00Z", 60, "a", "b")
	bad.TimestampEnd = bad.TimestampStart.Add(-1)

	_, err := DetectIdlePatterns([]activity.Event{bad}, DefaultIdleParams())
	assert.ErrorIs(t, err, activity.ErrInvalidInput)
}
