package output

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ScoreBar renders a visual progress bar for a 0-100 score.
// Example: "████████░░ 80/100"
func ScoreBar(score float64, width int) string {
	if width <= 0 {
		width = 20
	}
	filled := int((score / 100.0) * float64(width))
	filled = max(0, min(filled, width))

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %s", ScoreStyle(score).Render(bar), StyleMuted.Render(fmt.Sprintf("%.0f/100", score)))
}

// ScoreStyle picks a style for a 0-100 focus score.
func ScoreStyle(score float64) lipgloss.Style {
	switch {
	case score >= 70:
		return StyleSuccess
	case score >= 40:
		return StyleWarning
	default:
		return StyleError
	}
}

// TrendArrow returns a styled trend indicator for a delta value.
// Positive delta shows an up arrow, negative shows down, zero shows a dash.
func TrendArrow(delta float64, higherIsBetter bool) string {
	return trendArrow(delta, higherIsBetter, "%.1f")
}

// TrendArrowPercent returns a styled trend indicator for a percentage delta.
func TrendArrowPercent(delta float64, higherIsBetter bool) string {
	return trendArrow(delta, higherIsBetter, "%.0f%%")
}

func trendArrow(delta float64, higherIsBetter bool, format string) string {
	if delta == 0 {
		return StyleMuted.Render("─")
	}

	var arrow string
	if delta > 0 {
		arrow = "▲ +" + fmt.Sprintf(format, delta)
	} else {
		arrow = "▼ " + fmt.Sprintf(format, delta)
	}

	if (delta > 0) == higherIsBetter {
		return StyleSuccess.Render(arrow)
	}
	return StyleError.Render(arrow)
}

// Direction renders a rising/falling/stable label.
func Direction(trend string) string {
	switch trend {
	case "rising":
		return StyleSuccess.Render("▲ rising")
	case "falling":
		return StyleError.Render("▼ falling")
	default:
		return StyleMuted.Render("─ stable")
	}
}

// Section prints a styled section header with a horizontal rule.
func Section(title string) string {
	header := StyleHeader.Render(title)
	rule := StyleMuted.Render(strings.Repeat("─", 66))
	return fmt.Sprintf("\n %s\n %s", header, rule)
}

// Duration formats seconds as a compact "1h 05m", "12m 30s", or "45s".
func Duration(seconds float64) string {
	s := int(math.Round(math.Abs(seconds)))
	sign := ""
	if seconds < 0 && s > 0 {
		sign = "-"
	}
	h, m, sec := s/3600, (s%3600)/60, s%60
	switch {
	case h > 0:
		return fmt.Sprintf("%s%dh %02dm", sign, h, m)
	case m > 0:
		return fmt.Sprintf("%s%dm %02ds", sign, m, sec)
	default:
		return fmt.Sprintf("%s%ds", sign, sec)
	}
}
