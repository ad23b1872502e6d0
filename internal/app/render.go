package app

import (
	"fmt"
	"io"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/output"
)

// maxSessionRows bounds the session table; the JSON output is complete.
const maxSessionRows = 20

func renderFocus(w io.Writer, f analyzer.FocusAnalysis) {
	fmt.Fprintln(w, output.Section("Focus Quality"))
	fmt.Fprintln(w)

	if f.InsufficientData {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render(f.Explanation))
		return
	}

	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Average score"), output.ScoreBar(float64(*f.DailyAverage), 20))
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Qualifying sessions"),
		output.StyleValue.Render(fmt.Sprintf("%d of %d", f.QualifyingSessions, f.TotalSessions)))
	fmt.Fprintf(w, " %s %s\n\n", output.StyleLabel.Render("Time zone"), f.TimeZone)

	days := output.NewTable("Day", "Sessions", "Average")
	for _, d := range f.Days {
		days.AddRow(d.Date, fmt.Sprintf("%d", d.QualifyingSessions), output.ScoreStyle(float64(d.Average)).Render(fmt.Sprintf("%d", d.Average)))
	}
	days.Fprint(w)
	fmt.Fprintln(w)

	sessions := output.NewTable("Start", "Length", "Score", "Distractions", "Switch penalty")
	for i, s := range f.SessionScores {
		if i == maxSessionRows {
			break
		}
		sessions.AddRow(
			s.Start.Format("2006-01-02 15:04"),
			output.Duration(s.End.Sub(s.Start).Seconds()),
			output.ScoreStyle(float64(s.FocusQualityScore)).Render(fmt.Sprintf("%d", s.FocusQualityScore)),
			fmt.Sprintf("%d", s.DistractionCount),
			fmt.Sprintf("%d", s.ContextSwitchPenalty),
		)
	}
	sessions.Fprint(w)
	if n := len(f.SessionScores); n > maxSessionRows {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render(fmt.Sprintf("... %d more (use --json for all)", n-maxSessionRows)))
	}
}

func renderAnomalies(w io.Writer, a analyzer.AnomalyAnalysis) {
	fmt.Fprintln(w, output.Section("Anomalous Days"))
	fmt.Fprintln(w)

	if a.InsufficientData {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render(a.Explanation))
		return
	}

	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Baseline"),
		fmt.Sprintf("%s ± %s per day over %d days", output.Duration(a.BaselineMean), output.Duration(a.BaselineStddev), a.DataPoints))
	fmt.Fprintln(w)

	if len(a.Anomalies) == 0 {
		fmt.Fprintf(w, " %s\n", output.StyleSuccess.Render(a.Explanation))
		return
	}

	tbl := output.NewTable("Date", "Active", "Deviation", "z", "Score")
	for _, an := range a.Anomalies {
		dev := fmt.Sprintf("%+.0f%%", an.DeviationPercent)
		tbl.AddRow(
			an.Date,
			output.Duration(an.TotalSeconds),
			output.StyleWarning.Render(dev),
			fmt.Sprintf("%.2f", an.ZScore),
			fmt.Sprintf("%.2f", an.AnomalyScore),
		)
	}
	tbl.Fprint(w)
	fmt.Fprintf(w, "\n %s\n", output.StyleMuted.Render(a.Explanation))
}

func renderTrends(w io.Writer, t analyzer.TrendAnalysis) {
	fmt.Fprintln(w, output.Section("Category Trends"))
	fmt.Fprintln(w)

	if t.InsufficientData {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render(t.Summary))
		return
	}

	tbl := output.NewTable("Category", "Trend", "Slope / day")
	for _, c := range t.TrendingCategories {
		tbl.AddRow(c.Category, output.Direction(string(c.Trend)), output.Duration(c.SlopePerDay))
	}
	tbl.Fprint(w)

	if len(t.Seasonality) > 0 {
		fmt.Fprintln(w)
		for _, s := range t.Seasonality {
			fmt.Fprintf(w, " • %s\n", s.Pattern)
		}
	}
	fmt.Fprintf(w, "\n %s\n", output.StyleMuted.Render(t.Summary))
}

func renderIdle(w io.Writer, patterns []analyzer.IdlePattern) {
	fmt.Fprintln(w, output.Section("Idle Stretches"))
	fmt.Fprintln(w)

	if len(patterns) == 0 {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render("No long idle stretches."))
		return
	}

	tbl := output.NewTable("Start", "Length", "Event")
	for _, p := range patterns {
		tbl.AddRow(p.Timestamp.Format("2006-01-02 15:04"), output.Duration(p.DurationSeconds), p.RelatedActivityID)
	}
	tbl.Fprint(w)
}

func renderCategorizations(w io.Writer, results []analyzer.EventCategorization) {
	fmt.Fprintln(w, output.Section("Categorization"))
	fmt.Fprintln(w)

	tbl := output.NewTable("#", "App", "Title", "Category", "Confidence", "Source")
	for _, r := range results {
		tbl.AddRow(
			fmt.Sprintf("%d", r.Index),
			r.App,
			truncate(r.Title, 40),
			r.Category,
			fmt.Sprintf("%.0f%%", r.Confidence*100),
			output.StyleMuted.Render(r.Source),
		)
	}
	tbl.Fprint(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
