package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/config"
	"github.com/blackwell-systems/focuslens/internal/output"
	"github.com/blackwell-systems/focuslens/internal/stats"
	"github.com/blackwell-systems/focuslens/internal/store"
)

var (
	trackCompare int
	trackHistory int
	trackArchive bool
)

var trackCmd = &cobra.Command{
	Use:   "track [timeline]",
	Short: "Snapshot results and compare over time",
	Long: `Analyze a timeline, store the focus scores, anomalies, category trends,
and summary metrics as a new snapshot, and compare against a previous snapshot
with trend arrows. With --archive, a zstd-compressed copy of the timeline is
kept next to the snapshot database.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrack,
}

func init() {
	trackCmd.Flags().IntVar(&trackCompare, "compare", 1, "Compare against Nth previous snapshot (1 = most recent)")
	trackCmd.Flags().IntVar(&trackHistory, "history", 0, "Show metric trends across N most recent snapshots")
	trackCmd.Flags().BoolVar(&trackArchive, "archive", false, "Store a compressed copy of the timeline with the snapshot")
	rootCmd.AddCommand(trackCmd)
}

// Aggregate metric names stored per snapshot.
const (
	metricFocusAverage       = "focus_average"
	metricQualifyingSessions = "qualifying_sessions"
	metricTotalSessions      = "total_sessions"
	metricDistractions       = "distractions"
	metricAvgActiveSeconds   = "avg_active_seconds_per_day"
	metricAnomalyDays        = "anomaly_days"
	metricRisingCategories   = "rising_categories"
	metricFallingCategories  = "falling_categories"
	metricIdleStretches      = "idle_stretches"
)

// metricDirection maps metric names to whether higher values are better.
var metricDirection = map[string]bool{
	metricFocusAverage:       true,
	metricQualifyingSessions: true,
	metricTotalSessions:      true,
	metricDistractions:       false,
	metricAvgActiveSeconds:   true,
	metricAnomalyDays:        false,
	metricRisingCategories:   true,
	metricFallingCategories:  false,
	metricIdleStretches:      false,
}

// metricDisplayOrder defines the order metrics appear in history output.
var metricDisplayOrder = []string{
	metricFocusAverage,
	metricQualifyingSessions,
	metricTotalSessions,
	metricDistractions,
	metricAvgActiveSeconds,
	metricAnomalyDays,
	metricRisingCategories,
	metricFallingCategories,
	metricIdleStretches,
}

// metricShortName returns a compact label for display.
func metricShortName(name string) string {
	short := map[string]string{
		metricFocusAverage:       "Focus Average",
		metricQualifyingSessions: "Scored Sessions",
		metricTotalSessions:      "Sessions",
		metricDistractions:       "Distractions",
		metricAvgActiveSeconds:   "Active / Day (s)",
		metricAnomalyDays:        "Anomalous Days",
		metricRisingCategories:   "Rising Categories",
		metricFallingCategories:  "Falling Categories",
		metricIdleStretches:      "Idle Stretches",
	}
	if s, ok := short[name]; ok {
		return s
	}
	return name
}

func runTrack(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := timelinePath(cfg, args)
	if err != nil {
		return err
	}
	events, err := loadTimeline(path)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	rec, err := recordSnapshot(cmd.Context(), db, cfg, path, events, trackArchive)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if trackHistory > 0 {
		hist, err := loadHistory(db, trackHistory)
		if err != nil {
			return err
		}
		if flagJSON {
			return writeJSON(w, hist)
		}
		renderHistory(w, hist)
		return nil
	}

	// trackCompare=1 means compare against the immediate predecessor (offset 2 from newest).
	prev, err := db.GetSnapshotN(trackCompare + 1)
	if err != nil {
		return fmt.Errorf("loading previous snapshot: %w", err)
	}
	var diff *store.SnapshotDiff
	if prev != nil {
		diff, err = db.CompareSnapshots(prev.ID, rec.Snapshot.ID, metricDirection)
		if err != nil {
			return err
		}
	}

	if flagJSON {
		result := map[string]any{"snapshot": rec.Snapshot}
		if diff != nil {
			result["diff"] = diff
		}
		if rec.Archive != nil {
			result["archive"] = rec.Archive
		}
		return writeJSON(w, result)
	}
	renderTrackOutput(w, rec, diff)
	return nil
}

// trackRecord is the outcome of storing one snapshot.
type trackRecord struct {
	Snapshot *store.Snapshot
	Report   *analyzer.Report
	Archive  *store.ArchiveRow
}

// recordSnapshot analyzes events and stores the results as a new snapshot,
// optionally with a compressed copy of the timeline.
func recordSnapshot(ctx context.Context, db *store.DB, cfg *config.Config, source string, events []activity.Event, archive bool) (*trackRecord, error) {
	report, err := analyzer.BuildReport(ctx, events, cfg.AnalyzerOptions())
	if err != nil {
		return nil, err
	}

	snapshotID, err := db.CreateSnapshot("track", appVersion, source, report.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot: %w", err)
	}
	if err := db.InsertAggregateMetrics(snapshotID, buildAggregateMetrics(report)); err != nil {
		return nil, fmt.Errorf("inserting metrics: %w", err)
	}
	if err := db.InsertFocusScores(snapshotID, report.Focus.SessionScores); err != nil {
		return nil, fmt.Errorf("inserting focus scores: %w", err)
	}
	if err := db.InsertAnomalies(snapshotID, report.Anomalies.Anomalies); err != nil {
		return nil, fmt.Errorf("inserting anomalies: %w", err)
	}
	if err := db.InsertCategoryTrends(snapshotID, report.Trends.TrendingCategories); err != nil {
		return nil, fmt.Errorf("inserting category trends: %w", err)
	}

	rec := &trackRecord{Report: report}
	if archive {
		if err := archiveTimeline(db, cfg.Storage.ArchiveDir, snapshotID, events); err != nil {
			return nil, err
		}
		if rec.Archive, err = db.GetArchive(snapshotID); err != nil {
			return nil, fmt.Errorf("loading archive: %w", err)
		}
	}

	if rec.Snapshot, err = db.GetSnapshot(snapshotID); err != nil {
		return nil, fmt.Errorf("loading current snapshot: %w", err)
	}
	return rec, nil
}

func archiveTimeline(db *store.DB, dir string, snapshotID int64, events []activity.Event) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("snapshot-%d.jsonl.zst", snapshotID))
	n, err := activity.WriteCompressed(events, path)
	if err != nil {
		return fmt.Errorf("archiving timeline: %w", err)
	}
	if err := db.InsertArchive(snapshotID, path, n, len(events)); err != nil {
		return fmt.Errorf("recording archive: %w", err)
	}
	slog.Debug("archived timeline", "path", path, "bytes", n, "events", len(events))
	return nil
}

// buildAggregateMetrics produces a flat map of metric name to value from a
// report.
func buildAggregateMetrics(r *analyzer.Report) map[string]float64 {
	distractions := 0
	for _, s := range r.Focus.SessionScores {
		distractions += s.DistractionCount
	}
	var rising, falling int
	for _, c := range r.Trends.TrendingCategories {
		switch c.Trend {
		case analyzer.TrendRising:
			rising++
		case analyzer.TrendFalling:
			falling++
		}
	}
	active := make([]float64, len(r.DailyTotals))
	for i, d := range r.DailyTotals {
		active[i] = d.TotalSeconds
	}

	m := map[string]float64{
		metricQualifyingSessions: float64(r.Focus.QualifyingSessions),
		metricTotalSessions:      float64(r.Focus.TotalSessions),
		metricDistractions:       float64(distractions),
		metricAvgActiveSeconds:   stats.Round(stats.Mean(active), 2),
		metricAnomalyDays:        float64(len(r.Anomalies.Anomalies)),
		metricRisingCategories:   float64(rising),
		metricFallingCategories:  float64(falling),
		metricIdleStretches:      float64(len(r.IdlePatterns)),
	}
	if r.Focus.DailyAverage != nil {
		m[metricFocusAverage] = float64(*r.Focus.DailyAverage)
	}
	return m
}

func renderTrackOutput(w io.Writer, rec *trackRecord, diff *store.SnapshotDiff) {
	current := rec.Snapshot
	fmt.Fprintln(w, output.Section("Track: Snapshot Comparison"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, " Snapshot #%d taken at %s\n", current.ID, current.TakenAt.Local().Format("2006-01-02 15:04:05"))
	if rec.Archive != nil {
		fmt.Fprintf(w, " %s\n", output.StyleMuted.Render(fmt.Sprintf("Archived %d events to %s (%d bytes)", rec.Archive.Events, rec.Archive.Path, rec.Archive.Bytes)))
	}
	fmt.Fprintln(w)

	if diff == nil {
		fmt.Fprintln(w, " First snapshot recorded. Run 'focuslens track' again later to see trends.")
		return
	}

	fmt.Fprintf(w, " Comparing against snapshot #%d (%s)\n\n",
		diff.Previous.ID, diff.Previous.TakenAt.Local().Format("2006-01-02 15:04:05"))

	tbl := output.NewTable("Metric", "Previous", "Current", "Delta", "Trend")
	for _, d := range diff.Deltas {
		higherIsBetter, known := metricDirection[d.Name]
		if !known {
			higherIsBetter = true
		}
		tbl.AddRow(
			metricShortName(d.Name),
			fmt.Sprintf("%.1f", d.Previous),
			fmt.Sprintf("%.1f", d.Current),
			fmt.Sprintf("%+.1f", d.Delta),
			output.TrendArrow(d.Delta, higherIsBetter),
		)
	}
	tbl.Fprint(w)

	for _, date := range diff.NewAnomalyDates {
		fmt.Fprintf(w, " %s\n", output.StyleWarning.Render("New anomalous day: "+date))
	}
}

// metricHistory is the value of every metric across recent snapshots.
type metricHistory struct {
	Snapshots []store.Snapshot                `json:"snapshots"`
	Metrics   map[string][]store.MetricPoint `json:"metrics"`
}

// loadHistory collects the n most recent snapshots, oldest first, with each
// metric's values.
func loadHistory(db *store.DB, n int) (*metricHistory, error) {
	snapshots, err := db.GetRecentSnapshots(n)
	if err != nil {
		return nil, fmt.Errorf("loading snapshots: %w", err)
	}
	// Reverse so oldest is first (left to right = chronological).
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}

	hist := &metricHistory{Snapshots: snapshots, Metrics: make(map[string][]store.MetricPoint)}
	for _, name := range metricDisplayOrder {
		points, err := db.MetricHistory(name, n)
		if err != nil {
			return nil, fmt.Errorf("loading history of %s: %w", name, err)
		}
		hist.Metrics[name] = points
	}
	return hist, nil
}

// renderHistory shows a multi-snapshot timeline table.
func renderHistory(w io.Writer, hist *metricHistory) {
	fmt.Fprintln(w, output.Section("Track: Metric History"))
	fmt.Fprintln(w)

	if len(hist.Snapshots) == 0 {
		fmt.Fprintln(w, " No snapshots found. Run 'focuslens track' to create one.")
		return
	}
	fmt.Fprintf(w, " Showing %d most recent snapshots\n\n", len(hist.Snapshots))

	headers := []string{"Metric"}
	for _, s := range hist.Snapshots {
		headers = append(headers, fmt.Sprintf("#%d %s", s.ID, s.TakenAt.Local().Format(time.DateOnly)))
	}
	headers = append(headers, "Trend")
	tbl := output.NewTable(headers...)

	for _, name := range metricDisplayOrder {
		bySnapshot := make(map[int64]float64)
		for _, p := range hist.Metrics[name] {
			bySnapshot[p.SnapshotID] = p.Value
		}

		row := []string{metricShortName(name)}
		var first, last float64
		seen := 0
		for _, s := range hist.Snapshots {
			v, ok := bySnapshot[s.ID]
			if !ok {
				row = append(row, output.StyleMuted.Render("-"))
				continue
			}
			if seen == 0 {
				first = v
			}
			last = v
			seen++
			row = append(row, fmt.Sprintf("%.1f", v))
		}

		trend := output.StyleMuted.Render("-")
		if seen >= 2 {
			trend = output.TrendArrow(last-first, metricDirection[name])
		}
		row = append(row, trend)
		tbl.AddRow(row...)
	}
	tbl.Fprint(w)
}
