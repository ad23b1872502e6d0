// Package watcher provides background monitoring of an activity timeline,
// recomputing focus, anomaly and trend signals when the file changes and
// emitting alerts for notable shifts.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

// WatchState captures the derived signals of a timeline at one point in time.
type WatchState struct {
	Timestamp  time.Time
	EventCount int

	// FocusAverage is the mean qualifying session score; HasFocus is false
	// when no session qualified.
	FocusAverage int
	HasFocus     bool

	AnomalyDates []string                           // sorted
	Trends       map[string]analyzer.TrendDirection // category -> direction
	SessionIDs   []string                           // qualifying sessions, in start order

	sessions map[string]analyzer.SessionScore
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Options configures a Watcher.
type Options struct {
	Path     string
	Interval time.Duration
	Debounce time.Duration
	Analysis analyzer.Options
}

// Watcher monitors a timeline file and emits alerts when notable changes are
// detected. File writes trigger a check after the debounce quiet period; the
// interval ticker covers filesystems without change notifications.
type Watcher struct {
	opts          Options
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
	limiter       *rate.Limiter
}

// New creates a Watcher for the timeline at opts.Path.
func New(opts Options, alertFn func(Alert)) *Watcher {
	limit := rate.Inf
	if opts.Debounce > 0 {
		limit = rate.Every(opts.Debounce)
	}
	return &Watcher{
		opts:          opts,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		limiter:       rate.NewLimiter(limit, 1),
	}
}

// Run takes an initial snapshot, then re-checks on file changes and at every
// interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	w.previous = initial

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("file notifications unavailable, polling only", "error", err)
	} else {
		defer func() { _ = fsw.Close() }()
		// Watch the directory so editors that replace the file are seen.
		if err := fsw.Add(filepath.Dir(w.opts.Path)); err != nil {
			slog.Warn("cannot watch timeline directory, polling only", "path", w.opts.Path, "error", err)
		} else {
			events, errs = fsw.Events, fsw.Errors
		}
	}

	interval := w.opts.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if w.relevant(ev) {
				slog.Debug("timeline changed", "path", ev.Name, "op", ev.Op.String())
				settle = time.After(w.opts.Debounce)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			slog.Warn("watch error", "error", err)
		case <-settle:
			settle = nil
			if err := w.limiter.Wait(ctx); err != nil {
				return ctx.Err()
			}
			w.emit(w.Check(ctx))
		case <-ticker.C:
			if w.limiter.Allow() {
				w.emit(w.Check(ctx))
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(w.opts.Path) {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}

func (w *Watcher) emit(alerts []Alert) {
	if w.alertFn == nil {
		return
	}
	for _, a := range alerts {
		w.alertFn(a)
	}
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous state, updates the previous state, and returns any alerts.
// Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.Snapshot(ctx)
	if err != nil {
		return []Alert{{
			Level:   "warning",
			Title:   "Snapshot failed",
			Message: fmt.Sprintf("Could not analyze %s: %v", w.opts.Path, err),
			Time:    time.Now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot loads the timeline and derives the current state from it.
func (w *Watcher) Snapshot(ctx context.Context) (*WatchState, error) {
	events, err := activity.LoadFile(w.opts.Path)
	if err != nil {
		return nil, err
	}
	return BuildState(ctx, events, w.opts.Analysis)
}

// BuildState runs the analyses over events and keeps the signals the alert
// rules compare.
func BuildState(ctx context.Context, events []activity.Event, opts analyzer.Options) (*WatchState, error) {
	report, err := analyzer.BuildReport(ctx, events, opts)
	if err != nil {
		return nil, err
	}

	state := &WatchState{
		Timestamp:  time.Now(),
		EventCount: report.EventCount,
		Trends:     make(map[string]analyzer.TrendDirection),
		sessions:   make(map[string]analyzer.SessionScore),
	}
	if avg := report.Focus.DailyAverage; avg != nil {
		state.FocusAverage = *avg
		state.HasFocus = true
	}
	for _, s := range report.Focus.SessionScores {
		state.SessionIDs = append(state.SessionIDs, s.SessionID)
		state.sessions[s.SessionID] = s
	}
	for _, a := range report.Anomalies.Anomalies {
		state.AnomalyDates = append(state.AnomalyDates, a.Date)
	}
	sort.Strings(state.AnomalyDates)
	for _, tc := range report.Trends.TrendingCategories {
		state.Trends[tc.Category] = tc.Trend
	}
	return state, nil
}
