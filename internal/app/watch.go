package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/focuslens/internal/config"
	"github.com/blackwell-systems/focuslens/internal/output"
	"github.com/blackwell-systems/focuslens/internal/watcher"
)

var (
	watchDaemon   bool
	watchInterval time.Duration
	watchDebounce time.Duration
	watchStop     bool
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [timeline]",
	Short: "Re-analyze a timeline as it changes",
	Long: `Watch a timeline file and re-run the analyses whenever it is written,
alerting on new anomalous days, focus score drops of 10 points or more,
categories that start falling, and newly scored sessions. The file is also
re-checked at every interval in case change notifications are unavailable.

Examples:
  focuslens watch events.jsonl                 # run in foreground (ctrl-c to stop)
  focuslens watch events.jsonl --daemon        # log alerts to a file, write PID file
  focuslens watch events.jsonl --interval 10m  # poll every 10 minutes
  focuslens watch --stop                       # stop the background daemon`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Polling interval (default from config, 5m)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Quiet period after a write before re-analyzing (default from config, 2s)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := timelinePath(cfg, args)
	if err != nil {
		return err
	}

	opts := watcher.Options{
		Path:     path,
		Interval: cfg.Watch.Interval,
		Debounce: cfg.Watch.Debounce,
		Analysis: cfg.AnalyzerOptions(),
	}
	if watchInterval > 0 {
		opts.Interval = watchInterval
	}
	if watchDebounce > 0 {
		opts.Debounce = watchDebounce
	}
	if opts.Interval < 10*time.Second {
		return fmt.Errorf("interval must be at least 10s, got %s", opts.Interval)
	}

	if watchDaemon {
		return runDaemon(opts)
	}
	return runForeground(cmd.OutOrStdout(), opts)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), shutdownSignals...)
}

// runForeground runs the watcher with live terminal output.
func runForeground(w io.Writer, opts watcher.Options) error {
	ctx, cancel := signalContext()
	defer cancel()

	alertFn := func(a watcher.Alert) {
		if !watchQuiet {
			printAlert(w, a)
		}
	}
	wt := watcher.New(opts, alertFn)

	// Take initial snapshot and display baseline.
	initial, err := wt.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot failed: %w", err)
	}
	if !watchQuiet {
		fmt.Fprintf(w, "focuslens watching %s (polling every %s)\n", opts.Path, opts.Interval)
		focus := "no scored sessions"
		if initial.HasFocus {
			focus = fmt.Sprintf("focus %d", initial.FocusAverage)
		}
		fmt.Fprintf(w, "[%s] %s Baseline: %d events, %s, %d anomalous day(s)\n",
			time.Now().Format("15:04:05"), output.StyleSuccess.Render(checkMark()),
			initial.EventCount, focus, len(initial.AnomalyDates))
	}

	err = wt.Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			fmt.Fprintln(w, "\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon sets up PID and log files, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(opts watcher.Options) error {
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file, remove it.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	// Everything the watcher logs goes to the daemon log as well.
	logger := slog.New(slog.NewTextHandler(logFile, nil))
	slog.SetDefault(logger)

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("daemon started", "pid", pid, "timeline", opts.Path, "interval", opts.Interval)

	alertFn := func(a watcher.Alert) {
		logger.Info(a.Title, "level", a.Level, "message", a.Message)
	}

	err = watcher.New(opts, alertFn).Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("daemon stopped")
		return nil
	}
	return err
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

// printAlert formats and prints an alert to the terminal.
func printAlert(w io.Writer, a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Fprintf(w, "[%s] %s %s\n", timestamp, alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "           %s\n", output.StyleMuted.Render(a.Message))
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return output.StyleError.Render("●")
	case "warning":
		return output.StyleWarning.Render("▲")
	case "info":
		return output.StyleSuccess.Render(checkMark())
	default:
		return " "
	}
}

// checkMark returns a terminal check mark indicator.
func checkMark() string {
	return "✓"
}
