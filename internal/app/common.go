package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
	"github.com/blackwell-systems/focuslens/internal/config"
	"github.com/blackwell-systems/focuslens/internal/output"
)

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if flagZone != "" {
		if _, err := activity.LoadLocation(flagZone); err != nil {
			return nil, err
		}
		cfg.TimeZone = flagZone
	}
	if !cfg.Output.Color {
		output.SetNoColor(true)
	}
	return cfg, nil
}

// timelinePath picks the timeline from the first argument or the config.
func timelinePath(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Timeline != "" {
		return cfg.Timeline, nil
	}
	return "", errors.New("no timeline given: pass a file path or set timeline in the config")
}

func loadTimeline(path string) ([]activity.Event, error) {
	events, err := activity.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading timeline: %w", err)
	}
	slog.Debug("loaded timeline", "path", path, "events", len(events))
	return events, nil
}

// loadRules reads a JSON list of community rules. An empty path means no
// rules.
func loadRules(path string) (*analyzer.RuleSet, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var rules []analyzer.CommunityRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("decoding rules %s: %w", path, err)
	}
	rs, err := analyzer.NewRuleSet(rules)
	if err != nil {
		return nil, fmt.Errorf("compiling rules: %w", err)
	}
	slog.Debug("loaded community rules", "path", path, "rules", rs.Len())
	return rs, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dailySeries loads the timeline and aggregates it into local days.
func dailySeries(cfg *config.Config, args []string) (activity.DailySeries, error) {
	path, err := timelinePath(cfg, args)
	if err != nil {
		return activity.DailySeries{}, err
	}
	events, err := loadTimeline(path)
	if err != nil {
		return activity.DailySeries{}, err
	}
	if err := activity.ValidateEvents(events); err != nil {
		return activity.DailySeries{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return activity.DailySeries{}, err
	}
	return activity.AggregateDaily(events, loc), nil
}
