package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/blackwell-systems/focuslens/internal/activity"
	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

// Config is the top-level focuslens configuration.
type Config struct {
	// TimeZone is the IANA zone used for local hours and calendar days.
	TimeZone string `mapstructure:"time_zone"`

	// Timeline is the default event file read when a command gets no path.
	Timeline string `mapstructure:"timeline"`

	// RulesFile optionally points at a JSON list of community rules.
	RulesFile string `mapstructure:"rules_file"`

	Storage  Storage                `mapstructure:"storage"`
	Sessions analyzer.SessionParams `mapstructure:"sessions"`
	Focus    analyzer.FocusParams   `mapstructure:"focus"`
	Anomaly  analyzer.AnomalyParams `mapstructure:"anomaly"`
	Trends   analyzer.TrendParams   `mapstructure:"trends"`
	Idle     analyzer.IdleParams    `mapstructure:"idle"`
	Taxonomy Taxonomy               `mapstructure:"taxonomy"`
	Watch    Watch                  `mapstructure:"watch"`
	Output   Output                 `mapstructure:"output"`
}

// Storage locates the snapshot database and timeline archives.
type Storage struct {
	DBPath     string `mapstructure:"db_path"`
	ArchiveDir string `mapstructure:"archive_dir"`
}

// Taxonomy is the keyword table used by the categorizer.
type Taxonomy struct {
	Categories []analyzer.CategoryKeywords `mapstructure:"categories"`
	Apps       []AppMapping                `mapstructure:"apps"`
}

// AppMapping assigns an application name to a category. It is a list entry
// rather than a map key because application names contain dots.
type AppMapping struct {
	App      string `mapstructure:"app"`
	Category string `mapstructure:"category"`
}

// Watch defines how often the watcher re-evaluates a timeline.
type Watch struct {
	Interval time.Duration `mapstructure:"interval"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Compile builds the analyzer taxonomy.
func (t Taxonomy) Compile() (*analyzer.Taxonomy, error) {
	apps := make(map[string]string, len(t.Apps))
	for _, m := range t.Apps {
		apps[strings.ToLower(m.App)] = m.Category
	}
	tax, err := analyzer.NewTaxonomy(t.Categories, apps)
	if err != nil {
		return nil, fmt.Errorf("compiling taxonomy: %w", err)
	}
	return tax, nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	return activity.LoadLocation(c.TimeZone)
}

// AnalyzerOptions copies the analysis parameters out of the config.
func (c *Config) AnalyzerOptions() analyzer.Options {
	return analyzer.Options{
		TimeZone: c.TimeZone,
		Sessions: c.Sessions,
		Focus:    c.Focus,
		Anomaly:  c.Anomaly,
		Trends:   c.Trends,
		Idle:     c.Idle,
	}
}

// Validate rejects settings the analyzers cannot work with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, key, reason string) {
		if !ok {
			errs = append(errs, fmt.Errorf("%s: %s", key, reason))
		}
	}

	check(c.Sessions.GapSeconds >= 0, "sessions.gap_seconds", "must not be negative")
	check(c.Focus.MinSessionSeconds >= 0, "focus.min_session_seconds", "must not be negative")
	for i, w := range c.Focus.TimeOfDay {
		check(w.StartHour >= 0 && w.EndHour <= 24 && w.StartHour < w.EndHour,
			fmt.Sprintf("focus.time_of_day[%d]", i), "hours must satisfy 0 <= start < end <= 24")
	}
	check(c.Anomaly.MinDataPoints >= 1, "anomaly.min_data_points", "must be at least 1")
	check(c.Anomaly.ZScoreThreshold > 0, "anomaly.z_score_threshold", "must be positive")
	check(c.Anomaly.ScoreDivisor > 0, "anomaly.score_divisor", "must be positive")
	check(c.Trends.RisingSlope >= c.Trends.FallingSlope, "trends.rising_slope", "must not be below trends.falling_slope")
	check(c.Trends.SeasonalityBand >= 0 && c.Trends.SeasonalityBand < 1, "trends.seasonality_band", "must be in [0, 1)")
	check(c.Watch.Debounce >= 0, "watch.debounce", "must not be negative")
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func setDefaults(v *viper.Viper) {
	sp := analyzer.DefaultSessionParams()
	fp := analyzer.DefaultFocusParams()
	ap := analyzer.DefaultAnomalyParams()
	tp := analyzer.DefaultTrendParams()
	ip := analyzer.DefaultIdleParams()

	v.SetDefault("time_zone", DefaultTimeZone)
	v.SetDefault("timeline", "")
	v.SetDefault("rules_file", "")
	v.SetDefault("storage.db_path", DBPath())
	v.SetDefault("storage.archive_dir", filepath.Join(ConfigDir(), DefaultArchiveDirName))

	v.SetDefault("sessions.gap_seconds", sp.GapSeconds)

	v.SetDefault("focus.min_session_seconds", fp.MinSessionSeconds)
	v.SetDefault("focus.passive_input_threshold", fp.PassiveInputThreshold)
	v.SetDefault("focus.passive_penalty_per_minute", fp.PassivePenaltyPerMinute)
	v.SetDefault("focus.context_switch_penalty", fp.ContextSwitchPenalty)
	v.SetDefault("focus.distraction_categories", fp.DistractionCategories)
	v.SetDefault("focus.distraction_penalty", fp.DistractionPenalty)
	v.SetDefault("focus.time_of_day", fp.TimeOfDay)

	v.SetDefault("anomaly.min_data_points", ap.MinDataPoints)
	v.SetDefault("anomaly.z_score_threshold", ap.ZScoreThreshold)
	v.SetDefault("anomaly.score_divisor", ap.ScoreDivisor)
	v.SetDefault("anomaly.max_results", ap.MaxResults)

	v.SetDefault("trends.rising_slope", tp.RisingSlope)
	v.SetDefault("trends.falling_slope", tp.FallingSlope)
	v.SetDefault("trends.max_categories", tp.MaxCategories)
	v.SetDefault("trends.seasonality_min_days", tp.SeasonalityMinDays)
	v.SetDefault("trends.seasonality_band", tp.SeasonalityBand)
	v.SetDefault("trends.seasonality_min_observations", tp.SeasonalityMinObservations)

	v.SetDefault("idle.min_afk_seconds", ip.MinAFKSeconds)

	v.SetDefault("taxonomy.categories", analyzer.DefaultCategoryKeywords())
	v.SetDefault("taxonomy.apps", DefaultAppMappings())

	v.SetDefault("watch.interval", DefaultWatch.Interval)
	v.SetDefault("watch.debounce", DefaultWatch.Debounce)

	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
}

// Load reads configuration from the given path (or the default location),
// applies FOCUSLENS_* environment overrides, and returns a validated Config
// with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Timeline = expandPath(cfg.Timeline)
	cfg.RulesFile = expandPath(cfg.RulesFile)
	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Storage.ArchiveDir = expandPath(cfg.Storage.ArchiveDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any file or
// environment variable.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(err)
	}
	return &cfg
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

func appMappingsFrom(apps map[string]string) []AppMapping {
	out := make([]AppMapping, 0, len(apps))
	for app, category := range apps {
		out = append(out, AppMapping{App: app, Category: category})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].App < out[j].App })
	return out
}
