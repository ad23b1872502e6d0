// Package config provides configuration loading and defaults for focuslens.
package config

import (
	"time"

	"github.com/blackwell-systems/focuslens/internal/analyzer"
)

// DefaultConfigDir is the default location for focuslens configuration.
const DefaultConfigDir = "~/.config/focuslens"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "focuslens.db"

// DefaultArchiveDirName is the directory under the config dir that holds
// compressed timeline archives.
const DefaultArchiveDirName = "archive"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultTimeZone is used when no zone is configured.
const DefaultTimeZone = "UTC"

// EnvPrefix prefixes environment overrides, e.g. FOCUSLENS_TIME_ZONE.
const EnvPrefix = "FOCUSLENS"

// DefaultWatch holds the default watch timings.
var DefaultWatch = Watch{
	Interval: 5 * time.Minute,
	Debounce: 2 * time.Second,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultAppMappings converts the built-in application table into config
// form, sorted by application name.
func DefaultAppMappings() []AppMapping {
	return appMappingsFrom(analyzer.DefaultAppMappings())
}
