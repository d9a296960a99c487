// Package config defines the generator configuration and how it is loaded.
//
// Conventions:
// - New returns a Config with defaults; Load layers sources on top of it.
// - Errors returned by Load and Validate wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Supported values for SQLDriver.
var drivers = map[string]bool{"psql": true, "sqlite": true, "mysql": true}

// Config contains process configuration.
type Config struct {
	// Event is the psql schema, sqlite file or mysql database of the event.
	Event string `koanf:"event"`

	// SQLDriver selects the database backend: psql, sqlite or mysql.
	SQLDriver   string `koanf:"sql_driver"`
	SQLServer   string `koanf:"sql_server"`
	SQLPort     int    `koanf:"sql_port"`
	User        string `koanf:"user"`
	Password    string `koanf:"password"`
	SQLDatabase string `koanf:"sql_database"`

	// Stage is rendered by results and startlists.
	Stage int `koanf:"stage"`
	// StageCount is the number of stages summed by totals.
	StageCount int `koanf:"stage_count"`

	// Mode lists report kinds, e.g. "all" or "results,totals".
	Mode      string `koanf:"mode"`
	MainIndex bool   `koanf:"main_index"`

	HTMLDir string `koanf:"html_dir"`
	// RefreshInterval is in seconds; 0 generates once and exits.
	RefreshInterval int  `koanf:"refresh_interval"`
	Hours           bool `koanf:"hours"`

	ClassesLike    string `koanf:"classes_like"`
	ClassesNotLike string `koanf:"classes_not_like"`

	// Templates is an optional directory overriding the built-in templates.
	Templates string `koanf:"templates"`
	// XLSX also exports totals to total/results.xlsx.
	XLSX bool `koanf:"xlsx"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// MetricsAddr serves /metrics when set, e.g. ":9108".
	MetricsAddr string `koanf:"metrics_addr"`
	// MetricsTextfile receives the metrics after every pass when set.
	MetricsTextfile string `koanf:"metrics_textfile"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		SQLDriver:       "psql",
		SQLServer:       "localhost",
		SQLPort:         5432,
		User:            "quickevent",
		SQLDatabase:     "quickevent",
		Stage:           1,
		StageCount:      2,
		Mode:            "all",
		HTMLDir:         "./html",
		RefreshInterval: 60,
		Hours:           true,
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Refresh returns the refresh interval as a duration.
func (c *Config) Refresh() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Event) == "":
		return fmt.Errorf("%w: event must not be empty", ErrInvalidConfig)
	case !drivers[c.SQLDriver]:
		return fmt.Errorf("%w: unknown sql driver %q", ErrInvalidConfig, c.SQLDriver)
	case c.Stage < 1:
		return fmt.Errorf("%w: stage must be at least 1, got %d", ErrInvalidConfig, c.Stage)
	case c.StageCount < 1:
		return fmt.Errorf("%w: stage count must be at least 1, got %d", ErrInvalidConfig, c.StageCount)
	case c.RefreshInterval < 0:
		return fmt.Errorf("%w: refresh interval must not be negative", ErrInvalidConfig)
	case strings.TrimSpace(c.HTMLDir) == "":
		return fmt.Errorf("%w: html dir must not be empty", ErrInvalidConfig)
	}
	if _, err := ParseMode(c.Mode); err != nil {
		return err
	}
	return nil
}

// Modes is the parsed form of Config.Mode.
type Modes struct {
	Results    bool
	Startlists bool
	Totals     bool
	MainIndex  bool
}

// ParseMode accepts a comma separated list of results|r, startlists|starts|s,
// totals|total|t and all|a. "all" selects every report and the main index.
func ParseMode(mode string) (Modes, error) {
	var m Modes
	for _, part := range strings.Split(mode, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "results", "r":
			m.Results = true
		case "startlists", "starts", "s":
			m.Startlists = true
		case "totals", "total", "t":
			m.Totals = true
		case "all", "a":
			m = Modes{Results: true, Startlists: true, Totals: true, MainIndex: true}
		default:
			return Modes{}, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, part)
		}
	}
	return m, nil
}

// Modes returns the parsed mode with MainIndex forced on when requested.
// Call after Validate.
func (c *Config) Modes() Modes {
	m, _ := ParseMode(c.Mode)
	m.MainIndex = m.MainIndex || c.MainIndex
	return m
}
