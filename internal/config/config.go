// Package config loads winwatch configuration from file and environment.
//
// Precedence (highest to lowest):
//  1. Environment variables (WINWATCH_*)
//  2. Config file
//  3. Built-in defaults
//
// Config file search order, unless a path is given:
//  1. .winwatch.yaml in current directory
//  2. ~/.config/winwatch/config.yaml
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mj1618/winwatch/internal/rules"
	"gopkg.in/yaml.v3"
)

const envPrefix = "WINWATCH_"

// ErrNoConfigFile is returned by FindFile when no config file exists in
// the search path.
var ErrNoConfigFile = errors.New("no config file found")

// Config holds all winwatch configuration.
type Config struct {
	Rule      string `yaml:"rule"`
	Interval  string `yaml:"interval"`   // Go duration string, e.g. "1s"
	StopGrace string `yaml:"stop_grace"` // "0" waits without a deadline
	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	Format    string `yaml:"format"`     // yaml or json; empty picks by terminal

	OTELEndpoint string `yaml:"otel_endpoint"`

	// Fixture replaces the OS window source with a YAML window list.
	Fixture string `yaml:"fixture"`

	// Parsed values (not from YAML, set after loading)
	IntervalDuration  time.Duration `yaml:"-"`
	StopGraceDuration time.Duration `yaml:"-"`
	CompiledRule      *rules.Rule   `yaml:"-"`

	// ConfigFile is the path to the config file that was loaded (empty if none).
	ConfigFile string `yaml:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Rule:      rules.DefaultRuleText,
		Interval:  "1s",
		StopGrace: "5s",
		LogLevel:  "info",
	}
}

// Load reads configuration from path, or from the search path when path is
// empty, then applies environment overrides and validates the result. A
// missing file is an error only when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		path, data, err = FindFile()
		if err != nil && !errors.Is(err, ErrNoConfigFile) {
			return nil, err
		}
	}

	if data != nil {
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
		mergeFile(cfg, &fileCfg)
	}

	mergeEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindFile searches for a config file and returns its path and contents.
func FindFile() (string, []byte, error) {
	// 1. Current directory
	if data, err := os.ReadFile(".winwatch.yaml"); err == nil {
		return ".winwatch.yaml", data, nil
	}

	// 2. ~/.config
	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, ".config", "winwatch", "config.yaml")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
	}

	return "", nil, ErrNoConfigFile
}

// mergeFile applies non-zero file values onto cfg.
func mergeFile(cfg *Config, file *Config) {
	if file.Rule != "" {
		cfg.Rule = file.Rule
	}
	if file.Interval != "" {
		cfg.Interval = file.Interval
	}
	if file.StopGrace != "" {
		cfg.StopGrace = file.StopGrace
	}
	if file.LogLevel != "" {
		cfg.LogLevel = file.LogLevel
	}
	if file.Format != "" {
		cfg.Format = file.Format
	}
	if file.OTELEndpoint != "" {
		cfg.OTELEndpoint = file.OTELEndpoint
	}
	if file.Fixture != "" {
		cfg.Fixture = file.Fixture
	}
}

// mergeEnv applies environment variables onto cfg. Env always wins.
func mergeEnv(cfg *Config) {
	if v := os.Getenv(envPrefix + "RULE"); v != "" {
		cfg.Rule = v
	}
	if v := os.Getenv(envPrefix + "INTERVAL"); v != "" {
		cfg.Interval = v
	}
	if v := os.Getenv(envPrefix + "STOP_GRACE"); v != "" {
		cfg.StopGrace = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv(envPrefix + "FIXTURE"); v != "" {
		cfg.Fixture = v
	}
	if v := os.Getenv(envPrefix + "OTEL_ENDPOINT"); v != "" {
		cfg.OTELEndpoint = v
	} else if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" && cfg.OTELEndpoint == "" {
		cfg.OTELEndpoint = v
	}
}

// Validate parses durations, checks enumerated fields and compiles the
// rule, filling the derived fields.
func (c *Config) Validate() error {
	var err error
	c.IntervalDuration, err = parseDuration(c.Interval, time.Second)
	if err != nil {
		return fmt.Errorf("invalid interval %q: %w", c.Interval, err)
	}
	if c.IntervalDuration <= 0 {
		return fmt.Errorf("invalid interval %q: must be positive", c.Interval)
	}
	c.StopGraceDuration, err = parseDuration(c.StopGrace, 5*time.Second)
	if err != nil {
		return fmt.Errorf("invalid stop_grace %q: %w", c.StopGrace, err)
	}
	if c.StopGraceDuration < 0 {
		return fmt.Errorf("invalid stop_grace %q: must not be negative", c.StopGrace)
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Format {
	case "", "yaml", "json":
	default:
		return fmt.Errorf("unsupported format %q (use yaml or json)", c.Format)
	}

	c.CompiledRule, err = rules.Parse(c.Rule)
	if err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}
	return nil
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// parseDuration parses a duration string. Empty returns the fallback; a bare
// "0" is zero.
func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	if s == "0" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
