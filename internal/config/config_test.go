package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/winwatch/internal/rules"
)

// isolate points the search path at empty directories and clears env.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, k := range []string{"RULE", "INTERVAL", "STOP_GRACE", "LOG_LEVEL", "FORMAT", "FIXTURE", "OTEL_ENDPOINT"} {
		t.Setenv(envPrefix+k, "")
	}
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	return dir
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigFile != "" {
		t.Errorf("expected no config file, got %q", cfg.ConfigFile)
	}
	if cfg.Rule != rules.DefaultRuleText {
		t.Errorf("expected default rule, got %q", cfg.Rule)
	}
	if cfg.IntervalDuration != time.Second {
		t.Errorf("expected 1s interval, got %s", cfg.IntervalDuration)
	}
	if cfg.StopGraceDuration != 5*time.Second {
		t.Errorf("expected 5s grace, got %s", cfg.StopGraceDuration)
	}
	if cfg.CompiledRule == nil || cfg.CompiledRule.String() != rules.DefaultRuleText {
		t.Error("expected compiled default rule")
	}
}

func TestLoad_CurrentDirectoryFile(t *testing.T) {
	isolate(t)
	writeFile(t, ".winwatch.yaml", "rule: \"$.visible is true\"\ninterval: 250ms\nformat: json\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigFile != ".winwatch.yaml" {
		t.Errorf("expected .winwatch.yaml, got %q", cfg.ConfigFile)
	}
	if cfg.Rule != "$.visible is true" {
		t.Errorf("unexpected rule %q", cfg.Rule)
	}
	if cfg.IntervalDuration != 250*time.Millisecond {
		t.Errorf("expected 250ms, got %s", cfg.IntervalDuration)
	}
	if cfg.Format != "json" {
		t.Errorf("expected json, got %q", cfg.Format)
	}
	// Unset fields keep their defaults.
	if cfg.StopGrace != "5s" || cfg.LogLevel != "info" {
		t.Errorf("defaults lost: grace %q level %q", cfg.StopGrace, cfg.LogLevel)
	}
}

func TestLoad_HomeFile(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	dir := filepath.Join(home, ".config", "winwatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "config.yaml"), "log_level: debug\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug, got %q", cfg.LogLevel)
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "stop_grace: \"0\"\nfixture: windows.yaml\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ConfigFile != path {
		t.Errorf("expected %q, got %q", path, cfg.ConfigFile)
	}
	if cfg.StopGraceDuration != 0 {
		t.Errorf("expected zero grace, got %s", cfg.StopGraceDuration)
	}
	if cfg.Fixture != "windows.yaml" {
		t.Errorf("unexpected fixture %q", cfg.Fixture)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)
	writeFile(t, ".winwatch.yaml", "interval: 2s\nlog_level: warn\n")
	t.Setenv("WINWATCH_INTERVAL", "3s")
	t.Setenv("WINWATCH_RULE", "$.title == Terminal")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4318")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IntervalDuration != 3*time.Second {
		t.Errorf("expected env interval 3s, got %s", cfg.IntervalDuration)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected file log level, got %q", cfg.LogLevel)
	}
	if cfg.Rule != "$.title == Terminal" {
		t.Errorf("expected env rule, got %q", cfg.Rule)
	}
	if cfg.OTELEndpoint != "http://collector:4318" {
		t.Errorf("expected OTLP endpoint fallback, got %q", cfg.OTELEndpoint)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"bad yaml", "rule: [unclosed", "parsing config file"},
		{"bad interval", "interval: soon", "invalid interval"},
		{"zero interval", "interval: \"0\"", "must be positive"},
		{"negative grace", "stop_grace: -1s", "must not be negative"},
		{"bad level", "log_level: loud", "unknown log level"},
		{"bad format", "format: xml", "unsupported format"},
		{"bad rule", "rule: \"title == x\"", "invalid rule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			writeFile(t, ".winwatch.yaml", tt.file+"\n")
			_, err := Load("")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_BadRuleIsSyntaxError(t *testing.T) {
	isolate(t)
	t.Setenv("WINWATCH_RULE", "$.color == red")
	_, err := Load("")
	if !errors.Is(err, rules.ErrSyntax) {
		t.Errorf("expected rules.ErrSyntax, got %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Error("expected error for unknown level")
	}
}
