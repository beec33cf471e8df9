package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/rules"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatYAML, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (use yaml or json)", s)
	}
}

// IsPiped reports whether stdout is not a terminal.
func IsPiped() bool {
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// ListResult is the top-level output of the `list` command.
type ListResult struct {
	Rule    string         `yaml:"rule,omitempty" json:"rule,omitempty"`
	Seq     uint64         `yaml:"seq"            json:"seq"`
	TS      int64          `yaml:"ts"             json:"ts"`
	Windows []model.Window `yaml:"windows"        json:"windows"`
}

// ActionResult is the output of commands that act on one window.
type ActionResult struct {
	OK     bool          `yaml:"ok"               json:"ok"`
	Action string        `yaml:"action"           json:"action"`
	Window *model.Window `yaml:"window,omitempty" json:"window,omitempty"`
}

// CheckResult is the output of the `check` command for one window.
type CheckResult struct {
	Rule    string               `yaml:"rule"              json:"rule"`
	Window  model.Window         `yaml:"window"            json:"window"`
	Match   bool                 `yaml:"match"             json:"match"`
	Clauses []rules.ClauseResult `yaml:"clauses,omitempty" json:"clauses,omitempty"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
