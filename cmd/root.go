package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mj1618/winwatch/internal/config"
	"github.com/mj1618/winwatch/internal/output"
	"github.com/mj1618/winwatch/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "winwatch",
	Short: "Track top-level desktop windows and filter them with rules",
	Long: `winwatch keeps a live list of the desktop's top-level windows (title,
handle, visibility) and filters it with a small rule language:

  $.title match {.*[\x{4E00}-\x{9FFF}]} and $.visible is true

Rules are conjunctions of clauses joined by " and ". Attributes are title and
visible; operators are match (prefix-anchored regexp), ==, and is.`,
	SilenceUsage: true,
}

// appConfig is the loaded configuration, set by the root PersistentPreRunE.
var appConfig = defaultConfig()

// logger writes to stderr at the configured level.
var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json (default: json when piped, else yaml)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ./.winwatch.yaml or ~/.config/winwatch/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("fixture", "", "Read windows from a YAML fixture instead of the desktop")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		path, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		if lvl, _ := rootCmd.PersistentFlags().GetString("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}
		if fixture, _ := rootCmd.PersistentFlags().GetString("fixture"); fixture != "" {
			cfg.Fixture = fixture
		}
		level, err := config.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		// Use the root persistent flag directly to avoid conflicts with
		// subcommand local flags.
		format, _ := rootCmd.PersistentFlags().GetString("format")
		if format == "" {
			format = cfg.Format
		}

		// Smart default: piped output gets JSON, a terminal gets YAML.
		if format == "" {
			if output.IsPiped() {
				format = string(output.FormatJSON)
			} else {
				format = string(output.FormatYAML)
			}
		}
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		if prettyFlag := cmd.Flags().Lookup("pretty"); prettyFlag != nil {
			if pretty, err := cmd.Flags().GetBool("pretty"); err == nil && pretty {
				output.PrettyOutput = true
			}
		}

		appConfig = cfg
		if cfg.ConfigFile != "" {
			logger.Debug("config loaded", "path", cfg.ConfigFile)
		}
		return nil
	}
}

func defaultConfig() *config.Config {
	cfg := config.Defaults()
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
