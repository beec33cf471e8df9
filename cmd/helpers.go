package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mj1618/winwatch/internal/lifecycle"
	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/platform"
	"github.com/mj1618/winwatch/internal/platform/static"
	"github.com/mj1618/winwatch/internal/registry"
	"github.com/mj1618/winwatch/internal/rules"
	"github.com/mj1618/winwatch/internal/telemetry"
	"github.com/mj1618/winwatch/internal/version"
	"github.com/spf13/cobra"
)

// errNoMatch is returned when no window satisfies the selection rule.
var errNoMatch = errors.New("no window matches the rule")

// newProvider returns the fixture-backed provider when a fixture is
// configured, otherwise the platform's native one.
func newProvider() (*platform.Provider, error) {
	if appConfig.Fixture != "" {
		src, err := static.Load(appConfig.Fixture)
		if err != nil {
			return nil, err
		}
		logger.Debug("using window fixture", "path", appConfig.Fixture)
		return src.Provider(), nil
	}
	return platform.NewProvider()
}

// newRegistry builds a registry over p configured from appConfig.
func newRegistry(p *platform.Provider, opts ...registry.Option) *registry.Registry {
	base := []registry.Option{
		registry.WithInterval(appConfig.IntervalDuration),
		registry.WithGrace(appConfig.StopGraceDuration),
		registry.WithLogger(logger),
		registry.WithRule(appConfig.CompiledRule),
	}
	return registry.New(p.Source, append(base, opts...)...)
}

// initTelemetry starts OTLP metric export when an endpoint is configured.
// The returned Telemetry is never nil; its Metrics may record into a no-op
// provider.
func initTelemetry(ctx context.Context) (*telemetry.Telemetry, error) {
	return telemetry.Init(ctx, telemetry.Config{
		Endpoint: appConfig.OTELEndpoint,
		Version:  version.Version,
	})
}

// shutdownTelemetry flushes metrics with a short deadline.
func shutdownTelemetry(t *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.Shutdown(ctx); err != nil {
		logger.Warn("telemetry shutdown failed", "error", err)
	}
}

// finishRegistry tears down co's registry, allowing grace plus a second.
// A teardown failure is logged and returned unless err is already set.
func finishRegistry(co *lifecycle.Coordinator, grace time.Duration, err error) error {
	ctx, cancel := context.WithTimeout(context.Background(), grace+time.Second)
	defer cancel()
	if terr := co.Teardown(ctx); terr != nil {
		logger.Error("registry teardown failed", "error", terr)
		if err == nil {
			return terr
		}
	}
	return err
}

// addRuleFlags registers --rule and --all on a command.
func addRuleFlags(cmd *cobra.Command) {
	cmd.Flags().String("rule", "", "Filter rule (default: the configured rule)")
	cmd.Flags().Bool("all", false, "Ignore the rule and include every window")
}

// getRuleFlags returns the rule selected by --rule, or nil for the
// configured default, and whether --all was set.
func getRuleFlags(cmd *cobra.Command) (*rules.Rule, bool, error) {
	all, _ := cmd.Flags().GetBool("all")
	text, _ := cmd.Flags().GetString("rule")
	if text == "" {
		return nil, all, nil
	}
	rule, err := rules.Parse(text)
	if err != nil {
		return nil, all, err
	}
	return rule, all, nil
}

// selectWindows applies --rule/--all to the registry's current snapshot.
func selectWindows(reg *registry.Registry, rule *rules.Rule, all bool) ([]model.Window, error) {
	if all {
		return reg.Snapshot().Windows, nil
	}
	if rule == nil {
		return reg.Filtered()
	}
	return rules.FilterWindows(rule, reg.Snapshot().Windows)
}

// resolveTarget picks the window a focus/show command acts on: the one named
// by handle when set, otherwise the first window the rule selects.
func resolveTarget(ctx context.Context, p *platform.Provider, handle string, rule *rules.Rule, all bool) (model.Window, error) {
	reg := newRegistry(p)
	if err := reg.Refresh(ctx); err != nil {
		return model.Window{}, err
	}

	if handle != "" {
		h, err := model.ParseHandle(handle)
		if err != nil {
			return model.Window{}, err
		}
		w, ok := reg.Snapshot().Lookup(h)
		if !ok {
			return model.Window{}, fmt.Errorf("window %s: %w", h, platform.ErrNoWindow)
		}
		return w, nil
	}

	windows, err := selectWindows(reg, rule, all)
	if err != nil {
		return model.Window{}, err
	}
	if len(windows) == 0 {
		return model.Window{}, errNoMatch
	}
	return windows[0], nil
}

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
