package registry

import (
	"io"
	"log/slog"
	"time"

	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/rules"
	"github.com/mj1618/winwatch/internal/telemetry"
)

const (
	// DefaultInterval is the pause before each refresh.
	DefaultInterval = time.Second

	// DefaultGrace bounds how long Stop waits for the worker to exit.
	DefaultGrace = 5 * time.Second
)

// Option configures a Registry.
type Option func(*Registry)

// WithInterval sets the tick interval. Non-positive values keep the default.
func WithInterval(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithGrace sets how long Stop waits before giving up with
// ErrShutdownTimeout. Zero waits until the context is done.
func WithGrace(d time.Duration) Option {
	return func(r *Registry) {
		if d >= 0 {
			r.grace = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithRule sets the rule used by Filtered. Without it the default rule applies.
func WithRule(rule *rules.Rule) Option {
	return func(r *Registry) {
		if rule != nil {
			r.rule.Store(rule)
		}
	}
}

// WithOnPublish registers a callback run on the worker after every publish.
// It must not block; the next tick waits for it.
func WithOnPublish(fn func(model.Snapshot)) Option {
	return func(r *Registry) { r.onPublish = fn }
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
