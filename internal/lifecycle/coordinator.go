// Package lifecycle owns the process-wide window registry and its single
// teardown.
package lifecycle

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/mj1618/winwatch/internal/registry"
)

// Coordinator builds the registry on first use and stops it exactly once.
type Coordinator struct {
	logger *slog.Logger

	buildOnce sync.Once
	reg       atomic.Pointer[registry.Registry]

	teardownOnce sync.Once
	teardownErr  error
}

// New creates a coordinator. A nil logger discards output.
func New(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Coordinator{logger: logger}
}

var (
	defaultOnce sync.Once
	defaultCo   *Coordinator
)

// Default returns the process-wide coordinator, logging through
// slog.Default.
func Default() *Coordinator {
	defaultOnce.Do(func() {
		defaultCo = New(slog.Default())
	})
	return defaultCo
}

// Registry returns the coordinator's registry, calling factory to build it
// on the first call only. Later factories are ignored.
func (c *Coordinator) Registry(factory func() *registry.Registry) *registry.Registry {
	c.buildOnce.Do(func() {
		c.reg.Store(factory())
	})
	return c.reg.Load()
}

// Teardown stops the registry if it was ever started. Only the first call
// does any work; later calls return its result.
func (c *Coordinator) Teardown(ctx context.Context) error {
	c.teardownOnce.Do(func() {
		c.teardownErr = c.teardown(ctx)
	})
	return c.teardownErr
}

func (c *Coordinator) teardown(ctx context.Context) error {
	reg := c.reg.Load()
	if reg == nil || !reg.Started() {
		c.logger.Debug("teardown: registry never started")
		return nil
	}
	if err := reg.Stop(ctx); err != nil {
		c.logger.Error("teardown: registry stop failed", "error", err)
		return err
	}
	c.logger.Debug("teardown complete")
	return nil
}

// HandleSignals returns a context cancelled when one of sigs arrives, or
// SIGINT/SIGTERM when none are given. The returned stop func releases the
// signal handler.
func HandleSignals(ctx context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	return signal.NotifyContext(ctx, sigs...)
}
