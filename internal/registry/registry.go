// Package registry keeps an in-process model of the host's top-level
// windows, refreshed by a single background worker.
//
// The worker and its controller share no flags. Start arms a control
// channel with a RUNNING token; after every tick the worker polls that
// channel without blocking, re-arms it while running, and exits once it
// sees CLOSED. Stop pushes CLOSED and joins the worker.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mj1618/winwatch/internal/control"
	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/platform"
	"github.com/mj1618/winwatch/internal/rules"
	"github.com/mj1618/winwatch/internal/telemetry"
)

// Name tags every control token sent by a Registry.
const Name = "WindowRegistry"

// ErrShutdownTimeout is returned by Stop when the worker has not exited
// within the grace period or before the context ended.
var ErrShutdownTimeout = errors.New("window registry did not stop in time")

// ErrStopped is returned by Refresh once a started registry has been stopped.
var ErrStopped = errors.New("window registry stopped")

// State is the registry lifecycle state.
type State int

const (
	Idle State = iota
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Registry owns the current window snapshot and the worker refreshing it.
type Registry struct {
	src       platform.WindowSource
	ch        *control.Channel
	interval  time.Duration
	grace     time.Duration
	logger    *slog.Logger
	metrics   *telemetry.Metrics
	onPublish func(model.Snapshot)
	rule      atomic.Pointer[rules.Rule]

	// mu serializes lifecycle transitions; it is never held by readers.
	mu      sync.Mutex
	state   State
	done    chan struct{}
	started bool

	// refreshMu is held from enumeration to publish so snapshots are
	// replaced in the order they were read.
	refreshMu sync.Mutex
	snap      atomic.Pointer[model.Snapshot]
	seq       atomic.Uint64
}

// New creates an idle registry reading from src.
func New(src platform.WindowSource, opts ...Option) *Registry {
	r := &Registry{
		src:      src,
		ch:       control.New(Name, control.DefaultCapacity),
		interval: DefaultInterval,
		grace:    DefaultGrace,
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.snap.Store(&model.Snapshot{Windows: []model.Window{}})
	return r
}

// State returns the current lifecycle state.
func (r *Registry) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Started reports whether Start has ever launched a worker.
func (r *Registry) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Interval returns the tick interval.
func (r *Registry) Interval() time.Duration { return r.interval }

// Start launches the refresh worker. Calling it while a worker exists logs
// a warning and does nothing.
func (r *Registry) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != Idle {
		r.logger.Warn("registry start ignored", "state", r.state)
		return nil
	}

	// A CLOSED token left over from an earlier run must not stop this one.
	if n := r.ch.Drain(); n > 0 {
		r.logger.Debug("drained stale control tokens", "count", n)
	}
	if err := r.ch.Send(control.Running); err != nil {
		return fmt.Errorf("arm control channel: %w", err)
	}

	r.done = make(chan struct{})
	r.state = Running
	r.started = true
	go r.run(r.done)

	r.logger.Info("registry started", "interval", r.interval)
	return nil
}

// Stop asks the worker to exit and waits for it. It returns
// ErrShutdownTimeout if the worker is still running after the grace period
// or when ctx ends first; the registry then stays Stopping and a later Stop
// waits again. Stop on an idle registry does nothing.
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	switch r.state {
	case Idle:
		r.mu.Unlock()
		return nil
	case Running:
		r.state = Stopping
		if err := r.ch.Send(control.Closed); err != nil {
			// Only RUNNING tokens can be crowding the buffer.
			r.ch.Drain()
			if err := r.ch.Send(control.Closed); err != nil {
				r.state = Running
				r.mu.Unlock()
				return fmt.Errorf("signal worker: %w", err)
			}
		}
	}
	done := r.done
	r.mu.Unlock()

	var timeout <-chan time.Time
	if r.grace > 0 {
		timer := time.NewTimer(r.grace)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-done:
	case <-timeout:
		r.logger.Error("registry worker did not stop", "grace", r.grace)
		return fmt.Errorf("after %s: %w", r.grace, ErrShutdownTimeout)
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}

	// Wait out a Refresh that passed its state check before Stop began.
	r.refreshMu.Lock()
	r.refreshMu.Unlock()

	r.mu.Lock()
	if r.done == done {
		r.state = Idle
	}
	r.mu.Unlock()
	r.logger.Info("registry stopped")
	return nil
}

// Snapshot returns the most recently published snapshot without blocking.
// The returned Windows slice is shared and must not be modified.
func (r *Registry) Snapshot() model.Snapshot {
	return *r.snap.Load()
}

// Rule returns the rule used by Filtered.
func (r *Registry) Rule() *rules.Rule {
	if rule := r.rule.Load(); rule != nil {
		return rule
	}
	return rules.Default()
}

// SetRule replaces the rule used by Filtered. A nil rule restores the default.
func (r *Registry) SetRule(rule *rules.Rule) {
	r.rule.Store(rule)
}

// Filtered returns the current snapshot's windows accepted by Rule.
func (r *Registry) Filtered() ([]model.Window, error) {
	return rules.FilterWindows(r.Rule(), r.Snapshot().Windows)
}

// Refresh performs one enumerate-and-publish immediately, outside the
// worker loop. It does not touch the control channel. It waits for an
// in-flight tick, and fails with ErrStopped once a started registry has
// been stopped.
func (r *Registry) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	r.mu.Lock()
	stopped := r.started && r.state != Running
	r.mu.Unlock()
	if stopped {
		return ErrStopped
	}
	return r.publish(ctx)
}

func (r *Registry) run(done chan struct{}) {
	defer close(done)
	ctx := context.Background()
	for {
		time.Sleep(r.interval)
		r.tick(ctx)
		if r.closed(ctx) {
			r.logger.Debug("registry worker exiting")
			return
		}
	}
}

// tick refreshes once. Failures are logged and leave the previous snapshot
// in place.
func (r *Registry) tick(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("registry tick panic recovered", "error", err)
		}
	}()

	if err := r.refresh(ctx); err != nil {
		r.logger.Warn("registry refresh failed, keeping previous snapshot", "error", err)
	}
}

func (r *Registry) refresh(ctx context.Context) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()
	return r.publish(ctx)
}

// publish enumerates and stores a new snapshot. Callers hold refreshMu.
func (r *Registry) publish(ctx context.Context) error {
	start := time.Now()
	handles, err := r.src.Enumerate()
	if err != nil {
		r.metrics.RecordSourceError(ctx)
		r.metrics.RecordTick(ctx, "skipped", time.Since(start))
		return err
	}

	windows := make([]model.Window, 0, len(handles))
	for _, h := range handles {
		w, err := r.read(h)
		if err != nil {
			// Windows can close between enumeration and the attribute read.
			r.logger.Debug("dropping window from snapshot", "handle", h, "error", err)
			continue
		}
		windows = append(windows, w)
	}

	snap := &model.Snapshot{
		Seq:     r.seq.Add(1),
		TakenAt: time.Now(),
		Windows: windows,
	}
	r.snap.Store(snap)

	r.metrics.RecordTick(ctx, "published", time.Since(start))
	r.metrics.RecordWindows(ctx, len(windows))
	if r.onPublish != nil {
		r.onPublish(*snap)
	}
	return nil
}

func (r *Registry) read(h model.Handle) (model.Window, error) {
	title, err := r.src.TitleOf(h)
	if err != nil {
		return model.Window{}, err
	}
	visible, err := r.src.IsVisible(h)
	if err != nil {
		return model.Window{}, err
	}
	return model.Window{Title: title, Handle: h, Visible: visible}, nil
}

// closed polls the control channel and reports whether the worker should
// exit. Every buffered token is consumed so a CLOSED queued behind a
// RUNNING is seen on this tick rather than the next. While running, the
// channel is re-armed with a single RUNNING token.
func (r *Registry) closed(ctx context.Context) bool {
	tok, err := r.ch.TryReceive()
	if err != nil {
		var pe *control.ProtocolError
		if errors.As(err, &pe) {
			r.metrics.RecordProtocolError(ctx)
			r.logger.Warn("control channel empty, assuming still running", "owner", pe.Owner)
		}
		return r.rearm()
	}
	for {
		if tok.Owner == Name && tok.State == control.Closed {
			return true
		}
		next, err := r.ch.TryReceive()
		if err != nil {
			break
		}
		tok = next
	}
	return r.rearm()
}

func (r *Registry) rearm() bool {
	if err := r.ch.Send(control.Running); err != nil {
		r.logger.Warn("control channel re-arm failed", "error", err)
	}
	return false
}
