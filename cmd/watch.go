package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mj1618/winwatch/internal/config"
	"github.com/mj1618/winwatch/internal/lifecycle"
	"github.com/mj1618/winwatch/internal/model"
	"github.com/mj1618/winwatch/internal/registry"
	"github.com/mj1618/winwatch/internal/rules"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Track windows in the background and stream changes as JSONL",
	Long: `Start the window registry and emit a JSON line for every window that
appears, disappears, or changes among those matching the rule.

The first line is a snapshot event listing the matching windows. No output is
emitted while the desktop is stable. Output is always JSONL regardless of the
--format flag.

When the rule comes from a config file, editing the file swaps the rule
without restarting. Use Ctrl+C or --duration to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addRuleFlags(watchCmd)
	watchCmd.Flags().Duration("interval", 0, "Refresh interval (default: the configured interval)")
	watchCmd.Flags().Int("duration", 0, "Max seconds to watch (0 = until Ctrl+C)")
}

// watchStream turns published snapshots into JSONL change events.
type watchStream struct {
	mu     sync.Mutex
	enc    *json.Encoder
	filter func([]model.Window) ([]model.Window, error)
	prev   *model.Snapshot
	events int
	failed bool
}

func newWatchStream(w io.Writer, filter func([]model.Window) ([]model.Window, error)) *watchStream {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &watchStream{enc: enc, filter: filter}
}

// emit writes one event. Only the first write failure is logged.
func (s *watchStream) emit(v interface{}) {
	if err := s.enc.Encode(v); err != nil && !s.failed {
		s.failed = true
		logger.Error("watch output failed", "error", err)
	}
}

// publish runs on the registry worker after every refresh.
func (s *watchStream) publish(snap model.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	windows, err := s.filter(snap.Windows)
	if err != nil {
		s.emit(map[string]interface{}{
			"type":  "error",
			"ts":    snap.TakenAt.Unix(),
			"error": err.Error(),
		})
		return
	}
	curr := model.Snapshot{Seq: snap.Seq, TakenAt: snap.TakenAt, Windows: windows}

	if s.prev == nil {
		s.emit(map[string]interface{}{
			"type":    "snapshot",
			"ts":      curr.TakenAt.Unix(),
			"seq":     curr.Seq,
			"count":   len(curr.Windows),
			"windows": curr.Windows,
		})
		s.prev = &curr
		return
	}

	for _, change := range model.DiffSnapshots(*s.prev, curr) {
		s.emit(change)
		s.events++
	}
	s.prev = &curr
}

func (s *watchStream) done(elapsed time.Duration, stopErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event := map[string]interface{}{
		"type":    "done",
		"ts":      time.Now().Unix(),
		"elapsed": fmt.Sprintf("%.1fs", elapsed.Seconds()),
		"events":  s.events,
	}
	if stopErr != nil {
		event["error"] = stopErr.Error()
	}
	s.emit(event)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rule, all, err := getRuleFlags(cmd)
	if err != nil {
		return err
	}
	interval, _ := cmd.Flags().GetDuration("interval")
	durationSec, _ := cmd.Flags().GetInt("duration")

	ctx, stop := lifecycle.HandleSignals(commandContext(cmd))
	defer stop()
	if durationSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(durationSec)*time.Second)
		defer cancel()
	}

	tel, err := initTelemetry(ctx)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(tel)

	provider, err := newProvider()
	if err != nil {
		return err
	}
	defer provider.Shutdown()

	var reg *registry.Registry
	stream := newWatchStream(os.Stdout, func(windows []model.Window) ([]model.Window, error) {
		switch {
		case all:
			return windows, nil
		case rule != nil:
			return rules.FilterWindows(rule, windows)
		default:
			return rules.FilterWindows(reg.Rule(), windows)
		}
	})

	co := lifecycle.Default()
	reg = co.Registry(func() *registry.Registry {
		return newRegistry(provider,
			registry.WithInterval(interval),
			registry.WithMetrics(tel.Metrics),
			registry.WithOnPublish(stream.publish),
		)
	})

	start := time.Now()
	if err := reg.Start(); err != nil {
		return err
	}

	if appConfig.ConfigFile != "" && rule == nil && !all {
		go func() {
			err := config.Watch(ctx, appConfig.ConfigFile, logger, func(c *config.Config) {
				reg.SetRule(c.CompiledRule)
			})
			if err != nil {
				logger.Warn("config hot reload disabled", "error", err)
			}
		}()
	}

	<-ctx.Done()

	stopErr := finishRegistry(co, appConfig.StopGraceDuration, nil)
	stream.done(time.Since(start), stopErr)
	return stopErr
}
