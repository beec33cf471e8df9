package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "winwatch"

// Metrics holds the window registry's instruments. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Ticks          metric.Int64Counter
	SourceErrors   metric.Int64Counter
	ProtocolErrors metric.Int64Counter
	TickDuration   metric.Float64Histogram
	Windows        metric.Int64Gauge
}

// NewMetrics creates all instruments on meter, or on the global meter
// provider when meter is nil. Instruments are no-ops until a MeterProvider
// is registered.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}
	m := &Metrics{}
	var err error

	m.Ticks, err = meter.Int64Counter("registry.ticks",
		metric.WithDescription("Refresh ticks completed by the window registry, partitioned by outcome"))
	if err != nil {
		return nil, err
	}

	m.SourceErrors, err = meter.Int64Counter("registry.source_errors",
		metric.WithDescription("Ticks whose window enumeration failed; the previous snapshot was kept"))
	if err != nil {
		return nil, err
	}

	m.ProtocolErrors, err = meter.Int64Counter("registry.protocol_errors",
		metric.WithDescription("Control channel polls that found no token"))
	if err != nil {
		return nil, err
	}

	m.TickDuration, err = meter.Float64Histogram("registry.tick.duration",
		metric.WithDescription("Time spent enumerating windows in one tick"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	m.Windows, err = meter.Int64Gauge("registry.windows",
		metric.WithDescription("Windows in the most recently published snapshot"),
		metric.WithUnit("{window}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordTick records one tick outcome ("published" or "skipped") and its duration.
func (m *Metrics) RecordTick(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Ticks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	m.TickDuration.Record(ctx, elapsed.Seconds())
}

// RecordWindows records the size of a published snapshot.
func (m *Metrics) RecordWindows(ctx context.Context, n int) {
	if m == nil {
		return
	}
	m.Windows.Record(ctx, int64(n))
}

// RecordSourceError records a failed enumeration.
func (m *Metrics) RecordSourceError(ctx context.Context) {
	if m == nil {
		return
	}
	m.SourceErrors.Add(ctx, 1)
}

// RecordProtocolError records an empty control channel poll.
func (m *Metrics) RecordProtocolError(ctx context.Context) {
	if m == nil {
		return
	}
	m.ProtocolErrors.Add(ctx, 1)
}
