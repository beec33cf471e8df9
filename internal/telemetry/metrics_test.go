package telemetry

import (
	"context"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, r *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := r.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	out := make(map[string]metricdata.Aggregation)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sum(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	s, ok := data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", data)
	}
	var total int64
	for _, dp := range s.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	m.RecordTick(ctx, "published", 3*time.Millisecond)
	m.RecordTick(ctx, "skipped", time.Millisecond)
	m.RecordSourceError(ctx)
	m.RecordProtocolError(ctx)
	m.RecordProtocolError(ctx)
	m.RecordWindows(ctx, 7)

	got := collect(t, reader)
	if n := sum(t, got["registry.ticks"]); n != 2 {
		t.Errorf("ticks: got %d, want 2", n)
	}
	if n := sum(t, got["registry.source_errors"]); n != 1 {
		t.Errorf("source errors: got %d, want 1", n)
	}
	if n := sum(t, got["registry.protocol_errors"]); n != 2 {
		t.Errorf("protocol errors: got %d, want 2", n)
	}
	g, ok := got["registry.windows"].(metricdata.Gauge[int64])
	if !ok || len(g.DataPoints) != 1 || g.DataPoints[0].Value != 7 {
		t.Errorf("windows gauge: got %#v", got["registry.windows"])
	}
	if _, ok := got["registry.tick.duration"].(metricdata.Histogram[float64]); !ok {
		t.Errorf("tick duration: expected histogram, got %T", got["registry.tick.duration"])
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordTick(ctx, "published", time.Second)
	m.RecordWindows(ctx, 1)
	m.RecordSourceError(ctx)
	m.RecordProtocolError(ctx)
}

func TestInit_NoEndpoint(t *testing.T) {
	tel, err := Init(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	if tel.Metrics == nil {
		t.Fatal("expected no-op metrics")
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestInit_BadEndpoint(t *testing.T) {
	if _, err := Init(context.Background(), Config{Endpoint: "not a url"}); err == nil {
		t.Error("expected error for endpoint without host")
	}
}
