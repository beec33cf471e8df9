// Package telemetry provides OpenTelemetry metrics for winwatch.
//
// Metrics are exported to an OTLP/HTTP endpoint when one is configured
// (config file otel_endpoint or WINWATCH_OTEL_ENDPOINT). Without an endpoint
// every instrument is a no-op.
package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "winwatch"

// Config holds what Init needs.
type Config struct {
	Endpoint string        // OTLP base URL, e.g. "http://localhost:4318"
	Version  string        // service.version resource attribute
	Interval time.Duration // export interval, default 15s
}

// Telemetry owns the meter provider and the registry instruments.
type Telemetry struct {
	mp *sdkmetric.MeterProvider

	Metrics *Metrics
}

// Init sets up OTLP/HTTP metric export when cfg.Endpoint is set and
// returns instruments bound to the global meter provider.
func Init(ctx context.Context, cfg Config) (*Telemetry, error) {
	t := &Telemetry{}

	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("otel: invalid endpoint URL %q", cfg.Endpoint)
		}
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithEndpoint(u.Host),
			otlpmetrichttp.WithURLPath(strings.TrimRight(u.Path, "/") + "/v1/metrics"),
		}
		if u.Scheme == "http" {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("otel metric exporter: %w", err)
		}

		res, err := resource.New(ctx,
			resource.WithAttributes(
				semconv.ServiceName(serviceName),
				semconv.ServiceVersion(cfg.Version),
			),
			resource.WithHost(),
		)
		if err != nil {
			return nil, fmt.Errorf("otel resource: %w", err)
		}

		interval := cfg.Interval
		if interval <= 0 {
			interval = 15 * time.Second
		}
		t.mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))),
			sdkmetric.WithResource(res),
		)
		otel.SetMeterProvider(t.mp)
	}

	m, err := NewMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("otel metrics: %w", err)
	}
	t.Metrics = m
	return t, nil
}

// Shutdown flushes pending metrics.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil || t.mp == nil {
		return nil
	}
	return t.mp.Shutdown(ctx)
}
