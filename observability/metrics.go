// Package observability records metrics and traces for adapter sends.
//
// Metrics go through OpenTelemetry or Prometheus, tracing through
// OpenTelemetry. Every feature has a no-op implementation.
package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome classifies the result of one CreateEvent call.
type Outcome string

const (
	OutcomeSent     Outcome = "sent"
	OutcomeDisabled Outcome = "disabled"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeFailed   Outcome = "failed"
)

// MetricsRecorder records adapter send metrics.
// Use NewMetricsRecorder() for OTel metrics, NewPrometheusRecorder for
// Prometheus, or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordSend records one CreateEvent call on the named adapter.
	RecordSend(ctx context.Context, adapter string, outcome Outcome, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	events  metric.Int64Counter
	latency metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("analytics")

	events, err := meter.Int64Counter("analytics.events.sent",
		metric.WithDescription("Number of CreateEvent calls by adapter and outcome"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("analytics.send.latency_ms",
		metric.WithDescription("CreateEvent latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{events: events, latency: latency}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses the global OTel
// meter provider. If instrument creation fails a no-op recorder is returned.
//
// Configure the provider before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordSend(ctx context.Context, adapter string, outcome Outcome, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("adapter", adapter),
		attribute.String("outcome", string(outcome)),
	)
	m.events.Add(ctx, 1, attrs)
	m.latency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}
