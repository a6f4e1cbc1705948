package observability

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements MetricsRecorder with Prometheus collectors.
type PrometheusRecorder struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ MetricsRecorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors and registers them on reg.
// Collectors already registered on reg are reused.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_events_total",
		Help: "Number of CreateEvent calls by adapter and outcome.",
	}, []string{"adapter", "outcome"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_send_duration_seconds",
		Help:    "CreateEvent latency by adapter.",
		Buckets: prometheus.DefBuckets,
	}, []string{"adapter"})

	var err error
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &PrometheusRecorder{events: events, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSend increments the outcome counter and observes the latency.
func (p *PrometheusRecorder) RecordSend(_ context.Context, adapter string, outcome Outcome, duration time.Duration) {
	p.events.WithLabelValues(adapter, string(outcome)).Inc()
	p.duration.WithLabelValues(adapter).Observe(duration.Seconds())
}
