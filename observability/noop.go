package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) RecordSend(context.Context, string, Outcome, time.Duration) {}

// NoopSpanManager is a SpanManager whose spans are never recorded.
type NoopSpanManager struct{}

func (NoopSpanManager) StartSendSpan(ctx context.Context, _, _ string) (context.Context, trace.Span) {
	return noop.NewTracerProvider().Tracer(tracerName).Start(ctx, "analytics.send")
}

func (NoopSpanManager) EndSpan(span trace.Span, _ Outcome, _ error) {
	if span != nil {
		span.End()
	}
}
