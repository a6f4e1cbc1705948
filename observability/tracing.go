package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "analytics"

// SpanManager handles trace span lifecycle around adapter sends.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartSendSpan starts a span for one adapter's CreateEvent call.
	StartSendSpan(ctx context.Context, adapter, eventType string) (context.Context, trace.Span)

	// EndSpan completes a span with the send outcome, recording err if set.
	EndSpan(span trace.Span, outcome Outcome, err error)
}

type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager that uses the global OTel tracer
// provider at the time of the call.
func NewSpanManager() SpanManager {
	return &otelSpanManager{tracer: otel.Tracer(tracerName)}
}

func (m *otelSpanManager) StartSendSpan(ctx context.Context, adapter, eventType string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "analytics.send",
		trace.WithAttributes(
			attribute.String("adapter.name", adapter),
			attribute.String("event.type", eventType),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func (m *otelSpanManager) EndSpan(span trace.Span, outcome Outcome, err error) {
	if span == nil {
		return
	}
	span.SetAttributes(attribute.String("send.outcome", string(outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
