package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Tap30/analytics-go/observability"
)

// telemetry holds the recorders handed to the dispatcher and knows how to
// print what they collected once the event was sent.
type telemetry struct {
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	report   func(ctx context.Context, w io.Writer) error
	shutdown func(ctx context.Context)
}

func newTelemetry(exporter string) (*telemetry, error) {
	switch exporter {
	case "", "none":
		return &telemetry{
			metrics:  observability.NoopMetrics{},
			spans:    observability.NoopSpanManager{},
			report:   func(context.Context, io.Writer) error { return nil },
			shutdown: func(context.Context) {},
		}, nil
	case "otel":
		return newOtelTelemetry(), nil
	case "prometheus":
		return newPrometheusTelemetry()
	default:
		return nil, fmt.Errorf("unsupported metrics exporter %q", exporter)
	}
}

func newOtelTelemetry() *telemetry {
	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(meterProvider)

	recorder := tracetest.NewSpanRecorder()
	tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tracerProvider)

	return &telemetry{
		metrics: observability.NewMetricsRecorder(),
		spans:   observability.NewSpanManager(),
		report: func(ctx context.Context, w io.Writer) error {
			var rm metricdata.ResourceMetrics
			if err := reader.Collect(ctx, &rm); err != nil {
				return fmt.Errorf("collect metrics: %w", err)
			}
			printOtelMetrics(w, rm)
			printSpans(w, recorder.Ended())
			return nil
		},
		shutdown: func(ctx context.Context) {
			_ = tracerProvider.Shutdown(ctx)
			_ = meterProvider.Shutdown(ctx)
		},
	}
}

func newPrometheusTelemetry() (*telemetry, error) {
	registry := prometheus.NewRegistry()
	recorder, err := observability.NewPrometheusRecorder(registry)
	if err != nil {
		return nil, err
	}
	return &telemetry{
		metrics: recorder,
		spans:   observability.NoopSpanManager{},
		report: func(_ context.Context, w io.Writer) error {
			families, err := registry.Gather()
			if err != nil {
				return fmt.Errorf("gather metrics: %w", err)
			}
			printFamilies(w, families)
			return nil
		},
		shutdown: func(context.Context) {},
	}, nil
}

func printFamilies(w io.Writer, families []*dto.MetricFamily) {
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			name := fmt.Sprintf("%s{%s}", mf.GetName(), strings.Join(labels, ","))

			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				fmt.Fprintf(w, "%s count=%d sum=%g\n", name, h.GetSampleCount(), h.GetSampleSum())
			}
		}
	}
}

func printOtelMetrics(w io.Writer, rm metricdata.ResourceMetrics) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					fmt.Fprintf(w, "%s{%s} %d\n", m.Name, attrString(dp.Attributes.ToSlice()), dp.Value)
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					fmt.Fprintf(w, "%s{%s} count=%d sum=%g\n", m.Name, attrString(dp.Attributes.ToSlice()), dp.Count, dp.Sum)
				}
			}
		}
	}
}

func printSpans(w io.Writer, spans []sdktrace.ReadOnlySpan) {
	for _, s := range spans {
		fmt.Fprintf(w, "span %s{%s} %s %s\n",
			s.Name(), attrString(s.Attributes()), s.Status().Code, s.EndTime().Sub(s.StartTime()))
	}
}

func attrString(attrs []attribute.KeyValue) string {
	parts := make([]string, 0, len(attrs))
	for _, kv := range attrs {
		parts = append(parts, string(kv.Key)+"="+kv.Value.Emit())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
