package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/observability"
)

func TestPropsFlag(t *testing.T) {
	p := propsFlag{}
	require.NoError(t, p.Set("email=a@b.c"))
	require.NoError(t, p.Set("seats=3"))
	require.NoError(t, p.Set("trial=true"))
	require.NoError(t, p.Set(`tags=["a","b"]`))
	require.NoError(t, p.Set("empty="))

	assert.Equal(t, "a@b.c", p["email"])
	assert.Equal(t, float64(3), p["seats"])
	assert.Equal(t, true, p["trial"])
	assert.Equal(t, `["a","b"]`, p["tags"])
	assert.Equal(t, "", p["empty"])
	assert.Equal(t, "email,empty,seats,tags,trial", p.String())

	assert.Error(t, p.Set("novalue"))
	assert.Error(t, p.Set("=x"))
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	failed := printResults(&buf, []analytics.Result{
		{Adapter: "GoogleAnalytics", Sent: true},
		{Adapter: "Mixpanel", Err: errors.New("boom")},
	})

	assert.True(t, failed)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "sent")
	assert.Contains(t, lines[1], "failed")
	assert.Contains(t, lines[1], "boom")
}

type stubValidator struct {
	analytics.Gate
	valid bool
	err   error
}

func (s *stubValidator) Name() string { return "Stub" }

func (s *stubValidator) CreateEvent(context.Context, *analytics.Event) (bool, error) {
	return s.Enabled(), nil
}

func (s *stubValidator) Validate(context.Context, *analytics.Event) (bool, error) {
	return s.valid, s.err
}

func TestRunValidate(t *testing.T) {
	var buf bytes.Buffer
	code := runValidate(context.Background(), &buf, []analytics.Adapter{&stubValidator{valid: true}}, analytics.NewEvent())
	assert.Equal(t, 0, code)
	assert.Contains(t, buf.String(), "valid=true")

	buf.Reset()
	failing := &stubValidator{err: &analytics.FieldError{Adapter: "Stub", Field: "type"}}
	code = runValidate(context.Background(), &buf, []analytics.Adapter{failing}, analytics.NewEvent())
	assert.Equal(t, exitCodeFailure, code)
	assert.Contains(t, buf.String(), "invalid")
}

func TestPrintFamilies(t *testing.T) {
	registry := prometheus.NewRegistry()
	recorder, err := observability.NewPrometheusRecorder(registry)
	require.NoError(t, err)
	recorder.RecordSend(context.Background(), "Orbit", observability.OutcomeSent, 0)

	families, err := registry.Gather()
	require.NoError(t, err)

	var buf bytes.Buffer
	printFamilies(&buf, families)
	assert.Contains(t, buf.String(), "analytics_events_total{adapter=Orbit,outcome=sent} 1")
	assert.Contains(t, buf.String(), "analytics_send_duration_seconds{adapter=Orbit} count=1")
}

func TestNewTelemetry_Unsupported(t *testing.T) {
	_, err := newTelemetry("statsd")
	assert.Error(t, err)
}
