package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tap30/analytics-go/adapters"
	"github.com/Tap30/analytics-go/config"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLExpandsEnv(t *testing.T) {
	t.Setenv("TEST_MP_TOKEN", "tok-from-env")

	path := writeConfig(t, "analytics.yaml", `
log:
  level: debug
  format: json
transport:
  connect_timeout: 2s
  timeout: 4s
mixpanel:
  token: ${TEST_MP_TOKEN}
google_analytics:
  tracking_id: UA-1-1
  client_id: abc123
  enabled: false
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2*time.Second, cfg.Transport.ConnectTimeout.Duration)
	assert.Equal(t, 4*time.Second, cfg.Transport.Timeout.Duration)
	require.NotNil(t, cfg.Mixpanel)
	assert.Equal(t, "tok-from-env", cfg.Mixpanel.Token)
	assert.True(t, config.IsEnabled(cfg.Mixpanel.Enabled))
	require.NotNil(t, cfg.GoogleAnalytics)
	assert.False(t, config.IsEnabled(cfg.GoogleAnalytics.Enabled))
	assert.Nil(t, cfg.Orbit)
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "analytics.toml", `
[dispatcher]
workers = 8

[metrics]
exporter = "Prometheus"

[plausible]
domain = "example.com"
endpoint = "http://localhost:8080"

[orbit]
workspace_id = "ws"
api_key = "key"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Dispatcher.Workers)
	assert.Equal(t, "prometheus", cfg.Metrics.Exporter)
	assert.Equal(t, "http://localhost:8080", cfg.Plausible.Endpoint)
	assert.Equal(t, "ws", cfg.Orbit.WorkspaceID)
	assert.Equal(t, adapters.DefaultTimeout, cfg.Transport.Timeout.Duration)
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, "analytics.json", `{
		"active_campaign": {"key": "k", "act_id": "a", "api_key": "x", "organisation_id": "acme"}
	}`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme", cfg.ActiveCampaign.OrganisationID)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "print", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Dispatcher.Workers)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"unknown extension", "analytics.ini", "x=1", "unsupported config format"},
		{"bad duration", "analytics.yaml", "transport:\n  timeout: soon\n", "parse duration"},
		{"missing credentials", "analytics.toml", "[orbit]\nworkspace_id = \"ws\"\n", "orbit.api_key is required"},
		{"connect not shorter", "analytics.yaml", "transport:\n  connect_timeout: 10s\n  timeout: 5s\n", "must be shorter"},
		{"bad level", "analytics.yaml", "log:\n  level: loud\n", "log.level"},
		{"bad exporter", "analytics.json", `{"metrics":{"exporter":"statsd"}}`, "metrics.exporter"},
		{"unknown json field", "analytics.json", `{"mixpanle":{}}`, "decode JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.GoogleAnalytics = &config.GoogleAnalyticsConfig{}
	cfg.Mixpanel = &config.MixpanelConfig{}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"google_analytics.client_id is required",
		"google_analytics.tracking_id is required",
		"mixpanel.token is required",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, adapters.DefaultConnectTimeout, cfg.Transport.ConnectTimeout.Duration)
	assert.Equal(t, "none", cfg.Metrics.Exporter)
}

func TestDuration_Text(t *testing.T) {
	var d config.Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1m30s ")))
	assert.Equal(t, 90*time.Second, d.Duration)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	require.NoError(t, d.UnmarshalText(nil))
	assert.Zero(t, d.Duration)
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := config.LogConfig{Level: "info", Format: "json"}.Logger(&buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("sent %d events", 3)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"sent 3 events"`)
	assert.Contains(t, out, `"component":"analytics"`)

	buf.Reset()
	logger, err = config.LogConfig{Level: "warn", Format: "print"}.Logger(&buf)
	require.NoError(t, err)
	logger.Warn("careful")
	assert.Contains(t, buf.String(), "[Analytics]")

	_, err = config.LogConfig{Level: "info", Format: "xml"}.Logger(&buf)
	assert.Error(t, err)
}

func TestTransportConfig_HTTPAdapter(t *testing.T) {
	cfg := config.Default()
	assert.NotNil(t, cfg.Transport.HTTPAdapter())
}
