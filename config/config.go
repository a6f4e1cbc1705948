// Package config describes the file-based setup of analytics backends,
// transport timeouts, logging and metrics for the analytics CLI and for
// services that prefer configuration over code.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/Tap30/analytics-go/adapters"
)

const (
	defaultLogLevel  = "warn"
	defaultLogFormat = "print"
	defaultWorkers   = 4
	defaultExporter  = "none"
)

// Duration wraps time.Duration so it can be written as "5s" or "1m" in any
// of the supported file formats.
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string. Empty input yields zero.
func (d *Duration) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	if value == "" {
		d.Duration = 0
		return nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value, err)
	}

	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the root configuration document.
type Config struct {
	Log        LogConfig        `yaml:"log" toml:"log" json:"log"`
	Transport  TransportConfig  `yaml:"transport" toml:"transport" json:"transport"`
	Dispatcher DispatcherConfig `yaml:"dispatcher" toml:"dispatcher" json:"dispatcher"`
	Metrics    MetricsConfig    `yaml:"metrics" toml:"metrics" json:"metrics"`

	GoogleAnalytics *GoogleAnalyticsConfig `yaml:"google_analytics" toml:"google_analytics" json:"google_analytics"`
	Mixpanel        *MixpanelConfig        `yaml:"mixpanel" toml:"mixpanel" json:"mixpanel"`
	ActiveCampaign  *ActiveCampaignConfig  `yaml:"active_campaign" toml:"active_campaign" json:"active_campaign"`
	Plausible       *PlausibleConfig       `yaml:"plausible" toml:"plausible" json:"plausible"`
	Orbit           *OrbitConfig           `yaml:"orbit" toml:"orbit" json:"orbit"`
}

// LogConfig selects the logger implementation.
// Format is one of print, text or json; level is debug, info, warn, error or none.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level"`
	Format string `yaml:"format" toml:"format" json:"format"`
}

type TransportConfig struct {
	ConnectTimeout Duration `yaml:"connect_timeout" toml:"connect_timeout" json:"connect_timeout"`
	Timeout        Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
}

type DispatcherConfig struct {
	Workers int `yaml:"workers" toml:"workers" json:"workers"`
}

// MetricsConfig selects the metrics recorder: none, otel or prometheus.
type MetricsConfig struct {
	Exporter string `yaml:"exporter" toml:"exporter" json:"exporter"`
}

type GoogleAnalyticsConfig struct {
	Enabled            *bool  `yaml:"enabled" toml:"enabled" json:"enabled"`
	Endpoint           string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	ValidationEndpoint string `yaml:"validation_endpoint" toml:"validation_endpoint" json:"validation_endpoint"`
	TrackingID         string `yaml:"tracking_id" toml:"tracking_id" json:"tracking_id"`
	ClientID           string `yaml:"client_id" toml:"client_id" json:"client_id"`
}

type MixpanelConfig struct {
	Enabled         *bool  `yaml:"enabled" toml:"enabled" json:"enabled"`
	Endpoint        string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	ProfileEndpoint string `yaml:"profile_endpoint" toml:"profile_endpoint" json:"profile_endpoint"`
	Token           string `yaml:"token" toml:"token" json:"token"`
}

type ActiveCampaignConfig struct {
	Enabled        *bool  `yaml:"enabled" toml:"enabled" json:"enabled"`
	Endpoint       string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	CRMEndpoint    string `yaml:"crm_endpoint" toml:"crm_endpoint" json:"crm_endpoint"`
	Key            string `yaml:"key" toml:"key" json:"key"`
	ActID          string `yaml:"act_id" toml:"act_id" json:"act_id"`
	APIKey         string `yaml:"api_key" toml:"api_key" json:"api_key"`
	OrganisationID string `yaml:"organisation_id" toml:"organisation_id" json:"organisation_id"`
}

type PlausibleConfig struct {
	Enabled   *bool  `yaml:"enabled" toml:"enabled" json:"enabled"`
	Endpoint  string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	Domain    string `yaml:"domain" toml:"domain" json:"domain"`
	APIKey    string `yaml:"api_key" toml:"api_key" json:"api_key"`
	UserAgent string `yaml:"user_agent" toml:"user_agent" json:"user_agent"`
	ClientIP  string `yaml:"client_ip" toml:"client_ip" json:"client_ip"`
}

type OrbitConfig struct {
	Enabled     *bool  `yaml:"enabled" toml:"enabled" json:"enabled"`
	Endpoint    string `yaml:"endpoint" toml:"endpoint" json:"endpoint"`
	WorkspaceID string `yaml:"workspace_id" toml:"workspace_id" json:"workspace_id"`
	APIKey      string `yaml:"api_key" toml:"api_key" json:"api_key"`
	DataOrigin  string `yaml:"data_origin" toml:"data_origin" json:"data_origin"`
}

// IsEnabled reports the enabled flag of a backend section. A section without
// the flag is enabled.
func IsEnabled(flag *bool) bool {
	return flag == nil || *flag
}

// Default returns a configuration with no backends and default settings.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	c.Log.Level = lowerOrDefault(c.Log.Level, defaultLogLevel)
	c.Log.Format = lowerOrDefault(c.Log.Format, defaultLogFormat)
	c.Metrics.Exporter = lowerOrDefault(c.Metrics.Exporter, defaultExporter)

	if c.Transport.ConnectTimeout.Duration <= 0 {
		c.Transport.ConnectTimeout.Duration = adapters.DefaultConnectTimeout
	}
	if c.Transport.Timeout.Duration <= 0 {
		c.Transport.Timeout.Duration = adapters.DefaultTimeout
	}
	if c.Dispatcher.Workers <= 0 {
		c.Dispatcher.Workers = defaultWorkers
	}
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := adapters.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "print", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported format %q", c.Log.Format))
	}

	switch c.Metrics.Exporter {
	case "none", "otel", "prometheus":
	default:
		errs = append(errs, fmt.Errorf("metrics.exporter: unsupported exporter %q", c.Metrics.Exporter))
	}

	if c.Transport.ConnectTimeout.Duration >= c.Transport.Timeout.Duration {
		errs = append(errs, fmt.Errorf("transport: connect_timeout %s must be shorter than timeout %s",
			c.Transport.ConnectTimeout.Duration, c.Transport.Timeout.Duration))
	}

	if s := c.GoogleAnalytics; s != nil {
		errs = append(errs, required("google_analytics", map[string]string{
			"tracking_id": s.TrackingID,
			"client_id":   s.ClientID,
		})...)
	}
	if s := c.Mixpanel; s != nil {
		errs = append(errs, required("mixpanel", map[string]string{"token": s.Token})...)
	}
	if s := c.ActiveCampaign; s != nil {
		errs = append(errs, required("active_campaign", map[string]string{
			"key":    s.Key,
			"act_id": s.ActID,
		})...)
		if s.CRMEndpoint == "" && s.OrganisationID == "" && s.APIKey != "" {
			errs = append(errs, errors.New("active_campaign: organisation_id or crm_endpoint is required with api_key"))
		}
	}
	if s := c.Plausible; s != nil {
		errs = append(errs, required("plausible", map[string]string{"domain": s.Domain})...)
	}
	if s := c.Orbit; s != nil {
		errs = append(errs, required("orbit", map[string]string{
			"workspace_id": s.WorkspaceID,
			"api_key":      s.APIKey,
		})...)
	}

	return errors.Join(errs...)
}

func required(section string, fields map[string]string) []error {
	var errs []error
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if strings.TrimSpace(fields[name]) == "" {
			errs = append(errs, fmt.Errorf("%s.%s is required", section, name))
		}
	}
	return errs
}

// Logger builds the configured logger writing to w.
func (l LogConfig) Logger(w io.Writer) (adapters.LoggerAdapter, error) {
	level, err := adapters.ParseLogLevel(l.Level)
	if err != nil {
		return nil, err
	}

	switch lowerOrDefault(l.Format, defaultLogFormat) {
	case "print":
		return adapters.NewPrintLoggerAdapterTo(w, level), nil
	case "text":
		h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: adapters.SlogLevel(level)})
		return adapters.NewSlogLoggerAdapter(slog.New(h)), nil
	case "json":
		h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: adapters.SlogLevel(level)})
		return adapters.NewSlogLoggerAdapter(slog.New(h)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", l.Format)
	}
}

// HTTPAdapter builds the net/http transport with the configured timeouts.
func (t TransportConfig) HTTPAdapter() adapters.HTTPAdapter {
	return adapters.NewNetHTTPAdapterWithConfig(adapters.NetHTTPConfig{
		ConnectTimeout: t.ConnectTimeout.Duration,
		Timeout:        t.Timeout.Duration,
	})
}

func lowerOrDefault(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
