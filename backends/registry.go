package backends

import (
	"errors"
	"fmt"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/config"
)

// FromConfig builds one adapter per backend section of cfg in a fixed order:
// GoogleAnalytics, Mixpanel, ActiveCampaign, Plausible, Orbit. Sections
// with enabled: false yield disabled adapters. opts apply to every adapter
// before the section's own endpoint overrides; without WithHTTPAdapter the
// transport is built from cfg.Transport.
func FromConfig(cfg config.Config, opts ...Option) ([]analytics.Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	base := append([]Option{WithHTTPAdapter(cfg.Transport.HTTPAdapter())}, opts...)
	with := func(extra ...Option) []Option {
		out := make([]Option, 0, len(base)+len(extra))
		out = append(out, base...)
		return append(out, extra...)
	}

	var built []analytics.Adapter
	add := func(a analytics.Adapter, enabled *bool) {
		if !config.IsEnabled(enabled) {
			a.Disable()
		}
		built = append(built, a)
	}

	if s := cfg.GoogleAnalytics; s != nil {
		add(NewGoogleAnalytics(s.TrackingID, s.ClientID,
			with(endpoint(s.Endpoint, WithEndpoint), endpoint(s.ValidationEndpoint, WithValidationEndpoint))...), s.Enabled)
	}
	if s := cfg.Mixpanel; s != nil {
		add(NewMixpanel(s.Token,
			with(endpoint(s.Endpoint, WithEndpoint), endpoint(s.ProfileEndpoint, WithProfileEndpoint))...), s.Enabled)
	}
	if s := cfg.ActiveCampaign; s != nil {
		add(NewActiveCampaign(s.Key, s.ActID, s.APIKey, s.OrganisationID,
			with(endpoint(s.Endpoint, WithEndpoint), endpoint(s.CRMEndpoint, WithCRMEndpoint))...), s.Enabled)
	}
	if s := cfg.Plausible; s != nil {
		add(NewPlausible(s.Domain, s.APIKey, s.UserAgent, s.ClientIP,
			with(endpoint(s.Endpoint, WithEndpoint))...), s.Enabled)
	}
	if s := cfg.Orbit; s != nil {
		add(NewOrbit(s.WorkspaceID, s.APIKey, s.DataOrigin,
			with(endpoint(s.Endpoint, WithEndpoint))...), s.Enabled)
	}

	if len(built) == 0 {
		return nil, errors.New("no analytics backends configured")
	}
	return built, nil
}

// endpoint returns an override option, or a no-op when url is empty.
func endpoint(url string, opt func(string) Option) Option {
	if url == "" {
		return func(*options) {}
	}
	return opt(url)
}
