package backends

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/config"
)

func TestFromConfig(t *testing.T) {
	off := false
	cfg := config.Default()
	cfg.GoogleAnalytics = &config.GoogleAnalyticsConfig{
		TrackingID: "UA-1-1",
		ClientID:   "abc123",
		Endpoint:   "http://ga.local/collect",
	}
	cfg.Mixpanel = &config.MixpanelConfig{Token: "tok", Enabled: &off}
	cfg.Orbit = &config.OrbitConfig{WorkspaceID: "ws", APIKey: "k"}

	spy := &spyHTTPAdapter{}
	built, err := FromConfig(cfg, WithHTTPAdapter(spy))
	require.NoError(t, err)
	require.Len(t, built, 3)

	names := make([]string, len(built))
	for i, a := range built {
		names[i] = a.Name()
	}
	assert.Equal(t, []string{"GoogleAnalytics", "Mixpanel", "Orbit"}, names)
	assert.True(t, built[0].Enabled())
	assert.False(t, built[1].Enabled())

	ok, err := built[0].CreateEvent(context.Background(), analytics.NewEvent().SetType("pageview"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "http://ga.local/collect", spy.last(t).URL)
}

func TestFromConfig_Errors(t *testing.T) {
	_, err := FromConfig(config.Default())
	assert.ErrorContains(t, err, "no analytics backends configured")

	cfg := config.Default()
	cfg.Plausible = &config.PlausibleConfig{}
	_, err = FromConfig(cfg)
	assert.ErrorContains(t, err, "plausible.domain is required")
}
