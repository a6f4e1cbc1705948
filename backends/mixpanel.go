package backends

import (
	"context"
	"maps"
	"net/http"
	"strings"

	"github.com/google/uuid"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/adapters"
)

const (
	MixpanelEndpoint       = "https://api.mixpanel.com/track"
	MixpanelEngageEndpoint = "https://api.mixpanel.com/engage"
)

// Mixpanel sends events to the Mixpanel ingestion API.
//
// The event name becomes the Mixpanel event (the type is used when the name
// is empty) and props become event properties. "time" defaults to now and
// "$insert_id" to a random UUID so Mixpanel can deduplicate replays.
type Mixpanel struct {
	analytics.Gate
	client
	token          string
	engageEndpoint string
}

var (
	_ analytics.Adapter        = (*Mixpanel)(nil)
	_ analytics.ProfileManager = (*Mixpanel)(nil)
)

// NewMixpanel creates the adapter for the project identified by token.
func NewMixpanel(token string, opts ...Option) *Mixpanel {
	c, o := newClient("Mixpanel", MixpanelEndpoint, opts)
	engage := o.secondary
	if engage == "" {
		engage = MixpanelEngageEndpoint
	}
	return &Mixpanel{client: c, token: token, engageEndpoint: engage}
}

func (m *Mixpanel) Name() string { return "Mixpanel" }

// CreateEvent posts a single-event batch to the track endpoint.
func (m *Mixpanel) CreateEvent(ctx context.Context, event *analytics.Event) (bool, error) {
	if !m.Enabled() {
		return false, nil
	}

	name := event.Name()
	if name == "" {
		name = event.Type()
	}
	if name == "" {
		return false, m.require("name")
	}

	properties := maps.Clone(event.Props())
	properties["token"] = m.token
	if _, ok := properties["time"]; !ok {
		properties["time"] = m.now().Unix()
	}
	if _, ok := properties["$insert_id"]; !ok {
		properties["$insert_id"] = uuid.NewString()
	}

	body, err := m.marshal("props", []map[string]any{{
		"event":      name,
		"properties": properties,
	}})
	if err != nil {
		return false, err
	}

	return m.fire(ctx, &adapters.HTTPRequest{
		Method: http.MethodPost,
		URL:    m.endpoint,
		Headers: map[string]string{
			"Content-Type": contentTypeJSON,
			"Accept":       "text/plain",
		},
		Body: body,
	})
}

// SetProfile sets props on the profile identified by distinctID. ip may be
// empty; Mixpanel then skips geolocation.
func (m *Mixpanel) SetProfile(ctx context.Context, distinctID, ip string, props map[string]any) error {
	if !m.Enabled() {
		return analytics.ErrDisabled
	}
	if distinctID == "" {
		return m.require("distinct_id")
	}

	update := map[string]any{
		"$token":       m.token,
		"$distinct_id": distinctID,
		"$set":         props,
	}
	if ip != "" {
		update["$ip"] = ip
	}

	body, err := m.marshal("props", []map[string]any{update})
	if err != nil {
		return err
	}

	resp, err := m.call(ctx, &adapters.HTTPRequest{
		Method: http.MethodPost,
		URL:    m.engageEndpoint,
		Headers: map[string]string{
			"Content-Type": contentTypeJSON,
			"Accept":       "text/plain",
		},
		Body: body,
	})
	if err != nil {
		return err
	}

	// The engage endpoint answers 200 with "0" when it rejects the update.
	if strings.TrimSpace(string(resp.Body)) == "0" {
		return &analytics.HTTPError{Status: resp.Status, Body: "0"}
	}
	return nil
}
