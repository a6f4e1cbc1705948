package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/adapters"
)

const PlausibleEndpoint = "https://plausible.io"

const pageviewType = "pageview"

// Plausible sends events to the Plausible Events API.
//
// The event type is the Plausible event name and url is required. Custom
// event types are registered as goals first so they show up in the
// dashboard. Only scalar props are forwarded; a "referrer" prop becomes
// the referrer.
type Plausible struct {
	analytics.Gate
	client
	domain    string
	apiKey    string
	userAgent string
	clientIP  string
}

var (
	_ analytics.Adapter   = (*Plausible)(nil)
	_ analytics.Validator = (*Plausible)(nil)
)

// NewPlausible creates the adapter.
//
// Parameters:
//   - domain: Site domain as configured in Plausible
//   - apiKey: Stats/sites API key used for goals and validation
//   - userAgent: User-Agent of the visitor, used for unique visitor counting
//   - clientIP: IP of the visitor, forwarded as X-Forwarded-For
func NewPlausible(domain, apiKey, userAgent, clientIP string, opts ...Option) *Plausible {
	c, _ := newClient("Plausible", PlausibleEndpoint, opts)
	c.endpoint = strings.TrimRight(c.endpoint, "/")
	return &Plausible{
		client:    c,
		domain:    domain,
		apiKey:    apiKey,
		userAgent: userAgent,
		clientIP:  clientIP,
	}
}

func (p *Plausible) Name() string { return "Plausible" }

// CreateEvent registers the goal for custom event types and posts the event.
func (p *Plausible) CreateEvent(ctx context.Context, event *analytics.Event) (bool, error) {
	if !p.Enabled() {
		return false, nil
	}
	if event.Type() == "" {
		return false, p.require("type")
	}
	if event.URL() == "" {
		return false, p.require("url")
	}

	if event.Type() != pageviewType {
		if err := p.provisionGoal(ctx, event.Type()); err != nil {
			return false, err
		}
	}

	payload := map[string]any{
		"domain": p.domain,
		"name":   event.Type(),
		"url":    event.URL(),
	}
	if referrer, ok := stringProp(event, "referrer"); ok {
		payload["referrer"] = referrer
	}
	if props := scalarProps(event.Props(), "referrer"); len(props) > 0 {
		payload["props"] = props
	}

	body, err := p.marshal("props", payload)
	if err != nil {
		return false, err
	}

	headers := map[string]string{"Content-Type": contentTypeJSON}
	if p.userAgent != "" {
		headers["User-Agent"] = p.userAgent
	}
	if p.clientIP != "" {
		headers["X-Forwarded-For"] = p.clientIP
	}

	return p.fire(ctx, &adapters.HTTPRequest{
		Method:  http.MethodPost,
		URL:     p.endpoint + "/api/event",
		Headers: headers,
		Body:    body,
	})
}

// provisionGoal creates the event goal. Plausible answers with the existing
// goal when it is already there, so the reply is not inspected.
func (p *Plausible) provisionGoal(ctx context.Context, eventName string) error {
	body := newForm().
		add("site_id", p.domain).
		add("goal_type", "event").
		add("event_name", eventName).
		bytes()

	_, err := p.fire(ctx, &adapters.HTTPRequest{
		Method: http.MethodPut,
		URL:    p.endpoint + "/api/v1/sites/goals",
		Headers: map[string]string{
			"Authorization": "Bearer " + p.apiKey,
			"Content-Type":  contentTypeForm,
		},
		Body: body,
	})
	return err
}

// Validate asks the stats API whether events of this type were recorded.
func (p *Plausible) Validate(ctx context.Context, event *analytics.Event) (bool, error) {
	if !p.Enabled() {
		return false, nil
	}
	if event.Type() == "" {
		return false, p.require("type")
	}

	query := url.Values{
		"site_id":  {p.domain},
		"property": {"event:name"},
		"filters":  {"event:name==" + event.Type()},
	}

	resp, err := p.call(ctx, &adapters.HTTPRequest{
		Method:  http.MethodGet,
		URL:     p.endpoint + "/api/v1/stats/breakdown?" + query.Encode(),
		Headers: map[string]string{"Authorization": "Bearer " + p.apiKey},
	})
	if err != nil {
		return false, err
	}

	var result struct {
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return false, fmt.Errorf("decode breakdown response: %w", err)
	}
	for _, r := range result.Results {
		if r.Name == event.Type() {
			return true, nil
		}
	}
	return false, nil
}

// scalarProps keeps string, bool and numeric props, which is all Plausible
// accepts as custom properties.
func scalarProps(props map[string]any, skip ...string) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if contains(skip, k) {
			continue
		}
		switch v.(type) {
		case string, bool, int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64, float32, float64:
			out[k] = v
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
