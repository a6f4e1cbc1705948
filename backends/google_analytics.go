package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/adapters"
)

const (
	GoogleAnalyticsEndpoint      = "https://www.google-analytics.com/collect"
	GoogleAnalyticsDebugEndpoint = "https://www.google-analytics.com/debug/collect"

	measurementProtocolVersion = "1"
)

// GoogleAnalytics sends events through the Universal Analytics Measurement Protocol.
type GoogleAnalytics struct {
	analytics.Gate
	client
	tid           string
	cid           string
	debugEndpoint string
}

var (
	_ analytics.Adapter   = (*GoogleAnalytics)(nil)
	_ analytics.Validator = (*GoogleAnalytics)(nil)
)

// NewGoogleAnalytics creates the adapter.
//
// Parameters:
//   - tid: Tracking / web property ID in the form UA-XXXX-Y
//   - cid: Pseudonymous identifier of the user, device or browser instance
func NewGoogleAnalytics(tid, cid string, opts ...Option) *GoogleAnalytics {
	c, o := newClient("GoogleAnalytics", GoogleAnalyticsEndpoint, opts)
	debug := o.secondary
	if debug == "" {
		debug = GoogleAnalyticsDebugEndpoint
	}
	return &GoogleAnalytics{client: c, tid: tid, cid: cid, debugEndpoint: debug}
}

func (g *GoogleAnalytics) Name() string { return "GoogleAnalytics" }

// CreateEvent posts an event hit to the collect endpoint.
func (g *GoogleAnalytics) CreateEvent(ctx context.Context, event *analytics.Event) (bool, error) {
	if !g.Enabled() {
		return false, nil
	}

	body, err := g.payload(event)
	if err != nil {
		return false, err
	}
	return g.fire(ctx, g.request(g.endpoint, body))
}

// Validate posts the same hit to the debug endpoint and reports whether
// Google would accept it. Hits sent there are not recorded.
func (g *GoogleAnalytics) Validate(ctx context.Context, event *analytics.Event) (bool, error) {
	if !g.Enabled() {
		return false, nil
	}

	body, err := g.payload(event)
	if err != nil {
		return false, err
	}

	resp, err := g.call(ctx, g.request(g.debugEndpoint, body))
	if err != nil {
		return false, err
	}

	var result struct {
		HitParsingResult []struct {
			Valid         bool `json:"valid"`
			ParserMessage []struct {
				MessageType string `json:"messageType"`
				Description string `json:"description"`
			} `json:"parserMessage"`
		} `json:"hitParsingResult"`
	}
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return false, fmt.Errorf("decode validation response: %w", err)
	}
	if len(result.HitParsingResult) == 0 {
		return false, nil
	}

	hit := result.HitParsingResult[0]
	for _, msg := range hit.ParserMessage {
		g.logger.Debug("%s: validation %s: %s", g.name, msg.MessageType, msg.Description)
	}
	return hit.Valid, nil
}

func (g *GoogleAnalytics) request(url string, body []byte) *adapters.HTTPRequest {
	return &adapters.HTTPRequest{
		Method:  http.MethodPost,
		URL:     url,
		Headers: map[string]string{"Content-Type": contentTypeForm},
		Body:    body,
	}
}

// payload maps an event onto Measurement Protocol parameters. The event
// type becomes the action (ea); category (ec), label (el) and value (ev)
// are only sent when present.
func (g *GoogleAnalytics) payload(event *analytics.Event) ([]byte, error) {
	if event.Type() == "" {
		return nil, g.require("type")
	}

	f := newForm().
		add("tid", g.tid).
		add("cid", g.cid).
		add("v", measurementProtocolVersion).
		add("ea", event.Type()).
		add("t", "event")

	if category, ok := event.Prop("category"); ok {
		f.add("ec", formatValue(category))
	}
	if event.Name() != "" {
		f.add("el", event.Name())
	}
	if event.Value() != 0 {
		f.add("ev", formatValue(event.Value()))
	}

	return f.bytes(), nil
}
