// Package backends holds the concrete analytics adapters: Google Analytics,
// Mixpanel, ActiveCampaign, Plausible and Orbit.
//
// Every backend implements analytics.Adapter. Construct one per credential
// set and keep it for the life of the process:
//
//	ga := backends.NewGoogleAnalytics("UA-XXXX-Y", clientID)
//	ok, err := ga.CreateEvent(ctx, analytics.NewEvent().SetType("pageview"))
//
// A backend answers CreateEvent with true once its request was dispatched;
// the reply status is logged but never changes the result.
package backends

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/adapters"
)

const (
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
)

type options struct {
	httpAdapter adapters.HTTPAdapter
	logger      adapters.LoggerAdapter
	endpoint    string
	// secondary is the validation, profile or CRM endpoint, depending on the backend.
	secondary string
	now       func() time.Time
}

// Option configures a backend.
type Option func(*options)

// WithHTTPAdapter replaces the default net/http transport.
func WithHTTPAdapter(h adapters.HTTPAdapter) Option {
	return func(o *options) { o.httpAdapter = h }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l adapters.LoggerAdapter) Option {
	return func(o *options) { o.logger = l }
}

// WithEndpoint overrides the ingestion endpoint. For Plausible and Orbit it
// is the API base URL.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithValidationEndpoint overrides the Google Analytics debug endpoint.
func WithValidationEndpoint(url string) Option {
	return func(o *options) { o.secondary = url }
}

// WithCRMEndpoint overrides the ActiveCampaign CRM API base URL.
func WithCRMEndpoint(url string) Option {
	return func(o *options) { o.secondary = url }
}

// WithProfileEndpoint overrides the Mixpanel engage endpoint.
func WithProfileEndpoint(url string) Option {
	return func(o *options) { o.secondary = url }
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// client carries the collaborators shared by every backend.
type client struct {
	name     string
	endpoint string
	http     adapters.HTTPAdapter
	logger   adapters.LoggerAdapter
	now      func() time.Time
}

func newClient(name, endpoint string, opts []Option) (client, options) {
	o := options{endpoint: endpoint}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpAdapter == nil {
		o.httpAdapter = adapters.NewNetHTTPAdapter()
	}
	if o.logger == nil {
		o.logger = adapters.NewNoOpLoggerAdapter()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return client{
		name:     name,
		endpoint: o.endpoint,
		http:     o.httpAdapter,
		logger:   o.logger,
		now:      o.now,
	}, o
}

// do performs req, turning transport failures into *analytics.TransportError.
func (c *client) do(ctx context.Context, req *adapters.HTTPRequest) (*adapters.HTTPResponse, error) {
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.Error("%s: %s %s failed: %v", c.name, req.Method, req.URL, err)
		return nil, &analytics.TransportError{Adapter: c.name, Err: err}
	}
	if resp == nil {
		resp = &adapters.HTTPResponse{}
	}
	c.logger.Debug("%s: %s %s returned %d", c.name, req.Method, req.URL, resp.Status)
	return resp, nil
}

// fire sends req and reports it dispatched whatever the reply status.
func (c *client) fire(ctx context.Context, req *adapters.HTTPRequest) (bool, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return false, err
	}
	if !resp.OK {
		c.logger.Warn("%s: endpoint replied with status %d", c.name, resp.Status)
	}
	return true, nil
}

// call sends req and requires a 2xx reply.
func (c *client) call(ctx context.Context, req *adapters.HTTPRequest) (*adapters.HTTPResponse, error) {
	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, &analytics.HTTPError{Status: resp.Status, Body: string(resp.Body)}
	}
	return resp, nil
}

func (c *client) require(field string) error {
	return &analytics.FieldError{Adapter: c.name, Field: field}
}

func (c *client) marshal(field string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", c.require(field), err)
	}
	return data, nil
}

// stringProp returns props[key] when it is a non-empty string.
func stringProp(event *analytics.Event, key string) (string, bool) {
	v, ok := event.Prop(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func jsonHeaders(extra map[string]string) map[string]string {
	headers := map[string]string{
		"Content-Type": contentTypeJSON,
		"Accept":       contentTypeJSON,
	}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}
