package backends

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analytics "github.com/Tap30/analytics-go"
	"github.com/Tap30/analytics-go/adapters"
)

func newTestPlausible(spy *spyHTTPAdapter) *Plausible {
	return NewPlausible("example.com", "secret", "test-agent", "10.1.1.1",
		append(testOptions(spy), WithEndpoint("http://plausible.local/"))...)
}

func TestPlausible_Pageview(t *testing.T) {
	spy := &spyHTTPAdapter{}
	p := newTestPlausible(spy)

	event := analytics.NewEvent().
		SetType("pageview").
		SetURL("https://example.com/home").
		SetProp("referrer", "https://search.example").
		SetProp("plan", "pro").
		SetProp("seats", 3).
		SetProp("nested", map[string]any{"a": 1})

	ok, err := p.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Equal(t, 1, spy.calls(), "pageviews do not provision goals")

	req := spy.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "http://plausible.local/api/event", req.URL)
	assert.Equal(t, "test-agent", req.Headers["User-Agent"])
	assert.Equal(t, "10.1.1.1", req.Headers["X-Forwarded-For"])
	assert.JSONEq(t, `{
		"domain": "example.com",
		"name": "pageview",
		"url": "https://example.com/home",
		"referrer": "https://search.example",
		"props": {"plan": "pro", "seats": 3}
	}`, string(req.Body))
}

func TestPlausible_CustomEventProvisionsGoal(t *testing.T) {
	spy := &spyHTTPAdapter{}
	p := newTestPlausible(spy)

	ok, err := p.CreateEvent(context.Background(), analytics.NewEvent().SetType("signup").SetURL("https://example.com"))
	require.NoError(t, err)
	assert.True(t, ok)
	require.Equal(t, 2, spy.calls())

	goal := spy.requests[0]
	assert.Equal(t, http.MethodPut, goal.Method)
	assert.Equal(t, "http://plausible.local/api/v1/sites/goals", goal.URL)
	assert.Equal(t, "Bearer secret", goal.Headers["Authorization"])
	assert.Equal(t, "site_id=example.com&goal_type=event&event_name=signup", string(goal.Body))
	assert.Equal(t, "http://plausible.local/api/event", spy.requests[1].URL)
}

func TestPlausible_GoalTransportErrorAborts(t *testing.T) {
	spy := &spyHTTPAdapter{respond: func(*adapters.HTTPRequest) (*adapters.HTTPResponse, error) {
		return nil, errors.New("dial tcp: refused")
	}}
	p := newTestPlausible(spy)

	ok, err := p.CreateEvent(context.Background(), analytics.NewEvent().SetType("signup").SetURL("https://example.com"))
	assert.False(t, ok)
	var transportErr *analytics.TransportError
	assert.ErrorAs(t, err, &transportErr)
	assert.Equal(t, 1, spy.calls())
}

func TestPlausible_RequiredFields(t *testing.T) {
	spy := &spyHTTPAdapter{}
	p := newTestPlausible(spy)

	_, err := p.CreateEvent(context.Background(), analytics.NewEvent().SetType("pageview"))
	var fieldErr *analytics.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "url", fieldErr.Field)

	_, err = p.CreateEvent(context.Background(), analytics.NewEvent().SetURL("https://example.com"))
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "type", fieldErr.Field)
	assert.Zero(t, spy.calls())
}

func TestPlausible_Disabled(t *testing.T) {
	spy := &spyHTTPAdapter{}
	p := newTestPlausible(spy)
	p.Disable()

	event := analytics.NewEvent().SetType("pageview").SetURL("https://example.com")
	ok, err := p.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, spy.calls())

	p.Enable()
	ok, err = p.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPlausible_Validate(t *testing.T) {
	spy := &spyHTTPAdapter{respond: reply(200, `{"results":[{"name":"signup","visitors":3}]}`)}
	p := newTestPlausible(spy)

	ok, err := p.Validate(context.Background(), analytics.NewEvent().SetType("signup"))
	require.NoError(t, err)
	assert.True(t, ok)

	req := spy.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "Bearer secret", req.Headers["Authorization"])
	u, err := url.Parse(req.URL)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/stats/breakdown", u.Path)
	assert.Equal(t, "event:name==signup", u.Query().Get("filters"))

	ok, err = p.Validate(context.Background(), analytics.NewEvent().SetType("purchase"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScalarProps(t *testing.T) {
	got := scalarProps(map[string]any{
		"s": "x", "b": true, "i": 1, "f": 1.5,
		"list": []string{"a"}, "nil": nil, "skip": "y",
	}, "skip")
	assert.Equal(t, map[string]any{"s": "x", "b": true, "i": 1, "f": 1.5}, got)
}
