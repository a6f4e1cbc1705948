package backends

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analytics "github.com/Tap30/analytics-go"
)

type mixpanelEvent struct {
	Event      string         `json:"event"`
	Properties map[string]any `json:"properties"`
}

func TestMixpanel_CreateEvent(t *testing.T) {
	spy := &spyHTTPAdapter{}
	mp := NewMixpanel("tok", testOptions(spy)...)

	event := analytics.NewEvent().SetType("click").SetName("signup").SetProp("plan", "pro")
	ok, err := mp.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	assert.True(t, ok)

	req := spy.last(t)
	assert.Equal(t, MixpanelEndpoint, req.URL)
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
	assert.Equal(t, "text/plain", req.Headers["Accept"])

	var batch []mixpanelEvent
	decodeJSON(t, req.Body, &batch)
	require.Len(t, batch, 1)
	assert.Equal(t, "signup", batch[0].Event)
	assert.Equal(t, "tok", batch[0].Properties["token"])
	assert.Equal(t, "pro", batch[0].Properties["plan"])
	assert.EqualValues(t, fixedTime.Unix(), batch[0].Properties["time"])

	insertID, _ := batch[0].Properties["$insert_id"].(string)
	_, err = uuid.Parse(insertID)
	assert.NoError(t, err)

	_, hasToken := event.Prop("token")
	assert.False(t, hasToken, "event props must not be modified")
}

func TestMixpanel_KeepsCallerTimeAndInsertID(t *testing.T) {
	spy := &spyHTTPAdapter{}
	mp := NewMixpanel("tok", testOptions(spy)...)

	event := analytics.NewEvent().SetType("click").
		SetProp("time", 100).
		SetProp("$insert_id", "fixed")
	_, err := mp.CreateEvent(context.Background(), event)
	require.NoError(t, err)

	var batch []mixpanelEvent
	decodeJSON(t, spy.last(t).Body, &batch)
	assert.Equal(t, "click", batch[0].Event)
	assert.EqualValues(t, 100, batch[0].Properties["time"])
	assert.Equal(t, "fixed", batch[0].Properties["$insert_id"])
}

func TestMixpanel_RequiresName(t *testing.T) {
	spy := &spyHTTPAdapter{}
	mp := NewMixpanel("tok", testOptions(spy)...)

	ok, err := mp.CreateEvent(context.Background(), analytics.NewEvent())
	assert.False(t, ok)
	assert.ErrorIs(t, err, analytics.ErrInvalidEvent)
	assert.Zero(t, spy.calls())
}

func TestMixpanel_Disabled(t *testing.T) {
	spy := &spyHTTPAdapter{}
	mp := NewMixpanel("tok", testOptions(spy)...)
	mp.Disable()

	ok, err := mp.CreateEvent(context.Background(), analytics.NewEvent().SetType("click"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, mp.SetProfile(context.Background(), "u1", "", nil), analytics.ErrDisabled)
	assert.Zero(t, spy.calls())

	mp.Enable()
	ok, err = mp.CreateEvent(context.Background(), analytics.NewEvent().SetType("click"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMixpanel_SetProfile(t *testing.T) {
	spy := &spyHTTPAdapter{respond: reply(200, "1")}
	mp := NewMixpanel("tok", append(testOptions(spy), WithProfileEndpoint("http://engage.local"))...)

	err := mp.SetProfile(context.Background(), "user-1", "10.0.0.1", map[string]any{"$email": "a@b.c"})
	require.NoError(t, err)

	req := spy.last(t)
	assert.Equal(t, "http://engage.local", req.URL)

	var updates []map[string]any
	decodeJSON(t, req.Body, &updates)
	require.Len(t, updates, 1)
	assert.Equal(t, "tok", updates[0]["$token"])
	assert.Equal(t, "user-1", updates[0]["$distinct_id"])
	assert.Equal(t, "10.0.0.1", updates[0]["$ip"])
	assert.Equal(t, map[string]any{"$email": "a@b.c"}, updates[0]["$set"])
}

func TestMixpanel_SetProfileRejected(t *testing.T) {
	for _, tt := range []struct {
		name   string
		status int
		body   string
	}{
		{"zero body", 200, "0"},
		{"server error", 500, "down"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyHTTPAdapter{respond: reply(tt.status, tt.body)}
			mp := NewMixpanel("tok", testOptions(spy)...)

			err := mp.SetProfile(context.Background(), "user-1", "", nil)
			var httpErr *analytics.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Status)
		})
	}
}
