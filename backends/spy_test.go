package backends

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Tap30/analytics-go/adapters"
)

// spyHTTPAdapter records every request and answers from respond, or with
// 200 and an empty body.
type spyHTTPAdapter struct {
	mu       sync.Mutex
	requests []*adapters.HTTPRequest
	respond  func(*adapters.HTTPRequest) (*adapters.HTTPResponse, error)
}

func (s *spyHTTPAdapter) Do(_ context.Context, req *adapters.HTTPRequest) (*adapters.HTTPResponse, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	if s.respond != nil {
		return s.respond(req)
	}
	return &adapters.HTTPResponse{OK: true, Status: 200}, nil
}

func (s *spyHTTPAdapter) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *spyHTTPAdapter) last(t *testing.T) *adapters.HTTPRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests, "no request was sent")
	return s.requests[len(s.requests)-1]
}

func reply(status int, body string) func(*adapters.HTTPRequest) (*adapters.HTTPResponse, error) {
	return func(*adapters.HTTPRequest) (*adapters.HTTPResponse, error) {
		return &adapters.HTTPResponse{OK: status >= 200 && status < 300, Status: status, Body: []byte(body)}, nil
	}
}

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testOptions(spy *spyHTTPAdapter) []Option {
	return []Option{WithHTTPAdapter(spy), withClock(func() time.Time { return fixedTime })}
}

func formValues(t *testing.T, body []byte) url.Values {
	t.Helper()
	values, err := url.ParseQuery(string(body))
	require.NoError(t, err)
	return values
}

func decodeJSON(t *testing.T, body []byte, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(body, out))
}
