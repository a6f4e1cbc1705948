package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/valyala/bytebufferpool"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultTimeout        = 10 * time.Second
)

// NetHTTPConfig holds the timeouts used by NetHTTPAdapter.
type NetHTTPConfig struct {
	// ConnectTimeout bounds dialing the remote host.
	ConnectTimeout time.Duration
	// Timeout bounds the whole request including reading the body.
	Timeout time.Duration
}

// NetHTTPAdapter is the standard HTTP adapter implementation using net/http package.
type NetHTTPAdapter struct {
	client *http.Client
}

// Ensure NetHTTPAdapter implements HTTPAdapter interface
var _ HTTPAdapter = (*NetHTTPAdapter)(nil)

// NewNetHTTPAdapter creates a new NetHTTPAdapter with the default 5s connect
// and 10s total timeouts.
func NewNetHTTPAdapter() HTTPAdapter {
	return NewNetHTTPAdapterWithConfig(NetHTTPConfig{})
}

// NewNetHTTPAdapterWithConfig creates a NetHTTPAdapter with custom timeouts.
// The connect timeout must be shorter than the total timeout; otherwise both
// fall back to the defaults.
func NewNetHTTPAdapterWithConfig(config NetHTTPConfig) *NetHTTPAdapter {
	config = normalizeTimeouts(config)

	dialer := &net.Dialer{Timeout: config.ConnectTimeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = config.ConnectTimeout

	return &NetHTTPAdapter{
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
	}
}

func normalizeTimeouts(config NetHTTPConfig) NetHTTPConfig {
	if config.ConnectTimeout <= 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.ConnectTimeout >= config.Timeout {
		return NetHTTPConfig{ConnectTimeout: DefaultConnectTimeout, Timeout: DefaultTimeout}
	}
	return config
}

// Do sends the request and reads the full response body.
func (h *NetHTTPAdapter) Do(ctx context.Context, r *HTTPRequest) (*HTTPResponse, error) {
	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	method := r.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range r.Headers {
		req.Header.Set(key, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	data := make([]byte, buf.Len())
	copy(data, buf.B)

	return &HTTPResponse{
		Status: resp.StatusCode,
		OK:     resp.StatusCode >= 200 && resp.StatusCode < 300,
		Body:   data,
	}, nil
}
