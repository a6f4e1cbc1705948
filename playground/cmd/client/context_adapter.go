package main

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Tap30/analytics-go/adapters"
)

// ContextAwareHTTPAdapter wraps the standard adapter with an adjustable
// per-request timeout.
type ContextAwareHTTPAdapter struct {
	adapter adapters.HTTPAdapter
	timeout atomic.Int64
}

func NewContextAwareHTTPAdapter(timeout time.Duration) *ContextAwareHTTPAdapter {
	c := &ContextAwareHTTPAdapter{adapter: adapters.NewNetHTTPAdapter()}
	c.SetTimeout(timeout)
	return c
}

func (c *ContextAwareHTTPAdapter) Do(ctx context.Context, req *adapters.HTTPRequest) (*adapters.HTTPResponse, error) {
	if timeout := time.Duration(c.timeout.Load()); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.adapter.Do(ctx, req)
}

func (c *ContextAwareHTTPAdapter) SetTimeout(timeout time.Duration) {
	c.timeout.Store(int64(timeout))
}
