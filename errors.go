package analytics

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEvent is wrapped by every FieldError.
	ErrInvalidEvent = errors.New("analytics: invalid event")

	// ErrDisabled is returned by capability calls (CRM, profiles, ...) on a
	// disabled adapter. CreateEvent reports a disabled adapter as false with
	// a nil error instead.
	ErrDisabled = errors.New("analytics: adapter is disabled")

	// ErrNotFound is returned when a CRM lookup matches nothing.
	ErrNotFound = errors.New("analytics: record not found")

	// ErrDuplicateAdapter is returned when registering a second adapter with the same name.
	ErrDuplicateAdapter = errors.New("analytics: adapter already registered")

	// ErrUnknownAdapter is returned when addressing an adapter that is not registered.
	ErrUnknownAdapter = errors.New("analytics: adapter not registered")

	// ErrDispatcherClosed is returned for sends after Close.
	ErrDispatcherClosed = errors.New("analytics: dispatcher is closed")
)

// FieldError reports an event field a backend requires but did not get.
type FieldError struct {
	Adapter string
	Field   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("analytics: %s requires event field %q", e.Adapter, e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidEvent
}

// TransportError reports a request that could not be completed: DNS, connect
// or read timeouts, TLS failures and context cancellation.
type TransportError struct {
	Adapter string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("analytics: %s transport: %v", e.Adapter, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-2xx reply on calls that inspect the status.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analytics: HTTP request failed with status %d", e.Status)
	}
	return fmt.Sprintf("analytics: HTTP request failed with status %d: %s", e.Status, e.Body)
}
