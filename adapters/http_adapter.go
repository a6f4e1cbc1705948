package adapters

import "context"

// HTTPRequest describes a single outbound call to a backend.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// HTTPResponse represents the response from an HTTP request.
type HTTPResponse struct {
	OK     bool
	Status int
	Body   []byte
}

// HTTPAdapter is an interface for HTTP communication.
// Implement this interface to use custom HTTP clients.
type HTTPAdapter interface {
	// Do performs the request and returns the response.
	//
	// Parameters:
	//   - ctx: Controls cancellation of the call
	//   - req: Method, URL, headers and raw body to send
	//
	// Returns HTTP response or error. A non-2xx status is not an error.
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}
