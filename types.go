package analytics

import "github.com/Tap30/analytics-go/adapters"

// Re-export adapter types for convenience
type (
	HTTPAdapter   = adapters.HTTPAdapter
	HTTPRequest   = adapters.HTTPRequest
	HTTPResponse  = adapters.HTTPResponse
	LoggerAdapter = adapters.LoggerAdapter
	LogLevel      = adapters.LogLevel
)
