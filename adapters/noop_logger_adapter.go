package adapters

// NoOpLoggerAdapter discards every message. Backends use it when no logger is configured.
type NoOpLoggerAdapter struct{}

var _ LoggerAdapter = NoOpLoggerAdapter{}

// NewNoOpLoggerAdapter returns a logger that drops all output.
func NewNoOpLoggerAdapter() NoOpLoggerAdapter {
	return NoOpLoggerAdapter{}
}

func (NoOpLoggerAdapter) Debug(string, ...any) {}
func (NoOpLoggerAdapter) Info(string, ...any)  {}
func (NoOpLoggerAdapter) Warn(string, ...any)  {}
func (NoOpLoggerAdapter) Error(string, ...any) {}
