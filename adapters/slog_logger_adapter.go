package adapters

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogLoggerAdapter forwards printf-style messages to a structured slog.Logger.
// Level filtering is left to the logger's handler.
type SlogLoggerAdapter struct {
	logger *slog.Logger
}

var _ LoggerAdapter = (*SlogLoggerAdapter)(nil)

// NewSlogLoggerAdapter wraps logger. A nil logger uses slog.Default().
func NewSlogLoggerAdapter(logger *slog.Logger) *SlogLoggerAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLoggerAdapter{logger: logger.With(slog.String("component", "analytics"))}
}

// SlogLevel maps a LogLevel onto the slog level scale. LogLevelNone maps
// above slog.LevelError so nothing passes.
func SlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelError:
		return slog.LevelError
	case LogLevelNone:
		return slog.LevelError + 4
	default:
		return slog.LevelWarn
	}
}

func (s *SlogLoggerAdapter) log(level slog.Level, message string, args ...any) {
	ctx := context.Background()
	if !s.logger.Enabled(ctx, level) {
		return
	}
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	s.logger.Log(ctx, level, message)
}

func (s *SlogLoggerAdapter) Debug(message string, args ...any) { s.log(slog.LevelDebug, message, args...) }
func (s *SlogLoggerAdapter) Info(message string, args ...any)  { s.log(slog.LevelInfo, message, args...) }
func (s *SlogLoggerAdapter) Warn(message string, args ...any)  { s.log(slog.LevelWarn, message, args...) }
func (s *SlogLoggerAdapter) Error(message string, args ...any) { s.log(slog.LevelError, message, args...) }
