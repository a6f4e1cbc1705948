package adapters

import (
	"io"
	"log"
	"os"
)

// PrintLoggerAdapter implements LoggerAdapter using standard log package
type PrintLoggerAdapter struct {
	level LogLevel
	out   *log.Logger
}

// NewPrintLoggerAdapter creates a print logger writing messages at or above level to stderr.
func NewPrintLoggerAdapter(level LogLevel) *PrintLoggerAdapter {
	return NewPrintLoggerAdapterTo(os.Stderr, level)
}

// NewPrintLoggerAdapterTo creates a print logger writing to w.
func NewPrintLoggerAdapterTo(w io.Writer, level LogLevel) *PrintLoggerAdapter {
	return &PrintLoggerAdapter{level: level, out: log.New(w, "", log.LstdFlags)}
}

func (p *PrintLoggerAdapter) shouldLog(level LogLevel) bool {
	return levelRank[level] >= levelRank[p.level]
}

func (p *PrintLoggerAdapter) Debug(message string, args ...any) {
	if p.shouldLog(LogLevelDebug) {
		p.out.Printf("[DEBUG] [Analytics] "+message, args...)
	}
}

func (p *PrintLoggerAdapter) Info(message string, args ...any) {
	if p.shouldLog(LogLevelInfo) {
		p.out.Printf("[INFO] [Analytics] "+message, args...)
	}
}

func (p *PrintLoggerAdapter) Warn(message string, args ...any) {
	if p.shouldLog(LogLevelWarn) {
		p.out.Printf("[WARN] [Analytics] "+message, args...)
	}
}

func (p *PrintLoggerAdapter) Error(message string, args ...any) {
	if p.shouldLog(LogLevelError) {
		p.out.Printf("[ERROR] [Analytics] "+message, args...)
	}
}
