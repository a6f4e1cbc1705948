package adapters

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintLoggerAdapter(t *testing.T) {
	t.Run("should log every level when level is debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewPrintLoggerAdapterTo(&buf, LogLevelDebug)

		logger.Debug("debug %s", "one")
		logger.Info("info %s", "two")
		logger.Warn("warn %s", "three")
		logger.Error("error %s", "four")

		out := buf.String()
		assert.Contains(t, out, "[DEBUG] [Analytics] debug one")
		assert.Contains(t, out, "[INFO] [Analytics] info two")
		assert.Contains(t, out, "[WARN] [Analytics] warn three")
		assert.Contains(t, out, "[ERROR] [Analytics] error four")
	})

	t.Run("should respect log levels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewPrintLoggerAdapterTo(&buf, LogLevelWarn)

		logger.Debug("hidden")
		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Equal(t, 1, strings.Count(buf.String(), "shown"))
	})

	t.Run("should handle none level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewPrintLoggerAdapterTo(&buf, LogLevelNone)

		logger.Error("error message")

		assert.Empty(t, buf.String())
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"", LogLevelWarn, false},
		{"debug", LogLevelDebug, false},
		{" Info ", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{"ERROR", LogLevelError, false},
		{"none", LogLevelNone, false},
		{"verbose", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
