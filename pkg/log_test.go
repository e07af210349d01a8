package pkg

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	original := GetLogLevel()
	defer SetLogLevel(original)

	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		t.Run(level.String(), func(t *testing.T) {
			SetLogLevel(level)
			assert.Equal(t, level, GetLogLevel())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	require.NotNil(t, logger)

	logger.Info("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	require.NotNil(t, logger)

	logger.Info("test message")
	assert.Contains(t, buf.String(), `"msg":"test message"`)
}

func TestComponentLogging(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	SetLogger(NewJSONLogger(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name  string
		log   func(Component, string, ...any)
		level string
	}{
		{"debug", LogDebug, "DEBUG"},
		{"info", LogInfo, "INFO"},
		{"warn", LogWarn, "WARN"},
		{"error", LogError, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log(ComponentSensor, "measured", "sot", 4520)

			out := buf.String()
			assert.Contains(t, out, `"level":"`+tt.level+`"`)
			assert.Contains(t, out, `"component":"sensor"`)
			assert.Contains(t, out, `"sot":4520`)
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	originalLogger := Logger()
	originalLevel := GetLogLevel()
	defer func() {
		SetLogger(originalLogger)
		SetLogLevel(originalLevel)
	}()

	var buf bytes.Buffer
	SetLogger(NewLogger(&buf, nil))
	SetLogLevel(slog.LevelWarn)

	LogInfo(ComponentHAL, "hidden")
	assert.Empty(t, buf.String())

	LogWarn(ComponentHAL, "shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "component=hal")
}

func TestSetLoggerNil(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var buf bytes.Buffer
	custom := NewLogger(&buf, nil)
	SetLogger(custom)
	assert.Same(t, custom, Logger())

	SetLogger(nil)
	require.NotNil(t, Logger())
	assert.NotSame(t, custom, Logger())
}

func TestSharedLevel(t *testing.T) {
	originalLogger := Logger()
	originalLevel := GetLogLevel()
	defer func() {
		SetLogger(originalLogger)
		SetLogLevel(originalLevel)
	}()

	// Loggers built with nil options follow later level changes.
	var buf bytes.Buffer
	SetLogLevel(slog.LevelError)
	SetLogger(NewJSONLogger(&buf, nil))

	LogDebug(ComponentHotplug, "before")
	assert.Empty(t, buf.String())

	SetLogLevel(slog.LevelDebug)
	LogDebug(ComponentHotplug, "after")
	assert.Contains(t, buf.String(), `"msg":"after"`)
	assert.Contains(t, buf.String(), `"component":"hotplug"`)
}
