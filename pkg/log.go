package pkg

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Component names the part of the driver a log record comes from. Every
// record carries it under the "component" key.
type Component string

// Driver component identifiers.
const (
	ComponentSensor    Component = "sensor"    // command sequencer and conversion
	ComponentSession   Component = "session"   // per-device attribute access
	ComponentLifecycle Component = "lifecycle" // attach and detach
	ComponentHAL       Component = "hal"       // transports
	ComponentHotplug   Component = "hotplug"   // uevent monitoring
)

// LogFormat selects the handler of loggers built by this package.
type LogFormat int

const (
	LogFormatText LogFormat = iota // logfmt-style key=value, the default
	LogFormatJSON                  // one JSON object per record
)

// logLevel is shared by every handler built here, so SetLogLevel applies to
// loggers created before the call.
var logLevel = new(slog.LevelVar)

var current atomic.Pointer[slog.Logger]

func init() {
	logLevel.Set(slog.LevelWarn)
	current.Store(defaultLogger())
}

func defaultLogger() *slog.Logger {
	return slog.New(newHandler(LogFormatText, os.Stderr, nil))
}

func newHandler(format LogFormat, w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{Level: logLevel}
	}
	if format == LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SetLogLevel sets the minimum level of the shared handlers.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// GetLogLevel returns the minimum level of the shared handlers.
func GetLogLevel() slog.Level {
	return logLevel.Level()
}

// Logger returns the logger every component writes to.
func Logger() *slog.Logger {
	return current.Load()
}

// SetLogger routes all driver logging to logger. A nil logger restores the
// text logger on os.Stderr.
func SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = defaultLogger()
	}
	current.Store(logger)
}

// SetLogFormat replaces the logger with one writing format to os.Stderr at
// the shared level.
func SetLogFormat(format LogFormat) {
	current.Store(slog.New(newHandler(format, os.Stderr, nil)))
}

// NewLogger returns a text logger on w. With nil opts it follows
// SetLogLevel.
func NewLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(newHandler(LogFormatText, w, opts))
}

// NewJSONLogger is NewLogger with JSON output.
func NewJSONLogger(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	return slog.New(newHandler(LogFormatJSON, w, opts))
}

func (c Component) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	l := current.Load()
	if !l.Enabled(ctx, level) {
		return
	}
	l.Log(ctx, level, msg, append([]any{"component", string(c)}, args...)...)
}

// LogDebug logs msg at debug level for component.
func LogDebug(component Component, msg string, args ...any) {
	component.log(slog.LevelDebug, msg, args)
}

// LogInfo logs msg at info level for component.
func LogInfo(component Component, msg string, args ...any) {
	component.log(slog.LevelInfo, msg, args)
}

// LogWarn logs msg at warn level for component.
func LogWarn(component Component, msg string, args ...any) {
	component.log(slog.LevelWarn, msg, args)
}

// LogError logs msg at error level for component.
func LogError(component Component, msg string, args ...any) {
	component.log(slog.LevelError, msg, args)
}
