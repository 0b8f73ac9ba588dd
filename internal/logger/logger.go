package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with additional functionality.
type Logger struct {
	*slog.Logger
}

// New creates a new text logger with the specified level.
func New(level string) *Logger {
	handler := slog.NewTextHandler(os.Stdout, handlerOptions(level))
	return &Logger{Logger: slog.New(handler)}
}

// NewJSON creates a new JSON logger with the specified level, for production
// environments.
func NewJSON(level string) *Logger {
	handler := slog.NewJSONHandler(os.Stdout, handlerOptions(level))
	return &Logger{Logger: slog.New(handler)}
}

func handlerOptions(level string) *slog.HandlerOptions {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return &slog.HandlerOptions{
		Level: logLevel,
	}
}

// WithFields returns a new logger with the given fields.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// GetDefault returns a default logger instance.
var defaultLogger = New("info")

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
