package simsig

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with simsig-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithWidth adds a signature width field to the logger.
func (l *Logger) WithWidth(width int) *Logger {
	return &Logger{
		Logger: l.Logger.With("width", width),
	}
}

// WithBlockSize adds an orthogonalization batch size field to the logger.
func (l *Logger) WithBlockSize(block int) *Logger {
	return &Logger{
		Logger: l.Logger.With("block_size", block),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBatch logs a batch signature operation.
func (l *Logger) LogBatch(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch signatures failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "batch signatures completed",
			"count", count,
		)
	}
}

// LogSnapshot logs a signature bank snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"count", count,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot written",
			"count", count,
		)
	}
}
