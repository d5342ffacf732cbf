package sparsebloom

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with filter-specific fields.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithFilter adds the filter geometry to the logger.
func (l *Logger) WithFilter(m uint64, k uint32) *Logger {
	return &Logger{
		Logger: l.Logger.With("m", m, "k", k),
	}
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
	}
}

// LogCreate logs filter construction.
func (l *Logger) LogCreate(ctx context.Context, backing, hasher string) {
	l.DebugContext(ctx, "filter created",
		"backing", backing,
		"hasher", hasher,
	)
}

// LogPromotion logs a dense to compressed promotion.
func (l *Logger) LogPromotion(ctx context.Context, blocks int, bytes int, d time.Duration) {
	l.InfoContext(ctx, "filter promoted",
		"blocks", blocks,
		"bytes", bytes,
		"duration", d,
	)
}

// LogUnion logs a filter union.
func (l *Logger) LogUnion(ctx context.Context, blocks int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "filter union failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "filter union completed",
			"blocks", blocks,
		)
	}
}

// LogSave logs a persisted filter.
func (l *Logger) LogSave(ctx context.Context, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "filter save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "filter saved",
			"name", name,
			"bytes", bytes,
		)
	}
}

// LogLoad logs a loaded filter.
func (l *Logger) LogLoad(ctx context.Context, name string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "filter load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "filter loaded",
			"name", name,
			"bytes", bytes,
		)
	}
}
