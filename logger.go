package hashsearch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with hashsearch-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithBackend adds a backend field to the logger.
func (l *Logger) WithBackend(b Backend) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", b.String()),
	}
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, info LoadInfo, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", info.Source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"source", info.Source,
			"count", info.Count,
			"unique", info.Unique,
			"duration", info.Duration,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, threshold, matches int, truncated bool, duration time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "search failed",
			"threshold", threshold,
			"error", err,
		)
	case truncated:
		l.WarnContext(ctx, "search truncated",
			"threshold", threshold,
			"matches", matches,
		)
	default:
		l.DebugContext(ctx, "search completed",
			"threshold", threshold,
			"matches", matches,
			"duration", duration,
		)
	}
}

// LogBatchSearch logs a batch search operation.
func (l *Logger) LogBatchSearch(ctx context.Context, queries, threshold, matches, truncated int, duration time.Duration, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "batch search failed",
			"queries", queries,
			"threshold", threshold,
			"error", err,
		)
	case truncated > 0:
		l.WarnContext(ctx, "batch search completed with truncated results",
			"queries", queries,
			"truncated", truncated,
			"matches", matches,
		)
	default:
		l.InfoContext(ctx, "batch search completed",
			"queries", queries,
			"threshold", threshold,
			"matches", matches,
			"duration", duration,
		)
	}
}
