// Package log carries a [slog.Logger] on a [context.Context] and offers package-level
// helpers that log through it, falling back to [slog.Default].
//
// All packages of this module log through here rather than through [slog] directly.
package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"time"
)

type loggerKey struct{}

// WithLogger returns a new [context.Context] that carries logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx or [slog.Default].
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// New returns a text logger writing to w. Debug records are kept only when verbose is set.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func Debug(ctx context.Context, msg string, args ...any) {
	doLog(ctx, slog.LevelDebug, msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	doLog(ctx, slog.LevelInfo, msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	doLog(ctx, slog.LevelWarn, msg, args...)
}

// Error logs err by its message only, so wrapped errors carrying a stack stay on one line.
func Error(ctx context.Context, msg string, err error, args ...any) {
	var errText any
	if err != nil {
		errText = err.Error()
	}
	doLog(ctx, slog.LevelError, msg, slices.Concat([]any{"error", errText}, args)...)
}

// doLog keeps the caller of the package-level helper as the record source.
func doLog(ctx context.Context, level slog.Level, msg string, args ...any) {
	logger := FromContext(ctx)
	if !logger.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	// skip [runtime.Callers], [doLog] and the helper
	runtime.Callers(3, pcs[:])
	record := slog.NewRecord(time.Now(), level, msg, pcs[0])
	record.Add(args...)
	_ = logger.Handler().Handle(ctx, record)
}
