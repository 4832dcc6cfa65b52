// Package logging wraps log/slog with a compact console format and
// request-scoped attributes.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const requestIDKey contextKey = "requestID"

// LevelTrace sits below debug and is used for per-tick chatter.
const LevelTrace = slog.LevelDebug - 4

var logger *slog.Logger

func init() {
	logger = slog.New(NewCompactHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Configure replaces the process logger. JSON output is meant for
// machine consumption; the compact handler for terminals.
func Configure(w io.Writer, level slog.Level, json bool) {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		logger = slog.New(slog.NewJSONHandler(w, opts))
		return
	}
	logger = slog.New(NewCompactHandler(w, opts))
}

// SetLevel changes the logging level of the compact console logger.
func SetLevel(level slog.Level) {
	Configure(os.Stdout, level, false)
}

// SetJSONOutput switches to JSON format output
func SetJSONOutput(level slog.Level) {
	Configure(os.Stdout, level, true)
}

// ParseLevel maps a config verbosity name to a level. Each count of
// extra verbosity lowers the level by one step.
func ParseLevel(name string, verbose int) (slog.Level, error) {
	var level slog.Level
	switch strings.ToLower(name) {
	case "trace":
		level = LevelTrace
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return level - slog.Level(4*verbose), nil
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	return logger
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func withRequestID(ctx context.Context, args []any) []any {
	requestID := GetRequestID(ctx)
	if requestID != "" {
		return append([]any{"requestID", requestID}, args...)
	}
	return args
}

// Trace logs at TRACE level (simulation ticks and other per-frame noise)
func Trace(msg string, args ...any) {
	logger.Log(context.Background(), LevelTrace, msg, args...)
}

// Debug logs at DEBUG level (graph mutations, internal behavior)
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// DebugContext logs at DEBUG level with context
func DebugContext(ctx context.Context, msg string, args ...any) {
	logger.DebugContext(ctx, msg, withRequestID(ctx, args)...)
}

// Info logs at INFO level (user-facing operations)
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// InfoContext logs at INFO level with context
func InfoContext(ctx context.Context, msg string, args ...any) {
	logger.InfoContext(ctx, msg, withRequestID(ctx, args)...)
}

// Warn logs at WARN level (rejected operations, collaborator failures)
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// WarnContext logs at WARN level with context
func WarnContext(ctx context.Context, msg string, args ...any) {
	logger.WarnContext(ctx, msg, withRequestID(ctx, args)...)
}

// Error logs at ERROR level (logical bugs that shouldn't happen)
func Error(msg string, args ...any) {
	logger.Error(msg, args...)
}

// ErrorContext logs at ERROR level with context
func ErrorContext(ctx context.Context, msg string, args ...any) {
	logger.ErrorContext(ctx, msg, withRequestID(ctx, args)...)
}
