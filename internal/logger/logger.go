package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// Initialize sets up the global logger writing to stdout with the given level and format
func Initialize(level, format string) *slog.Logger {
	return InitializeWriter(os.Stdout, level, format)
}

// InitializeWriter is Initialize with an explicit destination
func InitializeWriter(w io.Writer, level, format string) *slog.Logger {
	l := New(w, level, format)

	mu.Lock()
	defaultLogger = l
	mu.Unlock()

	slog.SetDefault(l)
	return l
}

// New builds a logger without touching the global one
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a config level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get returns the default logger
func Get() *slog.Logger {
	mu.RLock()
	l := defaultLogger
	mu.RUnlock()
	if l == nil {
		return Initialize("info", "text")
	}
	return l
}

func Debug(msg string, args ...any) {
	Get().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Get().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Get().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Get().Error(msg, args...)
}

func InfoContext(ctx context.Context, msg string, args ...any) {
	Get().InfoContext(ctx, msg, args...)
}

func WarnContext(ctx context.Context, msg string, args ...any) {
	Get().WarnContext(ctx, msg, args...)
}

func ErrorContext(ctx context.Context, msg string, args ...any) {
	Get().ErrorContext(ctx, msg, args...)
}

// WithComponent returns a logger tagged with a component name (coordinator, broadcast, ...)
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

// EnterMethod logs method entry at debug level
func EnterMethod(methodName string, args ...any) {
	Get().Debug("→ Method entered", append([]any{"method", methodName}, args...)...)
}

// ExitMethod logs method exit at debug level
func ExitMethod(methodName string, args ...any) {
	Get().Debug("← Method exited", append([]any{"method", methodName}, args...)...)
}

// ExitMethodWithError logs a failed method exit. Expected domain failures
// (not found, conflicts) are logged at warn so they don't page anyone.
func ExitMethodWithError(methodName string, err error, args ...any) {
	Get().Warn("← Method exited with error", append([]any{"method", methodName, "error", err}, args...)...)
}

// DatabaseCall logs a database operation before it runs
func DatabaseCall(operation, query string, args ...any) {
	Get().Debug("→ Database call", append([]any{"operation", operation, "query", compact(query)}, args...)...)
}

// DatabaseResult logs the outcome of a database operation
func DatabaseResult(operation string, rowsAffected int64, err error, args ...any) {
	allArgs := append([]any{"operation", operation, "rows_affected", rowsAffected}, args...)
	if err != nil {
		Get().Error("← Database call failed", append(allArgs, "error", err)...)
		return
	}
	Get().Debug("← Database call succeeded", allArgs...)
}

func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
