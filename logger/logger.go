// Package logger provides structured logging with automatic secret redaction.
//
// This package wraps Go's standard log/slog with convenience functions for:
//   - play.ht API request and response logging
//   - Stream completion summaries
//   - Redaction of registered secrets and common token formats
//   - Contextual logging with request ids and operation names
//
// All exported functions use the global DefaultLogger which can be configured
// for different output formats and log levels.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"
)

var (
	// DefaultLogger is the global structured logger instance.
	// It is initialized with slog.LevelInfo, or the level named by LOG_LEVEL.
	DefaultLogger *slog.Logger

	// logOutput is where the default handlers write.
	logOutput io.Writer = os.Stderr
)

func init() {
	level := slog.LevelInfo
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = ParseLevel(envLevel)
	}
	initLogger(level, nil, false)
}

// ParseLevel converts a level name to a slog.Level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initLogger(level slog.Level, commonFields []slog.Attr, useJSON bool) {
	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if useJSON {
		base = slog.NewJSONHandler(logOutput, opts)
	} else {
		base = slog.NewTextHandler(logOutput, opts)
	}
	DefaultLogger = slog.New(NewContextHandler(base, commonFields...))
}

// SetLevel changes the logging level for all subsequent log operations.
func SetLevel(level slog.Level) {
	initLogger(level, nil, false)
}

// SetVerbose enables debug-level logging when verbose is true, otherwise sets info-level.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(slog.LevelDebug)
	} else {
		SetLevel(slog.LevelInfo)
	}
}

// SetOutput redirects the default handlers to w and resets the level.
// Intended for tests and CLIs that own their output streams.
func SetOutput(w io.Writer, level slog.Level) {
	logOutput = w
	initLogger(level, nil, false)
}

// Info logs an informational message with structured key-value attributes.
func Info(msg string, args ...any) {
	DefaultLogger.Info(msg, args...)
}

// InfoContext logs an informational message with context and structured attributes.
func InfoContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.InfoContext(ctx, msg, args...)
}

// Debug logs a debug-level message with structured attributes.
func Debug(msg string, args ...any) {
	DefaultLogger.Debug(msg, args...)
}

// DebugContext logs a debug message with context and structured attributes.
func DebugContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.DebugContext(ctx, msg, args...)
}

// Warn logs a warning message with structured attributes.
func Warn(msg string, args ...any) {
	DefaultLogger.Warn(msg, args...)
}

// WarnContext logs a warning message with context and structured attributes.
func WarnContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.WarnContext(ctx, msg, args...)
}

// Error logs an error message with structured attributes.
func Error(msg string, args ...any) {
	DefaultLogger.Error(msg, args...)
}

// ErrorContext logs an error message with context and structured attributes.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	DefaultLogger.ErrorContext(ctx, msg, args...)
}

var (
	// tokenPatterns matches common credential formats.
	tokenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`Bearer\s+[a-zA-Z0-9_.-]+`),
		regexp.MustCompile(`ak-[a-zA-Z0-9]{16,}`),
	}

	secretsMu sync.RWMutex
	secrets   = map[string]struct{}{}
)

// RegisterSecret adds a literal value that RedactSensitiveData must hide.
// The API client registers its secret key and user id on construction.
func RegisterSecret(s string) {
	if len(s) < 4 {
		return
	}
	secretsMu.Lock()
	defer secretsMu.Unlock()
	secrets[s] = struct{}{}
}

// RedactSensitiveData removes registered secrets and token-like strings.
// A redacted value keeps its first 4 characters for debugging context.
func RedactSensitiveData(input string) string {
	result := input

	secretsMu.RLock()
	for s := range secrets {
		if strings.Contains(result, s) {
			result = strings.ReplaceAll(result, s, mask(s))
		}
	}
	secretsMu.RUnlock()

	for _, pattern := range tokenPatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			if strings.HasPrefix(match, "Bearer") {
				return "Bearer [REDACTED]"
			}
			return mask(match)
		})
	}

	return result
}

func mask(s string) string {
	if len(s) > 8 {
		return s[:4] + "...[REDACTED]"
	}
	return "[REDACTED]"
}

// sensitiveHeaders are always fully masked.
var sensitiveHeaders = map[string]bool{
	"authorization": true,
	"x-user-id":     true,
}

// RedactHeaders returns a copy of headers suitable for logging.
func RedactHeaders(headers map[string][]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[strings.ToLower(k)] {
			out[k] = "***"
			continue
		}
		out[k] = RedactSensitiveData(strings.Join(v, ", "))
	}
	return out
}

// APIRequest logs an outgoing play.ht request at debug level.
// This function is a no-op when debug logging is disabled.
func APIRequest(ctx context.Context, method, url string, headers map[string][]string) {
	if !DefaultLogger.Enabled(ctx, slog.LevelDebug) {
		return
	}

	attrs := make([]any, 0, 6)
	attrs = append(attrs,
		"method", method,
		"url", RedactSensitiveData(url),
	)
	if len(headers) > 0 {
		attrs = append(attrs, "headers", RedactHeaders(headers))
	}

	DebugContext(ctx, "API request", attrs...)
}

// APIResponse logs the outcome of a play.ht request. Failures are logged at
// warn level; successes at debug level.
func APIResponse(ctx context.Context, method, url string, statusCode int, err error) {
	attrs := []any{
		"method", method,
		"url", RedactSensitiveData(url),
		"status_code", statusCode,
	}

	if err != nil {
		attrs = append(attrs, "error", RedactSensitiveData(err.Error()))
		WarnContext(ctx, "API request failed", attrs...)
		return
	}

	DebugContext(ctx, "API response", attrs...)
}

// StreamSummary logs the totals of a finished stream. The operation name
// comes from ctx, see WithOperation.
func StreamSummary(ctx context.Context, chunks int, bytes int64, err error) {
	attrs := []any{
		"chunks", chunks,
		"bytes", bytes,
	}
	if err != nil {
		attrs = append(attrs, "error", RedactSensitiveData(err.Error()))
		WarnContext(ctx, "stream aborted", attrs...)
		return
	}
	DebugContext(ctx, "stream complete", attrs...)
}
