// Package logging holds the slog conventions shared by the API server, the
// departure pipeline and the weather sources: JSON output, a component attribute
// per subsystem and a request-scoped logger carried in the context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

type loggerKey struct{}

// NewStructuredLogger creates a JSON logger writing to w at level and above.
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// ParseLevel maps a config level name (debug, info, warn, error) to a slog.Level.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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

// Component tags a record with the subsystem that produced it.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// LogError logs message at error level with err under the "error" key.
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	errText := "<nil>"
	if err != nil {
		errText = err.Error()
	}
	logger.LogAttrs(context.Background(), slog.LevelError, message,
		append([]slog.Attr{slog.String("error", errText)}, attrs...)...)
}

// LogOperation records a completed unit of work (a fetch, a startup step) at
// info level. A zero "duration" attribute is dropped.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	kept := attrs[:0:0]
	for _, attr := range attrs {
		if attr.Key == "duration" && attr.Value.Kind() == slog.KindDuration && attr.Value.Duration() == 0 {
			continue
		}
		kept = append(kept, attr)
	}
	logger.LogAttrs(context.Background(), slog.LevelInfo, operation, kept...)
}

// LogHTTPRequest logs a request served by the dashboard API.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	if logger == nil {
		return
	}

	logger.LogAttrs(context.Background(), slog.LevelInfo, "http_request",
		append([]slog.Attr{
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Float64("duration_ms", durationMs),
		}, attrs...)...)
}

// LogUpstreamCall logs an outgoing call to one of the open-data feeds at debug level.
func LogUpstreamCall(logger *slog.Logger, source, url string, status int, durationMs float64) {
	if logger == nil {
		return
	}

	logger.LogAttrs(context.Background(), slog.LevelDebug, "upstream_call",
		slog.String("source", source),
		slog.String("url", url),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
		Component("upstream_client"))
}

// WithLogger stores a request-scoped logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
