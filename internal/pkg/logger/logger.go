// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"
)

// ContextKey is the type for request-scoped values the logging pipeline
// knows how to extract.
type ContextKey string

const (
	ContextKeyRequestID  ContextKey = "request_id"
	ContextKeyTraceID    ContextKey = "trace_id"
	ContextKeyClientIP   ContextKey = "client_ip"
	ContextKeyUserAgent  ContextKey = "user_agent"
	ContextKeyMethod     ContextKey = "method"
	ContextKeyPath       ContextKey = "path"
	ContextKeyStatusCode ContextKey = "status_code"
	ContextKeyDuration   ContextKey = "duration_ms"
)

// SetupLogger builds the process-wide logger. Every record passes through
// the context handler, which lifts request-scoped values out of the
// context, and the sanitization handler, which redacts credentials before
// they reach any sink. The returned logger is also installed as the slog
// default.
func SetupLogger(level string, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	switch format {
	case "text":
		handler = NewPrettyTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	handler = NewSanitizationHandler(NewContextHandler(handler))

	if service := os.Getenv("SERVICE_NAME"); service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", service)})
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("env", env)})
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func requestContextKeys() []ContextKey {
	return []ContextKey{
		ContextKeyRequestID,
		ContextKeyTraceID,
		ContextKeyClientIP,
		ContextKeyUserAgent,
		ContextKeyMethod,
		ContextKeyPath,
		ContextKeyStatusCode,
		ContextKeyDuration,
	}
}

func extractContextAttrs(ctx context.Context, keys []ContextKey) []slog.Attr {
	var attrs []slog.Attr

	for _, key := range keys {
		val := ctx.Value(key)
		if val == nil {
			continue
		}
		keyStr := string(key)
		switch v := val.(type) {
		case string:
			if v != "" {
				attrs = append(attrs, slog.String(keyStr, v))
			}
		case int:
			attrs = append(attrs, slog.Int(keyStr, v))
		case time.Duration:
			attrs = append(attrs, slog.Float64(keyStr, float64(v.Milliseconds())))
		default:
			attrs = append(attrs, slog.Any(keyStr, v))
		}
	}

	return attrs
}
