// Package logging builds the [log/slog] logger used by kustomize-upstream and
// carries it through a context.Context.
//
// Log records go to stderr; stdout is reserved for the "create file" lines
// printed by the split run.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/kustomize-upstream/internal/config"
)

type ctxKey struct{}

// New creates a logger for cfg that writes to w. The process-wide default
// logger is left untouched.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.EffectiveLogLevel())}

	var handler slog.Handler

	switch cfg.LogFormat {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Setup creates a logger for cfg writing to stderr and installs it as the
// process-wide default.
func Setup(cfg *config.Config) *slog.Logger {
	logger := New(cfg, os.Stderr)
	slog.SetDefault(logger)

	return logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel converts a configured log level to a slog.Level. Unknown values
// map to info; config validation rejects them earlier.
func ParseLevel(level string) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewContext returns a child context carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from ctx, falling back to slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}

	return slog.Default()
}
