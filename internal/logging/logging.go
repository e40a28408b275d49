// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the structured logger shared by the CLI and the
// HTTP server. Records go through log/slog and are rendered by a
// charmbracelet/log handler so terminal output stays readable.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/pubsum/pkg/types"
)

// New returns a logger writing to w at the configured level and format.
// Unknown levels fall back to info and unknown formats to text.
func New(cfg types.LogConfig, w io.Writer) *slog.Logger {
	handler := log.NewWithOptions(w, log.Options{
		Level:           slogToCharmLevel(parseLevel(cfg.Level)),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       parseFormat(cfg.Format),
	})
	return slog.New(handler)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ctxKey struct{}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or fallback when none is.
func FromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return fallback
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func slogToCharmLevel(l slog.Level) log.Level {
	switch {
	case l < slog.LevelInfo:
		return log.DebugLevel
	case l < slog.LevelWarn:
		return log.InfoLevel
	case l < slog.LevelError:
		return log.WarnLevel
	default:
		return log.ErrorLevel
	}
}

func parseFormat(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
