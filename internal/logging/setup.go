// Package logging builds the application-wide slog.Logger: always a
// stdout handler, plus an optional HTTP-batched remote sink. Grounded on
// the teacher's internal/pkg/logging (setup.go's MultiHandler, fanning out
// to N handlers) generalized away from its Yandex Cloud Logging specifics
// into a pluggable remote endpoint.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/oddsentry/oddsentry/internal/config"
)

// Setup builds the process-wide logger and installs it as slog's default.
func Setup(cfg config.LoggingConfig, serviceName string) (*slog.Logger, error) {
	level := parseLevel(cfg.Level)

	var format string
	if cfg.Format == "" {
		format = "text"
	} else {
		format = cfg.Format
	}

	var handlers []slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		handlers = append(handlers, slog.NewJSONHandler(os.Stdout, opts))
	} else {
		handlers = append(handlers, slog.NewTextHandler(os.Stdout, opts))
	}

	if cfg.RemoteSink.Enabled {
		sink, err := NewRemoteSinkHandler(cfg.RemoteSink, level)
		if err != nil {
			fmt.Fprintf(os.Stderr, "logging: remote sink disabled: %v\n", err)
		} else {
			handlers = append(handlers, sink)
		}
	}

	logger := slog.New(&MultiHandler{handlers: handlers}).With("service", serviceName)
	slog.SetDefault(logger)
	return logger, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MultiHandler fans a record out to every wrapped handler, matching the
// teacher's setup.go exactly.
type MultiHandler struct {
	handlers []slog.Handler
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, record slog.Record) error {
	var lastErr error
	for _, h := range m.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record); err != nil {
				lastErr = err
			}
		}
	}
	return lastErr
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: handlers}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: handlers}
}
