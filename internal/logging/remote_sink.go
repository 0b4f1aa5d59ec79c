package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/oddsentry/oddsentry/internal/config"
)

// logEntry is one buffered record awaiting a batched POST, matching the
// teacher's YandexLoggingHandler.LogEntry shape.
type logEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// RemoteSinkHandler batches slog records and POSTs them as JSON to a
// configurable HTTP endpoint. Grounded on the teacher's
// internal/pkg/logging/yandex_logging.go (buffer/ticker/flushLoop/sendLogs
// shape), generalized from the Yandex Cloud Logging write API to any
// bearer-token-authenticated JSON ingest endpoint.
type RemoteSinkHandler struct {
	cfg    config.RemoteSinkConfig
	level  slog.Level
	client *http.Client

	mu     sync.Mutex
	buffer []logEntry

	ticker *time.Ticker
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewRemoteSinkHandler starts the background flush loop and returns a
// ready-to-use handler. Callers should call Close during shutdown to flush
// any remaining buffered entries.
func NewRemoteSinkHandler(cfg config.RemoteSinkConfig, level slog.Level) (*RemoteSinkHandler, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("remote sink endpoint is required")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}

	h := &RemoteSinkHandler{
		cfg:    cfg,
		level:  level,
		client: &http.Client{Timeout: 10 * time.Second},
		buffer: make([]logEntry, 0, cfg.BatchSize),
		ticker: time.NewTicker(cfg.FlushInterval),
		done:   make(chan struct{}),
	}

	h.wg.Add(1)
	go h.flushLoop()

	return h, nil
}

func (h *RemoteSinkHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *RemoteSinkHandler) Handle(_ context.Context, record slog.Record) error {
	entry := logEntry{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
		Payload:   make(map[string]any),
	}
	record.Attrs(func(a slog.Attr) bool {
		entry.Payload[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	h.buffer = append(h.buffer, entry)
	shouldFlush := len(h.buffer) >= h.cfg.BatchSize
	h.mu.Unlock()

	if shouldFlush {
		go h.flush()
	}
	return nil
}

// WithAttrs/WithGroup are no-ops: the remote sink flattens attrs per-record
// into Payload at Handle time rather than threading handler state, same
// simplification the teacher's handler makes.
func (h *RemoteSinkHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }
func (h *RemoteSinkHandler) WithGroup(_ string) slog.Handler      { return h }

func (h *RemoteSinkHandler) flushLoop() {
	defer h.wg.Done()
	for {
		select {
		case <-h.ticker.C:
			h.flush()
		case <-h.done:
			return
		}
	}
}

func (h *RemoteSinkHandler) flush() {
	h.mu.Lock()
	if len(h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	entries := make([]logEntry, len(h.buffer))
	copy(entries, h.buffer)
	h.buffer = h.buffer[:0]
	h.mu.Unlock()

	if err := h.sendLogs(entries); err != nil {
		fmt.Fprintf(os.Stderr, "logging: remote sink flush failed: %v\n", err)
	}
}

func (h *RemoteSinkHandler) sendLogs(entries []logEntry) error {
	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, h.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("remote sink returned status %d", resp.StatusCode)
	}
	return nil
}

// Close stops the flush loop and flushes any remaining buffered entries.
func (h *RemoteSinkHandler) Close() error {
	close(h.done)
	h.wg.Wait()
	h.flush()
	return nil
}
