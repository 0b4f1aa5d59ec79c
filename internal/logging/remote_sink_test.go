package logging

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/oddsentry/oddsentry/internal/config"
)

func TestNewRemoteSinkHandler_RequiresEndpoint(t *testing.T) {
	if _, err := NewRemoteSinkHandler(config.RemoteSinkConfig{}, slog.LevelInfo); err == nil {
		t.Fatal("expected an error when endpoint is empty")
	}
}

func TestRemoteSinkHandler_FlushesOnBatchSize(t *testing.T) {
	var received int32
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var entries []logEntry
		json.NewDecoder(r.Body).Decode(&entries)
		atomic.AddInt32(&received, int32(len(entries)))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h, err := NewRemoteSinkHandler(config.RemoteSinkConfig{
		Endpoint: srv.URL, APIKey: "secret-key", BatchSize: 2, FlushInterval: time.Hour,
	}, slog.LevelInfo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Close()

	r1 := slog.NewRecord(time.Now(), slog.LevelInfo, "first", 0)
	r2 := slog.NewRecord(time.Now(), slog.LevelInfo, "second", 0)
	h.Handle(nil, r1)
	h.Handle(nil, r2)

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&received) < 2 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&received); got != 2 {
		t.Fatalf("expected 2 entries to be flushed to the remote sink, got %d", got)
	}
	if gotAuth != "Bearer secret-key" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
}

func TestRemoteSinkHandler_EnabledRespectsLevel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h, err := NewRemoteSinkHandler(config.RemoteSinkConfig{Endpoint: srv.URL}, slog.LevelWarn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Close()

	if h.Enabled(nil, slog.LevelInfo) {
		t.Error("expected info level to be disabled when handler level is warn")
	}
	if !h.Enabled(nil, slog.LevelError) {
		t.Error("expected error level to be enabled when handler level is warn")
	}
}

func TestRemoteSinkHandler_CloseFlushesRemainder(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var entries []logEntry
		json.NewDecoder(r.Body).Decode(&entries)
		atomic.AddInt32(&received, int32(len(entries)))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h, err := NewRemoteSinkHandler(config.RemoteSinkConfig{
		Endpoint: srv.URL, BatchSize: 10, FlushInterval: time.Hour,
	}, slog.LevelInfo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	h.Handle(nil, slog.NewRecord(time.Now(), slog.LevelInfo, "pending", 0))
	h.Close()

	if atomic.LoadInt32(&received) != 1 {
		t.Errorf("expected Close to flush the one buffered entry, got %d", received)
	}
}
