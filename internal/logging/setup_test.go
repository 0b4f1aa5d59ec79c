package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestMultiHandler_FansOutToEveryHandler(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h1 := slog.NewTextHandler(&buf1, nil)
	h2 := slog.NewJSONHandler(&buf2, nil)
	m := &MultiHandler{handlers: []slog.Handler{h1, h2}}

	logger := slog.New(m)
	logger.Info("hello", "key", "value")

	if buf1.Len() == 0 {
		t.Error("expected the text handler to receive the record")
	}
	if buf2.Len() == 0 {
		t.Error("expected the JSON handler to receive the record")
	}
}

func TestMultiHandler_EnabledIfAnyHandlerEnabled(t *testing.T) {
	var buf bytes.Buffer
	warnOnly := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	debugAlso := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	m := &MultiHandler{handlers: []slog.Handler{warnOnly, debugAlso}}

	if !m.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected Enabled to be true when at least one handler accepts the level")
	}
}

func TestMultiHandler_WithAttrsPropagatesToAllHandlers(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	m := &MultiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&buf1, nil),
		slog.NewJSONHandler(&buf2, nil),
	}}

	withAttrs := m.WithAttrs([]slog.Attr{slog.String("service", "oddsentry")})
	logger := slog.New(withAttrs)
	logger.Info("tagged")

	if !bytes.Contains(buf1.Bytes(), []byte("oddsentry")) {
		t.Error("expected the text handler output to carry the added attribute")
	}
	if !bytes.Contains(buf2.Bytes(), []byte("oddsentry")) {
		t.Error("expected the JSON handler output to carry the added attribute")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"junk":  slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
