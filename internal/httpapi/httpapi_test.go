package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oddsentry/oddsentry/internal/bus"
	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is a minimal store.Store stub for exercising the HTTP façade
// without a real database.
type fakeStore struct {
	stats       store.Stats
	statsErr    error
	currentOdds []store.CurrentOdds
	oddsErr     error
}

func (f *fakeStore) ResolveOrCreateMatch(ctx context.Context, bookmaker catalog.Bookmaker, externalID string, in store.UpsertMatchInput) (*store.Match, bool, error) {
	return nil, false, nil
}
func (f *fakeStore) MatchByID(ctx context.Context, matchID string) (*store.Match, error) {
	return nil, nil
}
func (f *fakeStore) UpsertOdds(ctx context.Context, matchID string, bookmaker catalog.Bookmaker, in store.UpsertOddsInput) (bool, error) {
	return false, nil
}
func (f *fakeStore) BulkUpsertOdds(ctx context.Context, matchID string, bookmaker catalog.Bookmaker, ins []store.UpsertOddsInput) (int, error) {
	return 0, nil
}
func (f *fakeStore) CurrentOddsForMatch(ctx context.Context, matchID string) ([]store.CurrentOdds, error) {
	return f.currentOdds, f.oddsErr
}
func (f *fakeStore) RecentHistory(ctx context.Context, key store.CurrentOddsKey, limit int) ([]store.OddsHistoryPoint, error) {
	return nil, nil
}
func (f *fakeStore) UpcomingMatches(ctx context.Context, sport catalog.Sport, around time.Time, window time.Duration) ([]store.Match, error) {
	return nil, nil
}
func (f *fakeStore) MarkFinished(ctx context.Context, olderThan time.Time) (int, error) {
	return 0, nil
}
func (f *fakeStore) RecordArbitrage(ctx context.Context, opp store.ArbitrageOpportunity) (bool, error) {
	return false, nil
}
func (f *fakeStore) TopDiffs(ctx context.Context, limit int) ([]store.ArbitrageOpportunity, error) {
	return nil, nil
}
func (f *fakeStore) Cleanup(ctx context.Context, historyCutoff, arbitrageCutoff time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeStore) Stats(ctx context.Context) (store.Stats, error) {
	return f.stats, f.statsErr
}
func (f *fakeStore) Close() error { return nil }

func TestHandleTopDiffs_RequiresMatchID(t *testing.T) {
	fs := &fakeStore{}
	s := New(":0", fs, bus.New(), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/diffs/top", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without match_id, got %d", rec.Code)
	}
}

func TestHandleTopDiffs_ReturnsDiffsForMatch(t *testing.T) {
	fs := &fakeStore{
		currentOdds: []store.CurrentOdds{
			{CurrentOddsKey: store.CurrentOddsKey{MatchID: "m1", Bookmaker: catalog.Northline, BetType: catalog.TwoWay}, Odd1: 1.90, Odd2: 2.00},
			{CurrentOddsKey: store.CurrentOddsKey{MatchID: "m1", Bookmaker: catalog.Harborbet, BetType: catalog.TwoWay}, Odd1: 2.10, Odd2: 1.85},
		},
	}
	s := New(":0", fs, bus.New(), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/diffs/top?match_id=m1", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Diffs []map[string]any `json:"diffs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(body.Diffs) == 0 {
		t.Fatal("expected at least one diff")
	}
}

func TestHandleStats_ReportsStoreAndBusFigures(t *testing.T) {
	fs := &fakeStore{stats: store.Stats{UpcomingMatches: 5, ActiveArbs: 2}}
	s := New(":0", fs, bus.New(), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]any
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body["upcoming_matches"].(float64) != 5 {
		t.Errorf("expected upcoming_matches=5, got %v", body["upcoming_matches"])
	}
}

func TestHandleHealth_ReportsOK(t *testing.T) {
	s := New(":0", &fakeStore{}, bus.New(), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.srv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
