package arbitrage

import (
	"context"
	"testing"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/store"
)

type stubHistory struct {
	points []store.OddsHistoryPoint
	err    error
}

func (s stubHistory) RecentHistory(ctx context.Context, key store.CurrentOddsKey, limit int) ([]store.OddsHistoryPoint, error) {
	return s.points, s.err
}

func pointsAt(odds ...float64) []store.OddsHistoryPoint {
	out := make([]store.OddsHistoryPoint, len(odds))
	for i, o := range odds {
		out[i] = store.OddsHistoryPoint{Odd: o, RecordedAt: time.Now()}
	}
	return out
}

func TestDetectLineMovement_DropFromMaxClearsThreshold(t *testing.T) {
	hist := stubHistory{points: pointsAt(4.15, 4.0, 3.8)}
	key := store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}

	mv, err := DetectLineMovement(context.Background(), hist, key, 3.45, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mv == nil {
		t.Fatal("expected a movement, a ~17%% drop from the 4.15 extreme clears a 10%% threshold")
	}
	if mv.PreviousOdd != 4.15 {
		t.Errorf("expected previous odd to be the historical max (4.15), got %v", mv.PreviousOdd)
	}
}

func TestDetectLineMovement_RiseFromMinClearsThreshold(t *testing.T) {
	hist := stubHistory{points: pointsAt(1.80, 1.85, 1.90)}
	key := store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}

	mv, err := DetectLineMovement(context.Background(), hist, key, 2.20, 15, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mv == nil {
		t.Fatal("expected a movement, a rise from the 1.80 extreme clears a 15%% threshold")
	}
	if mv.PreviousOdd != 1.80 {
		t.Errorf("expected previous odd to be the historical min (1.80), got %v", mv.PreviousOdd)
	}
}

func TestDetectLineMovement_NoMovementBelowThreshold(t *testing.T) {
	hist := stubHistory{points: pointsAt(2.00, 2.02, 2.01)}
	key := store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}

	mv, err := DetectLineMovement(context.Background(), hist, key, 2.03, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mv != nil {
		t.Errorf("expected no movement for a small swing, got %+v", mv)
	}
}

func TestDetectLineMovement_NoHistoryIsNotAnError(t *testing.T) {
	hist := stubHistory{points: nil}
	key := store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}

	mv, err := DetectLineMovement(context.Background(), hist, key, 2.00, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mv != nil {
		t.Errorf("expected no movement with empty history, got %+v", mv)
	}
}

func TestDetectLineMovement_ZeroThresholdDisabled(t *testing.T) {
	hist := stubHistory{points: pointsAt(10.0, 1.0)}
	key := store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}

	mv, err := DetectLineMovement(context.Background(), hist, key, 5.0, 0, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mv != nil {
		t.Errorf("expected a zero threshold to disable detection, got %+v", mv)
	}
}
