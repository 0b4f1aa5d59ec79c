package arbitrage

import (
	"context"
	"fmt"

	"github.com/oddsentry/oddsentry/internal/store"
)

// Movement is a significant single-outcome price swing, the signal behind
// the teacher's line_movement.go alerts.
type Movement struct {
	Key           store.CurrentOddsKey
	PreviousOdd   float64
	CurrentOdd    float64
	ChangeAbs     float64
	ChangePercent float64
}

// historyReader is the narrow slice of store.Store line-movement detection
// needs, kept separate so tests can stub it without a real database.
type historyReader interface {
	RecentHistory(ctx context.Context, key store.CurrentOddsKey, limit int) ([]store.OddsHistoryPoint, error)
}

// DetectLineMovement compares currentOdd against the extremes seen in recent
// history for one odds key and reports a Movement when the swing from
// either extreme clears thresholdPercent. This catches gradual moves
// (4.15 -> 4.0 -> 3.45) that a single-tick diff would miss, because it
// always compares against the historical max/min, not just the last value.
// Grounded on the teacher's computeAndStoreLineMovements.
func DetectLineMovement(ctx context.Context, hist historyReader, key store.CurrentOddsKey, currentOdd float64, thresholdPercent float64, historyDepth int) (*Movement, error) {
	if thresholdPercent <= 0 || currentOdd <= 0 {
		return nil, nil
	}

	points, err := hist.RecentHistory(ctx, key, historyDepth)
	if err != nil {
		return nil, fmt.Errorf("arbitrage: recent history: %w", err)
	}
	if len(points) == 0 {
		return nil, nil
	}

	maxOdd, minOdd := points[0].Odd, points[0].Odd
	for _, p := range points[1:] {
		if p.Odd > maxOdd {
			maxOdd = p.Odd
		}
		if p.Odd < minOdd {
			minOdd = p.Odd
		}
	}

	if maxOdd > 0 {
		dropPercent := (maxOdd - currentOdd) / maxOdd * 100
		if dropPercent >= thresholdPercent {
			return &Movement{Key: key, PreviousOdd: maxOdd, CurrentOdd: currentOdd,
				ChangeAbs: currentOdd - maxOdd, ChangePercent: (currentOdd - maxOdd) / maxOdd * 100}, nil
		}
	}
	if minOdd > 0 {
		risePercent := (currentOdd - minOdd) / minOdd * 100
		if risePercent >= thresholdPercent {
			return &Movement{Key: key, PreviousOdd: minOdd, CurrentOdd: currentOdd,
				ChangeAbs: currentOdd - minOdd, ChangePercent: (currentOdd - minOdd) / minOdd * 100}, nil
		}
	}
	return nil, nil
}
