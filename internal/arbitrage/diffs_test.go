package arbitrage

import (
	"testing"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/store"
)

func TestTopDiffs_FindsBestWorstSpread(t *testing.T) {
	rows := []store.CurrentOdds{
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}, Odd1: 1.90, Odd2: 2.00},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Harborbet, BetType: catalog.TwoWay}, Odd1: 2.10, Odd2: 1.85},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Ridgebet, BetType: catalog.TwoWay}, Odd1: 1.95, Odd2: 1.92},
	}

	diffs := TopDiffs("match-1", rows, 10)
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs (one per outcome), got %d: %+v", len(diffs), diffs)
	}

	var outcome1 *Diff
	for i := range diffs {
		if diffs[i].Outcome == "1" {
			outcome1 = &diffs[i]
		}
	}
	if outcome1 == nil {
		t.Fatal("expected a diff for outcome 1")
	}
	if outcome1.MinBookmaker != catalog.Northline || outcome1.MinOdd != 1.90 {
		t.Errorf("unexpected min for outcome 1: %+v", outcome1)
	}
	if outcome1.MaxBookmaker != catalog.Harborbet || outcome1.MaxOdd != 2.10 {
		t.Errorf("unexpected max for outcome 1: %+v", outcome1)
	}
}

func TestTopDiffs_ThreeWayOutcomesGrouped(t *testing.T) {
	rows := []store.CurrentOdds{
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.ThreeWay}, Odd1: 2.5, Odd2: 3.2, Odd3: 2.8},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Harborbet, BetType: catalog.ThreeWay}, Odd1: 2.3, Odd2: 3.4, Odd3: 3.0},
	}

	diffs := TopDiffs("match-1", rows, 10)
	if len(diffs) != 3 {
		t.Fatalf("expected 3 diffs (1, X, 2), got %d: %+v", len(diffs), diffs)
	}
}

func TestTopDiffs_SkipsSingleBookmakerGroups(t *testing.T) {
	rows := []store.CurrentOdds{
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}, Odd1: 1.90, Odd2: 2.00},
	}
	if diffs := TopDiffs("match-1", rows, 10); len(diffs) != 0 {
		t.Errorf("expected no diffs with a single bookmaker, got %+v", diffs)
	}
}

func TestTopDiffs_SortedDescendingAndCapped(t *testing.T) {
	rows := []store.CurrentOdds{
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}, Odd1: 1.90, Odd2: 2.00},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Harborbet, BetType: catalog.TwoWay}, Odd1: 2.50, Odd2: 1.85},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Ridgebet, BetType: catalog.ThreeWay}, Odd1: 1.80, Odd2: 2.0, Odd3: 3.0},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Solace, BetType: catalog.ThreeWay}, Odd1: 1.81, Odd2: 5.0, Odd3: 3.1},
	}

	diffs := TopDiffs("match-1", rows, 2)
	if len(diffs) != 2 {
		t.Fatalf("expected cap to 2, got %d", len(diffs))
	}
	if diffs[0].DiffPercent < diffs[1].DiffPercent {
		t.Errorf("expected descending order, got %v then %v", diffs[0].DiffPercent, diffs[1].DiffPercent)
	}
}
