package arbitrage

import (
	"math"
	"testing"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/store"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestTwoWay_FindsArbitrage(t *testing.T) {
	d := New(DefaultConfig())
	rows := []store.CurrentOdds{
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}, Odd1: 2.10, Odd2: 1.80},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Harborbet, BetType: catalog.TwoWay}, Odd1: 1.70, Odd2: 2.20},
	}

	res := d.TwoWay(rows)
	if res == nil {
		t.Fatal("expected an arbitrage opportunity")
	}
	if res.BestOdds[0].Bookmaker != catalog.Northline || res.BestOdds[0].Odd != 2.10 {
		t.Errorf("unexpected best odds for outcome 1: %+v", res.BestOdds[0])
	}
	if res.BestOdds[1].Bookmaker != catalog.Harborbet || res.BestOdds[1].Odd != 2.20 {
		t.Errorf("unexpected best odds for outcome 2: %+v", res.BestOdds[1])
	}

	wantProfit := ((1 / (1/2.10 + 1/2.20)) - 1) * 100
	if !approxEqual(res.ProfitPct, wantProfit, 1e-9) {
		t.Errorf("profit = %v, want %v", res.ProfitPct, wantProfit)
	}

	stakeSum := res.Stakes[0] + res.Stakes[1]
	if !approxEqual(stakeSum, 100, 1e-9) {
		t.Errorf("stakes should sum to 100, got %v", stakeSum)
	}
}

func TestTwoWay_NoArbitrageWhenMarginsOverround(t *testing.T) {
	d := New(DefaultConfig())
	rows := []store.CurrentOdds{
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.TwoWay}, Odd1: 1.90, Odd2: 1.90},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Harborbet, BetType: catalog.TwoWay}, Odd1: 1.85, Odd2: 1.85},
	}
	if res := d.TwoWay(rows); res != nil {
		t.Errorf("expected no arbitrage, got %+v", res)
	}
}

func TestThreeWay_FindsArbitrage(t *testing.T) {
	d := New(Config{MinProfitPercentage: 0})
	rows := []store.CurrentOdds{
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Northline, BetType: catalog.ThreeWay}, Odd1: 4.2, Odd2: 3.8, Odd3: 2.2},
		{CurrentOddsKey: store.CurrentOddsKey{Bookmaker: catalog.Harborbet, BetType: catalog.ThreeWay}, Odd1: 3.9, Odd2: 4.1, Odd3: 2.35},
	}

	res := d.ThreeWay(rows)
	if res == nil {
		t.Fatal("expected an arbitrage opportunity")
	}
	if len(res.BestOdds) != 3 || len(res.Stakes) != 3 {
		t.Fatalf("expected 3 outcomes, got %+v", res)
	}
	stakeSum := res.Stakes[0] + res.Stakes[1] + res.Stakes[2]
	if !approxEqual(stakeSum, 100, 1e-9) {
		t.Errorf("stakes should sum to 100, got %v", stakeSum)
	}
}

func TestHash_StableAcrossOutcomeOrder(t *testing.T) {
	odds1 := []store.BestOdds{
		{Bookmaker: catalog.Northline, Outcome: "1", Odd: 2.101234},
		{Bookmaker: catalog.Harborbet, Outcome: "2", Odd: 2.204321},
	}
	odds2 := []store.BestOdds{
		{Bookmaker: catalog.Harborbet, Outcome: "2", Odd: 2.204321},
		{Bookmaker: catalog.Northline, Outcome: "1", Odd: 2.101234},
	}

	h1 := Hash("match-1", string(catalog.TwoWay), 0, odds1, 4.0001)
	h2 := Hash("match-1", string(catalog.TwoWay), 0, odds2, 4.0001)
	if h1 != h2 {
		t.Errorf("expected hash to be stable across outcome order, got %q vs %q", h1, h2)
	}
}

func TestHash_RoundingAbsorbsFloatJitter(t *testing.T) {
	odds1 := []store.BestOdds{{Bookmaker: catalog.Northline, Outcome: "1", Odd: 2.1001}}
	odds2 := []store.BestOdds{{Bookmaker: catalog.Northline, Outcome: "1", Odd: 2.1004}}

	h1 := Hash("match-1", string(catalog.TwoWay), 0, odds1, 4.0)
	h2 := Hash("match-1", string(catalog.TwoWay), 0, odds2, 4.0)
	if h1 != h2 {
		t.Errorf("expected rounding to absorb sub-0.001 jitter, got %q vs %q", h1, h2)
	}
}
