// Package arbitrage finds sure-bets across bookmakers' current odds and
// computes the stake split that locks in a profit regardless of outcome.
// Grounded on original_source/PythonScraper/core/arbitrage.py's
// ArbitrageDetector.
package arbitrage

import (
	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/store"
)

// Config tunes the detector's minimum acceptable profit.
type Config struct {
	MinProfitPercentage float64 // default 1.0, per spec §4.5
}

// DefaultConfig returns the spec's documented default.
func DefaultConfig() Config {
	return Config{MinProfitPercentage: 1.0}
}

// Detector finds arbitrage opportunities in grouped current-odds rows.
type Detector struct {
	cfg Config
}

func New(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Result is one detected opportunity, prior to persistence/hashing.
type Result struct {
	BetType   catalog.BetType
	Margin    float64
	ProfitPct float64
	BestOdds  []store.BestOdds
	Stakes    []float64
}

// TwoWay finds the best arbitrage across a set of two-outcome current-odds
// rows for the same bet type and margin. Returns nil if no combination of
// best prices clears the configured minimum profit.
func (d *Detector) TwoWay(rows []store.CurrentOdds) *Result {
	if len(rows) < 2 {
		return nil
	}

	best1 := bestByOutcome(rows, func(r store.CurrentOdds) float64 { return r.Odd1 })
	best2 := bestByOutcome(rows, func(r store.CurrentOdds) float64 { return r.Odd2 })
	if best1 == nil || best2 == nil || best1.Odd1 <= 0 || best2.Odd2 <= 0 {
		return nil
	}

	prob1 := 1 / best1.Odd1
	prob2 := 1 / best2.Odd2
	totalProb := prob1 + prob2
	if totalProb >= 1 {
		return nil
	}

	profitPct := ((1 / totalProb) - 1) * 100
	if profitPct < d.cfg.MinProfitPercentage {
		return nil
	}

	stake1 := (prob1 / totalProb) * 100
	stake2 := (prob2 / totalProb) * 100

	return &Result{
		BetType:   rows[0].BetType,
		Margin:    rows[0].Margin,
		ProfitPct: profitPct,
		BestOdds: []store.BestOdds{
			{Bookmaker: best1.Bookmaker, Outcome: "1", Odd: best1.Odd1},
			{Bookmaker: best2.Bookmaker, Outcome: "2", Odd: best2.Odd2},
		},
		Stakes: []float64{stake1, stake2},
	}
}

// ThreeWay finds the best arbitrage across a set of three-outcome (1/X/2)
// current-odds rows for the same bet type and margin.
func (d *Detector) ThreeWay(rows []store.CurrentOdds) *Result {
	if len(rows) < 2 {
		return nil
	}

	best1 := bestByOutcome(rows, func(r store.CurrentOdds) float64 { return r.Odd1 })
	bestX := bestByOutcome(rows, func(r store.CurrentOdds) float64 { return r.Odd2 })
	best2 := bestByOutcome(rows, func(r store.CurrentOdds) float64 { return r.Odd3 })
	if best1 == nil || bestX == nil || best2 == nil || best1.Odd1 <= 0 || bestX.Odd2 <= 0 || best2.Odd3 <= 0 {
		return nil
	}

	prob1 := 1 / best1.Odd1
	probX := 1 / bestX.Odd2
	prob2 := 1 / best2.Odd3
	totalProb := prob1 + probX + prob2
	if totalProb >= 1 {
		return nil
	}

	profitPct := ((1 / totalProb) - 1) * 100
	if profitPct < d.cfg.MinProfitPercentage {
		return nil
	}

	stake1 := (prob1 / totalProb) * 100
	stakeX := (probX / totalProb) * 100
	stake2 := (prob2 / totalProb) * 100

	return &Result{
		BetType:   rows[0].BetType,
		Margin:    rows[0].Margin,
		ProfitPct: profitPct,
		BestOdds: []store.BestOdds{
			{Bookmaker: best1.Bookmaker, Outcome: "1", Odd: best1.Odd1},
			{Bookmaker: bestX.Bookmaker, Outcome: "X", Odd: bestX.Odd2},
			{Bookmaker: best2.Bookmaker, Outcome: "2", Odd: best2.Odd3},
		},
		Stakes: []float64{stake1, stakeX, stake2},
	}
}

func bestByOutcome(rows []store.CurrentOdds, pick func(store.CurrentOdds) float64) *store.CurrentOdds {
	var best *store.CurrentOdds
	for i := range rows {
		v := pick(rows[i])
		if v <= 0 {
			continue
		}
		if best == nil || v > pick(*best) {
			best = &rows[i]
		}
	}
	return best
}

// DetectForMatch groups a match's current-odds rows by (bet type, margin)
// and runs the appropriate two-way or three-way detector on each group,
// mirroring arbitrage.py's detect_for_match.
func (d *Detector) DetectForMatch(rows []store.CurrentOdds) []Result {
	type groupKey struct {
		betType catalog.BetType
		margin  float64
	}
	groups := map[groupKey][]store.CurrentOdds{}
	for _, r := range rows {
		k := groupKey{r.BetType, r.Margin}
		groups[k] = append(groups[k], r)
	}

	var results []Result
	for k, group := range groups {
		if len(group) < 2 {
			continue
		}
		info, _ := k.betType.Info()
		var res *Result
		if info.Outcomes == 3 {
			res = d.ThreeWay(group)
		} else {
			res = d.TwoWay(group)
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return results
}
