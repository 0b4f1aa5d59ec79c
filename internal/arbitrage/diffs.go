package arbitrage

import (
	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/store"
)

// Diff is the best-vs-worst price spread for one outcome of one market,
// the "value bet" signal from SPEC_FULL.md's diff/value endpoint. Grounded
// on the teacher's DiffBet/computeTopDiffs in internal/calculator/calculator.
type Diff struct {
	MatchID     string
	BetType     catalog.BetType
	Margin      float64
	Outcome     string
	MinBookmaker catalog.Bookmaker
	MinOdd      float64
	MaxBookmaker catalog.Bookmaker
	MaxOdd      float64
	DiffAbs     float64
	DiffPercent float64
}

// TopDiffs computes, for every (bet type, margin, outcome) group present in
// rows, the spread between the cheapest and richest price on offer, and
// returns the diffs sorted by descending DiffPercent, capped at limit.
// Unlike arbitrage detection this does not require total implied
// probability under 1 - it is a value-shopping signal, not a sure bet.
func TopDiffs(matchID string, rows []store.CurrentOdds, limit int) []Diff {
	type outcomeRow struct {
		bookmaker catalog.Bookmaker
		odd       float64
	}
	type groupKey struct {
		betType catalog.BetType
		margin  float64
		outcome string
	}
	groups := map[groupKey][]outcomeRow{}

	addOutcome := func(betType catalog.BetType, margin float64, outcome string, bookmaker catalog.Bookmaker, odd float64) {
		if odd <= 0 {
			return
		}
		k := groupKey{betType, margin, outcome}
		groups[k] = append(groups[k], outcomeRow{bookmaker, odd})
	}

	for _, r := range rows {
		addOutcome(r.BetType, r.Margin, "1", r.Bookmaker, r.Odd1)
		info, _ := r.BetType.Info()
		if info.Outcomes == 3 {
			addOutcome(r.BetType, r.Margin, "X", r.Bookmaker, r.Odd2)
			addOutcome(r.BetType, r.Margin, "2", r.Bookmaker, r.Odd3)
		} else if r.Odd2 > 0 {
			addOutcome(r.BetType, r.Margin, "2", r.Bookmaker, r.Odd2)
		}
	}

	var diffs []Diff
	for k, group := range groups {
		if len(group) < 2 {
			continue
		}
		min, max := group[0], group[0]
		for _, g := range group[1:] {
			if g.odd < min.odd {
				min = g
			}
			if g.odd > max.odd {
				max = g
			}
		}
		if max.odd <= min.odd {
			continue
		}
		diffs = append(diffs, Diff{
			MatchID: matchID, BetType: k.betType, Margin: k.margin, Outcome: k.outcome,
			MinBookmaker: min.bookmaker, MinOdd: min.odd,
			MaxBookmaker: max.bookmaker, MaxOdd: max.odd,
			DiffAbs:     max.odd - min.odd,
			DiffPercent: (max.odd/min.odd - 1) * 100,
		})
	}

	sortDiffsDesc(diffs)
	if limit > 0 && len(diffs) > limit {
		diffs = diffs[:limit]
	}
	return diffs
}

func sortDiffsDesc(diffs []Diff) {
	for i := 1; i < len(diffs); i++ {
		for j := i; j > 0 && diffs[j-1].DiffPercent < diffs[j].DiffPercent; j-- {
			diffs[j-1], diffs[j] = diffs[j], diffs[j-1]
		}
	}
}
