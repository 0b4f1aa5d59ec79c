package arbitrage

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/oddsentry/oddsentry/internal/store"
)

// Hash generates a stable fingerprint for an arbitrage opportunity so the
// dedup window can recognize "the same opportunity" across scrape cycles
// even if its outcomes are listed in a different order. Grounded on
// arbitrage.py's generate_arb_hash: sort outcomes, round to avoid noise from
// floating-point jitter, then MD5 a canonical string.
func Hash(matchID string, betType string, margin float64, bestOdds []store.BestOdds, profitPct float64) string {
	sorted := make([]store.BestOdds, len(bestOdds))
	copy(sorted, bestOdds)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Outcome < sorted[j].Outcome })

	parts := make([]string, 0, len(sorted)+3)
	parts = append(parts, matchID, betType, strconv.FormatFloat(round(margin, 3), 'f', 3, 64))
	for _, o := range sorted {
		parts = append(parts, fmt.Sprintf("%d:%s:%s", int(o.Bookmaker), o.Outcome, strconv.FormatFloat(round(o.Odd, 3), 'f', 3, 64)))
	}
	parts = append(parts, strconv.FormatFloat(round(profitPct, 2), 'f', 2, 64))

	canonical := fmt.Sprintf("%v", parts)
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func round(v float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(v*mult) / mult
}
