package store

import (
	"context"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
)

// Store is the persistence boundary for matches, odds, history, and
// arbitrage opportunities (spec §4.4). Implementations must uphold:
//   - uniqueness of (match, bookmaker, bet_type, margin, selection) in the
//     current-odds table
//   - append-only history (never updated or deleted except by Cleanup)
//   - grow-only Match.ExternalIDs
//   - monotonic Match.Status (upcoming -> finished, never back)
type Store interface {
	// ResolveOrCreateMatch finds an existing match this bookmaker has already
	// been linked to via its external ID, falls back to fuzzy identity
	// resolution against upcoming matches of the same sport, or creates a new
	// match if neither yields a hit. Returns the match and whether it was
	// newly created.
	ResolveOrCreateMatch(ctx context.Context, bookmaker catalog.Bookmaker, externalID string, in UpsertMatchInput) (*Match, bool, error)

	// MatchByID looks up a single match by its ID, for alert display context.
	// Returns (nil, nil) if not found.
	MatchByID(ctx context.Context, matchID string) (*Match, error)

	// UpsertOdds writes a single current-odds row if its prices differ from
	// what is stored (change-detection gate, spec §4.4). When the row
	// changed (or is new), it also appends a HistorySnapshot. Returns
	// whether the row changed.
	UpsertOdds(ctx context.Context, matchID string, bookmaker catalog.Bookmaker, in UpsertOddsInput) (bool, error)

	// BulkUpsertOdds applies UpsertOdds to each row of a batch in turn, one
	// transaction per row, returning how many rows actually changed. It stops
	// at the first error; rows written before that error stay committed.
	BulkUpsertOdds(ctx context.Context, matchID string, bookmaker catalog.Bookmaker, ins []UpsertOddsInput) (int, error)

	// CurrentOddsForMatch returns every current-odds row for a match, across
	// all bookmakers.
	CurrentOddsForMatch(ctx context.Context, matchID string) ([]CurrentOdds, error)

	// RecentHistory returns the most recent history points for one odds key,
	// newest first, capped at limit. Backs line-movement alerts.
	RecentHistory(ctx context.Context, key CurrentOddsKey, limit int) ([]OddsHistoryPoint, error)

	// UpcomingMatches returns matches of the given sport still in upcoming
	// status with a kickoff time within window of around, for use as
	// the matcher's candidate pool.
	UpcomingMatches(ctx context.Context, sport catalog.Sport, around time.Time, window time.Duration) ([]Match, error)

	// MarkFinished transitions matches whose kickoff time is far enough in
	// the past to status=finished. Returns how many rows were transitioned.
	MarkFinished(ctx context.Context, olderThan time.Time) (int, error)

	// RecordArbitrage inserts an arbitrage opportunity if its ArbHash has not
	// been seen within the dedup window (delegated to the dedup package by
	// the caller; Store itself just persists). Returns whether it was newly
	// inserted.
	RecordArbitrage(ctx context.Context, opp ArbitrageOpportunity) (bool, error)

	// TopDiffs returns the highest-profit-percentage active arbitrage
	// opportunities, most profitable first, capped at limit.
	TopDiffs(ctx context.Context, limit int) ([]ArbitrageOpportunity, error)

	// Cleanup deletes history rows and expired arbitrage opportunities older
	// than the retention cutoff. Returns rows removed. Invoked from the
	// scheduled maintenance job, never from the hot scrape cycle.
	Cleanup(ctx context.Context, historyCutoff, arbitrageCutoff time.Time) (int64, error)

	// Stats returns lightweight row-count/health figures for the HTTP façade.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Stats mirrors original_source's ScraperEngine-adjacent db.get_stats shape.
type Stats struct {
	UpcomingMatches int64
	FinishedMatches int64
	CurrentOddsRows int64
	HistoryRows     int64
	ActiveArbs      int64
}
