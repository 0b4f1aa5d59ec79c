// Package engine is the top-level orchestrator: it runs scrapers
// concurrently each cycle, resolves/persists matches and odds, detects
// arbitrage and line movement, and fans results out over the bus. Grounded
// on original_source/PythonScraper/core/scraper_engine.py's ScraperEngine
// (register_scraper/run_cycle/start/stop), reworked from asyncio.gather
// onto goroutines + sync.WaitGroup and from a plain while-loop onto a
// context-aware ticker.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/oddsentry/oddsentry/internal/arbitrage"
	"github.com/oddsentry/oddsentry/internal/bus"
	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/dedup"
	"github.com/oddsentry/oddsentry/internal/scrape"
	"github.com/oddsentry/oddsentry/internal/store"
)

// Config tunes cycle cadence, timeouts, and retention windows. Mirrors
// config.SchedulerConfig/ArbitrageConfig; the engine is handed the already
// -resolved values rather than the raw config struct so it stays decoupled
// from the config package.
type Config struct {
	CycleInterval       time.Duration
	CycleTimeout        time.Duration
	CleanupCron         string
	HistoryRetention    time.Duration
	ArbRetention        time.Duration
	FinishAfter         time.Duration
	LineMovementPercent float64
	LineMovementDepth   int
}

// Stats mirrors ScraperEngine._stats and is read through Engine.Stats. The
// httpapi /stats route reports store and bus figures, not these counters.
type Stats struct {
	Cycles           uint64
	MatchesProcessed uint64
	OddsUpdated      uint64
	ArbitrageFound   uint64
	Errors           uint64
	LastCycle        time.Time
}

// Engine orchestrates the full scrape -> match -> persist -> detect ->
// publish pipeline.
type Engine struct {
	cfg      Config
	scrapers []scrape.Scraper
	store    store.Store
	detector *arbitrage.Detector
	dedup    *dedup.Window
	bus      *bus.Bus
	log      *slog.Logger

	mu        sync.Mutex // guards lastCycle
	lastCycle time.Time

	cycles, matchesProcessed, oddsUpdated, arbitrageFound, errs atomic.Uint64
}

// New builds an Engine. Scrapers are registered up front, mirroring
// register_scraper being called once at startup in the original.
func New(cfg Config, scrapers []scrape.Scraper, st store.Store, detector *arbitrage.Detector, dd *dedup.Window, b *bus.Bus, log *slog.Logger) *Engine {
	return &Engine{cfg: cfg, scrapers: scrapers, store: st, detector: detector, dedup: dd, bus: b, log: log}
}

// Run starts the continuous scrape loop and the separate cron-scheduled
// maintenance job; it blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	if len(e.scrapers) == 0 {
		e.log.Warn("engine: no scrapers registered")
	}
	e.log.Info("engine: starting", "scrapers", len(e.scrapers), "cycle_interval", e.cfg.CycleInterval)

	c := cron.New()
	if e.cfg.CleanupCron != "" {
		_, err := c.AddFunc(e.cfg.CleanupCron, func() { e.runCleanup(ctx) })
		if err != nil {
			return fmt.Errorf("engine: invalid cleanup cron %q: %w", e.cfg.CleanupCron, err)
		}
	}
	c.Start()
	defer c.Stop()

	ticker := time.NewTicker(e.cfg.CycleInterval)
	defer ticker.Stop()

	// Run one cycle immediately rather than waiting a full interval first.
	e.runCycleSafely(ctx)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("engine: stopping")
			for _, s := range e.scrapers {
				if err := s.Close(); err != nil {
					e.log.Warn("engine: scraper close error", "error", err)
				}
			}
			return nil
		case <-ticker.C:
			e.runCycleSafely(ctx)
		}
	}
}

func (e *Engine) runCycleSafely(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, e.cfg.CycleTimeout)
	defer cancel()
	if err := e.runCycle(cycleCtx); err != nil {
		e.errs.Add(1)
		e.log.Error("engine: cycle error", "error", err)
	}
}

// runCycle scrapes every registered bookmaker concurrently, isolating one
// scraper's failure from the rest, persists results, and runs detection.
// Mirrors run_cycle's asyncio.gather(return_exceptions=True).
func (e *Engine) runCycle(ctx context.Context) error {
	start := time.Now()

	var wg sync.WaitGroup
	touchedMatches := make(chan string, 4096)

	for _, s := range e.scrapers {
		wg.Add(1)
		go func(s scrape.Scraper) {
			defer wg.Done()
			e.scrapeBookmaker(ctx, s, touchedMatches)
		}(s)
	}

	go func() {
		wg.Wait()
		close(touchedMatches)
	}()

	seen := map[string]struct{}{}
	for id := range touchedMatches {
		seen[id] = struct{}{}
	}

	arbFound := 0
	for matchID := range seen {
		n, err := e.detectAndPublish(ctx, matchID)
		if err != nil {
			e.log.Warn("engine: detection error", "match_id", matchID, "error", err)
			continue
		}
		arbFound += n
	}

	e.cycles.Add(1)
	e.mu.Lock()
	e.lastCycle = time.Now()
	e.mu.Unlock()

	e.log.Info("engine: cycle complete",
		"matches_touched", len(seen),
		"arbitrage_found", arbFound,
		"duration", time.Since(start))
	return nil
}

// scrapeBookmaker runs one adapter, resolves/persists its matches, and
// reports which match IDs changed onto touched for downstream detection.
func (e *Engine) scrapeBookmaker(ctx context.Context, s scrape.Scraper, touched chan<- string) {
	start := time.Now()
	matches, err := s.ScrapeAll(ctx)
	if err != nil {
		e.errs.Add(1)
		e.log.Error("engine: scrape failed", "bookmaker", s.BookmakerName(), "error", err)
		return
	}
	e.log.Info("engine: scraped", "bookmaker", s.BookmakerName(), "matches", len(matches), "duration", time.Since(start))

	for _, m := range matches {
		matchID, changed, err := e.processMatch(ctx, s.BookmakerID(), m)
		if err != nil {
			e.log.Debug("engine: process match error", "bookmaker", s.BookmakerName(), "error", err)
			continue
		}
		e.matchesProcessed.Add(1)
		if changed {
			touched <- matchID
		}
	}
}

// processMatch resolves or creates the match identity and bulk-upserts its
// odds, mirroring process_scraped_match.
func (e *Engine) processMatch(ctx context.Context, bookmaker catalog.Bookmaker, m scrape.ScrapedMatch) (string, bool, error) {
	match, _, err := e.store.ResolveOrCreateMatch(ctx, bookmaker, m.ExternalID, store.UpsertMatchInput{
		Team1: m.Team1, Team2: m.Team2, Sport: m.Sport, League: m.League, StartTime: m.StartTime,
	})
	if err != nil {
		return "", false, fmt.Errorf("resolve match: %w", err)
	}

	ins := make([]store.UpsertOddsInput, 0, len(m.Odds))
	for _, o := range m.Odds {
		ins = append(ins, store.UpsertOddsInput{
			BetType: o.BetType, Margin: o.Margin, Selection: o.Selection,
			Odd1: o.Odd1, Odd2: o.Odd2, Odd3: o.Odd3,
		})
	}

	changedCount, err := e.store.BulkUpsertOdds(ctx, match.ID, bookmaker, ins)
	if err != nil {
		return match.ID, false, fmt.Errorf("bulk upsert odds: %w", err)
	}

	if changedCount > 0 {
		e.oddsUpdated.Add(uint64(changedCount))
		e.bus.Publish(bus.Event{
			Type: bus.OddsUpdate, MatchID: match.ID, SportTag: string(match.Sport),
			Payload: map[string]any{"match_id": match.ID, "bookmaker": bookmaker, "team1": match.Team1, "team2": match.Team2},
		})
		e.checkLineMovement(ctx, match, ins, bookmaker)
	}

	return match.ID, changedCount > 0, nil
}

func (e *Engine) checkLineMovement(ctx context.Context, match *store.Match, ins []store.UpsertOddsInput, bookmaker catalog.Bookmaker) {
	if e.cfg.LineMovementPercent <= 0 {
		return
	}
	for _, in := range ins {
		key := store.CurrentOddsKey{MatchID: match.ID, Bookmaker: bookmaker, BetType: in.BetType, Margin: in.Margin, Selection: in.Selection}
		for _, odd := range []float64{in.Odd1, in.Odd2, in.Odd3} {
			if odd <= 0 {
				continue
			}
			mv, err := arbitrage.DetectLineMovement(ctx, e.store, key, odd, e.cfg.LineMovementPercent, e.cfg.LineMovementDepth)
			if err != nil {
				e.log.Warn("engine: line movement check failed", "error", err)
				continue
			}
			if mv == nil {
				continue
			}
			history, _ := e.store.RecentHistory(ctx, key, e.cfg.LineMovementDepth)
			e.bus.Publish(bus.Event{
				Type: bus.LineMovement, MatchID: match.ID, SportTag: string(match.Sport),
				Payload: bus.LineMovementAlert{
					Movement:         *mv,
					MatchName:        match.Team1 + " vs " + match.Team2,
					Sport:            string(match.Sport),
					ThresholdPercent: e.cfg.LineMovementPercent,
					History:          history,
				},
			})
		}
	}
}

// detectAndPublish runs arbitrage detection for one match's current odds,
// deduplicates via Redis, persists newly-seen opportunities, and publishes
// them on the bus. Returns how many new opportunities were found.
func (e *Engine) detectAndPublish(ctx context.Context, matchID string) (int, error) {
	rows, err := e.store.CurrentOddsForMatch(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("current odds: %w", err)
	}
	if len(rows) < 2 {
		return 0, nil
	}

	results := e.detector.DetectForMatch(rows)
	if len(results) == 0 {
		return 0, nil
	}

	info := e.matchInfo(ctx, matchID)

	// Per spec §3, an arbitrage opportunity expires (is deactivated) when its
	// match kicks off, not after a fixed retention window. Fall back to
	// ArbRetention only if the match lookup failed to resolve a kickoff time.
	expiresAt := info.startTime
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(e.cfg.ArbRetention)
	}

	found := 0
	for _, res := range results {
		hash := arbitrage.Hash(matchID, string(res.BetType), res.Margin, res.BestOdds, res.ProfitPct)

		seen, err := e.dedup.SeenRecently(ctx, hash)
		if err != nil {
			e.log.Warn("engine: dedup check failed", "error", err)
			continue
		}
		if seen {
			continue
		}

		opp := store.ArbitrageOpportunity{
			MatchID: matchID, BetType: res.BetType, Margin: res.Margin, ProfitPct: res.ProfitPct,
			BestOdds: res.BestOdds, Stakes: res.Stakes, ArbHash: hash,
			DetectedAt: time.Now(), ExpiresAt: expiresAt, IsActive: true,
		}
		inserted, err := e.store.RecordArbitrage(ctx, opp)
		if err != nil {
			e.log.Warn("engine: record arbitrage failed", "error", err)
			continue
		}
		if !inserted {
			continue
		}

		e.arbitrageFound.Add(1)
		found++
		e.bus.Publish(bus.Event{
			Type: bus.Arbitrage, MatchID: matchID, SportTag: info.sport,
			Payload: bus.ArbitrageAlert{Opportunity: opp, MatchName: info.name, Sport: info.sport, StartTime: info.startTime},
		})
	}
	return found, nil
}

type matchDisplayInfo struct {
	name      string
	sport     string
	startTime time.Time
}

// matchInfo resolves display fields for alerts. Errors degrade gracefully
// to an ID-only alert rather than failing detection.
func (e *Engine) matchInfo(ctx context.Context, matchID string) matchDisplayInfo {
	m, err := e.store.MatchByID(ctx, matchID)
	if err != nil || m == nil {
		return matchDisplayInfo{}
	}
	return matchDisplayInfo{name: m.Team1 + " vs " + m.Team2, sport: string(m.Sport), startTime: m.StartTime}
}

// Stats returns a snapshot of cumulative engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	last := e.lastCycle
	e.mu.Unlock()
	return Stats{
		Cycles:           e.cycles.Load(),
		MatchesProcessed: e.matchesProcessed.Load(),
		OddsUpdated:      e.oddsUpdated.Load(),
		ArbitrageFound:   e.arbitrageFound.Load(),
		Errors:           e.errs.Load(),
		LastCycle:        last,
	}
}

func (e *Engine) runCleanup(ctx context.Context) {
	now := time.Now()
	historyCutoff := now.Add(-e.cfg.HistoryRetention)
	arbCutoff := now.Add(-e.cfg.ArbRetention)

	removed, err := e.store.Cleanup(ctx, historyCutoff, arbCutoff)
	if err != nil {
		e.log.Error("engine: cleanup failed", "error", err)
		return
	}

	finished, err := e.store.MarkFinished(ctx, now.Add(-e.cfg.FinishAfter))
	if err != nil {
		e.log.Error("engine: mark finished failed", "error", err)
		return
	}

	e.log.Info("engine: cleanup complete", "rows_removed", removed, "matches_finished", finished)
}
