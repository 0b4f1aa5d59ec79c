// Package scrape defines the uniform contract every bookmaker adapter
// implements, plus a shared BaseAdapter discipline (concurrency cap, HTTP
// timeout, retry/backoff, error counters). Grounded on
// original_source/PythonScraper/core/scrapers/base.py's BaseScraper and the
// teacher's per-bookmaker http_client.go files.
package scrape

import (
	"context"
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
)

// ScrapedOdds is one market row as reported by an adapter, prior to
// matching/storage. Mirrors base.py's ScrapedOdds dataclass.
type ScrapedOdds struct {
	BetType   catalog.BetType
	Odd1      float64
	Odd2      float64 // 0 when not applicable
	Odd3      float64 // 0 unless three-way
	Margin    float64
	Selection string
}

// ScrapedMatch is one event as reported by an adapter, with its odds
// attached. Mirrors base.py's ScrapedMatch dataclass.
type ScrapedMatch struct {
	Team1      string
	Team2      string
	Sport      catalog.Sport
	StartTime  time.Time
	League     string
	ExternalID string
	Odds       []ScrapedOdds
}

// AddOdds appends one odds row, mirroring ScrapedMatch.add_odds.
func (m *ScrapedMatch) AddOdds(betType catalog.BetType, odd1, odd2, odd3, margin float64, selection string) {
	m.Odds = append(m.Odds, ScrapedOdds{BetType: betType, Odd1: odd1, Odd2: odd2, Odd3: odd3, Margin: margin, Selection: selection})
}

// Scraper is the capability every bookmaker adapter implements. The engine
// depends only on this interface, never on a concrete adapter type.
type Scraper interface {
	BookmakerID() catalog.Bookmaker
	BookmakerName() string
	SupportedSports() []catalog.Sport
	ScrapeSport(ctx context.Context, sport catalog.Sport) ([]ScrapedMatch, error)
	ScrapeAll(ctx context.Context) ([]ScrapedMatch, error)
	Close() error
}

// Counters exposes an adapter's lightweight request/error tallies for
// /stats reporting, mirroring BaseScraper._request_count/_error_count.
type Counters struct {
	Requests uint64
	Errors   uint64
}
