// Package store owns the matches, current odds, odds history, and arbitrage
// records. It is the only mutable shared state in the system (spec §5); all
// writes flow through its API. Grounded on the teacher's
// internal/pkg/storage package and original_source/PythonScraper/core/db.py.
package store

import (
	"time"

	"github.com/oddsentry/oddsentry/internal/catalog"
)

// Match is the identity of a sporting event. Immutable once created except
// for ExternalIDs (grow-only) and Status (one-way upcoming -> finished).
type Match struct {
	ID           string
	Team1        string
	Team2        string
	Team1Norm    string
	Team2Norm    string
	Sport        catalog.Sport
	League       string
	StartTime    time.Time
	ExternalIDs  map[catalog.Bookmaker]string
	Status       MatchStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MatchStatus is the one-way lifecycle state of a Match.
type MatchStatus string

const (
	StatusUpcoming MatchStatus = "upcoming"
	StatusFinished MatchStatus = "finished"
)

// CurrentOddsKey uniquely identifies a current-odds row. Unique in the
// current-odds store (spec §3, invariant 2).
type CurrentOddsKey struct {
	MatchID   string
	Bookmaker catalog.Bookmaker
	BetType   catalog.BetType
	Margin    float64
	Selection string
}

// CurrentOdds is one current-odds row: the latest known price tuple for a
// given (match, bookmaker, bet type, margin, selection).
type CurrentOdds struct {
	CurrentOddsKey
	Odd1      float64
	Odd2      float64
	Odd3      float64 // 0 when the market is two-way
	UpdatedAt time.Time
}

// HistorySnapshot is an append-only odds-history row. Never mutated.
type HistorySnapshot struct {
	CurrentOddsKey
	Odd1       float64
	Odd2       float64
	Odd3       float64
	RecordedAt time.Time
}

// OddsHistoryPoint is a narrower history projection used for alert timelines
// (teacher's storage.OddsHistoryPoint powers SendLineMovementAlert).
type OddsHistoryPoint struct {
	Odd        float64
	RecordedAt time.Time
}

// BestOdds is one outcome of a detected arbitrage: the bookmaker offering the
// best price on that outcome, and the price itself.
type BestOdds struct {
	Bookmaker catalog.Bookmaker
	Outcome   string // "1", "X", "2", or a selection tag
	Odd       float64
}

// ArbitrageOpportunity is a detected, deduplicated arbitrage record.
type ArbitrageOpportunity struct {
	ID          string
	MatchID     string
	BetType     catalog.BetType
	Margin      float64
	ProfitPct   float64
	BestOdds    []BestOdds
	Stakes      []float64
	ArbHash     string
	DetectedAt  time.Time
	ExpiresAt   time.Time
	IsActive    bool
}

// UpsertMatchInput is the data a scraper contributes when resolving or
// creating a match identity.
type UpsertMatchInput struct {
	Team1     string
	Team2     string
	Sport     catalog.Sport
	League    string
	StartTime time.Time
}

// UpsertOddsInput is one odds row contributed by a scraper for a resolved match.
type UpsertOddsInput struct {
	BetType   catalog.BetType
	Margin    float64
	Selection string
	Odd1      float64
	Odd2      float64
	Odd3      float64
}
