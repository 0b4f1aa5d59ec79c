package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/google/uuid"

	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/match"
	"github.com/oddsentry/oddsentry/internal/normalize"
)

// Postgres is the production Store backed by database/sql + lib/pq.
// Grounded on the teacher's internal/pkg/storage.PostgresDiffStorage: plain
// SQL strings, explicit schema management, ON CONFLICT upserts.
type Postgres struct {
	db     *sql.DB
	log    *slog.Logger
	matchr *match.Matcher
}

// Config is the subset of connection settings Postgres needs.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to Postgres, configures the pool, and verifies the
// connection. It does not apply schema migrations: those live under
// internal/store/migrations and are applied by cmd/migrate via golang-migrate.
func Open(ctx context.Context, cfg Config, matcher *match.Matcher, log *slog.Logger) (*Postgres, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store: postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}

	log.Info("postgres store connected")
	return &Postgres{db: db, log: log, matchr: matcher}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

// ResolveOrCreateMatch implements spec §4.4's resolve_or_create_match: try
// the bookmaker's external ID first (cheapest, most precise), then fall
// back to fuzzy identity resolution against the upcoming pool, and only
// create a new match row if neither yields a hit.
func (p *Postgres) ResolveOrCreateMatch(ctx context.Context, bookmaker catalog.Bookmaker, externalID string, in UpsertMatchInput) (*Match, bool, error) {
	if externalID != "" {
		if m, err := p.matchByExternalID(ctx, bookmaker, externalID); err != nil {
			return nil, false, err
		} else if m != nil {
			return m, false, nil
		}
	}

	window := in.Sport.TimeWindow()
	pool, err := p.UpcomingMatches(ctx, in.Sport, in.StartTime, window*2)
	if err != nil {
		return nil, false, err
	}

	candidates := make([]match.Candidate, len(pool))
	for i, m := range pool {
		candidates[i] = match.Candidate{Team1: m.Team1, Team2: m.Team2, Sport: m.Sport, StartTime: m.StartTime, League: m.League}
	}
	target := match.Candidate{Team1: in.Team1, Team2: in.Team2, Sport: in.Sport, StartTime: in.StartTime, League: in.League}

	if best, score := p.matchr.FindBestMatch(target, candidates); best != nil {
		for i := range pool {
			if pool[i].Team1 == best.Team1 && pool[i].Team2 == best.Team2 && pool[i].StartTime.Equal(best.StartTime) {
				if err := p.linkExternalID(ctx, pool[i].ID, bookmaker, externalID); err != nil {
					return nil, false, err
				}
				p.log.Debug("fused match via fuzzy identity", "match_id", pool[i].ID, "confidence", score.Confidence)
				return &pool[i], false, nil
			}
		}
	}

	created, err := p.createMatch(ctx, bookmaker, externalID, in)
	return created, true, err
}

func (p *Postgres) matchByExternalID(ctx context.Context, bookmaker catalog.Bookmaker, externalID string) (*Match, error) {
	const q = `
	SELECT id, team1, team2, team1_norm, team2_norm, sport, league, start_time,
	       external_ids, status, created_at, updated_at
	FROM matches
	WHERE external_ids ->> $1 = $2
	LIMIT 1`

	row := p.db.QueryRowContext(ctx, q, strconv.Itoa(int(bookmaker)), externalID)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// MatchByID looks up a single match by its primary key.
func (p *Postgres) MatchByID(ctx context.Context, matchID string) (*Match, error) {
	const q = `
	SELECT id, team1, team2, team1_norm, team2_norm, sport, league, start_time,
	       external_ids, status, created_at, updated_at
	FROM matches WHERE id = $1`

	row := p.db.QueryRowContext(ctx, q, matchID)
	m, err := scanMatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (p *Postgres) createMatch(ctx context.Context, bookmaker catalog.Bookmaker, externalID string, in UpsertMatchInput) (*Match, error) {
	ids := map[string]string{}
	if externalID != "" {
		ids[strconv.Itoa(int(bookmaker))] = externalID
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("store: marshal external_ids: %w", err)
	}

	var team1Norm, team2Norm string
	if in.Sport == catalog.Tennis {
		team1Norm, team2Norm = normalize.TennisPlayer(in.Team1), normalize.TennisPlayer(in.Team2)
	} else {
		team1Norm, team2Norm = normalize.Team(in.Team1), normalize.Team(in.Team2)
	}

	id := uuid.NewString()
	const q = `
	INSERT INTO matches (id, team1, team2, team1_norm, team2_norm, sport, league, start_time, external_ids, status, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())`

	_, err = p.db.ExecContext(ctx, q, id, in.Team1, in.Team2, team1Norm, team2Norm, string(in.Sport), in.League, in.StartTime, idsJSON, string(StatusUpcoming))
	if err != nil {
		return nil, fmt.Errorf("store: create match: %w", err)
	}

	return &Match{
		ID: id, Team1: in.Team1, Team2: in.Team2, Team1Norm: team1Norm, Team2Norm: team2Norm,
		Sport: in.Sport, League: in.League, StartTime: in.StartTime,
		ExternalIDs: map[catalog.Bookmaker]string{bookmaker: externalID},
		Status:      StatusUpcoming,
	}, nil
}

// linkExternalID grows Match.ExternalIDs; jsonb_set never removes keys, so
// the grow-only invariant (spec §3) holds by construction.
func (p *Postgres) linkExternalID(ctx context.Context, matchID string, bookmaker catalog.Bookmaker, externalID string) error {
	if externalID == "" {
		return nil
	}
	const q = `UPDATE matches SET external_ids = jsonb_set(external_ids, $2, to_jsonb($3::text), true), updated_at = now() WHERE id = $1`
	key := fmt.Sprintf("{%d}", bookmaker)
	_, err := p.db.ExecContext(ctx, q, matchID, key, externalID)
	if err != nil {
		return fmt.Errorf("store: link external id: %w", err)
	}
	return nil
}

func (p *Postgres) UpcomingMatches(ctx context.Context, sport catalog.Sport, around time.Time, window time.Duration) ([]Match, error) {
	const q = `
	SELECT id, team1, team2, team1_norm, team2_norm, sport, league, start_time,
	       external_ids, status, created_at, updated_at
	FROM matches
	WHERE sport = $1 AND status = $2 AND start_time BETWEEN $3 AND $4
	ORDER BY start_time`

	rows, err := p.db.QueryContext(ctx, q, string(sport), string(StatusUpcoming), around.Add(-window), around.Add(window))
	if err != nil {
		return nil, fmt.Errorf("store: upcoming matches: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatchRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// MarkFinished transitions matches that kicked off before olderThan to
// status=finished and, in the same transaction, deactivates any still-active
// arbitrage opportunity whose match has already kicked off (start_time before
// now), even when that match is not yet old enough to be marked finished.
func (p *Postgres) MarkFinished(ctx context.Context, olderThan time.Time) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin mark finished: %w", err)
	}
	defer tx.Rollback()

	const markMatches = `UPDATE matches SET status = $1, updated_at = now() WHERE status = $2 AND start_time < $3`
	res, err := tx.ExecContext(ctx, markMatches, string(StatusFinished), string(StatusUpcoming), olderThan)
	if err != nil {
		return 0, fmt.Errorf("store: mark finished: %w", err)
	}
	n, _ := res.RowsAffected()

	const deactivateArbs = `
	UPDATE arbitrage_opportunities SET is_active = false
	WHERE is_active AND match_id IN (SELECT id FROM matches WHERE start_time < now())`
	if _, err := tx.ExecContext(ctx, deactivateArbs); err != nil {
		return 0, fmt.Errorf("store: deactivate arbitrage for finished matches: %w", err)
	}

	return int(n), tx.Commit()
}

// UpsertOdds implements the change-detection gate: a write only proceeds
// (and a history row only gets appended) when prices actually differ from
// what's on file, matching original_source/.../db.py upsert_current_odds.
func (p *Postgres) UpsertOdds(ctx context.Context, matchID string, bookmaker catalog.Bookmaker, in UpsertOddsInput) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("store: begin upsert odds: %w", err)
	}
	defer tx.Rollback()

	const sel = `
	SELECT odd1, odd2, odd3 FROM current_odds
	WHERE match_id = $1 AND bookmaker = $2 AND bet_type = $3 AND margin = $4 AND selection = $5
	FOR UPDATE`

	var prevOdd1, prevOdd2, prevOdd3 float64
	err = tx.QueryRowContext(ctx, sel, matchID, int(bookmaker), string(in.BetType), in.Margin, in.Selection).
		Scan(&prevOdd1, &prevOdd2, &prevOdd3)

	changed := true
	switch err {
	case sql.ErrNoRows:
		changed = true
	case nil:
		changed = prevOdd1 != in.Odd1 || prevOdd2 != in.Odd2 || prevOdd3 != in.Odd3
	default:
		return false, fmt.Errorf("store: read current odds: %w", err)
	}

	if !changed {
		return false, tx.Commit()
	}

	const upsert = `
	INSERT INTO current_odds (match_id, bookmaker, bet_type, margin, selection, odd1, odd2, odd3, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	ON CONFLICT (match_id, bookmaker, bet_type, margin, selection)
	DO UPDATE SET odd1 = EXCLUDED.odd1, odd2 = EXCLUDED.odd2, odd3 = EXCLUDED.odd3, updated_at = now()`

	if _, err := tx.ExecContext(ctx, upsert, matchID, int(bookmaker), string(in.BetType), in.Margin, in.Selection, in.Odd1, in.Odd2, in.Odd3); err != nil {
		return false, fmt.Errorf("store: upsert current odds: %w", err)
	}

	const history = `
	INSERT INTO odds_history (match_id, bookmaker, bet_type, margin, selection, odd1, odd2, odd3, recorded_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`

	if _, err := tx.ExecContext(ctx, history, matchID, int(bookmaker), string(in.BetType), in.Margin, in.Selection, in.Odd1, in.Odd2, in.Odd3); err != nil {
		return false, fmt.Errorf("store: append history: %w", err)
	}

	return true, tx.Commit()
}

func (p *Postgres) BulkUpsertOdds(ctx context.Context, matchID string, bookmaker catalog.Bookmaker, ins []UpsertOddsInput) (int, error) {
	changed := 0
	for _, in := range ins {
		did, err := p.UpsertOdds(ctx, matchID, bookmaker, in)
		if err != nil {
			return changed, err
		}
		if did {
			changed++
		}
	}
	return changed, nil
}

func (p *Postgres) CurrentOddsForMatch(ctx context.Context, matchID string) ([]CurrentOdds, error) {
	const q = `
	SELECT match_id, bookmaker, bet_type, margin, selection, odd1, odd2, odd3, updated_at
	FROM current_odds WHERE match_id = $1`

	rows, err := p.db.QueryContext(ctx, q, matchID)
	if err != nil {
		return nil, fmt.Errorf("store: current odds for match: %w", err)
	}
	defer rows.Close()

	var out []CurrentOdds
	for rows.Next() {
		var c CurrentOdds
		var bookmaker int
		var betType string
		if err := rows.Scan(&c.MatchID, &bookmaker, &betType, &c.Margin, &c.Selection, &c.Odd1, &c.Odd2, &c.Odd3, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: scan current odds: %w", err)
		}
		c.Bookmaker = catalog.Bookmaker(bookmaker)
		c.BetType = catalog.BetType(betType)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *Postgres) RecentHistory(ctx context.Context, key CurrentOddsKey, limit int) ([]OddsHistoryPoint, error) {
	const q = `
	SELECT odd1, recorded_at FROM odds_history
	WHERE match_id = $1 AND bookmaker = $2 AND bet_type = $3 AND margin = $4 AND selection = $5
	ORDER BY recorded_at DESC LIMIT $6`

	rows, err := p.db.QueryContext(ctx, q, key.MatchID, int(key.Bookmaker), string(key.BetType), key.Margin, key.Selection, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent history: %w", err)
	}
	defer rows.Close()

	var out []OddsHistoryPoint
	for rows.Next() {
		var h OddsHistoryPoint
		if err := rows.Scan(&h.Odd, &h.RecordedAt); err != nil {
			return nil, fmt.Errorf("store: scan history point: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (p *Postgres) RecordArbitrage(ctx context.Context, opp ArbitrageOpportunity) (bool, error) {
	bestOddsJSON, err := json.Marshal(opp.BestOdds)
	if err != nil {
		return false, fmt.Errorf("store: marshal best odds: %w", err)
	}
	stakesJSON, err := json.Marshal(opp.Stakes)
	if err != nil {
		return false, fmt.Errorf("store: marshal stakes: %w", err)
	}

	if opp.ID == "" {
		opp.ID = uuid.NewString()
	}

	const q = `
	INSERT INTO arbitrage_opportunities (id, match_id, bet_type, margin, profit_pct, best_odds, stakes, arb_hash, detected_at, expires_at, is_active)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true)
	ON CONFLICT (arb_hash) DO NOTHING`

	res, err := p.db.ExecContext(ctx, q, opp.ID, opp.MatchID, string(opp.BetType), opp.Margin, opp.ProfitPct,
		bestOddsJSON, stakesJSON, opp.ArbHash, opp.DetectedAt, opp.ExpiresAt)
	if err != nil {
		return false, fmt.Errorf("store: record arbitrage: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (p *Postgres) TopDiffs(ctx context.Context, limit int) ([]ArbitrageOpportunity, error) {
	const q = `
	SELECT id, match_id, bet_type, margin, profit_pct, best_odds, stakes, arb_hash, detected_at, expires_at, is_active
	FROM arbitrage_opportunities
	WHERE is_active AND expires_at > now()
	ORDER BY profit_pct DESC LIMIT $1`

	rows, err := p.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("store: top diffs: %w", err)
	}
	defer rows.Close()

	var out []ArbitrageOpportunity
	for rows.Next() {
		var o ArbitrageOpportunity
		var betType string
		var bestOddsJSON, stakesJSON []byte
		if err := rows.Scan(&o.ID, &o.MatchID, &betType, &o.Margin, &o.ProfitPct, &bestOddsJSON, &stakesJSON,
			&o.ArbHash, &o.DetectedAt, &o.ExpiresAt, &o.IsActive); err != nil {
			return nil, fmt.Errorf("store: scan diff: %w", err)
		}
		o.BetType = catalog.BetType(betType)
		if err := json.Unmarshal(bestOddsJSON, &o.BestOdds); err != nil {
			return nil, fmt.Errorf("store: unmarshal best odds: %w", err)
		}
		if err := json.Unmarshal(stakesJSON, &o.Stakes); err != nil {
			return nil, fmt.Errorf("store: unmarshal stakes: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (p *Postgres) Cleanup(ctx context.Context, historyCutoff, arbitrageCutoff time.Time) (int64, error) {
	var total int64

	res, err := p.db.ExecContext(ctx, `DELETE FROM odds_history WHERE recorded_at < $1`, historyCutoff)
	if err != nil {
		return total, fmt.Errorf("store: cleanup history: %w", err)
	}
	n, _ := res.RowsAffected()
	total += n

	res, err = p.db.ExecContext(ctx, `DELETE FROM arbitrage_opportunities WHERE expires_at < $1`, arbitrageCutoff)
	if err != nil {
		return total, fmt.Errorf("store: cleanup arbitrage: %w", err)
	}
	n, _ = res.RowsAffected()
	total += n

	p.log.Info("cleanup complete", "rows_removed", total)
	return total, nil
}

func (p *Postgres) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	row := p.db.QueryRowContext(ctx, `
		SELECT
			(SELECT count(*) FROM matches WHERE status = 'upcoming'),
			(SELECT count(*) FROM matches WHERE status = 'finished'),
			(SELECT count(*) FROM current_odds),
			(SELECT count(*) FROM odds_history),
			(SELECT count(*) FROM arbitrage_opportunities WHERE is_active AND expires_at > now())`)
	err := row.Scan(&s.UpcomingMatches, &s.FinishedMatches, &s.CurrentOddsRows, &s.HistoryRows, &s.ActiveArbs)
	if err != nil {
		return s, fmt.Errorf("store: stats: %w", err)
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*Match, error) {
	return scanMatchRows(row)
}

func scanMatchRows(row rowScanner) (*Match, error) {
	var m Match
	var sport, status string
	var idsJSON []byte

	if err := row.Scan(&m.ID, &m.Team1, &m.Team2, &m.Team1Norm, &m.Team2Norm, &sport, &m.League, &m.StartTime,
		&idsJSON, &status, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Sport = catalog.Sport(sport)
	m.Status = MatchStatus(status)

	var raw map[string]string
	if err := json.Unmarshal(idsJSON, &raw); err != nil {
		return nil, fmt.Errorf("store: unmarshal external_ids: %w", err)
	}
	m.ExternalIDs = make(map[catalog.Bookmaker]string, len(raw))
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		m.ExternalIDs[catalog.Bookmaker(id)] = v
	}
	return &m, nil
}
