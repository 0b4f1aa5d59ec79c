// Package httpapi exposes the read-only HTTP façade: health checks, stats,
// and top value diffs. Grounded on the teacher's internal/pkg/health
// (server.go's /ping, /health, /metrics endpoint set), reworked onto
// gin-gonic/gin with gin-contrib/cors since that is the HTTP stack SPEC_FULL
// wires for the externally-facing API surface.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oddsentry/oddsentry/internal/arbitrage"
	"github.com/oddsentry/oddsentry/internal/bus"
	"github.com/oddsentry/oddsentry/internal/store"
)

// Server is the health/status HTTP façade described by spec §9.
type Server struct {
	addr   string
	srv    *http.Server
	log    *slog.Logger
	store  store.Store
	bus    *bus.Bus
	start  time.Time
}

// New builds the façade's gin engine and registers its routes.
func New(addr string, st store.Store, b *bus.Bus, log *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
	}))

	s := &Server{addr: addr, log: log, store: st, bus: b, start: time.Now()}

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong\n") })
	r.GET("/healthz", s.handleHealth)
	r.GET("/stats", s.handleStats)
	r.GET("/diffs/top", s.handleTopDiffs)

	s.srv = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Run starts listening and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("httpapi: listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"upcoming_matches": stats.UpcomingMatches,
		"finished_matches": stats.FinishedMatches,
		"current_odds_rows": stats.CurrentOddsRows,
		"history_rows":      stats.HistoryRows,
		"active_arbitrages": stats.ActiveArbs,
		"bus_dropped_events": s.bus.Dropped(),
	})
}

// handleTopDiffs serves the value-shopping signal (best/worst price spread
// per market for one match), not a sure-bet requirement — see
// internal/arbitrage.TopDiffs. For cross-match arbitrage opportunities, see
// /stats' active_arbitrages count and the telegram/feed alert streams.
func (s *Server) handleTopDiffs(c *gin.Context) {
	matchID := c.Query("match_id")
	if matchID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
		return
	}

	rows, err := s.store.CurrentOddsForMatch(c.Request.Context(), matchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	limit := 20
	diffs := arbitrage.TopDiffs(matchID, rows, limit)
	c.JSON(http.StatusOK, gin.H{"diffs": diffs})
}
