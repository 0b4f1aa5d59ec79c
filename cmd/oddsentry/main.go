// Command oddsentry runs the full odds-aggregation and arbitrage-detection
// service: it wires config, logging, storage, matching, scrapers, detection,
// the pub/sub bus, and every external collaborator (telegram, feed,
// httpapi), then runs until an interrupt or terminate signal arrives.
// Grounded on the teacher's cmd/bookmaker-service/main.go (flag parsing,
// component wiring, signal-driven graceful shutdown) and
// original_source/PythonScraper/core/scraper_engine.py's engine lifecycle.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/oddsentry/oddsentry/internal/arbitrage"
	"github.com/oddsentry/oddsentry/internal/bus"
	"github.com/oddsentry/oddsentry/internal/catalog"
	"github.com/oddsentry/oddsentry/internal/config"
	"github.com/oddsentry/oddsentry/internal/dedup"
	"github.com/oddsentry/oddsentry/internal/engine"
	"github.com/oddsentry/oddsentry/internal/feed"
	"github.com/oddsentry/oddsentry/internal/httpapi"
	"github.com/oddsentry/oddsentry/internal/logging"
	"github.com/oddsentry/oddsentry/internal/match"
	"github.com/oddsentry/oddsentry/internal/notify/telegram"
	"github.com/oddsentry/oddsentry/internal/scrape"
	"github.com/oddsentry/oddsentry/internal/scrape/harborbet"
	"github.com/oddsentry/oddsentry/internal/scrape/leoward"
	"github.com/oddsentry/oddsentry/internal/scrape/northline"
	"github.com/oddsentry/oddsentry/internal/scrape/onexclub"
	"github.com/oddsentry/oddsentry/internal/scrape/ridgebet"
	"github.com/oddsentry/oddsentry/internal/scrape/solace"
	"github.com/oddsentry/oddsentry/internal/scrape/zenport"
	"github.com/oddsentry/oddsentry/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file (optional; env vars and defaults always apply)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "oddsentry:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logging.Setup(cfg.Logging, "oddsentry")
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	matcher := match.New(match.Config{SimilarityThreshold: cfg.Matcher.SimilarityThreshold})

	st, err := store.Open(ctx, store.Config{
		DSN: cfg.Postgres.DSN, MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns, ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}, matcher, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	dd := dedup.New(dedup.Config{
		Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB,
		TTL: cfg.Arbitrage.DedupWindow,
	})
	if err := dd.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	defer dd.Close()

	detector := arbitrage.New(arbitrage.Config{MinProfitPercentage: cfg.Arbitrage.MinProfitPercentage})
	b := bus.New()

	scrapers := buildScrapers(cfg, log)

	eng := engine.New(engine.Config{
		CycleInterval: cfg.Scheduler.CycleInterval, CycleTimeout: cfg.Scheduler.CycleTimeout,
		CleanupCron: cfg.Scheduler.CleanupCron, HistoryRetention: cfg.Scheduler.HistoryRetention,
		ArbRetention: cfg.Scheduler.ArbRetention, FinishAfter: cfg.Scheduler.FinishAfter,
		LineMovementPercent: cfg.Arbitrage.LineMovementPercent, LineMovementDepth: cfg.Arbitrage.LineMovementDepth,
	}, scrapers, st, detector, dd, b, log)

	var wg sync.WaitGroup

	if cfg.Telegram.Enabled {
		notifier, err := telegram.New(cfg.Telegram.BotToken, cfg.Telegram.ChatID, log)
		if err != nil {
			log.Warn("telegram notifier disabled", "error", err)
		} else {
			wg.Add(1)
			go func() { defer wg.Done(); notifier.Run(ctx, b) }()
		}
	}

	feedHub := feed.New(cfg.Feed.ListenAddr, b, log)
	wg.Add(1)
	go func() { defer wg.Done(); runAndLog(ctx, log, "feed", feedHub.Run) }()

	api := httpapi.New(cfg.Health.ListenAddr, st, b, log)
	wg.Add(1)
	go func() { defer wg.Done(); runAndLog(ctx, log, "httpapi", api.Run) }()

	wg.Add(1)
	go func() { defer wg.Done(); runAndLog(ctx, log, "engine", eng.Run) }()

	<-ctx.Done()
	log.Info("oddsentry: shutdown signal received, waiting for components")
	wg.Wait()
	log.Info("oddsentry: shutdown complete")
	return nil
}

func runAndLog(ctx context.Context, log *slog.Logger, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		log.Error(name+": exited with error", "error", err)
	}
}

// buildScrapers registers one adapter per enabled bookmaker (spec §9's
// BOOKMAKERS disable/reason table, honored via catalog.EnabledBookmakers
// plus a per-deployment override list).
func buildScrapers(cfg *config.Config, log *slog.Logger) []scrape.Scraper {
	baseCfg := scrape.BaseConfig{
		MaxConcurrentRequests: cfg.Scrapers.MaxConcurrentRequests,
		RequestTimeout:        cfg.Scrapers.RequestTimeout,
	}

	disabled := map[string]bool{}
	for _, name := range cfg.Scrapers.Disabled {
		disabled[name] = true
	}

	var scrapers []scrape.Scraper
	for _, info := range catalog.EnabledBookmakers() {
		if disabled[info.Name] {
			continue
		}
		switch info.ID {
		case catalog.Northline:
			scrapers = append(scrapers, northline.New(baseCfg, log))
		case catalog.Harborbet:
			scrapers = append(scrapers, harborbet.New(baseCfg, cfg.Scrapers.Harborbet.APIKey, cfg.Scrapers.Harborbet.DeviceUUID, log))
		case catalog.OnexClub:
			scrapers = append(scrapers, onexclub.New(baseCfg, log))
		case catalog.Ridgebet:
			scrapers = append(scrapers, ridgebet.New(baseCfg, log))
		case catalog.Solace:
			scrapers = append(scrapers, solace.New(baseCfg, log))
		case catalog.Zenport:
			scrapers = append(scrapers, zenport.New(baseCfg, log))
		case catalog.Leoward:
			scrapers = append(scrapers, leoward.New(baseCfg, log))
		}
	}
	return scrapers
}
