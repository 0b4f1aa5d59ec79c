// Package config loads oddsentry's runtime configuration from a YAML file,
// then overlays environment variables on top so secrets never need to live
// in committed config. Grounded on the teacher's internal/pkg/config.Config
// (yaml.v3 struct tags) with the env overlay from caarlos0/env/v11, which
// appears unused in the teacher but is present in the wider retrieval pack
// convention of config-from-env-and-file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the oddsentry binary.
type Config struct {
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Matcher   MatcherConfig   `yaml:"matcher"`
	Arbitrage ArbitrageConfig `yaml:"arbitrage"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Logging   LoggingConfig   `yaml:"logging"`
	Health    HealthConfig    `yaml:"health"`
	Feed      FeedConfig      `yaml:"feed"`
	Scrapers  ScrapersConfig  `yaml:"scrapers"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn" env:"ODDSENTRY_POSTGRES_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ODDSENTRY_REDIS_ADDR"`
	Password string `yaml:"password" env:"ODDSENTRY_REDIS_PASSWORD"`
	DB       int    `yaml:"db"`
}

// SchedulerConfig tunes the engine's scrape-cycle cadence and the separate
// maintenance cron job (spec §4.6/§9).
type SchedulerConfig struct {
	CycleInterval    time.Duration `yaml:"cycle_interval"`    // default 2s, spec §6 scrape_interval_seconds
	CycleTimeout     time.Duration `yaml:"cycle_timeout"`     // default 45s
	CleanupCron      string        `yaml:"cleanup_cron"`      // robfig/cron expression, default "0 3 * * *"
	HistoryRetention time.Duration `yaml:"history_retention"` // default 30 days
	ArbRetention     time.Duration `yaml:"arb_retention"`     // default 24h
	FinishAfter      time.Duration `yaml:"finish_after"`      // mark finished this long after kickoff, default 3h
}

type MatcherConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

type ArbitrageConfig struct {
	MinProfitPercentage float64       `yaml:"min_profit_percentage"`
	DedupWindow         time.Duration `yaml:"dedup_window"`
	LineMovementPercent float64       `yaml:"line_movement_percent"`
	LineMovementDepth   int           `yaml:"line_movement_history_depth"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"ODDSENTRY_TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `yaml:"chat_id" env:"ODDSENTRY_TELEGRAM_CHAT_ID"`
	Enabled  bool   `yaml:"enabled"`
}

type LoggingConfig struct {
	Level      string         `yaml:"level"` // debug, info, warn, error
	Format     string         `yaml:"format"` // text or json
	RemoteSink RemoteSinkConfig `yaml:"remote_sink"`
}

// RemoteSinkConfig configures an optional HTTP-batched remote log sink,
// generalized from the teacher's Yandex Cloud Logging handler.
type RemoteSinkConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Endpoint      string        `yaml:"endpoint" env:"ODDSENTRY_LOG_SINK_ENDPOINT"`
	APIKey        string        `yaml:"api_key" env:"ODDSENTRY_LOG_SINK_API_KEY"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type HealthConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"ODDSENTRY_HEALTH_ADDR"`
}

type FeedConfig struct {
	ListenAddr string `yaml:"listen_addr" env:"ODDSENTRY_FEED_ADDR"`
}

// ScrapersConfig toggles and credentials per bookmaker, supplementing the
// catalogue's compile-time Enabled flag with deployment-time overrides.
type ScrapersConfig struct {
	MaxConcurrentRequests int           `yaml:"max_concurrent_requests"`
	RequestTimeout        time.Duration `yaml:"request_timeout"`
	Harborbet             HarborbetConfig `yaml:"harborbet"`
	Disabled              []string      `yaml:"disabled"` // bookmaker names to retire for this deployment
}

type HarborbetConfig struct {
	APIKey     string `yaml:"api_key" env:"ODDSENTRY_HARBORBET_API_KEY"`
	DeviceUUID string `yaml:"device_uuid" env:"ODDSENTRY_HARBORBET_DEVICE_UUID"`
}

// Load reads YAML from path, applies documented defaults for anything left
// zero, then overlays environment variables (which always win).
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: apply env overlay: %w", err)
	}

	return cfg, nil
}

// Default returns the spec's documented defaults, applied before the YAML
// file and env overlay so unset fields never surface as zero values.
func Default() *Config {
	return &Config{
		Postgres: PostgresConfig{MaxOpenConns: 20, MaxIdleConns: 5, ConnMaxLifetime: time.Hour},
		Redis:    RedisConfig{DB: 0},
		Scheduler: SchedulerConfig{
			CycleInterval: 2 * time.Second, CycleTimeout: 45 * time.Second,
			CleanupCron: "0 3 * * *", HistoryRetention: 30 * 24 * time.Hour,
			ArbRetention: 24 * time.Hour, FinishAfter: 3 * time.Hour,
		},
		Matcher:   MatcherConfig{SimilarityThreshold: 75},
		Arbitrage: ArbitrageConfig{MinProfitPercentage: 1.0, DedupWindow: 24 * time.Hour, LineMovementPercent: 5.0, LineMovementDepth: 20},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
		Health:    HealthConfig{ListenAddr: ":8090"},
		Feed:      FeedConfig{ListenAddr: ":8091"},
		Scrapers:  ScrapersConfig{MaxConcurrentRequests: 10, RequestTimeout: 30 * time.Second},
	}
}
