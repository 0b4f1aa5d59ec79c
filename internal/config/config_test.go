package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scheduler.CycleInterval != 2*time.Second {
		t.Errorf("expected default cycle interval, got %v", cfg.Scheduler.CycleInterval)
	}
	if cfg.Arbitrage.MinProfitPercentage != 1.0 {
		t.Errorf("expected default min profit percentage, got %v", cfg.Arbitrage.MinProfitPercentage)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := []byte("scheduler:\n  cycle_interval: 30s\narbitrage:\n  min_profit_percentage: 1.5\n")
	if err := os.WriteFile(path, yamlContent, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Scheduler.CycleInterval != 30*time.Second {
		t.Errorf("expected YAML override of cycle interval, got %v", cfg.Scheduler.CycleInterval)
	}
	if cfg.Arbitrage.MinProfitPercentage != 1.5 {
		t.Errorf("expected YAML override of min profit percentage, got %v", cfg.Arbitrage.MinProfitPercentage)
	}
	// Defaults not touched by the YAML file should survive.
	if cfg.Health.ListenAddr != ":8090" {
		t.Errorf("expected untouched default to survive, got %v", cfg.Health.ListenAddr)
	}
}

func TestLoad_EnvOverlayWinsOverYAMLAndDefaults(t *testing.T) {
	t.Setenv("ODDSENTRY_POSTGRES_DSN", "postgres://env-wins")
	t.Setenv("ODDSENTRY_TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Postgres.DSN != "postgres://env-wins" {
		t.Errorf("expected env overlay to set postgres DSN, got %q", cfg.Postgres.DSN)
	}
	if cfg.Telegram.BotToken != "env-token" {
		t.Errorf("expected env overlay to set telegram bot token, got %q", cfg.Telegram.BotToken)
	}
}

func TestLoad_MissingFileErrors(t *testing.T) {
	if _, err := Load("/no/such/path/config.yaml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
