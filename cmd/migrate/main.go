// Command migrate applies or rolls back the store's schema migrations
// (internal/store/migrations). Grounded on jbrackens-AttaboyGO's
// internal/infra/migrate.go RunMigrations helper, extended with an explicit
// up/down/version subcommand since oddsentry needs rollback in CI.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/oddsentry/oddsentry/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	dir := flag.String("migrations", "internal/store/migrations", "path to migration source directory")
	cmd := flag.String("cmd", "up", "up, down, or version")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*configPath, *dir, *cmd, log); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(configPath, dir, cmd string, log *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Postgres.DSN == "" {
		return fmt.Errorf("postgres DSN is required (set ODDSENTRY_POSTGRES_DSN or config postgres.dsn)")
	}

	m, err := migrate.New(fmt.Sprintf("file://%s", dir), cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	switch cmd {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("migrate up: %w", err)
		}
	case "down":
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			return fmt.Errorf("migrate down: %w", err)
		}
	case "version":
		version, dirty, err := m.Version()
		if err != nil && err != migrate.ErrNilVersion {
			return fmt.Errorf("migrate version: %w", err)
		}
		log.Info("schema version", "version", version, "dirty", dirty)
		return nil
	default:
		return fmt.Errorf("unknown -cmd %q (want up, down, or version)", cmd)
	}

	version, dirty, _ := m.Version()
	log.Info("migration complete", "command", cmd, "version", version, "dirty", dirty)
	return nil
}
