package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/sqlite"
)

// handleMigrations runs a goose command against the configured SQL database.
func handleMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	var (
		open    func(context.Context, config.DatabaseConfig, *slog.Logger) (*sql.DB, error)
		migrate func(context.Context, *sql.DB, string, *slog.Logger) error
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		open, migrate = postgres.Open, postgres.Migrate
	case config.DriverSQLite:
		open, migrate = sqlite.Open, sqlite.Migrate
	default:
		return fmt.Errorf("migrations are not supported for database driver %q", cfg.Database.Driver)
	}

	db, err := open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	logger.Info("executing migrations", "command", command, "driver", cfg.Database.Driver)
	if err := migrate(ctx, db, command, logger); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}
