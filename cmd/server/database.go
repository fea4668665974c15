package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/firestoredb"
	"github.com/phrazzld/taskboard-api/internal/platform/migrate"
	"github.com/phrazzld/taskboard-api/internal/platform/mongodb"
	"github.com/phrazzld/taskboard-api/internal/platform/neo4jdb"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/sqlite"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// backend is an opened store. db is set for the SQL drivers only.
type backend struct {
	store store.Store
	db    *sql.DB
}

// openBackend connects to the store selected by cfg.Database.Driver.
// SQLite databases are migrated to the latest version on open; PostgreSQL
// schemas are managed with -migrate.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	dbCfg := cfg.Database

	switch dbCfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, dbCfg, logger)
		if err != nil {
			return nil, err
		}
		return &backend{store: postgres.New(db, logger), db: db}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, dbCfg, logger)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db, migrate.CommandUp, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
		return &backend{store: sqlite.New(db, logger), db: db}, nil

	case config.DriverMongo:
		st, err := mongodb.Open(ctx, dbCfg, logger)
		if err != nil {
			return nil, err
		}
		return &backend{store: st}, nil

	case config.DriverFirestore:
		st, err := firestoredb.Open(ctx, dbCfg, logger)
		if err != nil {
			return nil, err
		}
		return &backend{store: st}, nil

	case config.DriverNeo4j:
		st, err := neo4jdb.Open(ctx, dbCfg, logger)
		if err != nil {
			return nil, err
		}
		return &backend{store: st}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbCfg.Driver)
	}
}
