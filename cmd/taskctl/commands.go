package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/firestoredb"
	"github.com/phrazzld/taskboard-api/internal/platform/migrate"
	"github.com/phrazzld/taskboard-api/internal/platform/mongodb"
	"github.com/phrazzld/taskboard-api/internal/platform/neo4jdb"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/platform/sqlite"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// loadConfig is replaced in tests.
var loadConfig = func(dir string) (*config.Config, error) {
	return config.LoadFrom(dir)
}

// openStore is replaced in tests.
var openStore = func(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return postgres.New(db, logger), nil
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := sqlite.Migrate(ctx, db, migrate.CommandUp, logger); err != nil {
			_ = db.Close()
			return nil, err
		}
		return sqlite.New(db, logger), nil
	case config.DriverMongo:
		return mongodb.Open(ctx, cfg, logger)
	case config.DriverFirestore:
		return firestoredb.Open(ctx, cfg, logger)
	case config.DriverNeo4j:
		return neo4jdb.Open(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func runCreateUser(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("create-user")
	email := fs.String("email", "", "user email (required)")
	name := fs.String("name", "", "display name")
	chatID := fs.Int64("telegram-chat-id", 0, "Telegram chat to notify, 0 for none")
	configDir := fs.String("config", ".", "directory holding .env and config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := domain.NewUser(*email, *name)
	if err != nil {
		return err
	}
	if *chatID != 0 {
		user.TelegramChatID = chatID
	}

	cfg, err := loadConfig(*configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	if err := st.Users().Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return fmt.Errorf("a user with email %s already exists", user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	_, err = fmt.Fprintln(out, user.ID)
	return err
}

func runToken(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("token")
	userFlag := fs.String("user", "", "user ID (required)")
	configDir := fs.String("config", ".", "directory holding .env and config.yaml")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID, err := uuid.Parse(*userFlag)
	if err != nil {
		return fmt.Errorf("invalid -user %q: %w", *userFlag, domain.ErrInvalidID)
	}

	cfg, err := loadConfig(*configDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}

	token, err := jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, err = fmt.Fprintln(out, token)
	return err
}
