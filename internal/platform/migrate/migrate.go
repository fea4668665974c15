// Package migrate runs embedded goose migrations for the SQL store backends.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

// Supported commands.
const (
	CommandUp      = "up"
	CommandDown    = "down"
	CommandStatus  = "status"
	CommandVersion = "version"
	CommandReset   = "reset"
)

// goose keeps its dialect, base FS and logger in package globals.
var gooseMu sync.Mutex

// Source describes one backend's embedded migrations.
type Source struct {
	Dialect goose.Dialect
	FS      fs.FS
	Dir     string
}

// Run executes command against db using the migrations in src.
func Run(ctx context.Context, db *sql.DB, src Source, command string, log *slog.Logger) error {
	switch command {
	case CommandUp, CommandDown, CommandStatus, CommandVersion, CommandReset:
	default:
		return fmt.Errorf("unsupported migration command %q", command)
	}

	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "migrations", "command", command, "dialect", string(src.Dialect))

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(src.FS)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&slogGooseLogger{log: log})

	if err := goose.SetDialect(string(src.Dialect)); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	start := time.Now()
	log.Info("starting migration operation")

	if err := goose.RunContext(ctx, command, db, src.Dir); err != nil {
		log.Error("migration operation failed",
			"error", err,
			"duration_ms", time.Since(start).Milliseconds())
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	log.Info("migration operation completed",
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct {
	log *slog.Logger
}

// Printf implements goose.Logger.
func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info(fmt.Sprintf(format, v...))
}

// Fatalf implements goose.Logger. It does not exit; the error is returned by Run.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error(fmt.Sprintf(format, v...))
}
