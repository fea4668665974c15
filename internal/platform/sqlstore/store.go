package sqlstore

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// Store implements store.Store over a *sql.DB.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	entities
}

// entities are the three entity stores bound to one DBTX.
type entities struct {
	tasks         *TaskStore
	users         *UserStore
	notifications *NotificationStore
}

func newEntities(db store.DBTX, dialect Dialect, logger *slog.Logger) entities {
	return entities{
		tasks:         NewTaskStore(db, dialect, logger),
		users:         NewUserStore(db, dialect, logger),
		notifications: NewNotificationStore(db, dialect, logger),
	}
}

// Tasks returns the task store.
func (e entities) Tasks() store.TaskStore { return e.tasks }

// Users returns the user store.
func (e entities) Users() store.UserStore { return e.users }

// Notifications returns the notification store.
func (e entities) Notifications() store.NotificationStore { return e.notifications }

// New wraps an open database. The caller keeps ownership of migrations.
func New(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		db:       db,
		dialect:  dialect,
		logger:   logger,
		entities: newEntities(db, dialect, logger),
	}
}

// Ensure Store implements store.Store interface
var _ store.Store = (*Store)(nil)

// DB exposes the underlying pool, e.g. for migrations.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InTx implements store.Store.InTx with a real database transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, &txStore{entities: newEntities(tx, s.dialect, s.logger)})
	})
}

// Ping implements store.Store.Ping
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements store.Store.Close
func (s *Store) Close() error {
	return s.db.Close()
}

// txStore is the Store handed to InTx callbacks.
type txStore struct {
	entities
}

// InTx on a transaction-bound store reuses the open transaction.
func (t *txStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, t)
}

// Ping is a no-op inside a transaction.
func (t *txStore) Ping(context.Context) error { return nil }

// Close is a no-op; the owning Store closes the pool.
func (t *txStore) Close() error { return nil }
