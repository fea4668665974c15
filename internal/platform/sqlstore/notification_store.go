package sqlstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// NotificationStore implements store.NotificationStore on a SQL database.
type NotificationStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewNotificationStore creates a NotificationStore running on db.
func NewNotificationStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *NotificationStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &NotificationStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "notification_store"), slog.String("dialect", dialect.Name)),
	}
}

// Ensure NotificationStore implements store.NotificationStore interface
var _ store.NotificationStore = (*NotificationStore)(nil)

// Create implements store.NotificationStore.Create
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.dialect.Rebind(`
		INSERT INTO notifications (id, user_id, task_id, message, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query, n.ID, n.UserID, n.TaskID, n.Message, n.Read, n.CreatedAt.UTC())
	if err != nil {
		log.Error("failed to create notification",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", n.UserID.String()),
			slog.String("task_id", n.TaskID.String()))
		return store.NewStoreError("notification", "create", "failed to insert notification", s.dialect.mapError(err))
	}

	return nil
}

// ListByUser implements store.NotificationStore.ListByUser
func (s *NotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := s.dialect.Rebind(`
		SELECT id, user_id, task_id, message, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list notifications",
			slog.String("error", redact.Error(err)),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("notification", "list", "failed to query notifications", s.dialect.mapError(err))
	}
	defer func() { _ = rows.Close() }()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		var (
			n         domain.Notification
			createdAt time.Time
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Message, &n.Read, &createdAt); err != nil {
			return nil, store.NewStoreError("notification", "list", "failed to scan notification", err)
		}
		n.CreatedAt = createdAt.UTC()
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("notification", "list", "failed to iterate notifications", s.dialect.mapError(err))
	}

	return notifications, nil
}

// DeleteByTask implements store.NotificationStore.DeleteByTask
func (s *NotificationStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM notifications WHERE task_id = ?`), taskID)
	if err != nil {
		log.Error("failed to purge notifications",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", taskID.String()))
		return 0, store.NewStoreError("notification", "delete", "failed to purge notifications", s.dialect.mapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("notification", "delete", "failed to get rows affected", err)
	}

	log.Debug("notifications purged",
		slog.String("task_id", taskID.String()),
		slog.Int64("count", n))
	return n, nil
}
