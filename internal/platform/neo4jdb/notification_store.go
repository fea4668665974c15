package neo4jdb

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// NotificationStore implements store.NotificationStore on Notification nodes.
type NotificationStore struct {
	exec   executor
	logger *slog.Logger
}

var _ store.NotificationStore = (*NotificationStore)(nil)

const (
	createNotificationQuery = `CREATE (n:Notification) SET n = $props`

	listNotificationsQuery = `
MATCH (n:Notification {user_id: $user_id})
RETURN n ORDER BY n.created_at DESC, n.id`

	deleteNotificationsByTaskQuery = `MATCH (n:Notification {task_id: $task_id}) DETACH DELETE n`
)

// Create implements store.NotificationStore.
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	_, err := run(ctx, s.exec, neo4j.AccessModeWrite, func(q querier) (struct{}, error) {
		res, err := q.Run(ctx, createNotificationQuery, map[string]any{"props": notificationProps(n)})
		if err != nil {
			return struct{}{}, err
		}
		_, err = res.Consume(ctx)
		return struct{}{}, err
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create notification",
			"error", redact.Error(err),
			"user_id", n.UserID)
		return store.NewStoreError("notification", "create", "failed to create notification node", MapError(err))
	}
	return nil
}

// ListByUser implements store.NotificationStore.
func (s *NotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	result, err := run(ctx, s.exec, neo4j.AccessModeRead, func(q querier) ([]*domain.Notification, error) {
		res, err := q.Run(ctx, listNotificationsQuery, map[string]any{"user_id": userID.String()})
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]*domain.Notification, 0, len(records))
		for _, rec := range records {
			p, err := nodeProps(rec, "n")
			if err != nil {
				return nil, err
			}
			n, err := notificationFromProps(p)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	})
	if err != nil {
		return nil, store.NewStoreError("notification", "list", "failed to read notification nodes", MapError(err))
	}
	return result, nil
}

// DeleteByTask implements store.NotificationStore.
func (s *NotificationStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	deleted, err := run(ctx, s.exec, neo4j.AccessModeWrite, func(q querier) (int64, error) {
		res, err := q.Run(ctx, deleteNotificationsByTaskQuery, map[string]any{"task_id": taskID.String()})
		if err != nil {
			return 0, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return 0, err
		}
		return int64(summary.Counters().NodesDeleted()), nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to purge notifications",
			"error", redact.Error(err),
			"task_id", taskID)
		return 0, store.NewStoreError("notification", "delete", "failed to delete notification nodes", MapError(err))
	}
	return deleted, nil
}
