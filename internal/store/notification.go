package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// NotificationStore holds each user's notification inbox.
type NotificationStore interface {
	// Create appends a notification to its user's inbox.
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByUser returns a user's notifications, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)

	// DeleteByTask removes every notification that points at taskID,
	// across all users, and reports how many were removed.
	DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error)
}
