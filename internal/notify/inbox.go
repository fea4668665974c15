package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// InboxNotifier appends an assignment notification to the user's inbox.
// These are the records a task delete purges.
type InboxNotifier struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewInboxNotifier creates an InboxNotifier writing through notifications.
func NewInboxNotifier(notifications store.NotificationStore, logger *slog.Logger) *InboxNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InboxNotifier{
		notifications: notifications,
		logger:        logger.With("component", "inbox_notifier"),
	}
}

// Notify implements Notifier. A store that has no inbox for userID reports
// ErrUserNotFound; such assignees are skipped, as the telegram notifier does.
func (n *InboxNotifier) Notify(ctx context.Context, userID uuid.UUID, task *domain.Task) error {
	notification := domain.NewAssignmentNotification(userID, task)
	log := logger.FromContextOrDefault(ctx, n.logger)

	if err := n.notifications.Create(ctx, notification); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("assignee has no inbox, skipping notification",
				"user_id", userID,
				"task_id", task.ID)
			return nil
		}
		return fmt.Errorf("failed to store notification: %w", err)
	}

	log.Debug("inbox notification stored",
		"notification_id", notification.ID,
		"user_id", userID,
		"task_id", task.ID)
	return nil
}
