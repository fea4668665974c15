package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// NotificationService reads users' notification inboxes.
type NotificationService interface {
	// ListForUser returns the user's notifications, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
}

type notificationServiceImpl struct {
	notifications store.NotificationStore
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(notifications store.NotificationStore, logger *slog.Logger) (NotificationService, error) {
	if notifications == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "notification store cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &notificationServiceImpl{
		notifications: notifications,
		logger:        logger.With("component", "notification_service"),
	}, nil
}

// ListForUser implements NotificationService.
func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list notifications",
			"error", redact.Error(err),
			"user_id", userID)
		return nil, &TaskServiceError{Operation: "list_notifications", Message: "failed to list notifications", Err: err}
	}
	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}
