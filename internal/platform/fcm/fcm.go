// Package fcm delivers assignment notifications as Firebase Cloud Messaging
// pushes. Devices subscribe to their user's topic, see Topic.
package fcm

import (
	"context"
	"fmt"
	"log/slog"

	"firebase.google.com/go/messaging"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/firebaseapp"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
)

// notificationTitle is the push title shown on the device.
const notificationTitle = "New task assigned"

// Sender is the part of *messaging.Client the notifier uses.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Notifier publishes a push to the assignee's topic.
type Notifier struct {
	client Sender
	logger *slog.Logger
}

// NewClient initialises a messaging client for projectID.
func NewClient(ctx context.Context, projectID, credentialsFile string) (*messaging.Client, error) {
	app, err := firebaseapp.New(ctx, projectID, credentialsFile)
	if err != nil {
		return nil, err
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}
	return client, nil
}

// New creates a Notifier sending through client.
func New(client Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		client: client,
		logger: logger.With("component", "fcm_notifier"),
	}
}

// Topic is the FCM topic a user's devices subscribe to.
func Topic(userID uuid.UUID) string {
	return "user_" + userID.String()
}

// Message builds the push for an assignment of task to userID.
func Message(userID uuid.UUID, task *domain.Task) *messaging.Message {
	return &messaging.Message{
		Topic: Topic(userID),
		Notification: &messaging.Notification{
			Title: notificationTitle,
			Body:  domain.AssignmentMessage(task),
		},
		Data: map[string]string{
			"task_id": task.ID.String(),
		},
	}
}

// Notify implements notify.Notifier.
func (n *Notifier) Notify(ctx context.Context, userID uuid.UUID, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, n.logger)

	messageID, err := n.client.Send(ctx, Message(userID, task))
	if err != nil {
		log.Error("failed to send push notification",
			"error", redact.Error(err),
			"user_id", userID,
			"task_id", task.ID)
		return fmt.Errorf("failed to send push notification: %w", err)
	}

	log.Debug("push notification sent",
		"message_id", messageID,
		"user_id", userID,
		"task_id", task.ID)
	return nil
}
