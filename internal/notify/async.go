package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// AsyncDispatcher publishes a task.assigned event instead of notifying.
// A job consuming the event performs the delivery and marks the task
// notified afterwards.
type AsyncDispatcher struct {
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewAsyncDispatcher creates an AsyncDispatcher publishing on emitter.
func NewAsyncDispatcher(emitter events.EventEmitter, logger *slog.Logger) *AsyncDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AsyncDispatcher{
		emitter: emitter,
		logger:  logger.With("component", "async_dispatcher"),
	}
}

// Notify implements Notifier by emitting events.TypeTaskAssigned.
func (d *AsyncDispatcher) Notify(ctx context.Context, userID uuid.UUID, task *domain.Task) error {
	event, err := events.NewTaskAssignedEvent(task.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to build task assigned event: %w", err)
	}

	if err := d.emitter.EmitEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to emit task assigned event: %w", err)
	}

	logger.FromContextOrDefault(ctx, d.logger).Debug("task assigned event emitted",
		"event_id", event.ID,
		"task_id", task.ID,
		"user_id", userID)
	return nil
}

// Deferred implements Deferred.
func (d *AsyncDispatcher) Deferred() bool {
	return true
}
