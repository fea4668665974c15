package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskboard-api/internal/events"
)

// Submitter accepts jobs for background execution.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// TaskAssignedHandler turns task.assigned events into notification jobs.
type TaskAssignedHandler struct {
	factory *NotificationJobFactory
	runner  Submitter
	logger  *slog.Logger
}

var _ events.EventHandler = (*TaskAssignedHandler)(nil)

// NewTaskAssignedHandler creates a handler submitting jobs built by factory to runner.
func NewTaskAssignedHandler(factory *NotificationJobFactory, runner Submitter, logger *slog.Logger) *TaskAssignedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskAssignedHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_assigned_handler"),
	}
}

// HandleEvent implements events.EventHandler. Events of other types are ignored.
func (h *TaskAssignedHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.TypeTaskAssigned {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.TaskAssigned
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	job, err := h.factory.CreateJob(payload.TaskID, payload.UserID)
	if err != nil {
		h.logger.Error("failed to create job",
			"error", err,
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create job: %w", err)
	}

	if err := h.runner.Submit(ctx, job); err != nil {
		h.logger.Error("failed to submit job",
			"error", err,
			"job_id", job.ID(),
			"task_id", payload.TaskID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit job: %w", err)
	}

	h.logger.Info("notification job submitted",
		"job_id", job.ID(),
		"task_id", payload.TaskID,
		"user_id", payload.UserID,
		"event_id", event.ID)
	return nil
}
