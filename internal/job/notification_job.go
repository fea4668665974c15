package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/notify"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TypeNotificationDelivery identifies NotificationDeliveryJob records.
const TypeNotificationDelivery = "notification_delivery"

// Errors returned when building notification jobs
var (
	ErrNilTaskStore = errors.New("task store cannot be nil")
	ErrNilNotifier  = errors.New("notifier cannot be nil")
	ErrEmptyTaskID  = errors.New("task ID cannot be empty")
	ErrEmptyUserID  = errors.New("user ID cannot be empty")
)

type notificationPayload struct {
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`
}

// NotificationDeliveryJob notifies the assignee of a task and then marks the
// task notified.
type NotificationDeliveryJob struct {
	id       uuid.UUID
	taskID   uuid.UUID
	userID   uuid.UUID
	tasks    store.TaskStore
	notifier notify.Notifier
	logger   *slog.Logger
}

// Execute implements Job.
//
// The job is a no-op when the task has been deleted, reassigned to someone
// else, or already marked notified.
func (j *NotificationDeliveryJob) Execute(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, j.logger)

	task, err := j.tasks.GetByID(ctx, j.taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Info("task no longer exists, skipping notification", "task_id", j.taskID)
			return nil
		}
		return fmt.Errorf("failed to load task %s: %w", j.taskID, err)
	}

	if !task.IsAssignee(j.userID) {
		log.Info("task is no longer assigned to user, skipping notification",
			"task_id", j.taskID,
			"user_id", j.userID)
		return nil
	}

	if task.Notified {
		log.Debug("assignee already notified", "task_id", j.taskID)
		return nil
	}

	if err := j.notifier.Notify(ctx, j.userID, task); err != nil {
		return fmt.Errorf("failed to notify user %s: %w", j.userID, err)
	}

	if err := j.tasks.MarkNotified(ctx, j.taskID); err != nil {
		return fmt.Errorf("failed to mark task %s notified: %w", j.taskID, err)
	}

	log.Info("assignee notified", "task_id", j.taskID, "user_id", j.userID)
	return nil
}

// ID implements Job.
func (j *NotificationDeliveryJob) ID() uuid.UUID {
	return j.id
}

// Type implements Job.
func (j *NotificationDeliveryJob) Type() string {
	return TypeNotificationDelivery
}

// Payload implements Job.
func (j *NotificationDeliveryJob) Payload() []byte {
	data, err := json.Marshal(notificationPayload{TaskID: j.taskID, UserID: j.userID})
	if err != nil {
		j.logger.Error("failed to marshal job payload", "error", err)
		return []byte{}
	}
	return data
}

// NotificationJobFactory creates NotificationDeliveryJob instances.
type NotificationJobFactory struct {
	tasks    store.TaskStore
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewNotificationJobFactory creates a factory whose jobs read tasks from
// tasks and deliver through notifier. notifier must perform delivery itself,
// not defer it.
func NewNotificationJobFactory(tasks store.TaskStore, notifier notify.Notifier, log *slog.Logger) (*NotificationJobFactory, error) {
	if tasks == nil {
		return nil, ErrNilTaskStore
	}
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	if log == nil {
		log = slog.Default()
	}
	return &NotificationJobFactory{
		tasks:    tasks,
		notifier: notifier,
		logger:   log.With("job_type", TypeNotificationDelivery),
	}, nil
}

// CreateJob creates a new job notifying userID about taskID.
func (f *NotificationJobFactory) CreateJob(taskID, userID uuid.UUID) (*NotificationDeliveryJob, error) {
	return f.build(uuid.New(), taskID, userID)
}

// Rebuild implements Factory for TypeNotificationDelivery records.
func (f *NotificationJobFactory) Rebuild(rec Record) (Job, error) {
	var payload notificationPayload
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", TypeNotificationDelivery, err)
	}
	return f.build(rec.ID, payload.TaskID, payload.UserID)
}

func (f *NotificationJobFactory) build(id, taskID, userID uuid.UUID) (*NotificationDeliveryJob, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}
	return &NotificationDeliveryJob{
		id:       id,
		taskID:   taskID,
		userID:   userID,
		tasks:    f.tasks,
		notifier: f.notifier,
		logger:   f.logger.With("task_id", taskID, "user_id", userID),
	}, nil
}
