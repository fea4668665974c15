package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/notify"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskService provides the task operations exposed by the API.
// callerID is the authenticated user making the request.
type TaskService interface {
	// List returns every task with its creator and assignee resolved.
	List(ctx context.Context) ([]*domain.TaskDetails, error)

	// Get returns a task the caller created or is assigned to.
	Get(ctx context.Context, taskID, callerID uuid.UUID) (*domain.TaskAccess, error)

	// Create stores a task owned by the caller and notifies its assignee.
	Create(ctx context.Context, fields domain.TaskFields, callerID uuid.UUID) (*domain.Task, error)

	// Update overwrites the creator-editable fields when the caller is the
	// creator, or only the status when the caller is the assignee.
	Update(ctx context.Context, taskID uuid.UUID, fields domain.TaskFields, callerID uuid.UUID) (*domain.Task, error)

	// Delete removes a task the caller created together with every
	// notification pointing at it, and reports how many were purged.
	Delete(ctx context.Context, taskID, callerID uuid.UUID) (int64, error)
}

type taskServiceImpl struct {
	store    store.Store
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(st store.Store, notifier notify.Notifier, logger *slog.Logger) (TaskService, error) {
	if st == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "store cannot be nil"}
	}
	if notifier == nil {
		return nil, &TaskServiceError{Operation: "create_service", Message: "notifier cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		store:    st,
		notifier: notifier,
		logger:   logger.With("component", "task_service"),
	}, nil
}

// List implements TaskService. References that do not resolve leave
// Creator or Assignee nil.
func (s *taskServiceImpl) List(ctx context.Context) ([]*domain.TaskDetails, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	tasks, err := s.store.Tasks().List(ctx)
	if err != nil {
		log.Error("failed to list tasks", "error", redact.Error(err))
		return nil, NewTaskServiceError("list", "failed to list tasks", err)
	}

	seen := make(map[uuid.UUID]struct{})
	var userIDs []uuid.UUID
	addUser := func(id uuid.UUID) {
		if _, ok := seen[id]; ok || id == uuid.Nil {
			return
		}
		seen[id] = struct{}{}
		userIDs = append(userIDs, id)
	}
	for _, task := range tasks {
		addUser(task.CreatedBy)
		if task.IsAssigned() {
			addUser(*task.AssignedTo)
		}
	}

	users, err := s.store.Users().GetByIDs(ctx, userIDs)
	if err != nil {
		log.Error("failed to resolve task users", "error", redact.Error(err), "user_count", len(userIDs))
		return nil, NewTaskServiceError("list", "failed to resolve task users", err)
	}

	details := make([]*domain.TaskDetails, 0, len(tasks))
	for _, task := range tasks {
		d := &domain.TaskDetails{Task: task, Creator: users[task.CreatedBy]}
		if task.IsAssigned() {
			d.Assignee = users[*task.AssignedTo]
		}
		details = append(details, d)
	}

	log.Debug("listed tasks", "count", len(details))
	return details, nil
}

// Get implements TaskService.
func (s *taskServiceImpl) Get(ctx context.Context, taskID, callerID uuid.UUID) (*domain.TaskAccess, error) {
	task, err := s.load(ctx, "get", taskID)
	if err != nil {
		return nil, err
	}

	if !domain.CanAccess(task, callerID, domain.ActionView) {
		logger.FromContextOrDefault(ctx, s.logger).Warn("task view denied",
			"task_id", taskID,
			"caller_id", callerID)
		return nil, ErrForbidden
	}

	return &domain.TaskAccess{
		Task:       task,
		IsCreator:  task.IsCreator(callerID),
		IsAssignee: task.IsAssignee(callerID),
	}, nil
}

// Create implements TaskService.
//
// The task is persisted before the assignee is notified. If notification
// fails the task stays stored and the error is returned; it is logged with
// the task ID so the two can be reconciled. A deferred notifier only
// schedules delivery, so the task is left unnotified for the job to mark.
func (s *taskServiceImpl) Create(ctx context.Context, fields domain.TaskFields, callerID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(callerID, fields)
	if err != nil {
		return nil, NewTaskServiceError("create", "invalid task", err)
	}

	if err := s.store.Tasks().Create(ctx, task); err != nil {
		log.Error("failed to save task",
			"error", redact.Error(err),
			"task_id", task.ID,
			"caller_id", callerID)
		return nil, NewTaskServiceError("create", "failed to save task", err)
	}

	log.Info("task created", "task_id", task.ID, "caller_id", callerID, "assigned", task.IsAssigned())

	if !task.IsAssigned() {
		return task, nil
	}

	assignee := *task.AssignedTo
	if err := s.notifier.Notify(ctx, assignee, task); err != nil {
		log.Error("task persisted but assignee notification failed",
			"error", redact.Error(err),
			"task_id", task.ID,
			"assignee_id", assignee)
		return nil, NewTaskServiceError("create", "failed to notify assignee", err)
	}

	if notify.IsDeferred(s.notifier) {
		log.Debug("assignee notification scheduled", "task_id", task.ID, "assignee_id", assignee)
		return task, nil
	}

	if err := s.store.Tasks().MarkNotified(ctx, task.ID); err != nil {
		log.Error("assignee notified but task could not be marked",
			"error", redact.Error(err),
			"task_id", task.ID)
		return nil, NewTaskServiceError("create", "failed to mark task notified", err)
	}
	task.MarkNotified()

	return task, nil
}

// Update implements TaskService.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	taskID uuid.UUID,
	fields domain.TaskFields,
	callerID uuid.UUID,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.load(ctx, "update", taskID)
	if err != nil {
		return nil, err
	}

	switch {
	case domain.CanAccess(task, callerID, domain.ActionUpdate):
		err = task.ApplyCreatorUpdate(fields)
	case domain.CanAccess(task, callerID, domain.ActionUpdateStatus):
		err = task.ApplyStatusUpdate(fields.Status)
	default:
		log.Warn("task update denied", "task_id", taskID, "caller_id", callerID)
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, NewTaskServiceError("update", "invalid task update", err)
	}

	if err := s.store.Tasks().Update(ctx, task); err != nil {
		log.Error("failed to save task update",
			"error", redact.Error(err),
			"task_id", taskID)
		return nil, NewTaskServiceError("update", "failed to save task", err)
	}

	log.Info("task updated", "task_id", taskID, "caller_id", callerID, "creator", task.IsCreator(callerID))
	return task, nil
}

// Delete implements TaskService. The task and its notifications are removed
// in one store unit of work.
func (s *taskServiceImpl) Delete(ctx context.Context, taskID, callerID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.load(ctx, "delete", taskID)
	if err != nil {
		return 0, err
	}

	if !domain.CanAccess(task, callerID, domain.ActionDelete) {
		log.Warn("task delete denied", "task_id", taskID, "caller_id", callerID)
		return 0, ErrNotCreator
	}

	var purged int64
	err = s.store.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Tasks().Delete(ctx, taskID); err != nil {
			return err
		}
		n, err := tx.Notifications().DeleteByTask(ctx, taskID)
		if err != nil {
			return err
		}
		purged = n
		return nil
	})
	if err != nil {
		log.Error("failed to delete task",
			"error", redact.Error(err),
			"task_id", taskID)
		return 0, NewTaskServiceError("delete", "failed to delete task", err)
	}

	log.Info("task deleted", "task_id", taskID, "notifications_purged", purged)
	return purged, nil
}

func (s *taskServiceImpl) load(ctx context.Context, operation string, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load task",
			"error", redact.Error(err),
			"task_id", taskID,
			"operation", operation)
		return nil, NewTaskServiceError(operation, "failed to load task", err)
	}
	return task, nil
}
