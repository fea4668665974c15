package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// Response messages of the task endpoints.
const (
	msgTaskNotFound     = "Task not found"
	msgViewForbidden    = "You are not allowed to view this task."
	msgUpdateForbidden  = "You are not allowed to update this task."
	msgNotYourTask      = "Unauthorized: Not your task"
	msgTaskDeleted      = "Task and related notifications deleted"
	msgTaskCreateFailed = "Task creation failed"
	msgServerError      = "Server error"
	msgTaskListFailed   = "Failed to list tasks"
	msgTaskDeleteFailed = "Failed to delete task"
)

// TaskHandler handles the /api/tasks endpoints.
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if taskService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("taskService cannot be nil for TaskHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TaskHandler")
	}

	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if _, ok := requireUserID(w, r, log); !ok {
		return
	}

	tasks, err := h.taskService.List(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, msgTaskListFailed, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskDetailsToResponse(tasks))
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	access, err := h.taskService.Get(r.Context(), taskID, userID)
	if err != nil {
		h.respondTaskError(w, r, err, msgViewForbidden, msgServerError)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskAccessToResponse(access))
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	req, ok := decodeTaskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Create(r.Context(), req.toFields(), userID)
	if err != nil {
		h.respondTaskError(w, r, err, "", msgTaskCreateFailed)
		return
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.Bool("assigned", task.IsAssigned()))
	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// UpdateTask handles PUT and PATCH /api/tasks/{id}. Both replace the
// caller-editable fields; omitted fields are cleared.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	req, ok := decodeTaskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.Update(r.Context(), taskID, req.toFields(), userID)
	if err != nil {
		h.respondTaskError(w, r, err, msgUpdateForbidden, msgServerError)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, taskID, ok := handleUserIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	purged, err := h.taskService.Delete(r.Context(), taskID, userID)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrTaskNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, msgTaskNotFound)
		return
	case errors.Is(err, service.ErrForbidden):
		shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, msgNotYourTask, err, shared.WithElevatedLogLevel())
		return
	default:
		// Delete failures are reported as bad requests.
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, msgTaskDeleteFailed, err,
			shared.WithElevatedLogLevel())
		return
	}

	log.Info("task deleted",
		slog.String("task_id", taskID.String()),
		slog.Int64("notifications_purged", purged))
	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: msgTaskDeleted})
}

// respondTaskError writes the response for a failed Get, Create or Update.
// Forbidden errors use forbiddenMsg; internal errors use fallback and carry
// a redacted cause.
func (h *TaskHandler) respondTaskError(w http.ResponseWriter, r *http.Request, err error, forbiddenMsg, fallback string) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, msgTaskNotFound)
	case errors.Is(err, service.ErrForbidden) && forbiddenMsg != "":
		shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, forbiddenMsg, err, shared.WithElevatedLogLevel())
	default:
		HandleAPIError(w, r, err, fallback)
	}
}
