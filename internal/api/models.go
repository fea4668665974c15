package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskRequest is the body of the create and update task endpoints.
// Fields a client must not control (id, createdBy, notified) are not
// decoded at all. The whole body is validated before the caller's role is
// known, so an assignee sending an invalid priority is rejected even though
// only status would be applied.
type TaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"    validate:"omitempty,oneof=low medium high"`
	Status      string     `json:"status"      validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time `json:"dueDate"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
}

func (r TaskRequest) toFields() domain.TaskFields {
	return domain.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		Priority:    domain.Priority(r.Priority),
		Status:      domain.Status(r.Status),
		DueDate:     r.DueDate,
		AssignedTo:  r.AssignedTo,
	}
}

// UserSummary is the public view of a user referenced by a task.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// TaskDetailsResponse is a task with its creator and assignee resolved.
// A reference that does not resolve is rendered as null.
type TaskDetailsResponse struct {
	*domain.Task
	CreatedBy  *UserSummary `json:"createdBy"`
	AssignedTo *UserSummary `json:"assignedTo"`
}

// TaskAccessResponse is the body of GET /api/tasks/{id}.
type TaskAccessResponse struct {
	Task       *domain.Task `json:"task"`
	IsCreator  bool         `json:"isCreator"`
	IsAssignee bool         `json:"isAssignee"`
}

func userSummary(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func taskDetailsToResponse(details []*domain.TaskDetails) []TaskDetailsResponse {
	resp := make([]TaskDetailsResponse, 0, len(details))
	for _, d := range details {
		resp = append(resp, TaskDetailsResponse{
			Task:       d.Task,
			CreatedBy:  userSummary(d.Creator),
			AssignedTo: userSummary(d.Assignee),
		})
	}
	return resp
}

func taskAccessToResponse(access *domain.TaskAccess) TaskAccessResponse {
	return TaskAccessResponse{
		Task:       access.Task,
		IsCreator:  access.IsCreator,
		IsAssignee: access.IsAssignee,
	}
}
