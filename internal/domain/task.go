package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency of a task. The empty value means "not set".
type Priority string

// Possible priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Status is the progress state of a task. The empty value means "not set".
type Status string

// Possible status values
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Task validation errors
var (
	ErrEmptyTaskID        = errors.New("task ID cannot be empty")
	ErrEmptyTaskCreatedBy = errors.New("task creator cannot be empty")
	ErrInvalidPriority    = errors.New("invalid task priority")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrCreatorChanged     = errors.New("task creator cannot be changed")
)

// Task is a unit of work created by one user and optionally assigned to another.
//
// CreatedBy is set once by NewTask and never changes. Notified only ever
// moves from false to true, see MarkNotified.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	AssignedTo  *uuid.UUID `json:"assignedTo"`
	Notified    bool       `json:"notified"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskFields carries the client-controlled task fields.
// Zero values stand for "null": an omitted field overwrites with the zero value.
type TaskFields struct {
	Title       string
	Description string
	Priority    Priority
	Status      Status
	DueDate     *time.Time
	AssignedTo  *uuid.UUID
}

// NewTask builds a task owned by createdBy from the given fields.
// Returns a validation error if the result is not a valid task.
func NewTask(createdBy uuid.UUID, fields TaskFields) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       fields.Title,
		Description: fields.Description,
		Priority:    fields.Priority,
		Status:      fields.Status,
		DueDate:     fields.DueDate,
		CreatedBy:   createdBy,
		AssignedTo:  fields.AssignedTo,
		Notified:    false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the task the way the store would: identity fields must be
// present and enumerated fields must hold a known value or be empty.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrEmptyTaskID)
	}

	if t.CreatedBy == uuid.Nil {
		return NewValidationError("createdBy", "cannot be empty", ErrEmptyTaskCreatedBy)
	}

	if !isValidPriority(t.Priority) {
		return NewValidationError("priority", "must be one of low, medium, high", ErrInvalidPriority)
	}

	if !isValidStatus(t.Status) {
		return NewValidationError("status", "must be one of pending, in_progress, completed", ErrInvalidStatus)
	}

	return nil
}

// IsAssigned reports whether the task has an assignee.
func (t *Task) IsAssigned() bool {
	return t.AssignedTo != nil && *t.AssignedTo != uuid.Nil
}

// ApplyCreatorUpdate overwrites every creator-editable field.
// There is no partial update: zero values in fields replace existing values.
func (t *Task) ApplyCreatorUpdate(fields TaskFields) error {
	updated := *t
	updated.Title = fields.Title
	updated.Description = fields.Description
	updated.Priority = fields.Priority
	updated.Status = fields.Status
	updated.DueDate = fields.DueDate
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		return err
	}

	*t = updated
	return nil
}

// ApplyStatusUpdate overwrites the status only.
func (t *Task) ApplyStatusUpdate(status Status) error {
	if !isValidStatus(status) {
		return NewValidationError("status", "must be one of pending, in_progress, completed", ErrInvalidStatus)
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkNotified records that the assignee has been notified. It never resets the flag.
func (t *Task) MarkNotified() {
	t.Notified = true
}

func isValidPriority(p Priority) bool {
	switch p {
	case "", PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

func isValidStatus(s Status) bool {
	switch s {
	case "", StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// TaskDetails is a task with its creator and assignee resolved to user records.
// Creator or Assignee is nil when the reference does not resolve.
type TaskDetails struct {
	Task     *Task
	Creator  *User
	Assignee *User
}

// TaskAccess is a task together with the caller's relationship to it.
type TaskAccess struct {
	Task       *Task
	IsCreator  bool
	IsAssignee bool
}
