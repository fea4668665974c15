package domain

import "github.com/google/uuid"

// Action is something a caller may attempt on a task.
type Action int

const (
	// ActionView reads a single task.
	ActionView Action = iota
	// ActionUpdate overwrites the creator-editable fields.
	ActionUpdate
	// ActionUpdateStatus overwrites the status only.
	ActionUpdateStatus
	// ActionDelete removes the task.
	ActionDelete
)

// String returns the action name for logging.
func (a Action) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionUpdate:
		return "update"
	case ActionUpdateStatus:
		return "update_status"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// IsCreator reports whether callerID created the task.
func (t *Task) IsCreator(callerID uuid.UUID) bool {
	return callerID != uuid.Nil && t.CreatedBy == callerID
}

// IsAssignee reports whether callerID is the task's assignee.
// An unassigned task has no assignee.
func (t *Task) IsAssignee(callerID uuid.UUID) bool {
	return callerID != uuid.Nil && t.IsAssigned() && *t.AssignedTo == callerID
}

// CanAccess is the single authorization rule for tasks.
//
// The creator may do everything. The assignee may view the task and change
// its status. Nobody else may do anything.
func CanAccess(task *Task, callerID uuid.UUID, action Action) bool {
	if task == nil {
		return false
	}

	creator := task.IsCreator(callerID)
	assignee := task.IsAssignee(callerID)

	switch action {
	case ActionView, ActionUpdateStatus:
		return creator || assignee
	case ActionUpdate, ActionDelete:
		return creator
	default:
		return false
	}
}
