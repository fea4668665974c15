package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notification is an entry in a user's inbox that points at a task.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	TaskID    uuid.UUID `json:"taskId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewAssignmentNotification builds the inbox entry sent to the assignee of task.
func NewAssignmentNotification(userID uuid.UUID, task *Task) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    task.ID,
		Message:   AssignmentMessage(task),
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
}

// AssignmentMessage is the human-readable text of an assignment notification.
func AssignmentMessage(task *Task) string {
	return fmt.Sprintf("You have been assigned a new task: %s", task.Title)
}
