package firestoredb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

type taskDocument struct {
	Title       string     `firestore:"title"`
	Description string     `firestore:"description"`
	Priority    *string    `firestore:"priority"`
	Status      *string    `firestore:"status"`
	DueDate     *time.Time `firestore:"due_date"`
	CreatedBy   string     `firestore:"created_by"`
	AssignedTo  *string    `firestore:"assigned_to"`
	Notified    bool       `firestore:"notified"`
	CreatedAt   time.Time  `firestore:"created_at"`
	UpdatedAt   time.Time  `firestore:"updated_at"`
}

type userDocument struct {
	Email          string    `firestore:"email"`
	Name           string    `firestore:"name"`
	TelegramChatID *int64    `firestore:"telegram_chat_id"`
	CreatedAt      time.Time `firestore:"created_at"`
	UpdatedAt      time.Time `firestore:"updated_at"`
}

type notificationDocument struct {
	UserID    string    `firestore:"user_id"`
	TaskID    string    `firestore:"task_id"`
	Message   string    `firestore:"message"`
	Read      bool      `firestore:"read"`
	CreatedAt time.Time `firestore:"created_at"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalUUID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toTaskDocument(t *domain.Task) taskDocument {
	var due *time.Time
	if t.DueDate != nil {
		u := t.DueDate.UTC()
		due = &u
	}
	return taskDocument{
		Title:       t.Title,
		Description: t.Description,
		Priority:    optionalString(string(t.Priority)),
		Status:      optionalString(string(t.Status)),
		DueDate:     due,
		CreatedBy:   t.CreatedBy.String(),
		AssignedTo:  optionalUUID(t.AssignedTo),
		Notified:    t.Notified,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (d taskDocument) toDomain(docID string) (*domain.Task, error) {
	id, err := uuid.Parse(docID)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", docID, err)
	}
	createdBy, err := uuid.Parse(d.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("invalid created_by on task %s: %w", docID, err)
	}

	task := &domain.Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		CreatedBy:   createdBy,
		Notified:    d.Notified,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if d.Priority != nil {
		task.Priority = domain.Priority(*d.Priority)
	}
	if d.Status != nil {
		task.Status = domain.Status(*d.Status)
	}
	if d.AssignedTo != nil {
		assignee, err := uuid.Parse(*d.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("invalid assigned_to on task %s: %w", docID, err)
		}
		task.AssignedTo = &assignee
	}
	return task, nil
}

func (d userDocument) toDomain(docID string) (*domain.User, error) {
	id, err := uuid.Parse(docID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", docID, err)
	}
	return &domain.User{
		ID:             id,
		Email:          d.Email,
		Name:           d.Name,
		TelegramChatID: d.TelegramChatID,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}

func (d notificationDocument) toDomain(docID string) (*domain.Notification, error) {
	id, err := uuid.Parse(docID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification id %q: %w", docID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id on notification %s: %w", docID, err)
	}
	taskID, err := uuid.Parse(d.TaskID)
	if err != nil {
		return nil, fmt.Errorf("invalid task_id on notification %s: %w", docID, err)
	}
	return &domain.Notification{
		ID:        id,
		UserID:    userID,
		TaskID:    taskID,
		Message:   d.Message,
		Read:      d.Read,
		CreatedAt: d.CreatedAt,
	}, nil
}
