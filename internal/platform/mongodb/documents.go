package mongodb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// taskDocument is the BSON shape of a task. IDs are stored as strings and
// unset optional fields as null.
type taskDocument struct {
	ID          string     `bson:"_id"`
	Title       string     `bson:"title"`
	Description string     `bson:"description"`
	Priority    *string    `bson:"priority"`
	Status      *string    `bson:"status"`
	DueDate     *time.Time `bson:"due_date"`
	CreatedBy   string     `bson:"created_by"`
	AssignedTo  *string    `bson:"assigned_to"`
	Notified    bool       `bson:"notified"`
	CreatedAt   time.Time  `bson:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at"`
}

type userDocument struct {
	ID             string                 `bson:"_id"`
	Email          string                 `bson:"email"`
	Name           string                 `bson:"name"`
	TelegramChatID *int64                 `bson:"telegram_chat_id"`
	Notifications  []notificationDocument `bson:"notifications"`
	CreatedAt      time.Time              `bson:"created_at"`
	UpdatedAt      time.Time              `bson:"updated_at"`
}

type notificationDocument struct {
	ID        string    `bson:"id"`
	TaskID    string    `bson:"task_id"`
	Message   string    `bson:"message"`
	Read      bool      `bson:"read"`
	CreatedAt time.Time `bson:"created_at"`
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

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func toTaskDocument(t *domain.Task) taskDocument {
	return taskDocument{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Priority:    optionalString(string(t.Priority)),
		Status:      optionalString(string(t.Status)),
		DueDate:     utcPtr(t.DueDate),
		CreatedBy:   t.CreatedBy.String(),
		AssignedTo:  optionalUUID(t.AssignedTo),
		Notified:    t.Notified,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func (d taskDocument) toDomain() (*domain.Task, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid task id %q: %w", d.ID, err)
	}
	createdBy, err := uuid.Parse(d.CreatedBy)
	if err != nil {
		return nil, fmt.Errorf("invalid created_by on task %s: %w", d.ID, err)
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
			return nil, fmt.Errorf("invalid assigned_to on task %s: %w", d.ID, err)
		}
		task.AssignedTo = &assignee
	}
	return task, nil
}

func toUserDocument(u *domain.User) userDocument {
	return userDocument{
		ID:             u.ID.String(),
		Email:          u.Email,
		Name:           u.Name,
		TelegramChatID: u.TelegramChatID,
		Notifications:  []notificationDocument{},
		CreatedAt:      u.CreatedAt.UTC(),
		UpdatedAt:      u.UpdatedAt.UTC(),
	}
}

func (d userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", d.ID, err)
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

func toNotificationDocument(n *domain.Notification) notificationDocument {
	return notificationDocument{
		ID:        n.ID.String(),
		TaskID:    n.TaskID.String(),
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.UTC(),
	}
}

func (d notificationDocument) toDomain(userID uuid.UUID) (*domain.Notification, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid notification id %q: %w", d.ID, err)
	}
	taskID, err := uuid.Parse(d.TaskID)
	if err != nil {
		return nil, fmt.Errorf("invalid task_id on notification %s: %w", d.ID, err)
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
