package firestoredb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
	"google.golang.org/api/iterator"
)

// TaskStore implements store.TaskStore on the tasks collection.
type TaskStore struct {
	client *firestore.Client
	logger *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

func (s *TaskStore) doc(id uuid.UUID) *firestore.DocumentRef {
	return s.client.Collection(tasksCollection).Doc(id.String())
}

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	if _, err := s.doc(task.ID).Create(ctx, toTaskDocument(task)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			"error", redact.Error(err),
			"task_id", task.ID)
		return store.NewStoreError("task", "create", "failed to create task document", MapError(err))
	}
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	snap, err := s.doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			"error", redact.Error(err),
			"task_id", id)
		return nil, store.NewStoreError("task", "get", "failed to read task document", MapError(err))
	}
	return decodeTask(snap)
}

// List implements store.TaskStore.
func (s *TaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	iter := s.client.Collection(tasksCollection).
		OrderBy("created_at", firestore.Asc).
		OrderBy(firestore.DocumentID, firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	tasks := []*domain.Task{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks", "error", redact.Error(err))
			return nil, store.NewStoreError("task", "list", "failed to query tasks", MapError(err))
		}
		task, err := decodeTask(snap)
		if err != nil {
			return nil, store.NewStoreError("task", "list", "failed to decode task", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Update implements store.TaskStore. created_by is never written and
// notified is only ever set, never cleared.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	doc := toTaskDocument(task)
	updates := []firestore.Update{
		{Path: "title", Value: doc.Title},
		{Path: "description", Value: doc.Description},
		{Path: "priority", Value: doc.Priority},
		{Path: "status", Value: doc.Status},
		{Path: "due_date", Value: doc.DueDate},
		{Path: "assigned_to", Value: doc.AssignedTo},
		{Path: "updated_at", Value: doc.UpdatedAt},
	}
	if task.Notified {
		updates = append(updates, firestore.Update{Path: "notified", Value: true})
	}

	if _, err := s.doc(task.ID).Update(ctx, updates); err != nil {
		if isNotFound(err) {
			return store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			"error", redact.Error(err),
			"task_id", task.ID)
		return store.NewStoreError("task", "update", "failed to update task document", MapError(err))
	}
	return nil
}

// MarkNotified implements store.TaskStore.
func (s *TaskStore) MarkNotified(ctx context.Context, id uuid.UUID) error {
	_, err := s.doc(id).Update(ctx, []firestore.Update{
		{Path: "notified", Value: true},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if err != nil {
		if isNotFound(err) {
			return store.ErrTaskNotFound
		}
		return store.NewStoreError("task", "mark_notified", "failed to update task document", MapError(err))
	}
	return nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.doc(id).Delete(ctx, firestore.Exists); err != nil {
		if isNotFound(err) {
			return store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			"error", redact.Error(err),
			"task_id", id)
		return store.NewStoreError("task", "delete", "failed to delete task document", MapError(err))
	}
	return nil
}

func decodeTask(snap *firestore.DocumentSnapshot) (*domain.Task, error) {
	var doc taskDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(snap.Ref.ID)
}
