package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskStore implements store.TaskStore on the tasks collection.
type TaskStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	if _, err := s.coll.InsertOne(ctx, toTaskDocument(task)); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			"error", redact.Error(err),
			"task_id", task.ID)
		return store.NewStoreError("task", "create", "failed to insert task", MapError(err))
	}
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var doc taskDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrTaskNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			"error", redact.Error(err),
			"task_id", id)
		return nil, store.NewStoreError("task", "get", "failed to find task", MapError(err))
	}
	return doc.toDomain()
}

// List implements store.TaskStore.
func (s *TaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks", "error", redact.Error(err))
		return nil, store.NewStoreError("task", "list", "failed to find tasks", MapError(err))
	}

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, store.NewStoreError("task", "list", "failed to decode tasks", MapError(err))
	}

	tasks := make([]*domain.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := doc.toDomain()
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
	set := bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"priority":    doc.Priority,
		"status":      doc.Status,
		"due_date":    doc.DueDate,
		"assigned_to": doc.AssignedTo,
		"updated_at":  doc.UpdatedAt,
	}
	if task.Notified {
		set["notified"] = true
	}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": set})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			"error", redact.Error(err),
			"task_id", task.ID)
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}
	if result.MatchedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// MarkNotified implements store.TaskStore.
func (s *TaskStore) MarkNotified(ctx context.Context, id uuid.UUID) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"notified": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return store.NewStoreError("task", "mark_notified", "failed to update task", MapError(err))
	}
	if result.MatchedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			"error", redact.Error(err),
			"task_id", id)
		return store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}
	if result.DeletedCount == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}
