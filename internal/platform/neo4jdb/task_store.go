package neo4jdb

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskStore implements store.TaskStore on Task nodes.
type TaskStore struct {
	exec   executor
	logger *slog.Logger
}

var _ store.TaskStore = (*TaskStore)(nil)

const (
	createTaskQuery = `CREATE (t:Task) SET t = $props`

	getTaskQuery = `MATCH (t:Task {id: $id}) RETURN t`

	listTasksQuery = `MATCH (t:Task) RETURN t ORDER BY t.created_at, t.id`

	// notified is OR-ed so a stored true survives.
	updateTaskQuery = `
MATCH (t:Task {id: $id})
SET t.title = $title,
    t.description = $description,
    t.priority = $priority,
    t.status = $status,
    t.due_date = $due_date,
    t.assigned_to = $assigned_to,
    t.notified = coalesce(t.notified, false) OR $notified,
    t.updated_at = $updated_at
RETURN t.id`

	markNotifiedQuery = `
MATCH (t:Task {id: $id})
SET t.notified = true, t.updated_at = $updated_at
RETURN t.id`

	deleteTaskQuery = `MATCH (t:Task {id: $id}) DETACH DELETE t`
)

// Create implements store.TaskStore.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	_, err := run(ctx, s.exec, neo4j.AccessModeWrite, func(q querier) (struct{}, error) {
		res, err := q.Run(ctx, createTaskQuery, map[string]any{"props": taskProps(task)})
		if err != nil {
			return struct{}{}, err
		}
		_, err = res.Consume(ctx)
		return struct{}{}, err
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create task",
			"error", redact.Error(err),
			"task_id", task.ID)
		return store.NewStoreError("task", "create", "failed to create task node", MapError(err))
	}
	return nil
}

// GetByID implements store.TaskStore.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	tasks, err := s.query(ctx, getTaskQuery, map[string]any{"id": id.String()})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get task",
			"error", redact.Error(err),
			"task_id", id)
		return nil, store.NewStoreError("task", "get", "failed to read task node", MapError(err))
	}
	if len(tasks) == 0 {
		return nil, store.ErrTaskNotFound
	}
	return tasks[0], nil
}

// List implements store.TaskStore.
func (s *TaskStore) List(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := s.query(ctx, listTasksQuery, nil)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks", "error", redact.Error(err))
		return nil, store.NewStoreError("task", "list", "failed to read task nodes", MapError(err))
	}
	return tasks, nil
}

func (s *TaskStore) query(ctx context.Context, cypher string, params map[string]any) ([]*domain.Task, error) {
	return run(ctx, s.exec, neo4j.AccessModeRead, func(q querier) ([]*domain.Task, error) {
		res, err := q.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		tasks := make([]*domain.Task, 0, len(records))
		for _, rec := range records {
			p, err := nodeProps(rec, "t")
			if err != nil {
				return nil, err
			}
			task, err := taskFromProps(p)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, task)
		}
		return tasks, nil
	})
}

// Update implements store.TaskStore. created_by is never written and
// notified is only ever set, never cleared.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	p := taskProps(task)
	params := map[string]any{
		"id":          p["id"],
		"title":       p["title"],
		"description": p["description"],
		"priority":    p["priority"],
		"status":      p["status"],
		"due_date":    p["due_date"],
		"assigned_to": p["assigned_to"],
		"notified":    task.Notified,
		"updated_at":  p["updated_at"],
	}

	matched, err := s.write(ctx, updateTaskQuery, params)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update task",
			"error", redact.Error(err),
			"task_id", task.ID)
		return store.NewStoreError("task", "update", "failed to update task node", MapError(err))
	}
	if !matched {
		return store.ErrTaskNotFound
	}
	return nil
}

// MarkNotified implements store.TaskStore.
func (s *TaskStore) MarkNotified(ctx context.Context, id uuid.UUID) error {
	matched, err := s.write(ctx, markNotifiedQuery, map[string]any{
		"id":         id.String(),
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return store.NewStoreError("task", "mark_notified", "failed to update task node", MapError(err))
	}
	if !matched {
		return store.ErrTaskNotFound
	}
	return nil
}

// write runs a MATCH ... SET query and reports whether it matched a node.
func (s *TaskStore) write(ctx context.Context, cypher string, params map[string]any) (bool, error) {
	return run(ctx, s.exec, neo4j.AccessModeWrite, func(q querier) (bool, error) {
		res, err := q.Run(ctx, cypher, params)
		if err != nil {
			return false, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return false, err
		}
		return len(records) > 0, nil
	})
}

// Delete implements store.TaskStore.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := run(ctx, s.exec, neo4j.AccessModeWrite, func(q querier) (int, error) {
		res, err := q.Run(ctx, deleteTaskQuery, map[string]any{"id": id.String()})
		if err != nil {
			return 0, err
		}
		summary, err := res.Consume(ctx)
		if err != nil {
			return 0, err
		}
		return summary.Counters().NodesDeleted(), nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			"error", redact.Error(err),
			"task_id", id)
		return store.NewStoreError("task", "delete", "failed to delete task node", MapError(err))
	}
	if deleted == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}
