package neo4jdb

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserStore implements store.UserStore on User nodes.
type UserStore struct {
	exec   executor
	logger *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

const (
	createUserQuery   = `CREATE (u:User) SET u = $props`
	getUserQuery      = `MATCH (u:User {id: $id}) RETURN u`
	getUsersByIDQuery = `MATCH (u:User) WHERE u.id IN $ids RETURN u`
)

// Create implements store.UserStore. The email uniqueness constraint
// reports duplicates.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	_, err := run(ctx, s.exec, neo4j.AccessModeWrite, func(q querier) (struct{}, error) {
		res, err := q.Run(ctx, createUserQuery, map[string]any{"props": userProps(user)})
		if err != nil {
			return struct{}{}, err
		}
		_, err = res.Consume(ctx)
		return struct{}{}, err
	})
	if err != nil {
		if isConstraintViolation(err) {
			return store.ErrEmailExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create user",
			"error", redact.Error(err),
			"user_id", user.ID)
		return store.NewStoreError("user", "create", "failed to create user node", MapError(err))
	}
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	users, err := s.query(ctx, getUserQuery, map[string]any{"id": id.String()})
	if err != nil {
		return nil, store.NewStoreError("user", "get", "failed to read user node", MapError(err))
	}
	if len(users) == 0 {
		return nil, store.ErrUserNotFound
	}
	return users[0], nil
}

// GetByIDs implements store.UserStore.
func (s *UserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	result := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	users, err := s.query(ctx, getUsersByIDQuery, map[string]any{"ids": keys})
	if err != nil {
		return nil, store.NewStoreError("user", "list", "failed to read user nodes", MapError(err))
	}
	for _, user := range users {
		result[user.ID] = user
	}
	return result, nil
}

func (s *UserStore) query(ctx context.Context, cypher string, params map[string]any) ([]*domain.User, error) {
	return run(ctx, s.exec, neo4j.AccessModeRead, func(q querier) ([]*domain.User, error) {
		res, err := q.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}

		users := make([]*domain.User, 0, len(records))
		for _, rec := range records {
			p, err := nodeProps(rec, "u")
			if err != nil {
				return nil, err
			}
			user, err := userFromProps(p)
			if err != nil {
				return nil, err
			}
			users = append(users, user)
		}
		return users, nil
	})
}
