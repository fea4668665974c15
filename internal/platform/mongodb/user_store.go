package mongodb

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore implements store.UserStore on the users collection.
type UserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

// userProjection leaves out the embedded inbox.
var userProjection = bson.M{"notifications": 0}

// Create implements store.UserStore.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	if _, err := s.coll.InsertOne(ctx, toUserDocument(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrEmailExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create user",
			"error", redact.Error(err),
			"user_id", user.ID)
		return store.NewStoreError("user", "create", "failed to insert user", MapError(err))
	}
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var doc userDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": id.String()},
		options.FindOne().SetProjection(userProjection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.NewStoreError("user", "get", "failed to find user", MapError(err))
	}
	return doc.toDomain()
}

// GetByIDs implements store.UserStore.
func (s *UserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	users := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": keys}},
		options.Find().SetProjection(userProjection))
	if err != nil {
		return nil, store.NewStoreError("user", "list", "failed to find users", MapError(err))
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, store.NewStoreError("user", "list", "failed to decode users", MapError(err))
	}

	for _, doc := range docs {
		user, err := doc.toDomain()
		if err != nil {
			return nil, store.NewStoreError("user", "list", "failed to decode user", err)
		}
		users[user.ID] = user
	}
	return users, nil
}
