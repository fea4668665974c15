package mongodb

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationStore implements store.NotificationStore on the notifications
// array embedded in each user document.
type NotificationStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

var _ store.NotificationStore = (*NotificationStore)(nil)

// Create pushes the notification onto its user's inbox.
// Returns ErrUserNotFound when the user document does not exist.
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": n.UserID.String()},
		bson.M{"$push": bson.M{"notifications": toNotificationDocument(n)}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to push notification",
			"error", redact.Error(err),
			"user_id", n.UserID)
		return store.NewStoreError("notification", "create", "failed to push notification", MapError(err))
	}
	if result.MatchedCount == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// ListByUser implements store.NotificationStore. An unknown user has an
// empty inbox.
func (s *NotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	var doc struct {
		Notifications []notificationDocument `bson:"notifications"`
	}
	err := s.coll.FindOne(ctx, bson.M{"_id": userID.String()},
		options.FindOne().SetProjection(bson.M{"notifications": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []*domain.Notification{}, nil
		}
		return nil, store.NewStoreError("notification", "list", "failed to find inbox", MapError(err))
	}

	result := make([]*domain.Notification, 0, len(doc.Notifications))
	for _, nd := range doc.Notifications {
		n, err := nd.toDomain(userID)
		if err != nil {
			return nil, store.NewStoreError("notification", "list", "failed to decode notification", err)
		}
		result = append(result, n)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteByTask pulls every notification for taskID out of every inbox.
func (s *NotificationStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	id := taskID.String()

	count, err := s.countByTask(ctx, id)
	if err != nil {
		return 0, err
	}

	_, err = s.coll.UpdateMany(ctx,
		bson.M{"notifications.task_id": id},
		bson.M{"$pull": bson.M{"notifications": bson.M{"task_id": id}}})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to purge notifications",
			"error", redact.Error(err),
			"task_id", taskID)
		return 0, store.NewStoreError("notification", "delete", "failed to purge notifications", MapError(err))
	}
	return count, nil
}

func (s *NotificationStore) countByTask(ctx context.Context, taskID string) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"notifications.task_id": taskID}}},
		{{Key: "$unwind", Value: "$notifications"}},
		{{Key: "$match", Value: bson.M{"notifications.task_id": taskID}}},
		{{Key: "$count", Value: "n"}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, store.NewStoreError("notification", "delete", "failed to count notifications", MapError(err))
	}

	var counts []struct {
		N int64 `bson:"n"`
	}
	if err := cursor.All(ctx, &counts); err != nil {
		return 0, store.NewStoreError("notification", "delete", "failed to count notifications", MapError(err))
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0].N, nil
}
