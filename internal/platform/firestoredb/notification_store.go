package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
	"google.golang.org/api/iterator"
)

// NotificationStore implements store.NotificationStore on the notifications
// sub-collection of each user document.
type NotificationStore struct {
	client *firestore.Client
	logger *slog.Logger
}

var _ store.NotificationStore = (*NotificationStore)(nil)

func (s *NotificationStore) inbox(userID uuid.UUID) *firestore.CollectionRef {
	return s.client.Collection(usersCollection).Doc(userID.String()).Collection(notificationsCollection)
}

// Create implements store.NotificationStore.
func (s *NotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	doc := notificationDocument{
		UserID:    n.UserID.String(),
		TaskID:    n.TaskID.String(),
		Message:   n.Message,
		Read:      n.Read,
		CreatedAt: n.CreatedAt.UTC(),
	}
	if _, err := s.inbox(n.UserID).Doc(n.ID.String()).Create(ctx, doc); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create notification",
			"error", redact.Error(err),
			"user_id", n.UserID)
		return store.NewStoreError("notification", "create", "failed to create notification document", MapError(err))
	}
	return nil
}

// ListByUser implements store.NotificationStore.
func (s *NotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	iter := s.inbox(userID).OrderBy("created_at", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	result := []*domain.Notification{}
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, store.NewStoreError("notification", "list", "failed to query inbox", MapError(err))
		}
		n, err := decodeNotification(snap)
		if err != nil {
			return nil, store.NewStoreError("notification", "list", "failed to decode notification", err)
		}
		result = append(result, n)
	}
	return result, nil
}

// DeleteByTask finds the task's notifications in every inbox with a
// collection-group query and removes them with a bulk writer.
func (s *NotificationStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	refs, err := s.client.CollectionGroup(notificationsCollection).
		Where("task_id", "==", taskID.String()).
		Documents(ctx).GetAll()
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find notifications",
			"error", redact.Error(err),
			"task_id", taskID)
		return 0, store.NewStoreError("notification", "delete", "failed to query notifications", MapError(err))
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, snap := range refs {
		job, err := bw.Delete(snap.Ref)
		if err != nil {
			bw.End()
			return 0, store.NewStoreError("notification", "delete", "failed to enqueue delete", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var deleted int64
	var errs []error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	if len(errs) > 0 {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to purge notifications",
			"error", redact.Error(errs[0]),
			"task_id", taskID,
			"failed", len(errs),
			"deleted", deleted)
		return deleted, store.NewStoreError("notification", "delete",
			fmt.Sprintf("%d of %d deletes failed", len(errs), len(jobs)), MapError(errors.Join(errs...)))
	}
	return deleted, nil
}

func decodeNotification(snap *firestore.DocumentSnapshot) (*domain.Notification, error) {
	var doc notificationDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(snap.Ref.ID)
}
