package firestoredb

import (
	"context"
	"errors"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserStore implements store.UserStore on the users collection.
type UserStore struct {
	client *firestore.Client
	logger *slog.Logger
}

var _ store.UserStore = (*UserStore)(nil)

// errEmailTaken aborts the create transaction.
var errEmailTaken = errors.New("email taken")

// Create implements store.UserStore. Firestore has no unique indexes, so the
// email lookup and the insert share a transaction.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}

	users := s.client.Collection(usersCollection)
	doc := userDocument{
		Email:          user.Email,
		Name:           user.Name,
		TelegramChatID: user.TelegramChatID,
		CreatedAt:      user.CreatedAt.UTC(),
		UpdatedAt:      user.UpdatedAt.UTC(),
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(users.Where("email", "==", user.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return errEmailTaken
		}
		return tx.Create(users.Doc(user.ID.String()), doc)
	})
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			return store.ErrEmailExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create user",
			"error", redact.Error(err),
			"user_id", user.ID)
		return store.NewStoreError("user", "create", "failed to create user document", MapError(err))
	}
	return nil
}

// GetByID implements store.UserStore.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	snap, err := s.client.Collection(usersCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.NewStoreError("user", "get", "failed to read user document", MapError(err))
	}
	return decodeUser(snap)
}

// GetByIDs implements store.UserStore with a single batched read.
func (s *UserStore) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.User, error) {
	users := make(map[uuid.UUID]*domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	refs := make([]*firestore.DocumentRef, len(ids))
	for i, id := range ids {
		refs[i] = s.client.Collection(usersCollection).Doc(id.String())
	}

	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, store.NewStoreError("user", "list", "failed to read user documents", MapError(err))
	}

	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		user, err := decodeUser(snap)
		if err != nil {
			return nil, store.NewStoreError("user", "list", "failed to decode user", err)
		}
		users[user.ID] = user
	}
	return users, nil
}

func decodeUser(snap *firestore.DocumentSnapshot) (*domain.User, error) {
	var doc userDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	return doc.toDomain(snap.Ref.ID)
}
