package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/firebaseapp"
	"github.com/phrazzld/taskboard-api/internal/store"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names
const (
	tasksCollection         = "tasks"
	usersCollection         = "users"
	notificationsCollection = "notifications"
)

// Store implements store.Store on Cloud Firestore.
type Store struct {
	client        *firestore.Client
	logger        *slog.Logger
	tasks         *TaskStore
	users         *UserStore
	notifications *NotificationStore
}

var _ store.Store = (*Store)(nil)

// Open initialises the Firebase app for cfg.ProjectID and returns a store
// over its Firestore client.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	app, err := firebaseapp.New(ctx, cfg.ProjectID, cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	if logger != nil {
		logger.Info("database connection established", "driver", "firestore", "project_id", cfg.ProjectID)
	}
	return New(client, logger), nil
}

// New wraps a Firestore client.
func New(client *firestore.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "firestore_store")

	return &Store{
		client:        client,
		logger:        logger,
		tasks:         &TaskStore{client: client, logger: logger},
		users:         &UserStore{client: client, logger: logger},
		notifications: &NotificationStore{client: client, logger: logger},
	}
}

// Tasks implements store.Store.
func (s *Store) Tasks() store.TaskStore { return s.tasks }

// Users implements store.Store.
func (s *Store) Users() store.UserStore { return s.users }

// Notifications implements store.Store.
func (s *Store) Notifications() store.NotificationStore { return s.notifications }

// InTx runs fn with the store itself; operations are not atomic.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, s)
}

// Ping runs a one-document query against the tasks collection.
func (s *Store) Ping(ctx context.Context) error {
	iter := s.client.Collection(tasksCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.client.Close()
}

// MapError maps gRPC status codes onto the store sentinels.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	return err
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
