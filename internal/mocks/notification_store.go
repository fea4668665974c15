package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockNotificationStore is a mock of store.NotificationStore for use with testify/mock
type MockNotificationStore struct {
	mock.Mock
}

var _ store.NotificationStore = (*MockNotificationStore)(nil)

// Create is a mock implementation of store.NotificationStore.Create
func (m *MockNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

// ListByUser is a mock implementation of store.NotificationStore.ListByUser
func (m *MockNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID)
	if notifications, ok := args.Get(0).([]*domain.Notification); ok {
		return notifications, args.Error(1)
	}
	return nil, args.Error(1)
}

// DeleteByTask is a mock implementation of store.NotificationStore.DeleteByTask
func (m *MockNotificationStore) DeleteByTask(ctx context.Context, taskID uuid.UUID) (int64, error) {
	args := m.Called(ctx, taskID)
	var n int64
	if v, ok := args.Get(0).(int64); ok {
		n = v
	} else if v, ok := args.Get(0).(int); ok {
		n = int64(v)
	}
	return n, args.Error(1)
}
