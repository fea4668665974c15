package mocks

import (
	"context"

	"github.com/phrazzld/taskboard-api/internal/store"
)

// MockStore bundles entity store mocks into a store.Store.
//
// InTx calls fn with the MockStore itself, so calls made inside a unit of
// work land on the same entity mocks. Set InTxErr to make InTx fail without
// calling fn, and PingErr to make Ping fail.
type MockStore struct {
	TaskStore         *MockTaskStore
	UserStore         *MockUserStore
	NotificationStore *MockNotificationStore

	InTxErr error
	PingErr error

	// InTxCalls counts InTx invocations.
	InTxCalls int
	Closed    bool
}

var _ store.Store = (*MockStore)(nil)

// NewMockStore creates a MockStore over the given entity mocks.
// Nil arguments are replaced with fresh mocks.
func NewMockStore(tasks *MockTaskStore, users *MockUserStore, notifications *MockNotificationStore) *MockStore {
	if tasks == nil {
		tasks = new(MockTaskStore)
	}
	if users == nil {
		users = new(MockUserStore)
	}
	if notifications == nil {
		notifications = new(MockNotificationStore)
	}
	return &MockStore{
		TaskStore:         tasks,
		UserStore:         users,
		NotificationStore: notifications,
	}
}

// Tasks implements store.Store.
func (m *MockStore) Tasks() store.TaskStore { return m.TaskStore }

// Users implements store.Store.
func (m *MockStore) Users() store.UserStore { return m.UserStore }

// Notifications implements store.Store.
func (m *MockStore) Notifications() store.NotificationStore { return m.NotificationStore }

// InTx implements store.Store.
func (m *MockStore) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	m.InTxCalls++
	if m.InTxErr != nil {
		return m.InTxErr
	}
	return fn(ctx, m)
}

// Ping implements store.Store.
func (m *MockStore) Ping(ctx context.Context) error { return m.PingErr }

// Close implements store.Store.
func (m *MockStore) Close() error {
	m.Closed = true
	return nil
}
