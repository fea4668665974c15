package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock of notify.Notifier for use with testify/mock
type MockNotifier struct {
	mock.Mock

	// Defer makes the mock report itself as a deferred notifier.
	Defer bool
}

// Notify is a mock implementation of notify.Notifier.Notify
func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, task *domain.Task) error {
	args := m.Called(ctx, userID, task)
	return args.Error(0)
}

// Deferred implements notify.Deferred.
func (m *MockNotifier) Deferred() bool {
	return m.Defer
}

// MockEventEmitter is a mock of events.EventEmitter for use with testify/mock
type MockEventEmitter struct {
	mock.Mock
}

// EmitEvent is a mock implementation of events.EventEmitter.EmitEvent
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
