package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockTaskService struct {
	mock.Mock
}

func (m *mockTaskService) List(ctx context.Context) ([]*domain.TaskDetails, error) {
	args := m.Called(ctx)
	details, _ := args.Get(0).([]*domain.TaskDetails)
	return details, args.Error(1)
}

func (m *mockTaskService) Get(ctx context.Context, taskID, callerID uuid.UUID) (*domain.TaskAccess, error) {
	args := m.Called(ctx, taskID, callerID)
	access, _ := args.Get(0).(*domain.TaskAccess)
	return access, args.Error(1)
}

func (m *mockTaskService) Create(ctx context.Context, fields domain.TaskFields, callerID uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, fields, callerID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) Update(
	ctx context.Context,
	taskID uuid.UUID,
	fields domain.TaskFields,
	callerID uuid.UUID,
) (*domain.Task, error) {
	args := m.Called(ctx, taskID, fields, callerID)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *mockTaskService) Delete(ctx context.Context, taskID, callerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, taskID, callerID)
	return args.Get(0).(int64), args.Error(1)
}

type mockNotificationService struct {
	mock.Mock
}

func (m *mockNotificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID)
	notifications, _ := args.Get(0).([]*domain.Notification)
	return notifications, args.Error(1)
}
