package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/events"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAssignedTask(t *testing.T) (*domain.Task, uuid.UUID) {
	t.Helper()
	assignee := uuid.New()
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "Write report", AssignedTo: &assignee})
	require.NoError(t, err)
	return task, assignee
}

func TestInboxNotifier_Notify(t *testing.T) {
	ctx := context.Background()
	task, assignee := newAssignedTask(t)

	notifications := new(mocks.MockNotificationStore)
	notifications.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == assignee &&
			n.TaskID == task.ID &&
			n.Message == "You have been assigned a new task: Write report" &&
			!n.Read
	})).Return(nil).Once()

	err := NewInboxNotifier(notifications, nil).Notify(ctx, assignee, task)
	require.NoError(t, err)
	notifications.AssertExpectations(t)
}

func TestInboxNotifier_StoreFailure(t *testing.T) {
	ctx := context.Background()
	task, assignee := newAssignedTask(t)
	storeErr := errors.New("connection reset")

	notifications := new(mocks.MockNotificationStore)
	notifications.On("Create", ctx, mock.Anything).Return(storeErr)

	err := NewInboxNotifier(notifications, nil).Notify(ctx, assignee, task)
	assert.ErrorIs(t, err, storeErr)
}

func TestInboxNotifier_UnknownAssignee(t *testing.T) {
	ctx := context.Background()
	task, assignee := newAssignedTask(t)

	notifications := new(mocks.MockNotificationStore)
	notifications.On("Create", ctx, mock.Anything).
		Return(store.NewStoreError("notification", "create", "no inbox", store.ErrUserNotFound))

	err := NewInboxNotifier(notifications, nil).Notify(ctx, assignee, task)
	require.NoError(t, err)
	notifications.AssertExpectations(t)
}

func TestMultiNotifier(t *testing.T) {
	ctx := context.Background()
	task, assignee := newAssignedTask(t)

	t.Run("calls every notifier in order", func(t *testing.T) {
		var calls []string
		multi := MultiNotifier{
			NotifierFunc(func(context.Context, uuid.UUID, *domain.Task) error {
				calls = append(calls, "first")
				return nil
			}),
			NotifierFunc(func(context.Context, uuid.UUID, *domain.Task) error {
				calls = append(calls, "second")
				return nil
			}),
		}

		require.NoError(t, multi.Notify(ctx, assignee, task))
		assert.Equal(t, []string{"first", "second"}, calls)
	})

	t.Run("stops at first error", func(t *testing.T) {
		failure := errors.New("telegram unavailable")
		second := new(mocks.MockNotifier)

		multi := MultiNotifier{
			NotifierFunc(func(context.Context, uuid.UUID, *domain.Task) error { return failure }),
			second,
		}

		err := multi.Notify(ctx, assignee, task)
		require.Error(t, err)
		assert.ErrorIs(t, err, failure)
		assert.Contains(t, err.Error(), "notifier 1 of 2 failed")
		second.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty", func(t *testing.T) {
		assert.NoError(t, MultiNotifier{}.Notify(ctx, assignee, task))
	})
}

func TestAsyncDispatcher(t *testing.T) {
	ctx := context.Background()
	task, assignee := newAssignedTask(t)

	emitter := new(mocks.MockEventEmitter)
	emitter.On("EmitEvent", ctx, mock.MatchedBy(func(e *events.Event) bool {
		if e.Type != events.TypeTaskAssigned {
			return false
		}
		var payload events.TaskAssigned
		if err := e.UnmarshalPayload(&payload); err != nil {
			return false
		}
		return payload.TaskID == task.ID && payload.UserID == assignee
	})).Return(nil).Once()

	dispatcher := NewAsyncDispatcher(emitter, nil)
	require.NoError(t, dispatcher.Notify(ctx, assignee, task))
	emitter.AssertExpectations(t)

	assert.True(t, IsDeferred(dispatcher))
}

func TestAsyncDispatcher_EmitFailure(t *testing.T) {
	ctx := context.Background()
	task, assignee := newAssignedTask(t)
	emitErr := errors.New("handler failed")

	emitter := new(mocks.MockEventEmitter)
	emitter.On("EmitEvent", ctx, mock.Anything).Return(emitErr)

	err := NewAsyncDispatcher(emitter, nil).Notify(ctx, assignee, task)
	assert.ErrorIs(t, err, emitErr)
}

func TestIsDeferred(t *testing.T) {
	assert.False(t, IsDeferred(MultiNotifier{}))
	assert.False(t, IsDeferred(&mocks.MockNotifier{}))
	assert.True(t, IsDeferred(&mocks.MockNotifier{Defer: true}))
	assert.False(t, IsDeferred(NewInboxNotifier(nil, nil)))
}
