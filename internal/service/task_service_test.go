package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store    *mocks.MockStore
	tasks    *mocks.MockTaskStore
	users    *mocks.MockUserStore
	inbox    *mocks.MockNotificationStore
	notifier *mocks.MockNotifier
	svc      TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		tasks:    new(mocks.MockTaskStore),
		users:    new(mocks.MockUserStore),
		inbox:    new(mocks.MockNotificationStore),
		notifier: new(mocks.MockNotifier),
	}
	f.store = mocks.NewMockStore(f.tasks, f.users, f.inbox)

	svc, err := NewTaskService(f.store, f.notifier, nil)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) assertExpectations(t *testing.T) {
	f.tasks.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.inbox.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

// existingTask returns a stored task created by creator and assigned to assignee.
func existingTask(t *testing.T, creator, assignee uuid.UUID) *domain.Task {
	t.Helper()
	due := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	fields := domain.TaskFields{
		Title:       "A",
		Description: "original",
		Priority:    domain.PriorityHigh,
		Status:      domain.StatusPending,
		DueDate:     &due,
	}
	if assignee != uuid.Nil {
		fields.AssignedTo = &assignee
	}
	task, err := domain.NewTask(creator, fields)
	require.NoError(t, err)
	return task
}

func TestNewTaskService_NilDependencies(t *testing.T) {
	_, err := NewTaskService(nil, new(mocks.MockNotifier), nil)
	var svcErr *TaskServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Message, "store")

	_, err = NewTaskService(mocks.NewMockStore(nil, nil, nil), nil, nil)
	require.ErrorAs(t, err, &svcErr)
	assert.Contains(t, svcErr.Message, "notifier")
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()

	t.Run("with assignee notifies and marks notified", func(t *testing.T) {
		f := newFixture(t)
		var saved *domain.Task
		f.tasks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.Task) }).
			Return(nil)
		f.notifier.On("Notify", mock.Anything, u2, mock.AnythingOfType("*domain.Task")).Return(nil)
		f.tasks.On("MarkNotified", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

		task, err := f.svc.Create(ctx, domain.TaskFields{Title: "A", AssignedTo: &u2}, u1)
		require.NoError(t, err)

		assert.Equal(t, "A", task.Title)
		assert.Equal(t, u1, task.CreatedBy)
		require.NotNil(t, task.AssignedTo)
		assert.Equal(t, u2, *task.AssignedTo)
		assert.True(t, task.Notified)
		require.NotNil(t, saved)
		assert.Equal(t, task.ID, saved.ID)
		f.tasks.AssertCalled(t, "MarkNotified", mock.Anything, task.ID)
		f.assertExpectations(t)
	})

	t.Run("without assignee never notifies", func(t *testing.T) {
		f := newFixture(t)
		f.tasks.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		task, err := f.svc.Create(ctx, domain.TaskFields{Title: "solo"}, u1)
		require.NoError(t, err)

		assert.False(t, task.Notified)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
		f.tasks.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything)
	})

	t.Run("caller is always the creator", func(t *testing.T) {
		f := newFixture(t)
		f.tasks.On("Create", mock.Anything, mock.MatchedBy(func(task *domain.Task) bool {
			return task.CreatedBy == u1 && !task.Notified && task.ID != uuid.Nil
		})).Return(nil)

		_, err := f.svc.Create(ctx, domain.TaskFields{Title: "mine"}, u1)
		require.NoError(t, err)
		f.assertExpectations(t)
	})

	t.Run("invalid fields are a validation error", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Create(ctx, domain.TaskFields{Title: "bad", Priority: "urgent"}, u1)
		assert.ErrorIs(t, err, domain.ErrValidation)
		f.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)
		storeErr := errors.New("disk full")
		f.tasks.On("Create", mock.Anything, mock.Anything).Return(storeErr)

		_, err := f.svc.Create(ctx, domain.TaskFields{Title: "A", AssignedTo: &u2}, u1)
		assert.ErrorIs(t, err, storeErr)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("notify failure after persisting", func(t *testing.T) {
		f := newFixture(t)
		notifyErr := errors.New("inbox unavailable")
		f.tasks.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		f.notifier.On("Notify", mock.Anything, u2, mock.Anything).Return(notifyErr)

		_, err := f.svc.Create(ctx, domain.TaskFields{Title: "A", AssignedTo: &u2}, u1)

		var svcErr *TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create", svcErr.Operation)
		assert.ErrorIs(t, err, notifyErr)
		f.tasks.AssertNumberOfCalls(t, "Create", 1)
		f.tasks.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything)
	})

	t.Run("deferred notifier leaves task unnotified", func(t *testing.T) {
		f := newFixture(t)
		f.notifier.Defer = true
		f.tasks.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.notifier.On("Notify", mock.Anything, u2, mock.Anything).Return(nil)

		task, err := f.svc.Create(ctx, domain.TaskFields{Title: "A", AssignedTo: &u2}, u1)
		require.NoError(t, err)
		assert.False(t, task.Notified)
		f.tasks.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything)
	})

	t.Run("mark notified failure", func(t *testing.T) {
		f := newFixture(t)
		markErr := errors.New("write conflict")
		f.tasks.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.notifier.On("Notify", mock.Anything, u2, mock.Anything).Return(nil)
		f.tasks.On("MarkNotified", mock.Anything, mock.Anything).Return(markErr)

		_, err := f.svc.Create(ctx, domain.TaskFields{Title: "A", AssignedTo: &u2}, u1)
		assert.ErrorIs(t, err, markErr)
	})
}

func TestTaskService_Get(t *testing.T) {
	ctx := context.Background()
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name       string
		assignee   uuid.UUID
		caller     uuid.UUID
		wantErr    error
		isCreator  bool
		isAssignee bool
	}{
		{name: "creator", assignee: u2, caller: u1, isCreator: true},
		{name: "assignee", assignee: u2, caller: u2, isAssignee: true},
		{name: "stranger", assignee: u2, caller: u3, wantErr: ErrForbidden},
		{name: "creator of unassigned task", assignee: uuid.Nil, caller: u1, isCreator: true},
		{name: "stranger on unassigned task", assignee: uuid.Nil, caller: u3, wantErr: ErrForbidden},
		{name: "creator assigned to own task", assignee: u1, caller: u1, isCreator: true, isAssignee: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			task := existingTask(t, u1, tc.assignee)
			f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

			access, err := f.svc.Get(ctx, task.ID, tc.caller)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, access)
				return
			}
			require.NoError(t, err)
			assert.Same(t, task, access.Task)
			assert.Equal(t, tc.isCreator, access.IsCreator)
			assert.Equal(t, tc.isAssignee, access.IsAssignee)
		})
	}

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		f.tasks.On("GetByID", mock.Anything, id).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.Get(ctx, id, u1)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		f.tasks.On("GetByID", mock.Anything, id).Return(nil, errors.New("timeout"))

		_, err := f.svc.Get(ctx, id, u1)
		var svcErr *TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "get", svcErr.Operation)
	})
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()
	u1, u2, u3 := uuid.New(), uuid.New(), uuid.New()

	t.Run("creator overwrites every editable field", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		task.Notified = true
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.tasks.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		updated, err := f.svc.Update(ctx, task.ID, domain.TaskFields{Title: "B", Status: domain.StatusCompleted}, u1)
		require.NoError(t, err)

		assert.Equal(t, "B", updated.Title)
		assert.Empty(t, updated.Description)
		assert.Empty(t, updated.Priority)
		assert.Equal(t, domain.StatusCompleted, updated.Status)
		assert.Nil(t, updated.DueDate)
		assert.Equal(t, u1, updated.CreatedBy)
		require.NotNil(t, updated.AssignedTo)
		assert.Equal(t, u2, *updated.AssignedTo)
		assert.True(t, updated.Notified)
		f.assertExpectations(t)
	})

	t.Run("assignee changes status only", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.tasks.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		updated, err := f.svc.Update(ctx, task.ID, domain.TaskFields{
			Title:    "hijacked",
			Priority: domain.PriorityLow,
			Status:   domain.StatusInProgress,
		}, u2)
		require.NoError(t, err)

		assert.Equal(t, "A", updated.Title)
		assert.Equal(t, "original", updated.Description)
		assert.Equal(t, domain.PriorityHigh, updated.Priority)
		assert.Equal(t, domain.StatusInProgress, updated.Status)
		require.NotNil(t, updated.DueDate)
		assert.Equal(t, u1, updated.CreatedBy)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Update(ctx, task.ID, domain.TaskFields{Title: "x"}, u3)
		assert.ErrorIs(t, err, ErrForbidden)
		f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Update(ctx, task.ID, domain.TaskFields{Status: "archived"}, u2)
		assert.ErrorIs(t, err, domain.ErrValidation)
		f.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		f.tasks.On("GetByID", mock.Anything, id).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.Update(ctx, id, domain.TaskFields{}, u1)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("store failure on save", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		saveErr := errors.New("connection lost")
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.tasks.On("Update", mock.Anything, mock.Anything).Return(saveErr)

		_, err := f.svc.Update(ctx, task.ID, domain.TaskFields{Title: "B"}, u1)
		assert.ErrorIs(t, err, saveErr)
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	u1, u2 := uuid.New(), uuid.New()

	t.Run("creator deletes task and notifications in one unit of work", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.tasks.On("Delete", mock.Anything, task.ID).Return(nil)
		f.inbox.On("DeleteByTask", mock.Anything, task.ID).Return(int64(3), nil)

		purged, err := f.svc.Delete(ctx, task.ID, u1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), purged)
		assert.Equal(t, 1, f.store.InTxCalls)
		f.assertExpectations(t)
	})

	t.Run("assignee may not delete", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Delete(ctx, task.ID, u2)
		assert.ErrorIs(t, err, ErrNotCreator)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Zero(t, f.store.InTxCalls)
		f.tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		id := uuid.New()
		f.tasks.On("GetByID", mock.Anything, id).Return(nil, store.ErrTaskNotFound)

		_, err := f.svc.Delete(ctx, id, u1)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("purge failure", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		purgeErr := errors.New("lock timeout")
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)
		f.tasks.On("Delete", mock.Anything, task.ID).Return(nil)
		f.inbox.On("DeleteByTask", mock.Anything, task.ID).Return(0, purgeErr)

		_, err := f.svc.Delete(ctx, task.ID, u1)
		var svcErr *TaskServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "delete", svcErr.Operation)
		assert.ErrorIs(t, err, purgeErr)
	})

	t.Run("transaction failure", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		f.store.InTxErr = store.ErrTransactionFailed
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil)

		_, err := f.svc.Delete(ctx, task.ID, u1)
		assert.ErrorIs(t, err, store.ErrTransactionFailed)
		f.tasks.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("second delete is not found", func(t *testing.T) {
		f := newFixture(t)
		task := existingTask(t, u1, u2)
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(task, nil).Once()
		f.tasks.On("Delete", mock.Anything, task.ID).Return(nil).Once()
		f.inbox.On("DeleteByTask", mock.Anything, task.ID).Return(int64(1), nil).Once()
		f.tasks.On("GetByID", mock.Anything, task.ID).Return(nil, store.ErrTaskNotFound).Once()

		_, err := f.svc.Delete(ctx, task.ID, u1)
		require.NoError(t, err)
		_, err = f.svc.Delete(ctx, task.ID, u1)
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})
}

func TestTaskService_List(t *testing.T) {
	ctx := context.Background()
	u1, u2, ghost := uuid.New(), uuid.New(), uuid.New()
	creator := &domain.User{ID: u1, Email: "u1@example.com", Name: "Ada"}
	assignee := &domain.User{ID: u2, Email: "u2@example.com", Name: "Grace"}

	t.Run("resolves users and leaves dangling references nil", func(t *testing.T) {
		f := newFixture(t)
		assigned := existingTask(t, u1, u2)
		dangling := existingTask(t, u1, ghost)
		solo := existingTask(t, u2, uuid.Nil)
		f.tasks.On("List", mock.Anything).Return([]*domain.Task{assigned, dangling, solo}, nil)
		f.users.On("GetByIDs", mock.Anything, mock.MatchedBy(func(ids []uuid.UUID) bool {
			return assert.ElementsMatch(t, []uuid.UUID{u1, u2, ghost}, ids)
		})).Return(map[uuid.UUID]*domain.User{u1: creator, u2: assignee}, nil)

		details, err := f.svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, details, 3)

		assert.Same(t, assigned, details[0].Task)
		assert.Same(t, creator, details[0].Creator)
		assert.Same(t, assignee, details[0].Assignee)

		assert.Same(t, creator, details[1].Creator)
		assert.Nil(t, details[1].Assignee)

		assert.Same(t, assignee, details[2].Creator)
		assert.Nil(t, details[2].Assignee)
	})

	t.Run("empty", func(t *testing.T) {
		f := newFixture(t)
		f.tasks.On("List", mock.Anything).Return([]*domain.Task{}, nil)
		f.users.On("GetByIDs", mock.Anything, mock.Anything).Return(map[uuid.UUID]*domain.User{}, nil)

		details, err := f.svc.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, details)
		assert.NotNil(t, details)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture(t)
		f.tasks.On("List", mock.Anything).Return(nil, errors.New("boom"))

		_, err := f.svc.List(ctx)
		var svcErr *TaskServiceError
		assert.ErrorAs(t, err, &svcErr)
	})

	t.Run("user lookup failure", func(t *testing.T) {
		f := newFixture(t)
		f.tasks.On("List", mock.Anything).Return([]*domain.Task{existingTask(t, u1, u2)}, nil)
		f.users.On("GetByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		_, err := f.svc.List(ctx)
		assert.Error(t, err)
	})
}
