// Package storetest holds the behavioural contract every store.Store
// backend must satisfy. Backend packages call Run from their own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Options describe backend capabilities that change expected behaviour.
type Options struct {
	// Transactional is true when InTx rolls back on error.
	Transactional bool
}

// Factory returns a ready store for one subtest. Backends sharing a
// database between subtests must not rely on empty collections.
type Factory func(t *testing.T) store.Store

// Run executes the contract against stores built by newStore.
func Run(t *testing.T, newStore Factory, opts Options) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("task round trip", func(t *testing.T) { testTaskRoundTrip(t, newStore(t)) })
	t.Run("task list order", func(t *testing.T) { testTaskListOrder(t, newStore(t)) })
	t.Run("task update", func(t *testing.T) { testTaskUpdate(t, newStore(t)) })
	t.Run("notified never resets", func(t *testing.T) { testNotifiedNeverResets(t, newStore(t)) })
	t.Run("task not found", func(t *testing.T) { testTaskNotFound(t, newStore(t)) })
	t.Run("task validation", func(t *testing.T) { testTaskValidation(t, newStore(t)) })
	t.Run("notifications", func(t *testing.T) { testNotifications(t, newStore(t)) })
	t.Run("delete cascade", func(t *testing.T) { testDeleteCascade(t, newStore(t)) })
	if opts.Transactional {
		t.Run("rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
	}
	t.Run("ping", func(t *testing.T) { require.NoError(t, newStore(t).Ping(context.Background())) })
}

// NewUser creates and persists a user with a unique email.
func NewUser(t *testing.T, s store.Store) *domain.User {
	t.Helper()
	user, err := domain.NewUser(uuid.NewString()+"@example.com", "Test User")
	require.NoError(t, err)
	require.NoError(t, s.Users().Create(context.Background(), user))
	return user
}

// NewTask creates and persists a task owned by createdBy.
func NewTask(t *testing.T, s store.Store, createdBy uuid.UUID, fields domain.TaskFields) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(createdBy, fields)
	require.NoError(t, err)
	require.NoError(t, s.Tasks().Create(context.Background(), task))
	return task
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	chatID := int64(424242)
	user, err := domain.NewUser(uuid.NewString()+"@example.com", "Ada")
	require.NoError(t, err)
	user.TelegramChatID = &chatID
	require.NoError(t, s.Users().Create(ctx, user))

	got, err := s.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, "Ada", got.Name)
	require.NotNil(t, got.TelegramChatID)
	assert.Equal(t, chatID, *got.TelegramChatID)

	_, err = s.Users().GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	dup, err := domain.NewUser(user.Email, "Other")
	require.NoError(t, err)
	assert.ErrorIs(t, s.Users().Create(ctx, dup), store.ErrEmailExists)

	other := NewUser(t, s)
	missing := uuid.New()
	users, err := s.Users().GetByIDs(ctx, []uuid.UUID{user.ID, other.ID, missing})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Contains(t, users, user.ID)
	assert.Contains(t, users, other.ID)
	assert.NotContains(t, users, missing)

	empty, err := s.Users().GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func testTaskRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	creator := uuid.New()
	assignee := uuid.New()
	due := time.Date(2030, 6, 1, 9, 30, 0, 0, time.UTC)

	task := NewTask(t, s, creator, domain.TaskFields{
		Title:       "Quarterly report",
		Description: "Collect numbers",
		Priority:    domain.PriorityHigh,
		Status:      domain.StatusPending,
		DueDate:     &due,
		AssignedTo:  &assignee,
	})

	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)
	assert.Equal(t, "Quarterly report", got.Title)
	assert.Equal(t, "Collect numbers", got.Description)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
	assert.Equal(t, domain.StatusPending, got.Status)
	require.NotNil(t, got.DueDate)
	assert.WithinDuration(t, due, *got.DueDate, time.Second)
	assert.Equal(t, creator, got.CreatedBy)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, assignee, *got.AssignedTo)
	assert.False(t, got.Notified)
	assert.WithinDuration(t, task.CreatedAt, got.CreatedAt, time.Second)

	bare := NewTask(t, s, creator, domain.TaskFields{Title: "Bare"})
	got, err = s.Tasks().GetByID(ctx, bare.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Priority)
	assert.Empty(t, got.Status)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.AssignedTo)
}

func testTaskListOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	creator := uuid.New()

	base := time.Now().UTC().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		task, err := domain.NewTask(creator, domain.TaskFields{Title: "ordered"})
		require.NoError(t, err)
		task.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		task.UpdatedAt = task.CreatedAt
		require.NoError(t, s.Tasks().Create(ctx, task))
		ids = append(ids, task.ID)
	}

	tasks, err := s.Tasks().List(ctx)
	require.NoError(t, err)

	position := make(map[uuid.UUID]int, len(tasks))
	for i, task := range tasks {
		position[task.ID] = i
	}
	for _, id := range ids {
		require.Contains(t, position, id)
	}
	assert.Less(t, position[ids[0]], position[ids[1]])
	assert.Less(t, position[ids[1]], position[ids[2]])
}

func testTaskUpdate(t *testing.T, s store.Store) {
	ctx := context.Background()
	creator := uuid.New()
	assignee := uuid.New()
	due := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)

	task := NewTask(t, s, creator, domain.TaskFields{
		Title:      "Draft",
		Priority:   domain.PriorityLow,
		DueDate:    &due,
		AssignedTo: &assignee,
	})

	require.NoError(t, task.ApplyCreatorUpdate(domain.TaskFields{
		Title:  "Final",
		Status: domain.StatusCompleted,
	}))
	// a rogue creator change must never reach storage
	task.CreatedBy = uuid.New()
	require.NoError(t, s.Tasks().Update(ctx, task))

	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
	assert.Empty(t, got.Description)
	assert.Empty(t, got.Priority)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, creator, got.CreatedBy)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, assignee, *got.AssignedTo)
}

func testNotifiedNeverResets(t *testing.T, s store.Store) {
	ctx := context.Background()
	assignee := uuid.New()
	task := NewTask(t, s, uuid.New(), domain.TaskFields{Title: "Notify", AssignedTo: &assignee})

	require.NoError(t, s.Tasks().MarkNotified(ctx, task.ID))

	// task still carries Notified=false from before MarkNotified
	task.Title = "Renamed"
	require.NoError(t, s.Tasks().Update(ctx, task))

	got, err := s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Notified)
	assert.Equal(t, "Renamed", got.Title)

	other := NewTask(t, s, uuid.New(), domain.TaskFields{Title: "Via update"})
	other.MarkNotified()
	require.NoError(t, s.Tasks().Update(ctx, other))
	got, err = s.Tasks().GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, got.Notified)
}

func testTaskNotFound(t *testing.T, s store.Store) {
	ctx := context.Background()
	missing := uuid.New()

	_, err := s.Tasks().GetByID(ctx, missing)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
	assert.True(t, store.IsNotFoundError(err))

	ghost, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "ghost"})
	require.NoError(t, err)
	assert.ErrorIs(t, s.Tasks().Update(ctx, ghost), store.ErrTaskNotFound)
	assert.ErrorIs(t, s.Tasks().MarkNotified(ctx, missing), store.ErrTaskNotFound)
	assert.ErrorIs(t, s.Tasks().Delete(ctx, missing), store.ErrTaskNotFound)

	task := NewTask(t, s, uuid.New(), domain.TaskFields{Title: "once"})
	require.NoError(t, s.Tasks().Delete(ctx, task.ID))
	assert.ErrorIs(t, s.Tasks().Delete(ctx, task.ID), store.ErrTaskNotFound)
}

func testTaskValidation(t *testing.T, s store.Store) {
	ctx := context.Background()

	task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "invalid"})
	require.NoError(t, err)
	task.Priority = "urgent"

	err = s.Tasks().Create(ctx, task)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.Tasks().GetByID(ctx, task.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)
}

func testNotifications(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := NewUser(t, s)
	task := NewTask(t, s, uuid.New(), domain.TaskFields{Title: "Inbox", AssignedTo: &user.ID})

	older := domain.NewAssignmentNotification(user.ID, task)
	older.CreatedAt = time.Now().UTC().Add(-time.Minute)
	newer := domain.NewAssignmentNotification(user.ID, task)
	require.NoError(t, s.Notifications().Create(ctx, older))
	require.NoError(t, s.Notifications().Create(ctx, newer))

	list, err := s.Notifications().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	assert.Equal(t, "You have been assigned a new task: Inbox", list[0].Message)
	assert.Equal(t, task.ID, list[0].TaskID)
	assert.False(t, list[0].Read)

	none, err := s.Notifications().ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testDeleteCascade(t *testing.T, s store.Store) {
	ctx := context.Background()
	alice := NewUser(t, s)
	bob := NewUser(t, s)

	doomed := NewTask(t, s, alice.ID, domain.TaskFields{Title: "Doomed", AssignedTo: &bob.ID})
	kept := NewTask(t, s, alice.ID, domain.TaskFields{Title: "Kept", AssignedTo: &bob.ID})

	for _, n := range []*domain.Notification{
		domain.NewAssignmentNotification(alice.ID, doomed),
		domain.NewAssignmentNotification(bob.ID, doomed),
		domain.NewAssignmentNotification(bob.ID, kept),
	} {
		require.NoError(t, s.Notifications().Create(ctx, n))
	}

	var purged int64
	err := s.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Tasks().Delete(ctx, doomed.ID); err != nil {
			return err
		}
		var err error
		purged, err = tx.Notifications().DeleteByTask(ctx, doomed.ID)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	_, err = s.Tasks().GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, store.ErrTaskNotFound)

	aliceInbox, err := s.Notifications().ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, aliceInbox)

	bobInbox, err := s.Notifications().ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, bobInbox, 1)
	assert.Equal(t, kept.ID, bobInbox[0].TaskID)
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	user := NewUser(t, s)
	task := NewTask(t, s, user.ID, domain.TaskFields{Title: "Survivor"})
	require.NoError(t, s.Notifications().Create(ctx, domain.NewAssignmentNotification(user.ID, task)))

	abort := errors.New("abort")
	err := s.InTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.Tasks().Delete(ctx, task.ID); err != nil {
			return err
		}
		if _, err := tx.Notifications().DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		return abort
	})
	assert.ErrorIs(t, err, abort)

	_, err = s.Tasks().GetByID(ctx, task.ID)
	require.NoError(t, err)

	inbox, err := s.Notifications().ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}
