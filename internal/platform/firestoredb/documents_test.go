package firestoredb

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestTaskDocument_RoundTrip(t *testing.T) {
	assignee := uuid.New()
	due := time.Date(2031, 6, 1, 9, 0, 0, 0, time.FixedZone("PST", -8*3600))
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{
		Title:      "ship it",
		Priority:   domain.PriorityHigh,
		Status:     domain.StatusPending,
		DueDate:    &due,
		AssignedTo: &assignee,
	})
	require.NoError(t, err)
	task.MarkNotified()

	doc := toTaskDocument(task)
	require.NotNil(t, doc.DueDate)
	assert.Equal(t, time.UTC, doc.DueDate.Location())
	assert.True(t, doc.Notified)

	back, err := doc.toDomain(task.ID.String())
	require.NoError(t, err)
	assert.Equal(t, task.ID, back.ID)
	assert.Equal(t, task.CreatedBy, back.CreatedBy)
	assert.Equal(t, domain.PriorityHigh, back.Priority)
	assert.Equal(t, domain.StatusPending, back.Status)
	assert.True(t, due.Equal(*back.DueDate))
	require.NotNil(t, back.AssignedTo)
	assert.Equal(t, assignee, *back.AssignedTo)
	assert.True(t, back.Notified)
}

func TestTaskDocument_UnsetFieldsAreNull(t *testing.T) {
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "bare"})
	require.NoError(t, err)

	doc := toTaskDocument(task)
	assert.Nil(t, doc.Priority)
	assert.Nil(t, doc.Status)
	assert.Nil(t, doc.DueDate)
	assert.Nil(t, doc.AssignedTo)

	back, err := doc.toDomain(task.ID.String())
	require.NoError(t, err)
	assert.Empty(t, back.Priority)
	assert.Empty(t, back.Status)
	assert.Nil(t, back.DueDate)
	assert.Nil(t, back.AssignedTo)
}

func TestDocuments_CorruptIDs(t *testing.T) {
	_, err := taskDocument{CreatedBy: uuid.NewString()}.toDomain("not-a-uuid")
	assert.Error(t, err)

	_, err = taskDocument{CreatedBy: "bad"}.toDomain(uuid.NewString())
	assert.Error(t, err)

	_, err = userDocument{Email: "a@b.c"}.toDomain("bad")
	assert.Error(t, err)

	_, err = notificationDocument{UserID: uuid.NewString(), TaskID: "bad"}.toDomain(uuid.NewString())
	assert.Error(t, err)
}

func TestNotificationDocument_ToDomain(t *testing.T) {
	id, userID, taskID := uuid.New(), uuid.New(), uuid.New()
	created := time.Now().UTC()

	n, err := notificationDocument{
		UserID:    userID.String(),
		TaskID:    taskID.String(),
		Message:   "You have been assigned a new task: x",
		CreatedAt: created,
	}.toDomain(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, n.ID)
	assert.Equal(t, userID, n.UserID)
	assert.Equal(t, taskID, n.TaskID)
	assert.False(t, n.Read)
	assert.Equal(t, created, n.CreatedAt)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError(nil))
	assert.ErrorIs(t, MapError(status.Error(codes.NotFound, "no document")), store.ErrNotFound)
	assert.ErrorIs(t, MapError(status.Error(codes.AlreadyExists, "exists")), store.ErrDuplicate)
	assert.ErrorIs(t, MapError(status.Error(codes.InvalidArgument, "bad field")), store.ErrInvalidEntity)
	assert.ErrorIs(t, MapError(fmt.Errorf("get: %w", status.Error(codes.NotFound, "gone"))), store.ErrNotFound)

	other := errors.New("deadline exceeded")
	assert.Equal(t, other, MapError(other))
}
