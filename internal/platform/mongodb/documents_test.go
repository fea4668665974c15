package mongodb

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
	"go.mongodb.org/mongo-driver/mongo"
)

func TestTaskDocument_NullsForUnsetFields(t *testing.T) {
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "plain"})
	require.NoError(t, err)

	doc := toTaskDocument(task)
	assert.Nil(t, doc.Priority)
	assert.Nil(t, doc.Status)
	assert.Nil(t, doc.DueDate)
	assert.Nil(t, doc.AssignedTo)
	assert.Equal(t, task.CreatedBy.String(), doc.CreatedBy)

	back, err := doc.toDomain()
	require.NoError(t, err)
	assert.Empty(t, back.Priority)
	assert.Empty(t, back.Status)
	assert.Nil(t, back.AssignedTo)
}

func TestTaskDocument_SetFields(t *testing.T) {
	assignee := uuid.New()
	due := time.Date(2030, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{
		Title:      "full",
		Priority:   domain.PriorityMedium,
		Status:     domain.StatusInProgress,
		DueDate:    &due,
		AssignedTo: &assignee,
	})
	require.NoError(t, err)

	doc := toTaskDocument(task)
	require.NotNil(t, doc.DueDate)
	assert.Equal(t, time.UTC, doc.DueDate.Location())

	back, err := doc.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, back.Priority)
	assert.Equal(t, domain.StatusInProgress, back.Status)
	assert.True(t, due.Equal(*back.DueDate))
	require.NotNil(t, back.AssignedTo)
	assert.Equal(t, assignee, *back.AssignedTo)
}

func TestTaskDocument_CorruptIDs(t *testing.T) {
	_, err := taskDocument{ID: "nope"}.toDomain()
	assert.Error(t, err)

	bad := "nope"
	_, err = taskDocument{ID: uuid.NewString(), CreatedBy: uuid.NewString(), AssignedTo: &bad}.toDomain()
	assert.Error(t, err)
}

func TestNotificationDocument(t *testing.T) {
	userID := uuid.New()
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "inbox"})
	require.NoError(t, err)
	n := domain.NewAssignmentNotification(userID, task)

	back, err := toNotificationDocument(n).toDomain(userID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, back.ID)
	assert.Equal(t, userID, back.UserID)
	assert.Equal(t, task.ID, back.TaskID)
	assert.Equal(t, n.Message, back.Message)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError(nil))
	assert.ErrorIs(t, MapError(mongo.ErrNoDocuments), store.ErrNotFound)
	assert.ErrorIs(t, MapError(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), store.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, MapError(dup), store.ErrDuplicate)

	other := errors.New("server selection timeout")
	assert.Equal(t, other, MapError(other))
}
