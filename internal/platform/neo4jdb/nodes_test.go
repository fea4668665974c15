package neo4jdb

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stored mimics what the driver hands back: null properties are absent.
func stored(in map[string]any) props {
	out := props{}
	for k, v := range in {
		if v != nil {
			out[k] = v
		}
	}
	return out
}

func TestTaskProps_RoundTrip(t *testing.T) {
	assignee := uuid.New()
	due := time.Date(2032, 3, 4, 5, 6, 7, 0, time.UTC)
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{
		Title:       "graph it",
		Description: "nodes all the way down",
		Priority:    domain.PriorityLow,
		Status:      domain.StatusCompleted,
		DueDate:     &due,
		AssignedTo:  &assignee,
	})
	require.NoError(t, err)

	back, err := taskFromProps(stored(taskProps(task)))
	require.NoError(t, err)
	assert.Equal(t, task.ID, back.ID)
	assert.Equal(t, task.Title, back.Title)
	assert.Equal(t, task.Description, back.Description)
	assert.Equal(t, domain.PriorityLow, back.Priority)
	assert.Equal(t, domain.StatusCompleted, back.Status)
	require.NotNil(t, back.DueDate)
	assert.True(t, due.Equal(*back.DueDate))
	assert.Equal(t, task.CreatedBy, back.CreatedBy)
	require.NotNil(t, back.AssignedTo)
	assert.Equal(t, assignee, *back.AssignedTo)
	assert.False(t, back.Notified)
}

func TestTaskProps_NullFields(t *testing.T) {
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "sparse"})
	require.NoError(t, err)

	p := taskProps(task)
	assert.Nil(t, p["priority"])
	assert.Nil(t, p["status"])
	assert.Nil(t, p["due_date"])
	assert.Nil(t, p["assigned_to"])

	back, err := taskFromProps(stored(p))
	require.NoError(t, err)
	assert.Empty(t, back.Priority)
	assert.Empty(t, back.Status)
	assert.Nil(t, back.DueDate)
	assert.Nil(t, back.AssignedTo)
}

func TestTaskFromProps_Invalid(t *testing.T) {
	valid := stored(taskProps(&domain.Task{
		ID:        uuid.New(),
		CreatedBy: uuid.New(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}))

	tests := []struct {
		name   string
		mutate func(p props)
	}{
		{"missing id", func(p props) { delete(p, "id") }},
		{"bad created_by", func(p props) { p["created_by"] = "nope" }},
		{"wrong title type", func(p props) { p["title"] = int64(7) }},
		{"missing created_at", func(p props) { delete(p, "created_at") }},
		{"wrong notified type", func(p props) { p["notified"] = "yes" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := props{}
			for k, v := range valid {
				p[k] = v
			}
			tc.mutate(p)
			_, err := taskFromProps(p)
			assert.Error(t, err)
		})
	}
}

func TestUserProps_RoundTrip(t *testing.T) {
	user, err := domain.NewUser("grace@example.com", "Grace")
	require.NoError(t, err)
	chat := int64(4242)
	user.TelegramChatID = &chat

	back, err := userFromProps(stored(userProps(user)))
	require.NoError(t, err)
	assert.Equal(t, user.ID, back.ID)
	assert.Equal(t, user.Email, back.Email)
	require.NotNil(t, back.TelegramChatID)
	assert.Equal(t, chat, *back.TelegramChatID)

	user.TelegramChatID = nil
	back, err = userFromProps(stored(userProps(user)))
	require.NoError(t, err)
	assert.Nil(t, back.TelegramChatID)
}

func TestNotificationProps_RoundTrip(t *testing.T) {
	task, err := domain.NewTask(uuid.New(), domain.TaskFields{Title: "ping"})
	require.NoError(t, err)
	n := domain.NewAssignmentNotification(uuid.New(), task)

	back, err := notificationFromProps(stored(notificationProps(n)))
	require.NoError(t, err)
	assert.Equal(t, n.ID, back.ID)
	assert.Equal(t, n.UserID, back.UserID)
	assert.Equal(t, task.ID, back.TaskID)
	assert.Equal(t, n.Message, back.Message)
	assert.False(t, back.Read)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, MapError(nil))

	dup := &neo4j.Neo4jError{Code: "Neo.ClientError.Schema.ConstraintValidationFailed", Msg: "already exists"}
	assert.ErrorIs(t, MapError(dup), store.ErrDuplicate)
	assert.ErrorIs(t, MapError(fmt.Errorf("create: %w", dup)), store.ErrDuplicate)
	assert.True(t, isConstraintViolation(dup))

	typeErr := &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.TypeError", Msg: "bad type"}
	assert.ErrorIs(t, MapError(typeErr), store.ErrInvalidEntity)

	syntax := &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "oops"}
	assert.Equal(t, error(syntax), MapError(syntax))

	other := errors.New("connection refused")
	assert.Equal(t, other, MapError(other))
	assert.False(t, isConstraintViolation(other))
}
