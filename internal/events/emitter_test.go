package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []*Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func TestNewTaskAssignedEvent(t *testing.T) {
	taskID, userID := uuid.New(), uuid.New()

	event, err := NewTaskAssignedEvent(taskID, userID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeTaskAssigned, event.Type)
	assert.False(t, event.CreatedAt.IsZero())

	var payload TaskAssigned
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, taskID, payload.TaskID)
	assert.Equal(t, userID, payload.UserID)
	assert.JSONEq(t, `{"task_id":"`+taskID.String()+`","user_id":"`+userID.String()+`"}`, string(event.Payload))
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent("broken", make(chan int))
	assert.Error(t, err)
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	event, err := NewTaskAssignedEvent(uuid.New(), uuid.New())
	require.NoError(t, err)

	t.Run("no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), event))
	})

	t.Run("all handlers receive the event", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, []*Event{event}, h1.events)
		assert.Equal(t, []*Event{event}, h2.events)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failing := &recordingHandler{err: errors.New("handler error")}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(ok)

		err := emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler 0: handler error")
		assert.ErrorIs(t, err, failing.err)
		assert.Len(t, ok.events, 1)
	})

	t.Run("subscribers only see their event type", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assigned, other, every := &recordingHandler{}, &recordingHandler{}, &recordingHandler{}
		emitter.Subscribe(TypeTaskAssigned, assigned)
		emitter.Subscribe("task.deleted", other)
		emitter.RegisterHandler(every)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Len(t, assigned.events, 1)
		assert.Empty(t, other.events)
		assert.Len(t, every.events, 1)
	})

	t.Run("errors from several handlers are joined", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		first := &recordingHandler{err: errors.New("first")}
		second := &recordingHandler{err: errors.New("second")}
		emitter.Subscribe(TypeTaskAssigned, first)
		emitter.RegisterHandler(second)

		err := emitter.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, first.err)
		assert.ErrorIs(t, err, second.err)
	})
}
