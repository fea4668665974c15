package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTaskServiceError(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		assert.Nil(t, NewTaskServiceError("get", "lookup failed", nil))
	})

	t.Run("store not found becomes service sentinel", func(t *testing.T) {
		err := NewTaskServiceError("get", "lookup failed", fmt.Errorf("get: %w", store.ErrTaskNotFound))
		assert.Same(t, ErrTaskNotFound, err)
	})

	t.Run("forbidden passes through", func(t *testing.T) {
		assert.Same(t, ErrNotCreator, NewTaskServiceError("delete", "denied", ErrNotCreator))
		assert.Same(t, ErrForbidden, NewTaskServiceError("get", "denied", ErrForbidden))
	})

	t.Run("other errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewTaskServiceError("list", "failed to list tasks", cause)

		var svcErr *TaskServiceError
		require.True(t, errors.As(err, &svcErr))
		assert.Equal(t, "list", svcErr.Operation)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "task service list failed: failed to list tasks: connection reset", err.Error())
	})

	t.Run("validation errors stay matchable", func(t *testing.T) {
		cause := domain.NewValidationError("priority", "must be one of low, medium, high", domain.ErrInvalidPriority)
		err := NewTaskServiceError("create", "invalid task", cause)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)
	})
}

func TestTaskServiceError_NoCause(t *testing.T) {
	err := &TaskServiceError{Operation: "create_service", Message: "store cannot be nil"}
	assert.Equal(t, "task service create_service failed: store cannot be nil", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestErrNotCreatorIsForbidden(t *testing.T) {
	assert.ErrorIs(t, ErrNotCreator, ErrForbidden)
	assert.NotErrorIs(t, ErrForbidden, ErrNotCreator)
}
