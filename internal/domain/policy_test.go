package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	creator := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()

	assigned := &Task{ID: uuid.New(), CreatedBy: creator, AssignedTo: &assignee}
	unassigned := &Task{ID: uuid.New(), CreatedBy: creator}

	tests := []struct {
		name   string
		task   *Task
		caller uuid.UUID
		action Action
		want   bool
	}{
		{"creator views", assigned, creator, ActionView, true},
		{"assignee views", assigned, assignee, ActionView, true},
		{"stranger views", assigned, stranger, ActionView, false},
		{"creator updates", assigned, creator, ActionUpdate, true},
		{"assignee cannot update all fields", assigned, assignee, ActionUpdate, false},
		{"assignee updates status", assigned, assignee, ActionUpdateStatus, true},
		{"stranger updates status", assigned, stranger, ActionUpdateStatus, false},
		{"creator deletes", assigned, creator, ActionDelete, true},
		{"assignee cannot delete", assigned, assignee, ActionDelete, false},
		{"unassigned task has no assignee", unassigned, stranger, ActionView, false},
		{"nil caller never matches unassigned task", unassigned, uuid.Nil, ActionView, false},
		{"nil task", nil, creator, ActionView, false},
		{"unknown action", assigned, creator, Action(42), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanAccess(tc.task, tc.caller, tc.action))
		})
	}
}

func TestTask_Relationships(t *testing.T) {
	creator := uuid.New()
	task := &Task{CreatedBy: creator}

	assert.True(t, task.IsCreator(creator))
	assert.False(t, task.IsAssignee(creator))

	task.AssignedTo = &creator
	assert.True(t, task.IsAssignee(creator))
}
