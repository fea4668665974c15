// Package mocks provides centralized mock implementations for testing.
//
// Store and notifier mocks are built on testify/mock so tests can assert the
// exact calls made against them. MockJWTService uses function fields instead,
// which keeps middleware tests free of expectation bookkeeping.
//
// Usage:
//
//	tasks := new(mocks.MockTaskStore)
//	tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
//
//	st := mocks.NewMockStore(tasks, users, notifications)
//	svc := service.NewTaskService(st, notifier, logger)
package mocks
