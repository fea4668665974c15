// Package notify delivers "you have been assigned a task" notifications.
//
// Every delivery channel implements Notifier. The service calls exactly one
// Notifier, which in a configured deployment is a MultiNotifier over the
// inbox and any enabled push channels, or an AsyncDispatcher that defers
// delivery to the job runner.
package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Notifier tells userID about task.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, task *domain.Task) error
}

// Deferred is implemented by notifiers that only schedule delivery.
// When Deferred reports true, a nil error from Notify does not mean the user
// has been notified yet, so the caller must not mark the task notified.
type Deferred interface {
	Deferred() bool
}

// IsDeferred reports whether n schedules delivery instead of performing it.
func IsDeferred(n Notifier) bool {
	d, ok := n.(Deferred)
	return ok && d.Deferred()
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, userID uuid.UUID, task *domain.Task) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, userID uuid.UUID, task *domain.Task) error {
	return f(ctx, userID, task)
}
