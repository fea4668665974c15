package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// MultiNotifier calls each notifier in order and stops at the first error.
type MultiNotifier []Notifier

// Notify implements Notifier.
func (m MultiNotifier) Notify(ctx context.Context, userID uuid.UUID, task *domain.Task) error {
	for i, n := range m {
		if err := n.Notify(ctx, userID, task); err != nil {
			return fmt.Errorf("notifier %d of %d failed: %w", i+1, len(m), err)
		}
	}
	return nil
}
