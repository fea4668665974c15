package job

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

const testJobType = "test_job"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// testJob reports each execution on done and returns err.
type testJob struct {
	id   uuid.UUID
	err  error
	done chan uuid.UUID
}

func newTestJob(done chan uuid.UUID) *testJob {
	return &testJob{id: uuid.New(), done: done}
}

func (j *testJob) ID() uuid.UUID { return j.id }
func (j *testJob) Type() string { return testJobType }
func (j *testJob) Payload() []byte { return []byte(`{}`) }

func (j *testJob) Execute(ctx context.Context) error {
	if j.done != nil {
		j.done <- j.id
	}
	return j.err
}

// testRegistry rebuilds test jobs that report on done.
func testRegistry(done chan uuid.UUID) *Registry {
	registry := NewRegistry()
	registry.Register(testJobType, func(rec Record) (Job, error) {
		return &testJob{id: rec.ID, done: done}, nil
	})
	return registry
}
