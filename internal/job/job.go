package job

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// Status represents the current state of a job
type Status string

// Possible job status values
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Common job errors
var (
	ErrUnknownJobType = errors.New("unknown job type")
	ErrJobNotFound    = store.ErrJobNotFound
)

// Job is a unit of background work.
type Job interface {
	// ID returns the job's unique identifier
	ID() uuid.UUID

	// Type returns the job type identifier used to rebuild the job from a Record
	Type() string

	// Payload returns the job data as a byte slice
	Payload() []byte

	// Execute runs the job logic
	Execute(ctx context.Context) error
}

// Record is the persisted form of a job.
type Record struct {
	ID           uuid.UUID
	Type         string
	Payload      []byte
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store persists job records.
type Store interface {
	// Save persists a new job with status pending.
	Save(ctx context.Context, job Job) error

	// UpdateStatus changes the status of a job and records errorMsg.
	// Returns ErrJobNotFound if the job does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, errorMsg string) error

	// ListByStatus returns the jobs in status, oldest first. A positive
	// olderThan restricts the result to jobs whose status has not changed
	// for at least that long.
	ListByStatus(ctx context.Context, status Status, olderThan time.Duration) ([]Record, error)
}

// Pruner is implemented by stores that discard finished records.
type Pruner interface {
	// Prune removes completed and failed jobs whose status has not changed
	// for at least olderThan, and returns how many were removed.
	Prune(ctx context.Context, olderThan time.Duration) (int, error)
}
