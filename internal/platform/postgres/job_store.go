package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/job"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// JobStore implements job.Store on the jobs table.
type JobStore struct {
	db  store.DBTX
	now func() time.Time
}

var _ job.Store = (*JobStore)(nil)

// NewJobStore creates a new JobStore
func NewJobStore(db store.DBTX) *JobStore {
	return &JobStore{
		db:  db,
		now: time.Now,
	}
}

// Save implements job.Store.
func (s *JobStore) Save(ctx context.Context, j job.Job) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO jobs (id, type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, query,
		j.ID(),
		j.Type(),
		j.Payload(),
		job.StatusPending,
		now,
		now,
	)
	if err != nil {
		log.Error("failed to save job",
			"job_id", j.ID(),
			"job_type", j.Type(),
			"error", redact.Error(err))
		return store.NewStoreError("job", "create", "failed to insert job", MapError(err))
	}

	return nil
}

// UpdateStatus implements job.Store.
func (s *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status job.Status, errorMsg string) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE jobs
		SET status = $1, error_message = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(ctx, query,
		status,
		sql.NullString{String: errorMsg, Valid: errorMsg != ""},
		s.now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to update job status",
			"job_id", id,
			"status", status,
			"error", redact.Error(err))
		return store.NewStoreError("job", "update", "failed to update job status", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return job.ErrJobNotFound
	}

	return nil
}

// ListByStatus implements job.Store.
func (s *JobStore) ListByStatus(ctx context.Context, status job.Status, olderThan time.Duration) ([]job.Record, error) {
	log := logger.FromContext(ctx)

	query := `
		SELECT id, type, payload, status, error_message, created_at, updated_at
		FROM jobs
		WHERE status = $1
		ORDER BY created_at ASC
	`
	args := []any{status}

	if olderThan > 0 {
		query = `
			SELECT id, type, payload, status, error_message, created_at, updated_at
			FROM jobs
			WHERE status = $1 AND updated_at < $2
			ORDER BY created_at ASC
		`
		args = append(args, s.now().UTC().Add(-olderThan))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query jobs by status",
			"status", status,
			"error", redact.Error(err))
		return nil, store.NewStoreError("job", "list", "failed to query jobs", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var records []job.Record
	for rows.Next() {
		var (
			rec    job.Record
			errMsg sql.NullString
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Type,
			&rec.Payload,
			&rec.Status,
			&errMsg,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, store.NewStoreError("job", "list", "failed to scan job row", err)
		}
		rec.ErrorMessage = errMsg.String
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("job", "list", "failed to iterate jobs", MapError(err))
	}

	return records, nil
}
