package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/redact"
)

// Config holds configuration for the job runner
type Config struct {
	// WorkerCount determines how many concurrent workers process jobs
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory job queue
	QueueSize int

	// StuckJobAge defines how long a job can be in processing state
	// before it's considered stuck and reset
	StuckJobAge time.Duration

	// StuckJobCheckInterval defines how often to check for stuck jobs
	// If zero, defaults to 5 minutes
	StuckJobCheckInterval time.Duration
}

// DefaultConfig returns a Config with reasonable defaults
func DefaultConfig() Config {
	return Config{
		WorkerCount:           2,
		QueueSize:             100,
		StuckJobAge:           30 * time.Minute,
		StuckJobCheckInterval: 5 * time.Minute,
	}
}

// ConfigFrom converts the application's job settings.
func ConfigFrom(cfg config.JobConfig) Config {
	c := DefaultConfig()
	if cfg.WorkerCount > 0 {
		c.WorkerCount = cfg.WorkerCount
	}
	if cfg.QueueSize > 0 {
		c.QueueSize = cfg.QueueSize
	}
	if cfg.StuckJobAge > 0 {
		c.StuckJobAge = cfg.StuckJobAge
	}
	return c
}

// Runner manages background job processing
type Runner struct {
	store      Store
	registry   *Registry
	queue      *Queue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
	config     Config
	logger     *slog.Logger
	errHandler func(job Job, err error)
}

// NewRunner creates a new Runner
func NewRunner(store Store, registry *Registry, cfg Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	if cfg.WorkerCount <= 0 {
		log.Warn("invalid worker count specified, using default",
			"specified_count", cfg.WorkerCount,
			"default_count", 1)
		cfg.WorkerCount = 1
	}
	if cfg.StuckJobCheckInterval == 0 {
		cfg.StuckJobCheckInterval = 5 * time.Minute
	}
	log = log.With("component", "job_runner")

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		store:      store,
		registry:   registry,
		queue:      NewQueue(cfg.QueueSize, log),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     cfg,
		logger:     log,
		errHandler: func(job Job, err error) {},
	}
}

// SetErrorHandler sets a function called after a job fails.
func (r *Runner) SetErrorHandler(handler func(job Job, err error)) {
	r.errHandler = handler
}

// Submit persists job and adds it to the queue.
// A job that is persisted but does not fit in the queue stays pending; the
// stuck job monitor requeues it once it is older than StuckJobAge.
func (r *Runner) Submit(ctx context.Context, job Job) error {
	if err := r.store.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	if err := r.queue.Enqueue(job); err != nil {
		if errors.Is(err, ErrQueueFull) {
			logger.FromContextOrDefault(ctx, r.logger).Warn("job queue full, deferring job",
				"job_id", job.ID(),
				"job_type", job.Type())
			return nil
		}
		return fmt.Errorf("failed to enqueue job %s: %w", job.ID(), err)
	}
	return nil
}

// Start recovers unfinished jobs and starts the workers and the stuck job monitor.
func (r *Runner) Start() error {
	if err := r.Recover(r.ctx); err != nil {
		return fmt.Errorf("failed to recover jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckJobMonitor()

	r.logger.Info("job runner started", "worker_count", r.config.WorkerCount)
	return nil
}

// Stop signals the workers to finish and waits for them.
// A job that is executing when Stop is called runs to completion.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.queue.Close()
		r.logger.Info("job runner stopped")
	})
}

// Recover requeues jobs left pending or processing by a previous run.
func (r *Runner) Recover(ctx context.Context) error {
	pending, err := r.store.ListByStatus(ctx, StatusPending, 0)
	if err != nil {
		return fmt.Errorf("failed to get pending jobs: %w", err)
	}

	processing, err := r.store.ListByStatus(ctx, StatusProcessing, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing jobs: %w", err)
	}

	r.logger.Info("recovering unfinished jobs",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, rec := range pending {
		r.requeue(ctx, rec)
	}
	for _, rec := range processing {
		if err := r.store.UpdateStatus(ctx, rec.ID, StatusPending, "Reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing job status",
				"job_id", rec.ID,
				"job_type", rec.Type,
				"error", redact.Error(err))
			continue
		}
		r.requeue(ctx, rec)
	}

	return nil
}

// requeue rebuilds rec and enqueues it. Records of unknown type are marked failed.
func (r *Runner) requeue(ctx context.Context, rec Record) {
	job, err := r.registry.Rebuild(rec)
	if err != nil {
		r.logger.Error("failed to rebuild job",
			"job_id", rec.ID,
			"job_type", rec.Type,
			"error", err)
		if errors.Is(err, ErrUnknownJobType) {
			if updateErr := r.store.UpdateStatus(ctx, rec.ID, StatusFailed, err.Error()); updateErr != nil {
				r.logger.Error("failed to mark job failed",
					"job_id", rec.ID,
					"error", redact.Error(updateErr))
			}
		}
		return
	}

	if err := r.queue.Enqueue(job); err != nil {
		r.logger.Error("failed to requeue job",
			"job_id", rec.ID,
			"job_type", rec.Type,
			"error", err)
	}
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", "worker_id", id)
			return

		case job, ok := <-r.queue.Channel():
			if !ok {
				r.logger.Debug("job channel closed, stopping worker", "worker_id", id)
				return
			}
			r.processJob(job, id)
		}
	}
}

// processJob executes a single job on a context detached from Stop, so an
// in-flight job is not cut short by shutdown.
func (r *Runner) processJob(job Job, workerID int) {
	log := r.logger.With(
		"job_id", job.ID(),
		"job_type", job.Type(),
		"worker_id", workerID,
	)
	ctx := logger.WithLogger(context.Background(), log)

	if err := r.store.UpdateStatus(ctx, job.ID(), StatusProcessing, ""); err != nil {
		log.Error("failed to update job status to processing", "error", redact.Error(err))
		return
	}

	log.Info("processing job")

	if err := job.Execute(ctx); err != nil {
		log.Error("job execution failed", "error", redact.Error(err))
		if updateErr := r.store.UpdateStatus(ctx, job.ID(), StatusFailed, redact.Error(err)); updateErr != nil {
			log.Error("failed to update job status to failed", "error", redact.Error(updateErr))
		}
		r.errHandler(job, err)
		return
	}

	log.Info("job completed successfully")
	if err := r.store.UpdateStatus(ctx, job.ID(), StatusCompleted, ""); err != nil {
		log.Error("failed to update job status to completed", "error", redact.Error(err))
	}
}

func (r *Runner) stuckJobMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckJobCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckJobs(r.ctx)
			r.requeueDeferredJobs(r.ctx)
			r.pruneFinishedJobs(r.ctx)
		}
	}
}

// resetStuckJobs moves jobs that stayed in processing longer than
// StuckJobAge back to pending and requeues them.
func (r *Runner) resetStuckJobs(ctx context.Context) {
	stuck, err := r.store.ListByStatus(ctx, StatusProcessing, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("failed to check for stuck jobs", "error", redact.Error(err))
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Info("found stuck jobs", "count", len(stuck))

	for _, rec := range stuck {
		if err := r.store.UpdateStatus(ctx, rec.ID, StatusPending,
			"Reset after being stuck in processing state"); err != nil {
			r.logger.Error("failed to reset stuck job status",
				"job_id", rec.ID,
				"job_type", rec.Type,
				"error", redact.Error(err))
			continue
		}
		r.requeue(ctx, rec)
	}
}

// requeueDeferredJobs requeues jobs left pending longer than StuckJobAge,
// such as those Submit could not fit in the queue.
func (r *Runner) requeueDeferredJobs(ctx context.Context) {
	deferred, err := r.store.ListByStatus(ctx, StatusPending, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("failed to check for deferred jobs", "error", redact.Error(err))
		return
	}
	if len(deferred) == 0 {
		return
	}

	r.logger.Info("requeueing deferred jobs", "count", len(deferred))
	for _, rec := range deferred {
		r.requeue(ctx, rec)
	}
}

// pruneFinishedJobs drops completed and failed records older than
// StuckJobAge from stores that support it.
func (r *Runner) pruneFinishedJobs(ctx context.Context) {
	p, ok := r.store.(Pruner)
	if !ok {
		return
	}
	n, err := p.Prune(ctx, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("failed to prune finished jobs", "error", redact.Error(err))
		return
	}
	if n > 0 {
		r.logger.Debug("pruned finished jobs", "count", n)
	}
}
