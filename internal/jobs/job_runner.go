package jobs

import (
	"context"
	"time"

	"agrirent-backend/internal/config"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/service"
)

const jobTimeout = 2 * time.Minute

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	lifecycle service.LifecycleService
	config    *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(lifecycle service.LifecycleService, cfg *config.Config) *JobRunner {
	return &JobRunner{
		lifecycle: lifecycle,
		config:    cfg,
	}
}

// Config exposes the schedules the runner was built with.
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a deadline.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	ctx = logger.NewContext(ctx, logger.Get().With("job", jobName))

	start := time.Now()
	logger.Info("Starting job", "job", jobName)
	if err := jobFunc(ctx); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
}

// RunAll runs every consistency job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ReleaseStrandedReservations()
	jr.ReconcileBookings()
}
