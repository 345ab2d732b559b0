package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/richwell/registrar-api/internal/service"
	"github.com/richwell/registrar-api/pkg/config"
	"github.com/richwell/registrar-api/pkg/jobs"
)

const jobTypeIncompleteSweep = "incomplete_sweep"

// SweepScheduler periodically enqueues the incomplete-grade sweep. The cron
// trigger only enqueues; the queue's worker pool runs the sweep so a slow
// run never blocks the scheduler, and the guarded transition makes retried
// or overlapping runs harmless.
type SweepScheduler struct {
	cron   *cron.Cron
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewSweepScheduler wires the cron trigger, the job queue, and the sweep
// itself. Schedule expressions use six fields with seconds precision.
func NewSweepScheduler(incompletes *service.IncompleteService, cfg config.SweepConfig, logger *zap.Logger) (*SweepScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	queue := jobs.NewQueue(jobTypeIncompleteSweep, func(ctx context.Context, job jobs.Job) error {
		asOf, ok := job.Payload.(time.Time)
		if !ok {
			asOf = time.Now().UTC()
		}
		_, err := incompletes.Sweep(ctx, asOf)
		return err
	}, jobs.QueueConfig{Workers: 1, MaxRetries: 3, Logger: logger})

	c := cron.New(cron.WithSeconds())
	s := &SweepScheduler{cron: c, queue: queue, logger: logger}

	if _, err := c.AddFunc(cfg.Schedule, s.enqueue); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the queue workers and the cron loop.
func (s *SweepScheduler) Start(ctx context.Context) {
	s.queue.Start(ctx)
	s.cron.Start()
	s.logger.Info("sweep scheduler started")
}

// Stop halts the cron loop and drains the queue.
func (s *SweepScheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.queue.Stop()
	s.logger.Info("sweep scheduler stopped")
}

func (s *SweepScheduler) enqueue() {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    jobTypeIncompleteSweep,
		Payload: time.Now().UTC(),
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue sweep job", zap.Error(err))
	}
}
