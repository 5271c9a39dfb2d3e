package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/db"
	"github.com/quillhq/quill/queue/executor"
	"golang.org/x/sync/errgroup"
)

// jobTimeout bounds a single job execution.
const jobTimeout = 2 * time.Minute

// Scheduler periodically claims pending jobs and runs them through the
// executor with bounded concurrency.
type Scheduler struct {
	cfg          config.Scheduler
	db           db.DbQueue
	executor     executor.JobExecutor
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

func NewScheduler(cfg config.Scheduler, dbQueue db.DbQueue, exec executor.JobExecutor, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cfg:          cfg,
		db:           dbQueue,
		executor:     exec,
		logger:       logger,
		ctx:          ctx,
		cancel:       cancel,
		shutdownDone: make(chan struct{}),
	}
}

func (s *Scheduler) Name() string { return "job scheduler" }

// Start launches the scheduler loop in its own goroutine.
func (s *Scheduler) Start() error {
	if s.cfg.Interval.Duration <= 0 {
		return errors.New("scheduler interval must be positive")
	}
	go func() {
		s.logger.Info("starting job scheduler", "interval", s.cfg.Interval.Duration)
		ticker := time.NewTicker(s.cfg.Interval.Duration)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				s.logger.Info("job scheduler received shutdown signal")
				close(s.shutdownDone)
				return
			case <-ticker.C:
				s.processJobs()
			}
		}
	}()
	return nil
}

// Stop signals the scheduler to stop and waits for the loop to exit or the
// context to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.logger.Info("stopping job scheduler")
	s.cancel()

	select {
	case <-s.shutdownDone:
		s.logger.Info("job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("job scheduler shutdown timed out")
		return ctx.Err()
	}
}

func (s *Scheduler) processJobs() {
	jobs, err := s.db.Claim(s.cfg.MaxJobsPerTick)
	if err != nil {
		s.logger.Error("failed to claim jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}
	s.logger.Debug("claimed jobs", "count", len(jobs))

	// The group context inherits the scheduler context so in-flight jobs see
	// the shutdown signal.
	g, ctx := errgroup.WithContext(s.ctx)
	g.SetLimit(runtime.NumCPU() * s.cfg.ConcurrencyMultiplier)

	for _, job := range jobs {
		g.Go(func() error {
			jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
			defer cancel()

			err := s.executor.Execute(jobCtx, *job)
			switch {
			case err == nil:
				if updateErr := s.db.MarkCompleted(job.ID); updateErr != nil {
					s.logger.Error("failed to mark job completed", "job_id", job.ID, "error", updateErr)
				}
			case errors.Is(err, context.DeadlineExceeded):
				s.markFailed(job.ID, "job timeout: "+err.Error())
			case errors.Is(err, context.Canceled):
				s.markFailed(job.ID, "scheduler shutdown: "+err.Error())
			default:
				s.markFailed(job.ID, err.Error())
			}
			// Failures are recorded on the job row; never abort the batch.
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Scheduler) markFailed(jobID int64, msg string) {
	if err := s.db.MarkFailed(jobID, msg); err != nil {
		s.logger.Error("failed to mark job failed", "job_id", jobID, "error", err)
	}
}
