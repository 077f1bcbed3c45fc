package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	"github.com/kartevonmorgen/kvmflows/internal/metrics"
)

// Job is one scheduled unit of work. Run receives a context that is
// canceled when the scheduler shuts down hard.
type Job struct {
	Name string
	Cron config.CronJob
	Run  func(ctx context.Context) error
}

// Scheduler drives the periodic jobs. All cron expressions are evaluated
// in UTC regardless of the host timezone.
type Scheduler struct {
	cron   *cron.Cron
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job unless its config disables it.
func (s *Scheduler) Add(job Job) error {
	if !job.Cron.Enabled {
		s.log.Info().Str("job", job.Name).Msg("job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(job.Cron.Spec, func() { s.run(job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name, job.Cron.Spec, err)
	}
	s.log.Info().Str("job", job.Name).Str("spec", job.Cron.Spec).Msg("job scheduled")
	return nil
}

// Jobs returns how many jobs are scheduled.
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop prevents further runs and waits for in-flight jobs. When ctx
// expires first, running jobs have their context canceled and Stop
// returns the ctx error.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop().Done()
	select {
	case <-stopped:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		return ctx.Err()
	}
}

// run executes one job, recovering from panics so a bad run cannot take
// down the daemon.
func (s *Scheduler) run(job Job) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			metrics.IncJobRun(job.Name, "panic")
			s.log.Error().Interface("panic", r).Str("job", job.Name).Msg("job panicked")
		}
		metrics.ObserveJobDuration(job.Name, time.Since(start).Seconds())
	}()

	s.log.Info().Str("job", job.Name).Msg("job started")
	if err := job.Run(s.ctx); err != nil {
		metrics.IncJobRun(job.Name, "failure")
		s.log.Error().Err(err).Str("job", job.Name).Dur("elapsed", time.Since(start)).Msg("job failed")
		return
	}
	metrics.IncJobRun(job.Name, "success")
	s.log.Info().Str("job", job.Name).Dur("elapsed", time.Since(start)).Msg("job finished")
}
