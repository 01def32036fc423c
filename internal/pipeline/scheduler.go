package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the pipeline on a cron schedule. Overlapping runs are not
// started: a tick that arrives while a run is in flight is skipped.
type Scheduler struct {
	runner   *Runner
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron
	running  chan struct{}
}

// NewScheduler validates the cron expression and creates a scheduler.
// Standard 5-field expressions and descriptors like "@daily" are accepted.
func NewScheduler(runner *Runner, schedule string, logger *slog.Logger) (*Scheduler, error) {
	if schedule == "" {
		return nil, fmt.Errorf("empty schedule")
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		runner:   runner,
		schedule: schedule,
		logger:   logger,
		running:  make(chan struct{}, 1),
	}, nil
}

// Start schedules the pipeline and blocks until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron = cron.New()

	_, err := s.cron.AddFunc(s.schedule, func() {
		select {
		case s.running <- struct{}{}:
			defer func() { <-s.running }()
		default:
			s.logger.Warn("Skipping scheduled run, previous run still in flight")
			return
		}

		if _, err := s.runner.Run(ctx); err != nil {
			s.logger.Error("Scheduled run failed", slog.String("error", err.Error()))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule pipeline: %w", err)
	}

	s.logger.Info("Pipeline scheduler started", slog.String("schedule", s.schedule))
	s.cron.Start()

	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Pipeline scheduler stopped")

	return ctx.Err()
}
