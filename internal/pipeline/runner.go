package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"retailcli/internal/config"
)

// Runner executes the stage sequence with bounded per-stage retries.
// A failed stage is retried cfg.Retries times with cfg.RetryDelay between
// attempts; a stage that exhausts its attempts aborts the run.
type Runner struct {
	stages []Stage
	cfg    config.PipelineConfig
	logger *slog.Logger
}

// NewRunner creates a runner over the given stages.
func NewRunner(stages []Stage, cfg config.PipelineConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{stages: stages, cfg: cfg, logger: logger}
}

// Run executes all stages in order and returns the final run state. The
// returned state is valid up to the failed stage when an error occurs.
func (r *Runner) Run(ctx context.Context) (*RunState, error) {
	state := &RunState{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}

	logger := r.logger.With(slog.String("run_id", state.ID))
	logger.Info("Pipeline run started", slog.Int("stages", len(r.stages)))
	runsTotal.Inc()

	for _, stage := range r.stages {
		stageState := NewStageState(stage.ID(), stage.Name())
		state.Stages = append(state.Stages, stageState)

		if err := r.runStage(ctx, logger, stage, stageState, state); err != nil {
			stageFailures.WithLabelValues(stage.ID()).Inc()
			runFailures.Inc()
			logger.Error("Pipeline run failed",
				slog.String("stage", stage.ID()),
				slog.String("error", err.Error()))
			return state, fmt.Errorf("stage %s: %w", stage.ID(), err)
		}
	}

	logger.Info("Pipeline run completed",
		slog.Duration("elapsed", time.Since(state.StartedAt)))
	return state, nil
}

// runStage executes one stage with retries.
func (r *Runner) runStage(ctx context.Context, logger *slog.Logger, stage Stage, stageState *StageState, state *RunState) error {
	attempts := r.cfg.Retries + 1
	stageState.Start()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			stageState.Fail(err)
			return err
		}

		stageState.mu.Lock()
		stageState.Attempts = attempt
		stageState.mu.Unlock()

		started := time.Now()
		err := stage.Run(ctx, state)
		stageDuration.WithLabelValues(stage.ID()).Observe(time.Since(started).Seconds())

		if err == nil {
			stageState.Complete()
			logger.Info("Stage completed",
				slog.String("stage", stage.ID()),
				slog.Int("attempt", attempt),
				slog.Duration("elapsed", time.Since(started)))
			return nil
		}

		lastErr = err
		if attempt >= attempts {
			break
		}

		logger.Warn("Stage failed, retrying",
			slog.String("stage", stage.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", attempts),
			slog.Duration("retry_delay", r.cfg.RetryDelay),
			slog.String("error", err.Error()))

		select {
		case <-time.After(r.cfg.RetryDelay):
		case <-ctx.Done():
			stageState.Fail(ctx.Err())
			return ctx.Err()
		}
	}

	stageState.Fail(lastErr)
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
