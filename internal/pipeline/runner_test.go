package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailcli/internal/config"
)

// fakeStage fails a configurable number of times before succeeding.
type fakeStage struct {
	id        string
	failures  int
	attempts  int
	runnedIDs *[]string
}

func (f *fakeStage) ID() string   { return f.id }
func (f *fakeStage) Name() string { return "fake " + f.id }

func (f *fakeStage) Run(ctx context.Context, state *RunState) error {
	f.attempts++
	if f.runnedIDs != nil {
		*f.runnedIDs = append(*f.runnedIDs, f.id)
	}
	if f.attempts <= f.failures {
		return fmt.Errorf("transient failure %d", f.attempts)
	}
	return nil
}

func TestRunnerExecutesStagesInOrder(t *testing.T) {
	var order []string
	stages := []Stage{
		&fakeStage{id: "first", runnedIDs: &order},
		&fakeStage{id: "second", runnedIDs: &order},
		&fakeStage{id: "third", runnedIDs: &order},
	}

	runner := NewRunner(stages, config.PipelineConfig{Retries: 0}, nil)
	state, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, order)
	assert.NotEmpty(t, state.ID)
	require.Len(t, state.Stages, 3)
	for _, s := range state.Stages {
		assert.Equal(t, StageStatusCompleted, s.Status)
	}
}

func TestRunnerRetriesOnceThenSucceeds(t *testing.T) {
	stage := &fakeStage{id: "flaky", failures: 1}
	runner := NewRunner([]Stage{stage},
		config.PipelineConfig{Retries: 1, RetryDelay: time.Millisecond}, nil)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stage.attempts)
}

func TestRunnerAbortsAfterExhaustingRetries(t *testing.T) {
	stage := &fakeStage{id: "broken", failures: 10}
	after := &fakeStage{id: "never"}
	runner := NewRunner([]Stage{stage, after},
		config.PipelineConfig{Retries: 1, RetryDelay: time.Millisecond}, nil)

	state, err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage broken")
	assert.Equal(t, 2, stage.attempts)
	assert.Equal(t, 0, after.attempts)

	require.Len(t, state.Stages, 1)
	assert.Equal(t, StageStatusFailed, state.Stages[0].Status)
	assert.Equal(t, 2, state.Stages[0].Attempts)
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stage := &fakeStage{id: "any"}
	runner := NewRunner([]Stage{stage}, config.PipelineConfig{}, nil)

	_, err := runner.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 0, stage.attempts)
}
