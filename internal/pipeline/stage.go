package pipeline

import (
	"context"
	"sync"
	"time"

	"retailcli/internal/model"
	"retailcli/pkg/contracts/domain"
)

// Stage is a single unit of pipeline work. Stages read their inputs from
// the run state when an earlier stage populated them, or from the artifact
// files on disk when run standalone.
type Stage interface {
	// ID returns the unique identifier for this stage.
	ID() string

	// Name returns the human-readable name for this stage.
	Name() string

	// Run executes the stage against the shared run state.
	Run(ctx context.Context, state *RunState) error
}

// StageStatus represents the current status of a stage.
type StageStatus string

const (
	StageStatusPending   StageStatus = "pending"
	StageStatusActive    StageStatus = "active"
	StageStatusCompleted StageStatus = "completed"
	StageStatusFailed    StageStatus = "failed"
)

// StageState is the runtime record of one stage within a run.
type StageState struct {
	mu        sync.RWMutex
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Status    StageStatus `json:"status"`
	StartTime *time.Time  `json:"start_time,omitempty"`
	EndTime   *time.Time  `json:"end_time,omitempty"`
	Attempts  int         `json:"attempts"`
	Error     string      `json:"error,omitempty"`
}

// NewStageState creates a stage state in the pending status.
func NewStageState(id, name string) *StageState {
	return &StageState{ID: id, Name: name, Status: StageStatusPending}
}

// Start marks the stage active and records the start time.
func (s *StageState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StageStatusActive
}

// Complete marks the stage completed and records the end time.
func (s *StageState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusCompleted
}

// Fail marks the stage failed with the given error.
func (s *StageState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StageStatusFailed
	if err != nil {
		s.Error = err.Error()
	}
}

// Duration returns the elapsed time of a finished stage, zero otherwise.
func (s *StageState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil || s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(*s.StartTime)
}

// RunState carries the in-memory artifacts between stages of one run.
// Every field is also persisted as a CSV or JSON artifact by the stage
// that produces it.
type RunState struct {
	ID        string
	StartedAt time.Time

	Cleaned     []domain.CleanedTransaction
	DailySales  []domain.DailySales
	Features    []domain.FeatureRow
	Model       *model.DemandModel
	Metrics     model.Metrics
	Predictions []domain.PredictionRow
	Elasticity  []domain.ElasticityResult

	Stages []*StageState
}
