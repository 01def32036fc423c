package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retail_pipeline_runs_total",
		Help: "Number of pipeline runs started.",
	})

	runFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "retail_pipeline_run_failures_total",
		Help: "Number of pipeline runs that aborted on a stage failure.",
	})

	stageFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_pipeline_stage_failures_total",
		Help: "Number of stage failures after exhausting retries.",
	}, []string{"stage"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "retail_pipeline_stage_duration_seconds",
		Help:    "Wall-clock duration of each stage attempt.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"stage"})
)
