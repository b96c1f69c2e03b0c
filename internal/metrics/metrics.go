package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EditOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_edit_operations_total",
			Help: "Builder edit operations applied, by operation",
		},
		[]string{"op"},
	)

	Saves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_assessment_saves_total",
			Help: "Assessment save attempts, by result",
		},
		[]string{"result"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_submissions_total",
			Help: "Response submissions, by result (ok, invalid, error, busy)",
		},
		[]string{"result"},
	)

	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "talentflow_validation_failures_total",
			Help: "Submit-time validation failures, by code",
		},
		[]string{"code"},
	)

	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "talentflow_store_duration_seconds",
			Help:    "Latency of persistence collaborator calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ActiveWorkspaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "talentflow_active_workspaces",
			Help: "Open builder/preview workspaces",
		},
	)
)
