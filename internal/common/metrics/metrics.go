// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubscriptionChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_changes_total",
			Help: "Subscription change attempts by direction and outcome",
		},
		[]string{"direction", "outcome"},
	)

	SubscriptionChangeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subscription_change_errors_total",
			Help: "Subscription change attempts that ended in an error instead of an outcome",
		},
		[]string{"direction", "error_code"},
	)

	RecordStoreRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "record_store_request_duration_seconds",
			Help:    "Duration of record store round trips in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
