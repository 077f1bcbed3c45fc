package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// jobRunsTotal counts scheduled job executions.
	// Labels:
	// - job:    "sync_all", "sync_recent", "notify_daily", ...
	// - status: "success", "failure" or "panic"
	jobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvmflows",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Total number of scheduled job executions",
		},
		[]string{"job", "status"},
	)

	// jobDurationSeconds tracks job execution time.
	// Labels:
	// - job: short job name
	jobDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kvmflows",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Duration of scheduled job executions",
			Buckets:   []float64{.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"job"},
	)

	// entriesUpserted counts directory entries written during sync runs.
	entriesUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "kvmflows",
			Subsystem: "sync",
			Name:      "entries_upserted_total",
			Help:      "Total number of directory entries upserted by sync jobs",
		},
	)
)

// IncJobRun increments the job run counter.
func IncJobRun(job, status string) {
	if job == "" {
		job = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	jobRunsTotal.WithLabelValues(job, status).Inc()
}

// ObserveJobDuration observes the duration of a job execution in seconds.
func ObserveJobDuration(job string, seconds float64) {
	if job == "" {
		job = "unknown"
	}
	jobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

// AddEntriesUpserted adds n to the upserted entries counter.
func AddEntriesUpserted(n int) {
	if n <= 0 {
		return
	}
	entriesUpserted.Add(float64(n))
}
