package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// emailsTotal counts outbound email attempts.
	// Labels:
	// - kind:   "activation" or "digest" or "test"
	// - status: "success" or "failure"
	emailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvmflows",
			Subsystem: "email",
			Name:      "sent_total",
			Help:      "Total number of outbound email attempts",
		},
		[]string{"kind", "status"},
	)

	// emailSendSeconds tracks the duration of a single email dispatch,
	// including retries.
	// Labels:
	// - kind: "activation" or "digest" or "test"
	emailSendSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kvmflows",
			Subsystem: "email",
			Name:      "send_duration_seconds",
			Help:      "Duration of email dispatch",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

// IncEmailOutcome increments the email counter.
func IncEmailOutcome(kind, status string) {
	if kind == "" {
		kind = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	emailsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveEmailSend observes the duration of an email dispatch.
func ObserveEmailSend(kind string, seconds float64) {
	if kind == "" {
		kind = "unknown"
	}
	emailSendSeconds.WithLabelValues(kind).Observe(seconds)
}
