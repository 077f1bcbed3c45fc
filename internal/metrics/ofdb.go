package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ofdbRequestsTotal counts requests to the upstream directory API.
	// Labels:
	// - endpoint: "search", "entries" or "recently_changed"
	// - status:   "success" or "failure"
	ofdbRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvmflows",
			Subsystem: "ofdb",
			Name:      "requests_total",
			Help:      "Total number of requests to the directory API",
		},
		[]string{"endpoint", "status"},
	)
)

// IncOFDBRequest increments the directory request counter.
func IncOFDBRequest(endpoint, status string) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	ofdbRequestsTotal.WithLabelValues(endpoint, status).Inc()
}
