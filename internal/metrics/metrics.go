package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// rateLimitExceeded counts HTTP 429 events from the rate limit middleware.
	// Labels:
	// - endpoint: short name like "subscriptions:create", "settings:put", ...
	// - source:   "ip" or "unknown"
	rateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvmflows",
			Subsystem: "http",
			Name:      "rate_limit_exceeded_total",
			Help:      "Number of requests rejected due to rate limiting (HTTP 429)",
		},
		[]string{"endpoint", "source"},
	)

	// subscriptionsCounter counts subscription lifecycle transitions.
	// Labels:
	// - action: "created", "activated", "unsubscribed"
	subscriptionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kvmflows",
			Subsystem: "subscriptions",
			Name:      "lifecycle_total",
			Help:      "Total number of subscription lifecycle transitions",
		},
		[]string{"action"},
	)
)

// IncRateLimitExceeded increments the 429 counter for the given endpoint and source.
func IncRateLimitExceeded(endpoint, source string) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	if source == "" {
		source = "unknown"
	}
	rateLimitExceeded.WithLabelValues(endpoint, source).Inc()
}

// IncSubscription increments the lifecycle counter for the given action.
func IncSubscription(action string) {
	if action == "" {
		action = "unknown"
	}
	subscriptionsCounter.WithLabelValues(action).Inc()
}
