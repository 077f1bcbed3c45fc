package domain

import "time"

// Stats summarizes one digest dispatch run.
type Stats struct {
	Interval      string
	Subscriptions int
	Sent          int
	Failed        int
	Skipped       int
	Elapsed       time.Duration
}
