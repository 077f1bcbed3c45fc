package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event represents a subscription lifecycle or job event.
// Type examples: "subscription.created", "subscription.activated", "notify.daily.completed"
// Meta may contain interval, area, counts, etc.
type Event struct {
	Type           string
	SubscriptionID uuid.UUID
	Email          string
	Meta           map[string]string
	Time           time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
