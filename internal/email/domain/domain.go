package domain

import (
	"context"
)

// Message is a single outbound email. Body is HTML.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender is a pluggable email sending interface.
// Implementations should use config defaults internally and must be safe
// for concurrent use; the notifier fans out sends across goroutines.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
