package domain

import (
	"context"
	"time"
)

// Service provides typed access to runtime settings stored in Postgres.
// Missing or malformed values fall back to the given default.
type Service interface {
	GetString(ctx context.Context, key string, def string) (string, error)
	GetDuration(ctx context.Context, key string, def time.Duration) (time.Duration, error)
	GetInt(ctx context.Context, key string, def int) (int, error)
	GetBool(ctx context.Context, key string, def bool) (bool, error)
}

// Repository abstracts storage of app settings.
type Repository interface {
	// Get returns (value, found, err) for an exact key.
	Get(ctx context.Context, key string) (string, bool, error)
	// Upsert stores a key.
	Upsert(ctx context.Context, key, value string, secret bool) error
	// List returns all keys with secret values masked out by the caller.
	List(ctx context.Context) (map[string]string, error)
}

// Common keys
const (
	// KeyEmailProvider selects the outbound provider: "mailgun" or "smtp".
	KeyEmailProvider = "email.provider"

	// Notification dispatch controls, changeable at runtime without a deploy.
	KeyEmailPaused     = "notify.email_paused"
	KeyEmailsPerMinute = "notify.emails_per_minute"
	KeyTestRecipient   = "notify.test_recipient"

	// Rate limiting for the public subscribe endpoint.
	// Windows use Go duration strings (e.g., "1m", "10s"). Limits are integers.
	KeyRLSubscribeLimit  = "api.ratelimit.subscribe.limit"
	KeyRLSubscribeWindow = "api.ratelimit.subscribe.window"
)
