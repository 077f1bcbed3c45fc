package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
)

// Intervals a subscription can be notified on.
const (
	IntervalDaily   = "daily"
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
)

// Subscription types: notify about newly created entries or about updates.
const (
	TypeCreates = "creates"
	TypeUpdates = "updates"
)

// SupportedLanguages for notification templates.
var SupportedLanguages = []string{"en", "de", "fr", "es", "it", "pt", "ru", "zh", "ja", "ko"}

var (
	ErrNotFound      = errors.New("subscription not found")
	ErrSimilarExists = errors.New("similar subscription already exists")
)

// ValidInterval reports whether s is a known notification interval.
func ValidInterval(s string) bool {
	switch s {
	case IntervalDaily, IntervalWeekly, IntervalMonthly:
		return true
	}
	return false
}

// ValidType reports whether s is a known subscription type.
func ValidType(s string) bool {
	return s == TypeCreates || s == TypeUpdates
}

// ValidLanguage reports whether code is a supported template language.
func ValidLanguage(code string) bool {
	for _, l := range SupportedLanguages {
		if l == code {
			return true
		}
	}
	return false
}

// IntervalWindow returns the [from, to) time range covered by a digest
// for the given interval, ending at now. Monthly uses calendar months.
func IntervalWindow(interval string, now time.Time) (time.Time, time.Time) {
	switch interval {
	case IntervalWeekly:
		return now.AddDate(0, 0, -7), now
	case IntervalMonthly:
		return now.AddDate(0, -1, 0), now
	default:
		return now.Add(-24 * time.Hour), now
	}
}

// CreateInput carries the fields needed to register a subscription.
type CreateInput struct {
	Title            string
	Email            string
	LatMin           float64
	LonMin           float64
	LatMax           float64
	LonMax           float64
	Interval         string
	SubscriptionType string
	Language         string
}

// ListOptions for subscription listing
type ListOptions struct {
	Interval string
	Active   int // -1 any, 1 active, 0 inactive
	Email    string
	Page     int
	PageSize int
}

// ListResult holds items and pagination metadata
type ListResult struct {
	Items      []db.Subscription
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// Repository abstracts persistence for subscriptions.
type Repository interface {
	Create(ctx context.Context, in CreateInput) (db.Subscription, error)
	GetByID(ctx context.Context, id uuid.UUID) (db.Subscription, error)
	FindSimilar(ctx context.Context, in CreateInput) (db.Subscription, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (db.Subscription, error)
	List(ctx context.Context, interval string, active int, email string, limit, offset int32) ([]db.Subscription, int64, error)
	ListActiveByInterval(ctx context.Context, interval string) ([]db.Subscription, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service encapsulates business logic for subscriptions.
type Service interface {
	Create(ctx context.Context, in CreateInput) (db.Subscription, error)
	GetByID(ctx context.Context, id uuid.UUID) (db.Subscription, error)
	// Activate turns a pending subscription on. The second return is true
	// when the subscription was already active.
	Activate(ctx context.Context, id uuid.UUID) (db.Subscription, bool, error)
	Unsubscribe(ctx context.Context, id uuid.UUID) (db.Subscription, error)
	List(ctx context.Context, opts ListOptions) (ListResult, error)
}
