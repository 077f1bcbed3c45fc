package kvmflows

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// CreateSubscriptionRequest is the payload for Create. Interval must be
// "daily", "weekly" or "monthly"; SubscriptionType "creates" or "updates".
// Language is optional and defaults to English server-side.
type CreateSubscriptionRequest struct {
	Title            string  `json:"title"`
	Email            string  `json:"email"`
	LatMin           float64 `json:"lat_min"`
	LonMin           float64 `json:"lon_min"`
	LatMax           float64 `json:"lat_max"`
	LonMax           float64 `json:"lon_max"`
	Interval         string  `json:"interval"`
	SubscriptionType string  `json:"subscription_type"`
	Language         string  `json:"language,omitempty"`
}

// Subscription mirrors the API's subscription representation.
type Subscription struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Email            string  `json:"email"`
	LatMin           float64 `json:"lat_min"`
	LonMin           float64 `json:"lon_min"`
	LatMax           float64 `json:"lat_max"`
	LonMax           float64 `json:"lon_max"`
	Interval         string  `json:"interval"`
	SubscriptionType string  `json:"subscription_type"`
	Language         string  `json:"language"`
	IsActive         bool    `json:"is_active"`
	CreatedAt        string  `json:"created_at,omitempty"`
	UpdatedAt        string  `json:"updated_at,omitempty"`
}

// SubscriptionList is one page of an admin listing.
type SubscriptionList struct {
	Items      []Subscription `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// ListSubscriptionsOptions filters the admin listing. Zero values mean
// "no filter"; a nil Active matches both active and inactive subscriptions.
type ListSubscriptionsOptions struct {
	Interval string
	Active   *bool
	Email    string
	Page     int
	PageSize int
}

// CreateSubscription registers a new area subscription. The subscription
// stays inactive until the subscriber clicks the emailed activation link.
// A duplicate of an existing subscription returns ErrConflict.
func (c *Client) CreateSubscription(ctx context.Context, req CreateSubscriptionRequest) (*Subscription, error) {
	var sub Subscription
	if err := c.doJSON(ctx, http.MethodPost, "/v1/subscriptions", nil, req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ActivateSubscription confirms a subscription by ID, as the emailed
// activation link does. Activating an already active subscription is not an
// error. Unknown IDs return ErrNotFound.
func (c *Client) ActivateSubscription(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("subscription ID required")
	}
	return c.doJSON(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(id)+"/activate", nil, nil, nil)
}

// Unsubscribe deactivates a subscription by ID. Repeating the call is not an
// error. Unknown IDs return ErrNotFound.
func (c *Client) Unsubscribe(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("subscription ID required")
	}
	return c.doJSON(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(id)+"/unsubscribe", nil, nil, nil)
}

// ListSubscriptions returns a page of subscriptions. Requires an admin token
// (use WithAdminToken).
func (c *Client) ListSubscriptions(ctx context.Context, opts ListSubscriptionsOptions) (*SubscriptionList, error) {
	if c.adminToken == "" {
		return nil, errors.New("admin token required; use WithAdminToken")
	}
	q := url.Values{}
	if opts.Interval != "" {
		q.Set("interval", opts.Interval)
	}
	if opts.Active != nil {
		if *opts.Active {
			q.Set("active", "1")
		} else {
			q.Set("active", "0")
		}
	}
	if opts.Email != "" {
		q.Set("email", opts.Email)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(opts.PageSize))
	}
	var list SubscriptionList
	if err := c.doJSON(ctx, http.MethodGet, "/v1/subscriptions", q, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
