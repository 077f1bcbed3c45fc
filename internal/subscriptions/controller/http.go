package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"

	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
	rl "github.com/kartevonmorgen/kvmflows/internal/platform/ratelimit"
	"github.com/kartevonmorgen/kvmflows/internal/platform/validation"
	sdomain "github.com/kartevonmorgen/kvmflows/internal/settings/domain"
	domain "github.com/kartevonmorgen/kvmflows/internal/subscriptions/domain"
)

type Controller struct {
	svc domain.Service
	// Injected concerns
	settings sdomain.Service
	authMW   echo.MiddlewareFunc
	rlStore  rl.Store
}

func New(svc domain.Service) *Controller {
	return &Controller{svc: svc}
}

// WithAuth injects the admin token middleware guarding the list endpoint.
func (h *Controller) WithAuth(mw echo.MiddlewareFunc) *Controller { h.authMW = mw; return h }

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

// WithSettings lets the subscribe rate limit be tuned at runtime.
func (h *Controller) WithSettings(s sdomain.Service) *Controller { h.settings = s; return h }

// Register mounts the public subscription endpoints and, when an auth
// middleware is configured, the admin listing.
func (h *Controller) Register(e *echo.Echo) {
	pol := rl.Policy{
		Name:   "subscriptions:create",
		Window: time.Minute,
		Limit:  10,
		Key:    rl.KeyIP("subscribe"),
	}
	if h.settings != nil {
		pol.LimitFunc = func(c echo.Context) int {
			v, err := h.settings.GetInt(c.Request().Context(), sdomain.KeyRLSubscribeLimit, 0)
			if err != nil || v <= 0 {
				return 0
			}
			return v
		}
		pol.WindowFunc = func(c echo.Context) time.Duration {
			s, err := h.settings.GetString(c.Request().Context(), sdomain.KeyRLSubscribeWindow, "")
			if err != nil || s == "" {
				return 0
			}
			d, err := time.ParseDuration(s)
			if err != nil {
				return 0
			}
			return d
		}
	}
	var createRL echo.MiddlewareFunc
	if h.rlStore != nil {
		createRL = rl.MiddlewareWithStore(pol, h.rlStore)
	} else {
		createRL = rl.Middleware(pol)
	}

	g := e.Group("/v1")
	g.POST("/subscriptions", h.createSubscription, createRL)
	g.GET("/subscriptions/:id/activate", h.activateSubscription)
	g.GET("/subscriptions/:id/unsubscribe", h.unsubscribe)
	if h.authMW != nil {
		g.GET("/subscriptions", h.listSubscriptions, h.authMW)
	}
}

type createSubscriptionReq struct {
	Title            string  `json:"title" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	LatMin           float64 `json:"lat_min" validate:"gte=-90,lte=90"`
	LonMin           float64 `json:"lon_min" validate:"gte=-180,lte=180"`
	LatMax           float64 `json:"lat_max" validate:"gte=-90,lte=90"`
	LonMax           float64 `json:"lon_max" validate:"gte=-180,lte=180"`
	Interval         string  `json:"interval" validate:"required,oneof=daily weekly monthly"`
	SubscriptionType string  `json:"subscription_type" validate:"required,oneof=creates updates"`
	Language         string  `json:"language" validate:"omitempty,oneof=en de fr es it pt ru zh ja ko"`
}

type subscriptionResp struct {
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

func toUUIDString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

func toTimeString(t pgtype.Timestamptz) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339)
}

func toResp(sub db.Subscription) subscriptionResp {
	return subscriptionResp{
		ID:               toUUIDString(sub.ID),
		Title:            sub.Title,
		Email:            sub.Email,
		LatMin:           sub.LatMin,
		LonMin:           sub.LonMin,
		LatMax:           sub.LatMax,
		LonMax:           sub.LonMax,
		Interval:         sub.Interval,
		SubscriptionType: sub.SubscriptionType,
		Language:         sub.Language,
		IsActive:         sub.IsActive,
		CreatedAt:        toTimeString(sub.CreatedAt),
		UpdatedAt:        toTimeString(sub.UpdatedAt),
	}
}

// HTML served to subscribers who click emailed links. Kept inline; these
// pages are single-purpose confirmations, not an app frontend.
const (
	activatedHTML = `<html>
	<head><title>Subscription Activated</title></head>
	<body><h2>Your subscription is activated successfully!</h2></body>
</html>`
	alreadyActiveHTML = `<html>
	<head><title>Subscription Activated</title></head>
	<body><h2>Your subscription is already active.</h2></body>
</html>`
	unsubscribedHTML = `<html>
	<head><title>Unsubscribed</title></head>
	<body><h2>You are unsubscribed successfully!</h2></body>
</html>`
)

// Create Subscription godoc
// @Summary      Create subscription
// @Description  Registers an area subscription; it stays inactive until the emailed activation link is clicked
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        body  body  createSubscriptionReq  true  "subscription"
// @Success      200   {object}  subscriptionResp
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /v1/subscriptions [post]
func (h *Controller) createSubscription(c echo.Context) error {
	var req createSubscriptionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, validation.ErrorResponse(err))
	}

	sub, err := h.svc.Create(c.Request().Context(), domain.CreateInput{
		Title:            req.Title,
		Email:            req.Email,
		LatMin:           req.LatMin,
		LonMin:           req.LonMin,
		LatMax:           req.LatMax,
		LonMax:           req.LonMax,
		Interval:         req.Interval,
		SubscriptionType: req.SubscriptionType,
		Language:         req.Language,
	})
	if errors.Is(err, domain.ErrSimilarExists) {
		return c.JSON(http.StatusConflict, map[string]string{"error": "similar subscription already exists"})
	}
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, toResp(sub))
}

// Activate Subscription godoc
// @Summary      Activate subscription
// @Description  Confirms a subscription via the emailed link and returns an HTML confirmation page
// @Tags         subscriptions
// @Produce      html
// @Param        id   path   string  true  "Subscription ID (UUID)"
// @Success      200  {string}  string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/subscriptions/{id}/activate [get]
func (h *Controller) activateSubscription(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	_, already, err := h.svc.Activate(c.Request().Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "subscription not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to activate subscription"})
	}
	if already {
		return c.HTML(http.StatusOK, alreadyActiveHTML)
	}
	return c.HTML(http.StatusOK, activatedHTML)
}

// Unsubscribe godoc
// @Summary      Unsubscribe
// @Description  Deactivates a subscription and returns an HTML confirmation page
// @Tags         subscriptions
// @Produce      html
// @Param        id   path   string  true  "Subscription ID (UUID)"
// @Success      200  {string}  string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/subscriptions/{id}/unsubscribe [get]
func (h *Controller) unsubscribe(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	_, err = h.svc.Unsubscribe(c.Request().Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "subscription not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to unsubscribe"})
	}
	return c.HTML(http.StatusOK, unsubscribedHTML)
}

type listQuery struct {
	Interval string `query:"interval"`
	Active   int    `query:"active"` // -1 any, 1 active, 0 inactive
	Email    string `query:"email"`
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
}

type listResponse struct {
	Items      []subscriptionResp `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

// List Subscriptions godoc
// @Summary      List subscriptions
// @Description  Lists subscriptions with optional filters and pagination (admin)
// @Tags         subscriptions
// @Produce      json
// @Param        interval   query   string  false  "daily, weekly or monthly"
// @Param        active     query   int     false  "-1 any, 1 active, 0 inactive"
// @Param        email      query   string  false  "Filter by subscriber email"
// @Param        page       query   int     false  "Page number"
// @Param        page_size  query   int     false  "Page size"
// @Success      200  {object}  listResponse
// @Failure      400  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/subscriptions [get]
func (h *Controller) listSubscriptions(c echo.Context) error {
	q := listQuery{Active: -1}
	if err := c.Bind(&q); err != nil {
		q.Interval = c.QueryParam("interval")
		q.Email = c.QueryParam("email")
		if a := c.QueryParam("active"); a != "" {
			if v, err := strconv.Atoi(a); err == nil {
				q.Active = v
			}
		}
		if p := c.QueryParam("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil {
				q.Page = v
			}
		}
		if ps := c.QueryParam("page_size"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil {
				q.PageSize = v
			}
		}
	}

	res, err := h.svc.List(c.Request().Context(), domain.ListOptions{
		Interval: q.Interval,
		Active:   q.Active,
		Email:    q.Email,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	items := make([]subscriptionResp, 0, len(res.Items))
	for _, sub := range res.Items {
		items = append(items, toResp(sub))
	}
	return c.JSON(http.StatusOK, listResponse{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}
