package controller

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	evdomain "github.com/kartevonmorgen/kvmflows/internal/events/domain"
	rl "github.com/kartevonmorgen/kvmflows/internal/platform/ratelimit"
	sdomain "github.com/kartevonmorgen/kvmflows/internal/settings/domain"
)

// Controller exposes operator settings management endpoints.
// It intentionally supports a whitelist of keys that tune notification
// dispatch and the public rate limit without a redeploy.
type Controller struct {
	repo    sdomain.Repository
	service sdomain.Service
	// Injected concerns
	authMW  echo.MiddlewareFunc
	rlStore rl.Store
	pub     evdomain.Publisher
}

func New(repo sdomain.Repository, service sdomain.Service) *Controller {
	return &Controller{repo: repo, service: service}
}

// Register mounts settings endpoints under /v1/admin.
func (h *Controller) Register(e *echo.Echo) {
	// Defaults: GET 60/min, PUT 10/min
	getPolicy := rl.Policy{Name: "settings:get", Window: time.Minute, Limit: 60, Key: rl.KeyIP("settings:get")}
	putPolicy := rl.Policy{Name: "settings:put", Window: time.Minute, Limit: 10, Key: rl.KeyIP("settings:put")}

	var getRL echo.MiddlewareFunc
	var putRL echo.MiddlewareFunc
	if h.rlStore != nil {
		getRL = rl.MiddlewareWithStore(getPolicy, h.rlStore)
		putRL = rl.MiddlewareWithStore(putPolicy, h.rlStore)
	} else {
		getRL = rl.Middleware(getPolicy)
		putRL = rl.Middleware(putPolicy)
	}

	getMW := []echo.MiddlewareFunc{}
	putMW := []echo.MiddlewareFunc{}
	if h.authMW != nil {
		getMW = append(getMW, h.authMW)
		putMW = append(putMW, h.authMW)
	}
	getMW = append(getMW, getRL)
	putMW = append(putMW, putRL)

	e.GET("/v1/admin/settings", h.getSettings, getMW...)
	e.PUT("/v1/admin/settings", h.putSettings, putMW...)
}

// WithAuth injects the admin token middleware for these endpoints.
func (h *Controller) WithAuth(mw echo.MiddlewareFunc) *Controller { h.authMW = mw; return h }

// WithRateLimit injects a shared Store for distributed rate limiting.
func (h *Controller) WithRateLimit(store rl.Store) *Controller { h.rlStore = store; return h }

// WithPublisher injects an audit event publisher.
func (h *Controller) WithPublisher(p evdomain.Publisher) *Controller { h.pub = p; return h }

type settingsResponse struct {
	// EmailProvider is empty when no runtime override is stored and the
	// deployment config decides.
	EmailProvider   string `json:"email_provider"`
	EmailPaused     bool   `json:"email_paused"`
	EmailsPerMinute int    `json:"emails_per_minute"`
	TestRecipient   string `json:"test_recipient"`
	SubscribeLimit  int    `json:"subscribe_limit"`
	SubscribeWindow string `json:"subscribe_window"`
}

type putSettingsRequest struct {
	EmailProvider   *string `json:"email_provider"`
	EmailPaused     *bool   `json:"email_paused"`
	EmailsPerMinute *int    `json:"emails_per_minute"`
	TestRecipient   *string `json:"test_recipient"`
	SubscribeLimit  *int    `json:"subscribe_limit"`
	SubscribeWindow *string `json:"subscribe_window"`
}

// Get Settings godoc
// @Summary      Get operator settings
// @Description  Returns the runtime settings that control notification dispatch
// @Tags         admin
// @Produce      json
// @Success      200  {object}  settingsResponse
// @Failure      401  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/admin/settings [get]
func (h *Controller) getSettings(c echo.Context) error {
	ctx := c.Request().Context()
	provider, _ := h.service.GetString(ctx, sdomain.KeyEmailProvider, "")
	paused, _ := h.service.GetBool(ctx, sdomain.KeyEmailPaused, false)
	perMinute, _ := h.service.GetInt(ctx, sdomain.KeyEmailsPerMinute, 60)
	testRecipient, _ := h.service.GetString(ctx, sdomain.KeyTestRecipient, "")
	subLimit, _ := h.service.GetInt(ctx, sdomain.KeyRLSubscribeLimit, 10)
	subWindow, _ := h.service.GetDuration(ctx, sdomain.KeyRLSubscribeWindow, time.Minute)

	resp := settingsResponse{
		EmailProvider:   provider,
		EmailPaused:     paused,
		EmailsPerMinute: perMinute,
		TestRecipient:   testRecipient,
		SubscribeLimit:  subLimit,
		SubscribeWindow: subWindow.String(),
	}
	return c.JSON(http.StatusOK, resp)
}

// Put Settings godoc
// @Summary      Upsert operator settings
// @Description  Upserts runtime settings. Only whitelisted keys are accepted.
// @Tags         admin
// @Accept       json
// @Param        body  body  putSettingsRequest  true  "settings"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      429  {object}  map[string]string
// @Security     BearerAuth
// @Router       /v1/admin/settings [put]
func (h *Controller) putSettings(c echo.Context) error {
	var req putSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid json"})
	}
	ctx := c.Request().Context()

	// Validate inputs
	if req.EmailProvider != nil {
		v := strings.ToLower(strings.TrimSpace(*req.EmailProvider))
		if v != "mailgun" && v != "smtp" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid email_provider"})
		}
	}
	if req.EmailsPerMinute != nil && *req.EmailsPerMinute < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid emails_per_minute"})
	}
	if req.TestRecipient != nil {
		v := strings.TrimSpace(*req.TestRecipient)
		if v != "" {
			if _, err := mail.ParseAddress(v); err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid test_recipient"})
			}
		}
	}
	if req.SubscribeLimit != nil && *req.SubscribeLimit < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid subscribe_limit"})
	}
	if req.SubscribeWindow != nil {
		if _, err := time.ParseDuration(strings.TrimSpace(*req.SubscribeWindow)); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid subscribe_window"})
		}
	}

	// Upsert allowed keys and track changes
	changed := make([]string, 0, 6)
	if req.EmailProvider != nil {
		v := strings.ToLower(strings.TrimSpace(*req.EmailProvider))
		if err := h.repo.Upsert(ctx, sdomain.KeyEmailProvider, v, false); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		changed = append(changed, sdomain.KeyEmailProvider)
	}
	if req.EmailPaused != nil {
		if err := h.repo.Upsert(ctx, sdomain.KeyEmailPaused, strconv.FormatBool(*req.EmailPaused), false); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		changed = append(changed, sdomain.KeyEmailPaused)
	}
	if req.EmailsPerMinute != nil {
		if err := h.repo.Upsert(ctx, sdomain.KeyEmailsPerMinute, strconv.Itoa(*req.EmailsPerMinute), false); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		changed = append(changed, sdomain.KeyEmailsPerMinute)
	}
	if req.TestRecipient != nil {
		v := strings.TrimSpace(*req.TestRecipient)
		if err := h.repo.Upsert(ctx, sdomain.KeyTestRecipient, v, false); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		changed = append(changed, sdomain.KeyTestRecipient)
	}
	if req.SubscribeLimit != nil {
		if err := h.repo.Upsert(ctx, sdomain.KeyRLSubscribeLimit, strconv.Itoa(*req.SubscribeLimit), false); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		changed = append(changed, sdomain.KeyRLSubscribeLimit)
	}
	if req.SubscribeWindow != nil {
		if err := h.repo.Upsert(ctx, sdomain.KeyRLSubscribeWindow, strings.TrimSpace(*req.SubscribeWindow), false); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		changed = append(changed, sdomain.KeyRLSubscribeWindow)
	}

	// Publish audit event
	if h.pub != nil && len(changed) > 0 {
		meta := map[string]string{
			"changed": strings.Join(changed, ","),
		}
		_ = h.pub.Publish(ctx, evdomain.Event{Type: "settings.update.success", Meta: meta, Time: time.Now()})
	}
	return c.NoContent(http.StatusNoContent)
}
