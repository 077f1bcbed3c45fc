package settings

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	evsvc "github.com/kartevonmorgen/kvmflows/internal/events/service"
	"github.com/kartevonmorgen/kvmflows/internal/platform/adminauth"
	rl "github.com/kartevonmorgen/kvmflows/internal/platform/ratelimit"
	ctrl "github.com/kartevonmorgen/kvmflows/internal/settings/controller"
	repo "github.com/kartevonmorgen/kvmflows/internal/settings/repository"
	svc "github.com/kartevonmorgen/kvmflows/internal/settings/service"
)

// Register wires the settings module and registers HTTP routes.
// The admin endpoints require ADMIN_TOKEN; without one they are not mounted.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config) {
	if cfg.AdminToken == "" {
		log.Warn().Msg("ADMIN_TOKEN not set, admin settings endpoints disabled")
		return
	}

	r := repo.New(pg)
	s := svc.New(r)
	c := ctrl.New(r, s)

	store := rl.NewRedisStore(cfg)
	pub := evsvc.NewLogger()

	c.WithAuth(adminauth.Middleware(cfg)).WithRateLimit(store).WithPublisher(pub)
	c.Register(e)
}
