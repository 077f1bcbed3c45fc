package subscriptions

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	esvc "github.com/kartevonmorgen/kvmflows/internal/email/service"
	"github.com/kartevonmorgen/kvmflows/internal/logger"
	"github.com/kartevonmorgen/kvmflows/internal/platform/adminauth"
	rl "github.com/kartevonmorgen/kvmflows/internal/platform/ratelimit"
	srepo "github.com/kartevonmorgen/kvmflows/internal/settings/repository"
	ssvc "github.com/kartevonmorgen/kvmflows/internal/settings/service"
	ctrl "github.com/kartevonmorgen/kvmflows/internal/subscriptions/controller"
	repo "github.com/kartevonmorgen/kvmflows/internal/subscriptions/repository"
	svc "github.com/kartevonmorgen/kvmflows/internal/subscriptions/service"
	"github.com/kartevonmorgen/kvmflows/internal/templates"
)

// Register wires the subscriptions module and registers HTTP routes.
func Register(e *echo.Echo, pg *pgxpool.Pool, cfg config.Config) error {
	renderer, err := templates.NewRenderer(cfg.ActivationTemplatePath, cfg.DigestTemplatePath)
	if err != nil {
		return err
	}

	settings := ssvc.New(srepo.New(pg))
	sender := esvc.NewRouter(settings, cfg)
	mailer := svc.NewActivationMailer(cfg, settings, sender, renderer)

	s := svc.New(repo.New(pg), cfg, mailer)
	s.SetLogger(logger.New(cfg.AppEnv))

	c := ctrl.New(s).
		WithSettings(settings).
		WithRateLimit(rl.NewRedisStore(cfg))
	if cfg.AdminToken != "" {
		c.WithAuth(adminauth.Middleware(cfg))
	} else {
		log.Warn().Msg("ADMIN_TOKEN not set, subscription listing endpoint disabled")
	}
	c.Register(e)
	return nil
}
