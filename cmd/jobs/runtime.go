package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	esvc "github.com/kartevonmorgen/kvmflows/internal/email/service"
	erepo "github.com/kartevonmorgen/kvmflows/internal/entries/repository"
	ensvc "github.com/kartevonmorgen/kvmflows/internal/entries/service"
	"github.com/kartevonmorgen/kvmflows/internal/logger"
	nsvc "github.com/kartevonmorgen/kvmflows/internal/notifications/service"
	"github.com/kartevonmorgen/kvmflows/internal/ofdb"
	rl "github.com/kartevonmorgen/kvmflows/internal/platform/ratelimit"
	srepo "github.com/kartevonmorgen/kvmflows/internal/settings/repository"
	ssvc "github.com/kartevonmorgen/kvmflows/internal/settings/service"
	subrepo "github.com/kartevonmorgen/kvmflows/internal/subscriptions/repository"
	"github.com/kartevonmorgen/kvmflows/internal/templates"
)

// runtime bundles everything a job needs: config, logging, the Postgres
// pool and the wired sync and notifier services.
type runtime struct {
	cfg      config.Config
	log      zerolog.Logger
	pool     *pgxpool.Pool
	sync     *ensvc.Sync
	notifier *nsvc.Notifier
}

func newRuntime(ctx context.Context) (*runtime, error) {
	if envFile := viper.GetString("env_file"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.AppEnv)

	pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}

	renderer, err := templates.NewRenderer(cfg.ActivationTemplatePath, cfg.DigestTemplatePath)
	if err != nil {
		pool.Close()
		return nil, err
	}

	settings := ssvc.New(srepo.New(pool))
	sender := esvc.NewRouter(settings, cfg)
	entryRepo := erepo.New(pool)

	sync := ensvc.NewSync(entryRepo, ofdb.New(cfg), cfg)
	sync.SetLogger(log)

	notifier := nsvc.New(subrepo.New(pool), entryRepo, sender, renderer, settings, cfg)
	notifier.SetLogger(log)
	notifier.SetCounter(rl.NewRedisCounter(cfg))

	return &runtime{cfg: cfg, log: log, pool: pool, sync: sync, notifier: notifier}, nil
}

func (r *runtime) close() { r.pool.Close() }
