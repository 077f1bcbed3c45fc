package service

import (
	"context"
	"strings"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	edomain "github.com/kartevonmorgen/kvmflows/internal/email/domain"
	sdomain "github.com/kartevonmorgen/kvmflows/internal/settings/domain"
)

// Ensure Router implements domain.Sender
var _ edomain.Sender = (*Router)(nil)

type Router struct {
	cfg      config.Config
	settings sdomain.Service
	smtp     edomain.Sender
	mailgun  edomain.Sender
}

func NewRouter(settings sdomain.Service, cfg config.Config) *Router {
	return &Router{cfg: cfg, settings: settings, smtp: NewSMTP(cfg), mailgun: NewMailgun(cfg)}
}

func (r *Router) Send(ctx context.Context, msg edomain.Message) error {
	prov := r.cfg.EmailProvider
	if r.settings != nil {
		prov, _ = r.settings.GetString(ctx, sdomain.KeyEmailProvider, r.cfg.EmailProvider)
	}
	switch strings.ToLower(prov) {
	case "smtp":
		return r.smtp.Send(ctx, msg)
	default:
		return r.mailgun.Send(ctx, msg)
	}
}
