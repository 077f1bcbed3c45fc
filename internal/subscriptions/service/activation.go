package service

import (
	"context"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	edomain "github.com/kartevonmorgen/kvmflows/internal/email/domain"
	"github.com/kartevonmorgen/kvmflows/internal/metrics"
	sdomain "github.com/kartevonmorgen/kvmflows/internal/settings/domain"
	"github.com/kartevonmorgen/kvmflows/internal/subscriptions/domain"
	"github.com/kartevonmorgen/kvmflows/internal/templates"
)

// ActivationSender delivers the double-opt-in email for a fresh subscription.
type ActivationSender interface {
	SendActivation(ctx context.Context, id, email, title string) error
}

// ActivationMailer renders the activation template and sends it through the
// configured email provider.
type ActivationMailer struct {
	cfg      config.Config
	settings sdomain.Service
	email    edomain.Sender
	renderer *templates.Renderer
}

func NewActivationMailer(cfg config.Config, settings sdomain.Service, email edomain.Sender, renderer *templates.Renderer) *ActivationMailer {
	return &ActivationMailer{cfg: cfg, settings: settings, email: email, renderer: renderer}
}

func (m *ActivationMailer) SendActivation(ctx context.Context, id, email, title string) (err error) {
	defer func() {
		if err == nil {
			metrics.IncEmailOutcome("activation", "success")
		} else {
			metrics.IncEmailOutcome("activation", "failure")
		}
	}()

	link, err := domain.ActivationLink(m.cfg.PublicBaseURL, id)
	if err != nil {
		return err
	}
	html, err := m.renderer.Activation(templates.ActivationContext{
		ActivationLink:    link,
		SubscriptionTitle: title,
	})
	if err != nil {
		return err
	}

	// A configured test recipient redirects all mail, for staging environments.
	to := email
	if tr, _ := m.settings.GetString(ctx, sdomain.KeyTestRecipient, m.cfg.TestRecipient); tr != "" {
		to = tr
	}

	return m.email.Send(ctx, edomain.Message{
		From:    m.cfg.ActivationSender,
		To:      to,
		Subject: m.cfg.ActivationSubject,
		HTML:    html,
	})
}
