package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	edomain "github.com/kartevonmorgen/kvmflows/internal/email/domain"
)

// Ensure SMTP implements domain.Sender
var _ edomain.Sender = (*SMTP)(nil)

// maxSMTPBackoff bounds the doubling retry delay between dial attempts.
const maxSMTPBackoff = 32 * time.Second

type SMTP struct {
	cfg    config.Config
	dialer *gomail.Dialer
}

func NewSMTP(cfg config.Config) *SMTP {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &SMTP{cfg: cfg, dialer: d}
}

// Send delivers through the configured relay. Dial failures are usually
// transient, so failed attempts are retried with a doubling backoff.
func (s *SMTP) Send(ctx context.Context, msg edomain.Message) error {
	if s.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp not configured")
	}
	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	retries := s.cfg.SMTPRetryCount
	if retries < 0 {
		retries = 0
	}
	backoff := s.cfg.SMTPRetryBackoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = s.dialer.DialAndSend(m); lastErr == nil {
			return nil
		}
		if attempt == retries {
			break
		}
		log.Ctx(ctx).Warn().Err(lastErr).
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Str("to", msg.To).
			Msg("smtp send failed, retrying")
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > maxSMTPBackoff {
			backoff = maxSMTPBackoff
		}
	}
	return fmt.Errorf("smtp send to %s after %d attempts: %w", msg.To, retries+1, lastErr)
}
