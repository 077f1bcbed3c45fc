package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	edomain "github.com/kartevonmorgen/kvmflows/internal/email/domain"
)

// Ensure Mailgun implements domain.Sender
var _ edomain.Sender = (*Mailgun)(nil)

type Mailgun struct {
	cfg  config.Config
	http *http.Client
}

func NewMailgun(cfg config.Config) *Mailgun {
	return &Mailgun{cfg: cfg, http: &http.Client{Timeout: 10 * time.Second}}
}

func (m *Mailgun) Send(ctx context.Context, msg edomain.Message) error {
	if m.cfg.MailgunDomain == "" || m.cfg.MailgunAPIKey == "" {
		return fmt.Errorf("mailgun not configured")
	}
	form := url.Values{}
	form.Set("from", msg.From)
	form.Set("to", msg.To)
	form.Set("subject", msg.Subject)
	form.Set("html", msg.HTML)
	if m.cfg.MailgunTestMode {
		form.Set("o:testmode", "yes")
	}
	endpoint := strings.TrimRight(m.cfg.MailgunBaseURL, "/") + "/v3/" + m.cfg.MailgunDomain + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.cfg.MailgunAPIKey)
	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mailgun send failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}
