package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
	edomain "github.com/kartevonmorgen/kvmflows/internal/email/domain"
	endomain "github.com/kartevonmorgen/kvmflows/internal/entries/domain"
	evdomain "github.com/kartevonmorgen/kvmflows/internal/events/domain"
	evsvc "github.com/kartevonmorgen/kvmflows/internal/events/service"
	"github.com/kartevonmorgen/kvmflows/internal/metrics"
	"github.com/kartevonmorgen/kvmflows/internal/notifications/domain"
	rl "github.com/kartevonmorgen/kvmflows/internal/platform/ratelimit"
	sdomain "github.com/kartevonmorgen/kvmflows/internal/settings/domain"
	subdomain "github.com/kartevonmorgen/kvmflows/internal/subscriptions/domain"
	"github.com/kartevonmorgen/kvmflows/internal/templates"
)

// Subscriptions is the slice of the subscription store the notifier reads.
type Subscriptions interface {
	ListActiveByInterval(ctx context.Context, interval string) ([]db.Subscription, error)
}

// Entries is the slice of the entry mirror the notifier reads.
type Entries interface {
	ListInBBox(ctx context.Context, box endomain.BBox, from, to time.Time) ([]db.Entry, error)
}

// Notifier composes and dispatches digest emails, one interval per run.
type Notifier struct {
	subs     Subscriptions
	entries  Entries
	sender   edomain.Sender
	renderer *templates.Renderer
	settings sdomain.Service
	counter  rl.CounterStore
	cfg      config.Config
	pub      evdomain.Publisher
	log      zerolog.Logger
}

func New(subs Subscriptions, entries Entries, sender edomain.Sender, renderer *templates.Renderer, settings sdomain.Service, cfg config.Config) *Notifier {
	return &Notifier{
		subs:     subs,
		entries:  entries,
		sender:   sender,
		renderer: renderer,
		settings: settings,
		cfg:      cfg,
		pub:      evsvc.NewLogger(),
		log:      zerolog.Nop(),
	}
}

// SetLogger allows injection of a structured logger.
func (n *Notifier) SetLogger(l zerolog.Logger) { n.log = l }

// SetPublisher allows overriding the default logging publisher.
func (n *Notifier) SetPublisher(p evdomain.Publisher) {
	if p != nil {
		n.pub = p
	}
}

// SetCounter wires a shared limiter store to pace outbound mail. Without
// one the batch is sent unpaced.
func (n *Notifier) SetCounter(c rl.CounterStore) { n.counter = c }

type digestJob struct {
	sub db.Subscription
	msg edomain.Message
}

// Send dispatches digests to every active subscription on the given
// interval. Subscriptions with no new entries in the interval window are
// skipped; per-subscription failures are counted and never stop the batch.
func (n *Notifier) Send(ctx context.Context, interval string) (domain.Stats, error) {
	if !subdomain.ValidInterval(interval) {
		return domain.Stats{}, fmt.Errorf("unknown interval %q", interval)
	}
	start := time.Now()
	stats := domain.Stats{Interval: interval}

	// Operators can pause all digest mail at runtime through settings.
	if paused, _ := n.settings.GetBool(ctx, sdomain.KeyEmailPaused, false); paused {
		n.log.Warn().Str("interval", interval).Msg("email dispatch paused, skipping run")
		return stats, nil
	}

	subs, err := n.subs.ListActiveByInterval(ctx, interval)
	if err != nil {
		return stats, fmt.Errorf("list %s subscriptions: %w", interval, err)
	}
	stats.Subscriptions = len(subs)

	from, to := subdomain.IntervalWindow(interval, time.Now().UTC())
	testTo, _ := n.settings.GetString(ctx, sdomain.KeyTestRecipient, n.cfg.TestRecipient)

	jobs := make([]digestJob, 0, len(subs))
	for _, sub := range subs {
		box := endomain.BBox{LatMin: sub.LatMin, LonMin: sub.LonMin, LatMax: sub.LatMax, LonMax: sub.LonMax}
		found, err := n.entries.ListInBBox(ctx, box, from, to)
		if err != nil {
			n.log.Error().Err(err).Str("subscription_id", subID(sub)).Msg("entry lookup failed")
			stats.Failed++
			continue
		}
		if len(found) == 0 {
			stats.Skipped++
			continue
		}
		msg, err := n.compose(sub, found, interval)
		if err != nil {
			n.log.Error().Err(err).Str("subscription_id", subID(sub)).Msg("digest render failed")
			stats.Failed++
			continue
		}
		if testTo != "" {
			msg.To = testTo
		}
		jobs = append(jobs, digestJob{sub: sub, msg: msg})
	}

	var sent, failed atomic.Int64
	var g errgroup.Group
	limit := n.cfg.EmailConcurrency
	if limit <= 0 {
		limit = 5
	}
	g.SetLimit(limit)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			n.pace(ctx)
			begin := time.Now()
			err := n.sendWithRetry(ctx, job.msg)
			metrics.ObserveEmailSend("digest", time.Since(begin).Seconds())
			if err != nil {
				n.log.Error().Err(err).
					Str("subscription_id", subID(job.sub)).
					Str("interval", interval).
					Msg("digest send failed")
				metrics.IncEmailOutcome("digest", "failure")
				failed.Add(1)
				return nil
			}
			metrics.IncEmailOutcome("digest", "success")
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	stats.Sent = int(sent.Load())
	stats.Failed += int(failed.Load())
	stats.Elapsed = time.Since(start)

	n.log.Info().
		Str("interval", interval).
		Int("subscriptions", stats.Subscriptions).
		Dur("elapsed", stats.Elapsed).
		Msgf("digest dispatch finished: %d successful, %d failed, %d skipped (no new entries)",
			stats.Sent, stats.Failed, stats.Skipped)

	_ = n.pub.Publish(ctx, evdomain.Event{
		Type: "notify." + interval + ".completed",
		Meta: map[string]string{
			"sent":    strconv.Itoa(stats.Sent),
			"failed":  strconv.Itoa(stats.Failed),
			"skipped": strconv.Itoa(stats.Skipped),
		},
		Time: time.Now(),
	})
	return stats, nil
}

// SendTest renders a digest with sample data and sends it to the given
// address, exercising the template and provider path end to end.
func (n *Notifier) SendTest(ctx context.Context, to string) (err error) {
	defer func() {
		if err == nil {
			metrics.IncEmailOutcome("test", "success")
		} else {
			metrics.IncEmailOutcome("test", "failure")
		}
	}()

	if to == "" {
		to, _ = n.settings.GetString(ctx, sdomain.KeyTestRecipient, n.cfg.TestRecipient)
	}
	if to == "" {
		return errors.New("no recipient: pass --to or set EMAIL_TEST_RECIPIENT")
	}

	id := uuid.Nil.String()
	unsubscribe, err := subdomain.UnsubscribeLink(n.cfg.PublicBaseURL, id)
	if err != nil {
		return err
	}
	html, err := n.renderer.Digest(templates.DigestContext{
		Subscription: templates.SubscriptionView{ID: id, Title: "Test area", Email: to},
		Entries: []templates.EntryView{{
			ID:          "0000000000000000000000000000000000",
			Title:       "Example initiative",
			Description: "A sample entry to verify digest delivery.",
			Category:    "initiative",
			Tags:        "test, sample",
			AddressLine: "Musterstr. 1 10115 Berlin",
			Homepage:    "https://example.org",
		}},
		Interval:        subdomain.IntervalDaily,
		Domain:          n.cfg.MapDomain,
		UnsubscribeLink: unsubscribe,
	})
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, edomain.Message{
		From:    n.cfg.DigestSender,
		To:      to,
		Subject: "[test] " + n.cfg.DigestSubject,
		HTML:    html,
	})
}

func (n *Notifier) compose(sub db.Subscription, found []db.Entry, interval string) (edomain.Message, error) {
	id := subID(sub)
	unsubscribe, err := subdomain.UnsubscribeLink(n.cfg.PublicBaseURL, id)
	if err != nil {
		return edomain.Message{}, err
	}
	views := make([]templates.EntryView, 0, len(found))
	for _, e := range found {
		views = append(views, entryView(e))
	}
	html, err := n.renderer.Digest(templates.DigestContext{
		Subscription:    templates.SubscriptionView{ID: id, Title: sub.Title, Email: sub.Email},
		Entries:         views,
		Interval:        interval,
		Domain:          n.cfg.MapDomain,
		UnsubscribeLink: unsubscribe,
	})
	if err != nil {
		return edomain.Message{}, err
	}
	return edomain.Message{
		From:    n.cfg.DigestSender,
		To:      sub.Email,
		Subject: n.cfg.DigestSubject,
		HTML:    html,
	}, nil
}

// pace blocks until the shared fixed-window counter admits one more email.
// Fail-open on store errors, matching the HTTP limiter.
func (n *Notifier) pace(ctx context.Context) {
	if n.counter == nil {
		return
	}
	limit, _ := n.settings.GetInt(ctx, sdomain.KeyEmailsPerMinute, n.cfg.EmailRatePerMinute)
	if limit <= 0 {
		return
	}
	for {
		allowed, retryAfter, err := n.counter.AllowCtx(ctx, "email:dispatch", limit, time.Minute)
		if err != nil || allowed {
			return
		}
		wait := time.Duration(retryAfter) * time.Second
		if wait <= 0 {
			wait = time.Second
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

func (n *Notifier) sendWithRetry(ctx context.Context, msg edomain.Message) error {
	attempts := n.cfg.EmailMaxRetries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(time.Duration(attempt) * n.cfg.EmailRetryDelay):
			}
		}
		if lastErr = n.sender.Send(ctx, msg); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("send to %s after %d attempts: %w", msg.To, attempts, lastErr)
}

func entryView(e db.Entry) templates.EntryView {
	v := templates.EntryView{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Tags:        strings.Join(e.Tags, ", "),
		AddressLine: addressLine(e),
		Homepage:    e.Homepage.String,
		Email:       e.Email.String,
		Phone:       e.Telephone.String,
	}
	if len(e.Categories) > 0 {
		v.Category = e.Categories[0]
	}
	return v
}

func addressLine(e db.Entry) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.Street.String, e.Zip.String, e.City.String} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func subID(sub db.Subscription) string {
	return uuid.UUID(sub.ID.Bytes).String()
}
