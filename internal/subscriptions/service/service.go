package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
	evdomain "github.com/kartevonmorgen/kvmflows/internal/events/domain"
	evsvc "github.com/kartevonmorgen/kvmflows/internal/events/service"
	"github.com/kartevonmorgen/kvmflows/internal/metrics"
	"github.com/kartevonmorgen/kvmflows/internal/subscriptions/domain"
)

// Service implements domain.Service.
type Service struct {
	repo   domain.Repository
	cfg    config.Config
	mailer ActivationSender
	pub    evdomain.Publisher
	log    zerolog.Logger
}

func New(repo domain.Repository, cfg config.Config, mailer ActivationSender) *Service {
	return &Service{repo: repo, cfg: cfg, mailer: mailer, pub: evsvc.NewLogger(), log: zerolog.Nop()}
}

// SetPublisher allows tests or callers to override the event publisher.
func (s *Service) SetPublisher(p evdomain.Publisher) { s.pub = p }

// SetLogger allows injection of a structured logger.
func (s *Service) SetLogger(l zerolog.Logger) { s.log = l }

func (s *Service) Create(ctx context.Context, in domain.CreateInput) (db.Subscription, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Title == "" {
		return db.Subscription{}, errors.New("title is required")
	}
	if in.Email == "" {
		return db.Subscription{}, errors.New("email is required")
	}
	if !domain.ValidInterval(in.Interval) {
		return db.Subscription{}, fmt.Errorf("unknown interval %q", in.Interval)
	}
	if !domain.ValidType(in.SubscriptionType) {
		return db.Subscription{}, fmt.Errorf("unknown subscription type %q", in.SubscriptionType)
	}
	if in.Language == "" {
		in.Language = "en"
	}
	if !domain.ValidLanguage(in.Language) {
		return db.Subscription{}, fmt.Errorf("unsupported language %q", in.Language)
	}
	if in.LatMin > in.LatMax || in.LonMin > in.LonMax {
		return db.Subscription{}, errors.New("bounding box min exceeds max")
	}

	// Duplicate check matches on email, area, interval, type and language.
	// Title is a display label and does not make a subscription distinct.
	if _, err := s.repo.FindSimilar(ctx, in); err == nil {
		return db.Subscription{}, domain.ErrSimilarExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return db.Subscription{}, err
	}

	sub, err := s.repo.Create(ctx, in)
	if err != nil {
		return db.Subscription{}, err
	}

	// Activation mail is best effort. The subscription stays inactive until
	// the link is clicked, so a failed send only delays opt-in.
	if s.mailer != nil {
		if err := s.mailer.SendActivation(ctx, subID(sub).String(), sub.Email, sub.Title); err != nil {
			s.log.Error().Err(err).Str("subscription_id", subID(sub).String()).Msg("activation email failed")
		}
	}

	metrics.IncSubscription("created")
	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:           "subscription.created",
		SubscriptionID: subID(sub),
		Email:          sub.Email,
		Meta:           map[string]string{"interval": sub.Interval, "type": sub.SubscriptionType},
		Time:           time.Now(),
	})
	return sub, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (db.Subscription, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Subscription{}, domain.ErrNotFound
	}
	return sub, err
}

// Activate flips a pending subscription to active. Clicking the emailed
// link twice is fine; the second call reports alreadyActive.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (db.Subscription, bool, error) {
	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return db.Subscription{}, false, err
	}
	if sub.IsActive {
		return sub, true, nil
	}

	sub, err = s.repo.SetActive(ctx, id, true)
	if err != nil {
		return db.Subscription{}, false, err
	}

	metrics.IncSubscription("activated")
	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:           "subscription.activated",
		SubscriptionID: id,
		Email:          sub.Email,
		Meta:           map[string]string{"interval": sub.Interval},
		Time:           time.Now(),
	})
	return sub, false, nil
}

// Unsubscribe deactivates a subscription. Repeat calls succeed.
func (s *Service) Unsubscribe(ctx context.Context, id uuid.UUID) (db.Subscription, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return db.Subscription{}, err
	}

	sub, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return db.Subscription{}, err
	}

	metrics.IncSubscription("unsubscribed")
	_ = s.pub.Publish(ctx, evdomain.Event{
		Type:           "subscription.unsubscribed",
		SubscriptionID: id,
		Email:          sub.Email,
		Meta:           map[string]string{"interval": sub.Interval},
		Time:           time.Now(),
	})
	return sub, nil
}

func (s *Service) List(ctx context.Context, opts domain.ListOptions) (domain.ListResult, error) {
	if opts.PageSize <= 0 || opts.PageSize > 100 {
		opts.PageSize = 20
	}
	if opts.Page <= 0 {
		opts.Page = 1
	}
	if opts.Active != -1 && opts.Active != 0 && opts.Active != 1 {
		opts.Active = -1
	}
	limit := int32(opts.PageSize)
	offset := int32((opts.Page - 1) * opts.PageSize)

	items, total, err := s.repo.List(ctx, opts.Interval, opts.Active, opts.Email, limit, offset)
	if err != nil {
		return domain.ListResult{}, err
	}
	totalPages := int(total) / opts.PageSize
	if int(total)%opts.PageSize != 0 {
		totalPages++
	}
	return domain.ListResult{
		Items:      items,
		Total:      total,
		Page:       opts.Page,
		PageSize:   opts.PageSize,
		TotalPages: totalPages,
	}, nil
}

func subID(sub db.Subscription) uuid.UUID {
	return uuid.UUID(sub.ID.Bytes)
}
