package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
	"github.com/kartevonmorgen/kvmflows/internal/subscriptions/domain"
)

type SQLCRepository struct {
	q *db.Queries
}

func New(pg *pgxpool.Pool) *SQLCRepository {
	return &SQLCRepository{q: db.New(pg)}
}

func toPgUUID(u uuid.UUID) pgtype.UUID {
	var id pgtype.UUID
	id.Bytes = u
	id.Valid = true
	return id
}

func (r *SQLCRepository) Create(ctx context.Context, in domain.CreateInput) (db.Subscription, error) {
	return r.q.CreateSubscription(ctx, db.CreateSubscriptionParams{
		Title:            in.Title,
		Email:            in.Email,
		LatMin:           in.LatMin,
		LonMin:           in.LonMin,
		LatMax:           in.LatMax,
		LonMax:           in.LonMax,
		Interval:         in.Interval,
		SubscriptionType: in.SubscriptionType,
		Language:         in.Language,
	})
}

func (r *SQLCRepository) GetByID(ctx context.Context, id uuid.UUID) (db.Subscription, error) {
	return r.q.GetSubscription(ctx, toPgUUID(id))
}

func (r *SQLCRepository) FindSimilar(ctx context.Context, in domain.CreateInput) (db.Subscription, error) {
	return r.q.FindSimilarSubscription(ctx, db.FindSimilarSubscriptionParams{
		Email:            in.Email,
		Interval:         in.Interval,
		LatMin:           in.LatMin,
		LonMin:           in.LonMin,
		LatMax:           in.LatMax,
		LonMax:           in.LonMax,
		SubscriptionType: in.SubscriptionType,
		Language:         in.Language,
	})
}

func (r *SQLCRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (db.Subscription, error) {
	return r.q.SetSubscriptionActive(ctx, db.SetSubscriptionActiveParams{
		ID:       toPgUUID(id),
		IsActive: active,
	})
}

func (r *SQLCRepository) List(ctx context.Context, interval string, active int, email string, limit, offset int32) ([]db.Subscription, int64, error) {
	items, err := r.q.ListSubscriptions(ctx, db.ListSubscriptionsParams{
		Column1: interval,
		Column2: int32(active),
		Column3: email,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := r.q.CountSubscriptions(ctx, db.CountSubscriptionsParams{
		Column1: interval,
		Column2: int32(active),
		Column3: email,
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *SQLCRepository) ListActiveByInterval(ctx context.Context, interval string) ([]db.Subscription, error) {
	return r.q.ListActiveSubscriptionsByInterval(ctx, interval)
}

func (r *SQLCRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.q.DeleteSubscription(ctx, toPgUUID(id))
}
