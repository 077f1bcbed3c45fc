package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
)

type SQLCRepository struct{ q *db.Queries }

func New(pg *pgxpool.Pool) *SQLCRepository { return &SQLCRepository{q: db.New(pg)} }

func (r *SQLCRepository) Get(ctx context.Context, key string) (string, bool, error) {
	row, err := r.q.GetAppSetting(ctx, key)
	if err != nil {
		return "", false, nil
	}
	return row.Value, true, nil
}

func (r *SQLCRepository) Upsert(ctx context.Context, key, value string, secret bool) error {
	_, err := r.q.UpsertAppSetting(ctx, db.UpsertAppSettingParams{
		Key:      key,
		Value:    value,
		IsSecret: secret,
	})
	return err
}

func (r *SQLCRepository) List(ctx context.Context) (map[string]string, error) {
	rows, err := r.q.ListAppSettings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		if row.IsSecret {
			continue
		}
		out[row.Key] = row.Value
	}
	return out, nil
}
