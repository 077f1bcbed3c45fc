package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
	"github.com/kartevonmorgen/kvmflows/internal/entries/domain"
	"github.com/kartevonmorgen/kvmflows/internal/ofdb"
)

type SQLCRepository struct {
	q *db.Queries
}

func New(pg *pgxpool.Pool) *SQLCRepository {
	return &SQLCRepository{q: db.New(pg)}
}

func (r *SQLCRepository) BulkUpsert(ctx context.Context, entries []ofdb.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	params := make([]db.UpsertEntriesParams, 0, len(entries))
	for _, e := range entries {
		params = append(params, toUpsertParams(e))
	}

	br := r.q.UpsertEntries(ctx, params)
	var firstErr error
	br.Exec(func(i int, err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	})
	if err := br.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return 0, firstErr
	}
	return len(entries), nil
}

func (r *SQLCRepository) ListInBBox(ctx context.Context, box domain.BBox, from, to time.Time) ([]db.Entry, error) {
	return r.q.ListEntriesInBBox(ctx, db.ListEntriesInBBoxParams{
		Lat:         box.LatMin,
		Lat_2:       box.LatMax,
		Lng:         box.LonMin,
		Lng_2:       box.LonMax,
		UpdatedAt:   pgtype.Timestamptz{Time: from, Valid: true},
		UpdatedAt_2: pgtype.Timestamptz{Time: to, Valid: true},
	})
}

func (r *SQLCRepository) GetByID(ctx context.Context, id string) (db.Entry, error) {
	return r.q.GetEntry(ctx, id)
}

func (r *SQLCRepository) Count(ctx context.Context) (int64, error) {
	return r.q.CountEntries(ctx)
}

func toUpsertParams(e ofdb.Entry) db.UpsertEntriesParams {
	return db.UpsertEntriesParams{
		ID:           e.ID,
		Created:      pgtype.Timestamptz{Time: time.Unix(e.Created, 0).UTC(), Valid: true},
		Version:      int32(e.Version),
		Title:        e.Title,
		Description:  e.Description,
		Lat:          e.Lat,
		Lng:          e.Lng,
		Street:       optText(e.Street),
		Zip:          optText(e.Zip),
		City:         optText(e.City),
		Country:      optText(e.Country),
		State:        optText(e.State),
		ContactName:  optText(e.ContactName),
		Email:        optText(e.Email),
		Telephone:    optText(e.Telephone),
		Homepage:     optText(e.Homepage),
		OpeningHours: optText(e.OpeningHours),
		FoundedOn:    optText(e.FoundedOn),
		License:      e.License,
		ImageUrl:     optText(e.ImageURL),
		ImageLinkUrl: optText(e.ImageLinkURL),
		Categories:   orEmpty(e.Categories),
		Tags:         orEmpty(e.Tags),
		Ratings:      e.Ratings,
	}
}

func optText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// orEmpty keeps NOT NULL array columns satisfied when the API omits a list.
func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
