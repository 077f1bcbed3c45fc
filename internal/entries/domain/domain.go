package domain

import (
	"context"
	"time"

	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
	"github.com/kartevonmorgen/kvmflows/internal/ofdb"
)

// BBox is the geographic filter used when matching entries to a
// subscription's area.
type BBox struct {
	LatMin float64
	LonMin float64
	LatMax float64
	LonMax float64
}

// SyncStats summarizes one synchronizer run.
type SyncStats struct {
	Areas          int
	FailedAreas    int
	Upserted       int
	MaxVisibleHits int
	Elapsed        time.Duration
}

// Repository abstracts persistence for synced directory entries.
type Repository interface {
	// BulkUpsert writes entries in one round trip, keeping the newest
	// version of each row. Returns how many entries were submitted.
	BulkUpsert(ctx context.Context, entries []ofdb.Entry) (int, error)
	// ListInBBox returns entries inside box whose last change falls in
	// [from, to), newest first.
	ListInBBox(ctx context.Context, box BBox, from, to time.Time) ([]db.Entry, error)
	GetByID(ctx context.Context, id string) (db.Entry, error)
	Count(ctx context.Context) (int64, error)
}
