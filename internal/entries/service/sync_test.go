package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	db "github.com/kartevonmorgen/kvmflows/internal/db/sqlc"
	"github.com/kartevonmorgen/kvmflows/internal/entries/domain"
	"github.com/kartevonmorgen/kvmflows/internal/ofdb"
)

type fakeDirectory struct {
	searchFn func(ctx context.Context, boxes []ofdb.BBox) ([]ofdb.SearchResult, error)
	getFn    func(ctx context.Context, ids []string) ([]ofdb.Entry, error)
	recentFn func(ctx context.Context, since time.Time) ([]ofdb.Entry, error)
}

func (f *fakeDirectory) SearchMany(ctx context.Context, boxes []ofdb.BBox) ([]ofdb.SearchResult, error) {
	return f.searchFn(ctx, boxes)
}

func (f *fakeDirectory) GetEntries(ctx context.Context, ids []string) ([]ofdb.Entry, error) {
	return f.getFn(ctx, ids)
}

func (f *fakeDirectory) RecentlyChangedAll(ctx context.Context, since time.Time) ([]ofdb.Entry, error) {
	return f.recentFn(ctx, since)
}

type fakeEntryRepo struct {
	mu        sync.Mutex
	upserts   [][]ofdb.Entry
	upsertErr error
}

func (f *fakeEntryRepo) BulkUpsert(ctx context.Context, entries []ofdb.Entry) (int, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.mu.Lock()
	f.upserts = append(f.upserts, entries)
	f.mu.Unlock()
	return len(entries), nil
}

func (f *fakeEntryRepo) ListInBBox(ctx context.Context, box domain.BBox, from, to time.Time) ([]db.Entry, error) {
	return nil, nil
}

func (f *fakeEntryRepo) GetByID(ctx context.Context, id string) (db.Entry, error) {
	return db.Entry{}, nil
}

func (f *fakeEntryRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

func oneAreaConfig() config.Config {
	return config.Config{
		Areas: []config.Area{{
			Name:   "test",
			LatMin: 0, LatMax: 10,
			LngMin: 0, LngMax: 10,
			LatChunks: 3, LngChunks: 2,
		}},
	}
}

func TestGridBoxes(t *testing.T) {
	boxes := gridBoxes(config.Area{
		LatMin: 0, LatMax: 10, LngMin: 0, LngMax: 10,
		LatChunks: 3, LngChunks: 2,
	})
	if len(boxes) != 2 {
		t.Fatalf("boxes = %d, want 2", len(boxes))
	}
	want := []ofdb.BBox{
		{LatMin: 0, LngMin: 0, LatMax: 5, LngMax: 10},
		{LatMin: 5, LngMin: 0, LatMax: 10, LngMax: 10},
	}
	for i := range want {
		if boxes[i] != want[i] {
			t.Errorf("boxes[%d] = %+v, want %+v", i, boxes[i], want[i])
		}
	}
}

func TestLinspaceEndpoints(t *testing.T) {
	vals := linspace(43.9137, 55.3666, 10)
	if len(vals) != 10 {
		t.Fatalf("len = %d", len(vals))
	}
	if vals[0] != 43.9137 || vals[9] != 55.3666 {
		t.Errorf("endpoints = %v, %v", vals[0], vals[9])
	}
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			t.Errorf("not increasing at %d: %v", i, vals)
		}
	}
	step := vals[1] - vals[0]
	for i := 2; i < len(vals); i++ {
		if math.Abs((vals[i]-vals[i-1])-step) > 1e-9 {
			t.Errorf("uneven step at %d", i)
		}
	}
}

func TestSyncAllUpsertsVisibleEntries(t *testing.T) {
	var gotBoxes []ofdb.BBox
	dir := &fakeDirectory{
		searchFn: func(ctx context.Context, boxes []ofdb.BBox) ([]ofdb.SearchResult, error) {
			gotBoxes = boxes
			results := make([]ofdb.SearchResult, len(boxes))
			// First cell has hits, the rest stay empty and are skipped.
			results[0].Visible = []ofdb.SearchHit{{ID: "a"}, {ID: "b"}, {ID: "c"}}
			return results, nil
		},
		getFn: func(ctx context.Context, ids []string) ([]ofdb.Entry, error) {
			entries := make([]ofdb.Entry, 0, len(ids))
			for _, id := range ids {
				entries = append(entries, ofdb.Entry{ID: id, Version: 1})
			}
			return entries, nil
		},
	}
	repo := &fakeEntryRepo{}
	sync := NewSync(repo, dir, oneAreaConfig())

	stats, err := sync.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll: %v", err)
	}
	if len(gotBoxes) != 2 {
		t.Errorf("boxes = %d, want 2 cells for a 3x2 grid", len(gotBoxes))
	}
	if stats.Upserted != 3 {
		t.Errorf("upserted = %d, want 3", stats.Upserted)
	}
	if stats.MaxVisibleHits != 3 {
		t.Errorf("max hits = %d, want 3", stats.MaxVisibleHits)
	}
	if stats.FailedAreas != 0 {
		t.Errorf("failed areas = %d", stats.FailedAreas)
	}
	if len(repo.upserts) != 1 {
		t.Errorf("upsert batches = %d, want 1", len(repo.upserts))
	}
}

func TestSyncAllCountsFailedArea(t *testing.T) {
	cfg := config.Config{
		Areas: []config.Area{
			{Name: "good", LatMin: 0, LatMax: 10, LngMin: 0, LngMax: 10, LatChunks: 2, LngChunks: 2},
			{Name: "bad", LatMin: 20, LatMax: 30, LngMin: 20, LngMax: 30, LatChunks: 2, LngChunks: 2},
		},
	}
	dir := &fakeDirectory{
		searchFn: func(ctx context.Context, boxes []ofdb.BBox) ([]ofdb.SearchResult, error) {
			if boxes[0].LatMin >= 20 {
				return make([]ofdb.SearchResult, len(boxes)), errors.New("bbox 20,20,30,30: status 502")
			}
			return []ofdb.SearchResult{
				{Visible: []ofdb.SearchHit{{ID: "x"}}},
			}, nil
		},
		getFn: func(ctx context.Context, ids []string) ([]ofdb.Entry, error) {
			return []ofdb.Entry{{ID: "x", Version: 2}}, nil
		},
	}
	repo := &fakeEntryRepo{}
	sync := NewSync(repo, dir, cfg)

	stats, err := sync.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("one failed area out of two should not fail the run: %v", err)
	}
	if stats.FailedAreas != 1 {
		t.Errorf("failed areas = %d, want 1", stats.FailedAreas)
	}
	// The healthy area still landed.
	if stats.Upserted != 1 {
		t.Errorf("upserted = %d, want 1", stats.Upserted)
	}
}

func TestSyncAllFailsWhenEverythingFails(t *testing.T) {
	dir := &fakeDirectory{
		searchFn: func(ctx context.Context, boxes []ofdb.BBox) ([]ofdb.SearchResult, error) {
			return make([]ofdb.SearchResult, len(boxes)), errors.New("upstream down")
		},
		getFn: func(ctx context.Context, ids []string) ([]ofdb.Entry, error) {
			return nil, nil
		},
	}
	sync := NewSync(&fakeEntryRepo{}, dir, oneAreaConfig())

	if _, err := sync.SyncAll(context.Background()); err == nil {
		t.Fatalf("expected error when all areas fail")
	}
}

func TestSyncRecent(t *testing.T) {
	var gotSince time.Time
	dir := &fakeDirectory{
		recentFn: func(ctx context.Context, since time.Time) ([]ofdb.Entry, error) {
			gotSince = since
			return []ofdb.Entry{{ID: "r1"}, {ID: "r2"}}, nil
		},
	}
	repo := &fakeEntryRepo{}
	cfg := config.Config{RecentWindow: 24 * time.Hour}
	sync := NewSync(repo, dir, cfg)

	n, err := sync.SyncRecent(context.Background())
	if err != nil {
		t.Fatalf("SyncRecent: %v", err)
	}
	if n != 2 {
		t.Errorf("upserted = %d, want 2", n)
	}
	wantSince := time.Now().Add(-24 * time.Hour)
	if gotSince.Before(wantSince.Add(-time.Minute)) || gotSince.After(wantSince.Add(time.Minute)) {
		t.Errorf("since = %v, want about %v", gotSince, wantSince)
	}
}

func TestSyncRecentUpsertError(t *testing.T) {
	dir := &fakeDirectory{
		recentFn: func(ctx context.Context, since time.Time) ([]ofdb.Entry, error) {
			return []ofdb.Entry{{ID: "r1"}}, nil
		},
	}
	repo := &fakeEntryRepo{upsertErr: errors.New("db down")}
	sync := NewSync(repo, dir, config.Config{RecentWindow: time.Hour})

	if _, err := sync.SyncRecent(context.Background()); err == nil {
		t.Fatalf("expected upsert error")
	}
}
