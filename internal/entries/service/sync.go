package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	"github.com/kartevonmorgen/kvmflows/internal/entries/domain"
	"github.com/kartevonmorgen/kvmflows/internal/metrics"
	"github.com/kartevonmorgen/kvmflows/internal/ofdb"
)

// Directory is the slice of the directory API client the synchronizer uses.
type Directory interface {
	SearchMany(ctx context.Context, boxes []ofdb.BBox) ([]ofdb.SearchResult, error)
	GetEntries(ctx context.Context, ids []string) ([]ofdb.Entry, error)
	RecentlyChangedAll(ctx context.Context, since time.Time) ([]ofdb.Entry, error)
}

// Sync crawls the directory and mirrors entries into Postgres.
type Sync struct {
	repo domain.Repository
	dir  Directory
	cfg  config.Config
	log  zerolog.Logger
}

func NewSync(repo domain.Repository, dir Directory, cfg config.Config) *Sync {
	return &Sync{repo: repo, dir: dir, cfg: cfg, log: zerolog.Nop()}
}

// SetLogger allows injection of a structured logger.
func (s *Sync) SetLogger(l zerolog.Logger) { s.log = l }

// SyncAll crawls every configured area cell by cell and upserts all visible
// entries. Areas run concurrently; a failing area is counted and skipped
// without stopping the others. Upserts that landed before a failure are
// still counted.
func (s *Sync) SyncAll(ctx context.Context) (domain.SyncStats, error) {
	start := time.Now()
	stats := domain.SyncStats{Areas: len(s.cfg.Areas)}

	type areaResult struct {
		upserted int
		maxHits  int
		err      error
	}
	results := make([]areaResult, len(s.cfg.Areas))

	var g errgroup.Group
	for i, area := range s.cfg.Areas {
		i, area := i, area
		g.Go(func() error {
			up, maxHits, err := s.syncArea(ctx, area)
			results[i] = areaResult{upserted: up, maxHits: maxHits, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, res := range results {
		stats.Upserted += res.upserted
		if res.maxHits > stats.MaxVisibleHits {
			stats.MaxVisibleHits = res.maxHits
		}
		if res.err != nil {
			stats.FailedAreas++
			s.log.Error().Err(res.err).Str("area", s.cfg.Areas[i].Name).Msg("area sync failed")
		}
	}
	stats.Elapsed = time.Since(start)

	s.log.Info().
		Int("upserted", stats.Upserted).
		Int("areas_ok", stats.Areas-stats.FailedAreas).
		Int("areas", stats.Areas).
		Int("max_visible_hits", stats.MaxVisibleHits).
		Dur("elapsed", stats.Elapsed).
		Msg("full sync completed")

	if stats.Areas > 0 && stats.FailedAreas == stats.Areas {
		return stats, errors.New("all areas failed to sync")
	}
	return stats, nil
}

func (s *Sync) syncArea(ctx context.Context, area config.Area) (upserted, maxHits int, err error) {
	boxes := gridBoxes(area)
	s.log.Info().Str("area", area.Name).Int("cells", len(boxes)).Msg("syncing area")

	results, searchErr := s.dir.SearchMany(ctx, boxes)
	if searchErr != nil {
		s.log.Warn().Err(searchErr).Str("area", area.Name).Msg("search failed for some cells")
	}

	for _, res := range results {
		if len(res.Visible) == 0 {
			continue
		}
		if len(res.Visible) > maxHits {
			maxHits = len(res.Visible)
		}

		ids := make([]string, 0, len(res.Visible))
		for _, hit := range res.Visible {
			ids = append(ids, hit.ID)
		}
		entries, ferr := s.dir.GetEntries(ctx, ids)
		if ferr != nil {
			s.log.Warn().Err(ferr).Str("area", area.Name).Msg("entry fetch failed for cell")
		}
		if len(entries) == 0 {
			continue
		}

		n, uerr := s.repo.BulkUpsert(ctx, entries)
		if uerr != nil {
			return upserted, maxHits, uerr
		}
		upserted += n
		metrics.AddEntriesUpserted(n)
	}
	return upserted, maxHits, searchErr
}

// SyncRecent pulls the changed feed for the configured lookback window and
// upserts everything it returns.
func (s *Sync) SyncRecent(ctx context.Context) (int, error) {
	since := time.Now().Add(-s.cfg.RecentWindow)
	entries, err := s.dir.RecentlyChangedAll(ctx, since)
	if err != nil && len(entries) == 0 {
		return 0, err
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("recent feed partially failed")
	}

	n, uerr := s.repo.BulkUpsert(ctx, entries)
	if uerr != nil {
		return 0, uerr
	}
	metrics.AddEntriesUpserted(n)
	s.log.Info().Int("upserted", n).Time("since", since).Msg("recent sync completed")
	return n, nil
}

// gridBoxes cuts an area into its configured search grid. Chunk counts are
// the number of grid lines per axis, so n x m lines yield (n-1)*(m-1)
// cells.
func gridBoxes(area config.Area) []ofdb.BBox {
	lats := linspace(area.LatMin, area.LatMax, area.LatChunks)
	lngs := linspace(area.LngMin, area.LngMax, area.LngChunks)
	boxes := make([]ofdb.BBox, 0, (len(lats)-1)*(len(lngs)-1))
	for i := 0; i < len(lats)-1; i++ {
		for j := 0; j < len(lngs)-1; j++ {
			boxes = append(boxes, ofdb.BBox{
				LatMin: lats[i],
				LngMin: lngs[j],
				LatMax: lats[i+1],
				LngMax: lngs[j+1],
			})
		}
	}
	return boxes
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo, hi}
	}
	step := (hi - lo) / float64(n-1)
	vals := make([]float64, n)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	vals[n-1] = hi
	return vals
}
