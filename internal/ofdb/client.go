package ofdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kartevonmorgen/kvmflows/internal/config"
	"github.com/kartevonmorgen/kvmflows/internal/metrics"
	"github.com/kartevonmorgen/kvmflows/internal/platform/bulk"
)

// entriesChunkSize caps how many IDs go into one /entries/{ids} request.
const entriesChunkSize = 100

// recentPageSize is the page length used when walking the changed feed.
const recentPageSize = 1000

// Client talks to an OpenFairDB-compatible API.
type Client struct {
	baseURL string
	limit   int
	bulk    *bulk.Client
}

func New(cfg config.Config) *Client {
	return &Client{
		baseURL: cfg.OFDBBaseURL,
		limit:   cfg.OFDBLimit,
		bulk: bulk.New(bulk.Options{
			MaxRetries:  cfg.OFDBMaxRetries,
			RetryDelay:  cfg.OFDBRetryDelay,
			Concurrency: cfg.OFDBConcurrency,
		}),
	}
}

// HTTPClient exposes the underlying client so tests can mock transport.
func (c *Client) HTTPClient() *http.Client { return c.bulk.HTTPClient() }

// Search returns the entries inside box, split into visible and invisible
// sets.
func (c *Client) Search(ctx context.Context, box BBox) (SearchResult, error) {
	q := url.Values{}
	q.Set("bbox", box.String())
	if c.limit > 0 {
		q.Set("limit", strconv.Itoa(c.limit))
	}
	var res SearchResult
	err := c.get(ctx, "search", c.baseURL+"/search?"+q.Encode(), &res)
	return res, err
}

// SearchMany fans Search out over many boxes. The returned slice is indexed
// like boxes; failed cells stay zero-valued and are reported in the joined
// error so callers can use the partial result.
func (c *Client) SearchMany(ctx context.Context, boxes []BBox) ([]SearchResult, error) {
	results := make([]SearchResult, len(boxes))
	errs := c.bulk.FanOut(ctx, len(boxes), func(ctx context.Context, i int) error {
		r, err := c.Search(ctx, boxes[i])
		if err != nil {
			return fmt.Errorf("bbox %s: %w", boxes[i], err)
		}
		results[i] = r
		return nil
	})
	return results, errors.Join(errs...)
}

// GetEntries fetches full records for ids, batching requests in chunks.
// Failed chunks are dropped and reported in the joined error alongside the
// successful remainder. Order is not preserved across chunks.
func (c *Client) GetEntries(ctx context.Context, ids []string) ([]Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	chunks := chunkIDs(ids, entriesChunkSize)
	perChunk := make([][]Entry, len(chunks))
	errs := c.bulk.FanOut(ctx, len(chunks), func(ctx context.Context, i int) error {
		var entries []Entry
		if err := c.get(ctx, "entries", c.baseURL+"/entries/"+strings.Join(chunks[i], ","), &entries); err != nil {
			return err
		}
		perChunk[i] = entries
		return nil
	})
	var out []Entry
	for _, entries := range perChunk {
		out = append(out, entries...)
	}
	return out, errors.Join(errs...)
}

// RecentlyChanged returns one page of the changed feed. A zero since leaves
// the server default window in place.
func (c *Client) RecentlyChanged(ctx context.Context, since time.Time, limit, offset int) ([]Entry, error) {
	q := url.Values{}
	q.Set("with_ratings", "true")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if !since.IsZero() {
		q.Set("since", strconv.FormatInt(since.Unix(), 10))
	}
	var entries []Entry
	err := c.get(ctx, "recently_changed", c.baseURL+"/entries/recently-changed?"+q.Encode(), &entries)
	return entries, err
}

// RecentlyChangedAll walks the changed feed page by page until a short page
// and deduplicates by ID, keeping the first occurrence. The feed can list
// an entry once per change, so duplicates are expected.
func (c *Client) RecentlyChangedAll(ctx context.Context, since time.Time) ([]Entry, error) {
	var all []Entry
	for offset := 0; ; offset += recentPageSize {
		page, err := c.RecentlyChanged(ctx, since, recentPageSize, offset)
		if err != nil {
			return dedupeByID(all), err
		}
		all = append(all, page...)
		if len(page) < recentPageSize {
			break
		}
	}
	return dedupeByID(all), nil
}

func (c *Client) get(ctx context.Context, endpoint, url string, v any) error {
	if err := c.bulk.GetJSON(ctx, url, v); err != nil {
		metrics.IncOFDBRequest(endpoint, "failure")
		return err
	}
	metrics.IncOFDBRequest(endpoint, "success")
	return nil
}

func chunkIDs(ids []string, size int) [][]string {
	var chunks [][]string
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

func dedupeByID(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		unique = append(unique, e)
	}
	return unique
}
