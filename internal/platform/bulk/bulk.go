package bulk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Options tune retry and fan-out behavior.
type Options struct {
	MaxRetries  int
	RetryDelay  time.Duration
	Concurrency int
	Timeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 10
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = time.Second
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 15
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	return o
}

// Client is a retrying JSON GET client for fanning out many requests
// against one upstream API.
type Client struct {
	opts Options
	http *http.Client
}

func New(opts Options) *Client {
	opts = opts.withDefaults()
	return &Client{opts: opts, http: &http.Client{Timeout: opts.Timeout}}
}

// HTTPClient exposes the underlying client so tests can mock transport.
func (c *Client) HTTPClient() *http.Client { return c.http }

// GetJSON fetches url and decodes the JSON response into v. Failed attempts
// are retried with a linearly growing delay: delay, 2*delay, 3*delay, ...
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	var lastErr error
	for attempt := 0; attempt < c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, time.Duration(attempt)*c.opts.RetryDelay); err != nil {
				return err
			}
		}
		lastErr = c.getOnce(ctx, url, v)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("get %s after %d attempts: %w", url, c.opts.MaxRetries, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	if v == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(v)
}

// FanOut runs fn for every index in [0, n) with bounded concurrency and
// returns one error slot per index. A failing call never cancels its
// siblings; callers decide what a partial result means.
func (c *Client) FanOut(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			errs[i] = fn(ctx, i)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
