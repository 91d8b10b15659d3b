package sitediff

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// fetcher answers page lookups from the cache when it can and goes to the
// network otherwise. Redirects are not followed; the 3xx response itself is
// the recorded result.
type fetcher struct {
	client    *http.Client
	cache     *pageCache
	limiter   *rate.Limiter
	userAgent string
	maxBody   int64
	refresh   bool
	log       *zap.SugaredLogger
}

func newFetcher(cfg Config, cache *pageCache, log *zap.SugaredLogger) *fetcher {
	f := &fetcher{
		client: &http.Client{
			Timeout: cfg.timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cache:     cache,
		userAgent: cfg.HTTP.UserAgent,
		maxBody:   cfg.maxBody,
		refresh:   cfg.refresh,
		log:       log,
	}
	if cfg.HTTP.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.HTTP.RequestsPerSecond), 1)
	}
	return f
}

// Fetch returns the entry for rawURL, from cache when possible, and reports
// whether it was a cache hit. Network failures yield an entry with
// Status == StatusFetchError and are not stored, so a later run retries them.
// The returned error is non-nil only for cache I/O failures and context
// cancellation.
func (f *fetcher) Fetch(ctx context.Context, rawURL string) (CacheEntry, bool, error) {
	if !f.refresh {
		ent, ok, err := f.cache.Get(rawURL)
		if err != nil {
			return CacheEntry{}, false, err
		}
		if ok {
			f.log.Debugw("cache hit", "url", rawURL, "status", ent.Status)
			return ent, true, nil
		}
	}

	ent, err := f.fetchRemote(ctx, rawURL)
	if err != nil {
		return CacheEntry{}, false, err
	}
	if ent.Status != StatusFetchError {
		if err := f.cache.Put(rawURL, ent); err != nil {
			return CacheEntry{}, false, err
		}
	}
	return ent, false, nil
}

func (f *fetcher) fetchRemote(ctx context.Context, rawURL string) (CacheEntry, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return CacheEntry{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		f.log.Debugw("request build failed", "url", rawURL, "error", err)
		return fetchErrorEntry(), nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return CacheEntry{}, ctx.Err()
		}
		f.log.Debugw("fetch failed", "url", rawURL, "error", err)
		return fetchErrorEntry(), nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		if ctx.Err() != nil {
			return CacheEntry{}, ctx.Err()
		}
		f.log.Debugw("read body failed", "url", rawURL, "error", err)
		return fetchErrorEntry(), nil
	}

	ent := CacheEntry{
		Status:    resp.StatusCode,
		Header:    resp.Header.Clone(),
		Body:      body,
		FetchedAt: time.Now().Unix(),
	}
	// The stored body may be truncated by the size cap.
	ent.Header.Del("Content-Length")
	return ent, nil
}

func fetchErrorEntry() CacheEntry {
	return CacheEntry{
		Status:    StatusFetchError,
		Header:    make(http.Header),
		FetchedAt: time.Now().Unix(),
	}
}
