package sitediff

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// crawler walks one site breadth-first and records the HTTP status of every
// path it discovers.
type crawler struct {
	site     *url.URL
	fetcher  *fetcher
	maxPages int
	excludes []string
	sitemaps []string
	log      *zap.SugaredLogger
	progress *progressReporter
	stats    *crawlStats
}

func newCrawler(site *url.URL, f *fetcher, cfg Config, log *zap.SugaredLogger, progress *progressReporter) *crawler {
	return &crawler{
		site:     site,
		fetcher:  f,
		maxPages: cfg.Crawl.MaxPages,
		excludes: cfg.Crawl.ExcludePaths,
		sitemaps: cfg.Crawl.Sitemaps,
		log:      log.With("site", site.Host),
		progress: progress,
		stats:    newCrawlStats(),
	}
}

// Crawl runs the traversal to completion and returns the status recorded for
// each discovered path, every path exactly once. Unreachable pages are
// recorded as StatusFetchError, not returned as errors; the only errors are
// cache I/O failures and context cancellation.
func (c *crawler) Crawl(ctx context.Context) (map[string]int, error) {
	root := rootPath(c.site)
	frontier := []string{root}
	queued := map[string]bool{root: true}
	statuses := make(map[string]int)

	seeds, err := c.seedFromSitemaps(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range seeds {
		c.enqueue(p, &frontier, queued)
	}

	c.progress.Start(c.site.Host)
	defer c.progress.Stop()

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if c.maxPages > 0 && len(statuses) >= c.maxPages {
			c.log.Warnw("page limit reached, dropping remaining frontier",
				"limit", c.maxPages, "dropped", len(frontier))
			break
		}

		path := frontier[0]
		frontier = frontier[1:]

		rawURL := c.site.Scheme + "://" + c.site.Host + path
		ent, cached, err := c.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		statuses[path] = ent.Status
		c.stats.Observe(ent, cached)
		c.progress.Update(len(statuses), len(frontier), path)
		c.log.Debugw("page", "path", path, "status", ent.Status, "cached", cached)

		if base, err := url.Parse(rawURL); err == nil {
			for _, next := range c.pageLinks(base, ent) {
				c.enqueue(next, &frontier, queued)
			}
		}
	}

	ss := c.stats.Snapshot()
	c.log.Infow("crawl finished",
		"paths", len(statuses),
		"cache_hits", ss.CacheHits,
		"fetched", ss.NetFetches,
		"fetch_errors", ss.FetchErrors,
		"broken", ss.Broken,
		"body_total", formatBytes(ss.TotalBodyBytes),
		"body_min_avg_max", fmt.Sprintf("%s/%s/%s",
			formatBytes(ss.MinBodyBytes), formatBytes(ss.AvgBodyBytes), formatBytes(ss.MaxBodyBytes)),
	)
	return statuses, nil
}

// pageLinks decides what a fetched page contributes to the frontier: the
// redirect target for 3xx responses, extracted anchors for HTML documents,
// nothing for failed fetches. A 404 page with an HTML body still contributes
// its links.
func (c *crawler) pageLinks(base *url.URL, ent CacheEntry) []string {
	if ent.Status == StatusFetchError {
		return nil
	}
	if loc, ok := ent.Location(); ok {
		if path, ok := normalizePath(base, loc); ok {
			return []string{path}
		}
		return nil
	}
	if !ent.IsHTML() {
		return nil
	}
	return ExtractLinks(ent.Body, base)
}

func (c *crawler) enqueue(path string, frontier *[]string, queued map[string]bool) {
	if queued[path] {
		return
	}
	if c.excluded(path) {
		c.log.Debugw("path excluded", "path", path)
		return
	}
	queued[path] = true
	*frontier = append(*frontier, path)
}

func (c *crawler) excluded(path string) bool {
	for _, prefix := range c.excludes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
