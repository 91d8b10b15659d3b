package sitediff

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Run executes a full comparison: crawl both sites through a shared cache and
// HTTP client, compare the recorded statuses, write the CSV to out and the
// optional summary to errOut.
func Run(ctx context.Context, cfg Config, out, errOut io.Writer, log *zap.SugaredLogger) error {
	cache, err := newPageCache(cfg.Cache.Path, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			log.Warnw("closing page cache", "error", err)
		}
	}()

	n, err := cache.Count()
	if err != nil {
		return err
	}
	log.Infow("page cache open", "path", cfg.Cache.Path, "entries", n)

	f := newFetcher(cfg, cache, log)
	progress := newProgressReporter(log, cfg.interactive)

	statusesA, err := newCrawler(cfg.siteA, f, cfg, log, progress).Crawl(ctx)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", cfg.siteA.Host, err)
	}
	statusesB, err := newCrawler(cfg.siteB, f, cfg, log, progress).Crawl(ctx)
	if err != nil {
		return fmt.Errorf("crawl %s: %w", cfg.siteB.Host, err)
	}

	rows := Compare(statusesA, statusesB)
	if err := WriteCSV(out, rows); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if cfg.Report.Summary {
		WriteSummary(errOut, rows)
	}
	return nil
}
