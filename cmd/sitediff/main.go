package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"

	"sitediff/internal/sitediff"
)

var (
	app = kingpin.New("sitediff", "Crawl two sites and compare the HTTP status of every path, as CSV on stdout.")

	siteA = app.Arg("original", "Base URL of the reference site.").Required().URL()
	siteB = app.Arg("target", "Base URL of the site to compare against it.").Required().URL()

	configPath = app.Flag("config", "Path to a sitediff.yaml config file.").Envar("SITEDIFF_CONFIG").String()
	cacheDir   = app.Flag("cache", "Directory for the page cache.").Envar("SITEDIFF_CACHE").String()
	timeout    = app.Flag("timeout", "Per-request timeout (default from config, 10s).").Duration()
	maxPages   = app.Flag("max-pages", "Stop each crawl after this many paths, 0 for no limit.").Default("-1").Int()
	sitemaps   = app.Flag("sitemap", "Seed the crawl from this sitemap URL or path. Repeatable.").Strings()
	refresh    = app.Flag("refresh", "Refetch pages even when cached.").Bool()
	noSummary  = app.Flag("no-summary", "Suppress the summary printed to stderr.").Bool()
	debug      = app.Flag("debug", "Enable debug logging.").Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := setupLogging(*debug)
	defer logger.Sync()
	log := logger.Sugar()

	cfg, err := sitediff.LoadConfig(*configPath)
	if err != nil {
		log.Fatalw("load config", "error", err)
	}
	err = cfg.Apply(sitediff.Overrides{
		SiteA:       *siteA,
		SiteB:       *siteB,
		CacheDir:    *cacheDir,
		Timeout:     *timeout,
		MaxPages:    *maxPages,
		Sitemaps:    *sitemaps,
		Refresh:     *refresh,
		NoSummary:   *noSummary,
		Interactive: !*debug && isatty.IsTerminal(os.Stderr.Fd()),
	})
	if err != nil {
		app.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sitediff.Run(ctx, cfg, os.Stdout, os.Stderr, log); err != nil {
		log.Fatalw("sitediff failed", "error", err)
	}
}

func setupLogging(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}
	cfg.Level.SetLevel(level)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
