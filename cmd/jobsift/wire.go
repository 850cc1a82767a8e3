package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jobsift/internal/config"
	"github.com/kailas-cloud/jobsift/internal/db"
	dbRedis "github.com/kailas-cloud/jobsift/internal/db/redis"
	logpkg "github.com/kailas-cloud/jobsift/internal/logger"
	"github.com/kailas-cloud/jobsift/internal/metrics"
	"github.com/kailas-cloud/jobsift/internal/report"
	"github.com/kailas-cloud/jobsift/internal/repository/postingcache"
	"github.com/kailas-cloud/jobsift/internal/transport/workday"
	"github.com/kailas-cloud/jobsift/internal/usecase/listing"
	sourceuc "github.com/kailas-cloud/jobsift/internal/usecase/source"
)

// components is the composition root shared by every command.
type components struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
	store  db.Store // nil when the cache is disabled
	client *workday.Client
	loader *sourceuc.Loader
}

func (c *components) close() {
	if c.store != nil {
		c.store.Close()
	}
	_ = c.logger.Sync()
}

func setup(c *cli.Context) (*components, error) {
	env := c.String("env")
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if l := c.String("log-level"); l != "" {
		level = l
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterEngineMetrics()

	resilience := workday.DefaultResilienceConfig()
	resilience.RetryMaxAttempts = cfg.Source.MaxRetries + 1

	client := workday.New(&workday.Config{
		RequestBase: cfg.Source.RequestBase,
		SiteURL:     cfg.Source.SiteURL,
		Timeout:     time.Duration(cfg.Source.TimeoutSec) * time.Second,
		RatePerSec:  cfg.Source.RatePerSec,
		Burst:       cfg.Source.Burst,
		Resilience:  resilience,
		Logger:      logger,
	})

	comp := &components{env: env, cfg: cfg, logger: logger, client: client}

	var fetcher sourceuc.Fetcher = client
	if cfg.Cache.Enabled {
		store, err := openStore(c.Context, cfg.Cache)
		if err != nil {
			_ = logger.Sync()
			return nil, err
		}
		comp.store = store
		fetcher = postingcache.New(client, store, cfg.Cache.TTL(), metrics.PostingCacheTotal, logger)
		logger.Info("Posting cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	comp.loader = sourceuc.New(client, fetcher).
		WithParallelism(cfg.Source.EnrichParallel).
		WithLogger(logger)
	return comp, nil
}

func openStore(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	return store, nil
}

func (c *components) sourceQuery() workday.Query {
	return workday.Query{
		AppliedFacets: c.cfg.Source.AppliedFacets,
		SearchText:    c.cfg.Source.SearchText,
	}
}

// loadEngine fetches postings and builds an engine over them.
func (c *components) loadEngine(ctx context.Context) (*listing.Engine, error) {
	recs, err := c.loader.Load(ctx, c.sourceQuery(), c.cfg.Source.Limit)
	if err != nil {
		return nil, err
	}
	e := listing.New(recs).
		WithLogger(c.logger).
		WithObserver(metrics.EngineObserver{})
	e.SetDisplayNames(c.cfg.Facets)
	return e, nil
}

func (c *components) reportWriter(format string) (*report.Writer, error) {
	if format == "" {
		format = c.cfg.Report.Format
	}
	var renderer report.Renderer
	switch format {
	case "html":
		renderer = report.NewHTMLRenderer()
	case "markdown":
		renderer = report.NewMarkdownRenderer()
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}

	rc := c.cfg.Report
	return report.NewWriter(report.Config{
		Dir:          rc.Dir,
		Prefix:       rc.Prefix,
		DateField:    rc.DateField,
		SiteURL:      c.cfg.Source.SiteURL,
		Descriptions: rc.Descriptions,
	}, renderer, report.NewLastRun(filepath.Clean(rc.LastRunFile)), c.logger), nil
}
