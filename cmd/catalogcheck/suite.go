package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxisllmlab/catalogcheck/internal/artifact"
	"github.com/praxisllmlab/catalogcheck/internal/browser"
	"github.com/praxisllmlab/catalogcheck/internal/catalog"
	"github.com/praxisllmlab/catalogcheck/internal/config"
	"github.com/praxisllmlab/catalogcheck/internal/db"
	dbmigrate "github.com/praxisllmlab/catalogcheck/internal/db/migrate"
	"github.com/praxisllmlab/catalogcheck/internal/logging"
	"github.com/praxisllmlab/catalogcheck/internal/metrics"
	"github.com/praxisllmlab/catalogcheck/internal/notify"
	"github.com/praxisllmlab/catalogcheck/internal/report"
	"github.com/praxisllmlab/catalogcheck/internal/runner"
	"github.com/praxisllmlab/catalogcheck/internal/suite/restore"
)

const readyPollInterval = 2 * time.Second

func newCatalogClient(cfg *config.Config) *catalog.Client {
	return catalog.New(cfg.BaseURL, catalog.WithLogger(logging.Component("catalog")))
}

// executeSuite waits for the catalog, launches the browser and runs the
// restore suite once. Errors are infrastructure failures; scenario failures
// are in the report.
func executeSuite(ctx context.Context, cfg *config.Config, opts runner.Options, store artifact.Store) (*runner.Report, error) {
	logger := logging.Component("run")
	client := newCatalogClient(cfg)

	readyCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Ready)
	version, err := client.WaitReady(readyCtx, readyPollInterval)
	cancel()
	if err != nil {
		return nil, err
	}
	logger.Info("catalog ready", "url", cfg.BaseURL, "version", version.Version)

	bopts := browser.OptionsFromConfig(cfg)
	bopts.Logger = logging.Component("browser")
	driver, err := browser.Launch(bopts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			logger.Warn("close browser", "err", err)
		}
	}()

	id := cfg.Fixture.ID
	if id == "" {
		id = catalog.NewFixtureID()
	}
	s := restore.New(restore.Deps{
		Config:    cfg,
		Pages:     driver,
		Catalog:   client,
		Fixture:   catalog.NewDatabaseServiceFixture(cfg.Fixture.Prefix, id, cfg.Fixture.ServiceType),
		Artifacts: store,
		RunKey:    time.Now().UTC().Format("20060102T150405") + "-" + id,
	})
	if err := s.Validate(opts.Only); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.Component("runner")
	}
	return runner.Run(ctx, s, opts), nil
}

// openArtifacts returns the screenshot store, or nil when screenshots are
// off or the backend cannot be reached.
func openArtifacts(ctx context.Context, cfg *config.Config) artifact.Store {
	if !cfg.Artifacts.Screenshots() {
		return nil
	}
	store, err := artifact.New(ctx, cfg.Artifacts)
	if err != nil {
		logging.Component("artifact").Warn("screenshots disabled", "backend", cfg.Artifacts.Backend, "err", err)
		return nil
	}
	return store
}

// openHistory connects to the history database and migrates it. It returns
// nil when no database is configured.
func openHistory(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.History.DatabaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, cfg.History.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect history database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	if err := dbmigrate.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}
	return pool, nil
}

func metricsSink(rec *metrics.Recorder) report.Sink {
	return report.SinkFunc{SinkName: "metrics", Fn: func(_ context.Context, r *runner.Report) error {
		rec.Observe(r)
		return nil
	}}
}

func pushSink(rec *metrics.Recorder, cfg *config.Config) report.Sink {
	return report.SinkFunc{SinkName: "pushgateway", Fn: func(ctx context.Context, _ *runner.Report) error {
		return rec.Push(ctx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job, hostname())
	}}
}

func historySink(pool *pgxpool.Pool, baseURL string) report.Sink {
	return report.SinkFunc{SinkName: "history", Fn: func(ctx context.Context, r *runner.Report) error {
		return db.SaveReport(ctx, pool, r, baseURL)
	}}
}

// notifySinks returns the configured chat and webhook notifiers.
func notifySinks(cfg *config.Config) []report.Sink {
	var sinks []report.Sink
	n := cfg.Notify
	if n.SlackWebhookURL != "" {
		sinks = append(sinks, notify.NewSlack(n.SlackWebhookURL, cfg.BaseURL, n.Always, n.Cooldown))
	}
	if n.WebhookURL != "" {
		sinks = append(sinks, notify.NewWebhook(n.WebhookURL, cfg.BaseURL, n.WebhookHeaders, n.Always, n.Cooldown))
	}
	return sinks
}
