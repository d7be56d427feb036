package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxisllmlab/catalogcheck/internal/db"
	"github.com/praxisllmlab/catalogcheck/internal/lock"
	"github.com/praxisllmlab/catalogcheck/internal/logging"
	"github.com/praxisllmlab/catalogcheck/internal/metrics"
	"github.com/praxisllmlab/catalogcheck/internal/report"
	"github.com/praxisllmlab/catalogcheck/internal/runner"
	"github.com/praxisllmlab/catalogcheck/internal/scheduler"
	"github.com/praxisllmlab/catalogcheck/internal/suite/restore"
)

const defaultListenAddr = ":9108"

var (
	flagMonitorInterval   time.Duration
	flagMonitorListen     string
	flagMonitorRetention  time.Duration
	flagMonitorPruneEvery time.Duration
)

func init() {
	monitorCmd.Flags().DurationVar(&flagMonitorInterval, "interval", 15*time.Minute, "time between suite runs")
	monitorCmd.Flags().StringVar(&flagMonitorListen, "listen", "", "status server address (default metrics.listen_addr or "+defaultListenAddr+")")
	monitorCmd.Flags().DurationVar(&flagMonitorRetention, "history-retention", 30*24*time.Hour, "delete run history older than this (0 keeps everything)")
	monitorCmd.Flags().DurationVar(&flagMonitorPruneEvery, "prune-every", time.Hour, "how often to prune run history")

	rootCmd.AddCommand(monitorCmd)
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Run the suite on an interval and serve metrics",
	Long: `Run the suite immediately and then on every --interval, exposing
/metrics, /healthz and /runs/latest on --listen.

When lock.redis_url is set, a cycle is skipped while another runner holds
the lock for the same catalog.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger := logging.Component("monitor")

		rec := metrics.NewRecorder(true)
		sinks := []report.Sink{metricsSink(rec)}
		if cfg.Metrics.PushgatewayURL != "" {
			sinks = append(sinks, pushSink(rec, cfg))
		}
		sinks = append(sinks, notifySinks(cfg)...)

		sched := scheduler.New()

		pool, err := openHistory(ctx, cfg)
		if err != nil {
			logger.Warn("run history disabled", "err", err)
		} else if pool != nil {
			defer pool.Close()
			sinks = append(sinks, historySink(pool, cfg.BaseURL))
			if flagMonitorRetention > 0 {
				sched.Add(&scheduler.HistoryPruneJob{DB: db.New(pool), Retention: flagMonitorRetention}, flagMonitorPruneEvery)
			}
		}

		store := openArtifacts(ctx, cfg)
		var job scheduler.Job = &scheduler.SuiteJob{
			Suite: restore.Name,
			Execute: func(ctx context.Context) (*runner.Report, error) {
				return executeSuite(ctx, cfg, runner.Options{
					FailFast: cfg.Suite.FailFast,
					Only:     cfg.Suite.Scenarios,
				}, store)
			},
			Sinks: sinks,
		}
		if cfg.Lock.RedisURL != "" {
			locker, rdb, err := lock.Dial(cfg.Lock.RedisURL)
			if err != nil {
				return err
			}
			defer rdb.Close()
			job = scheduler.NewWithLock(job, locker, lock.Key(cfg.BaseURL), cfg.Lock.TTL)
		}
		sched.AddWithStartupRun(job, flagMonitorInterval)

		addr := flagMonitorListen
		if addr == "" {
			addr = cfg.Metrics.ListenAddr
		}
		if addr == "" {
			addr = defaultListenAddr
		}

		sched.Start()
		defer sched.Stop()
		logger.Info("monitoring", "url", cfg.BaseURL, "interval", flagMonitorInterval)
		return metrics.ListenAndServe(ctx, addr, rec)
	},
}
