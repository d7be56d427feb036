package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praxisllmlab/catalogcheck/internal/config"
	"github.com/praxisllmlab/catalogcheck/internal/lock"
	"github.com/praxisllmlab/catalogcheck/internal/logging"
	"github.com/praxisllmlab/catalogcheck/internal/metrics"
	"github.com/praxisllmlab/catalogcheck/internal/report"
	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

var (
	flagRunScenarios []string
	flagRunFailFast  bool
	flagRunHeadless  bool
	flagRunAPIState  bool
	flagRunJUnit     string
	flagRunJSON      string
)

func init() {
	runCmd.Flags().StringArrayVarP(&flagRunScenarios, "scenario", "s", nil, "run only this scenario (repeatable)")
	runCmd.Flags().BoolVar(&flagRunFailFast, "fail-fast", false, "skip remaining scenarios after the first failure")
	runCmd.Flags().BoolVar(&flagRunHeadless, "headless", true, "run the browser without a window")
	runCmd.Flags().BoolVar(&flagRunAPIState, "api-state", false, "cross-check delete and restore through the REST API")
	runCmd.Flags().StringVar(&flagRunJUnit, "junit", "", "write a JUnit XML report to this path")
	runCmd.Flags().StringVar(&flagRunJSON, "json", "", "write a JSON report to this path")

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the suite once",
	Long: `Run the soft delete and restore suite once and print a summary.

Exits non-zero when any scenario or hook fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger := logging.Component("run")

		if cfg.Lock.RedisURL != "" {
			locker, rdb, err := lock.Dial(cfg.Lock.RedisURL)
			if err != nil {
				return err
			}
			defer rdb.Close()
			release, err := locker.Acquire(ctx, lock.Key(cfg.BaseURL), cfg.Lock.TTL)
			if err != nil {
				return err
			}
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					logger.Warn("release lock", "err", err)
				}
			}()
		}

		sinks := runSinks(cfg)
		pool, err := openHistory(ctx, cfg)
		if err != nil {
			logger.Warn("run history disabled", "err", err)
		} else if pool != nil {
			defer pool.Close()
			sinks = append(sinks, historySink(pool, cfg.BaseURL))
		}

		r, err := executeSuite(ctx, cfg, runner.Options{
			FailFast: cfg.Suite.FailFast,
			Only:     cfg.Suite.Scenarios,
		}, openArtifacts(ctx, cfg))
		if err != nil {
			return err
		}

		report.Dispatch(context.WithoutCancel(ctx), r, sinks...)
		if err := report.WriteSummary(cmd.OutOrStdout(), r); err != nil {
			return err
		}
		if !r.Passed() {
			return errSuiteFailed
		}
		return nil
	},
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if len(flagRunScenarios) > 0 {
		cfg.Suite.Scenarios = flagRunScenarios
	}
	if cmd.Flags().Changed("fail-fast") {
		cfg.Suite.FailFast = flagRunFailFast
	}
	if cmd.Flags().Changed("headless") {
		cfg.Browser.Headless = &flagRunHeadless
	}
	if cmd.Flags().Changed("api-state") {
		cfg.Checks.APIState = flagRunAPIState
	}
}

// runSinks are the report sinks of a one-shot run. History is added by the
// caller once its database is reachable.
func runSinks(cfg *config.Config) []report.Sink {
	var sinks []report.Sink
	if flagRunJUnit != "" {
		sinks = append(sinks, report.FileSink{Path: flagRunJUnit, Format: "junit"})
	}
	if flagRunJSON != "" {
		sinks = append(sinks, report.FileSink{Path: flagRunJSON, Format: "json"})
	}
	if cfg.Metrics.PushgatewayURL != "" {
		rec := metrics.NewRecorder(false)
		sinks = append(sinks, metricsSink(rec), pushSink(rec, cfg))
	}
	return append(sinks, notifySinks(cfg)...)
}
