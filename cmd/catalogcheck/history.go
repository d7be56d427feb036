package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/praxisllmlab/catalogcheck/internal/db"
	"github.com/praxisllmlab/catalogcheck/internal/suite/restore"
)

var (
	flagHistoryLimit int32
	flagHistoryRun   string
)

func init() {
	historyCmd.Flags().Int32VarP(&flagHistoryLimit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().StringVar(&flagHistoryRun, "run", "", "show the results of one run")

	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs from the history database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		pool, err := openHistory(ctx, cfg)
		if err != nil {
			return err
		}
		if pool == nil {
			return errors.New("history.database_url is not configured")
		}
		defer pool.Close()
		q := db.New(pool)

		if flagHistoryRun != "" {
			results, err := q.ListScenarioResults(ctx, flagHistoryRun)
			if err != nil {
				return fmt.Errorf("list results of %s: %w", flagHistoryRun, err)
			}
			return printResults(cmd.OutOrStdout(), results)
		}

		runs, err := q.ListRecentSuiteRuns(ctx, db.ListRecentSuiteRunsParams{Suite: restore.Name, Limit: flagHistoryLimit})
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		return printRuns(cmd.OutOrStdout(), runs)
	},
}

func printRuns(out io.Writer, runs []db.SuiteRun) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tRESULT\tPASSED\tFAILED\tSKIPPED\tDURATION")
	for _, r := range runs {
		result := "passed"
		if !r.Passed {
			result = "FAILED"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.ID,
			r.StartedAt.Time.Local().Format(time.DateTime),
			result,
			r.PassedCount, r.FailedCount, r.SkippedCount,
			r.FinishedAt.Time.Sub(r.StartedAt.Time).Round(time.Second))
	}
	return w.Flush()
}

func printResults(out io.Writer, results []db.ScenarioResult) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tNAME\tSTATUS\tDURATION\tDETAIL")
	for _, r := range results {
		detail := ""
		switch {
		case len(r.Errors) > 0:
			detail, _, _ = strings.Cut(r.Errors[0], "\n")
		case r.Reason != nil:
			detail = *r.Reason
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Position, r.Kind, r.Name, r.Status,
			(time.Duration(r.DurationMs) * time.Millisecond).String(), detail)
	}
	return w.Flush()
}
