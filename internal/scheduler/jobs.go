package scheduler

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
	"github.com/praxisllmlab/catalogcheck/internal/report"
	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// SuiteJob runs a whole suite and hands the report to its sinks.
// A failing suite is not a job error; the verdict travels through the sinks.
type SuiteJob struct {
	Suite   string
	Execute func(ctx context.Context) (*runner.Report, error)
	Sinks   []report.Sink
}

func (j *SuiteJob) Name() string { return "suite_" + j.Suite }

func (j *SuiteJob) Run(ctx context.Context) error {
	r, err := j.Execute(ctx)
	if err != nil {
		return err
	}
	c := r.Counts()
	logging.Component("scheduler").Info("suite finished",
		"suite", r.Suite, "run", r.ID, "passed", r.Passed(),
		"ok", c.Passed, "failed", c.Failed, "skipped", c.Skipped,
		"elapsed", r.Duration())
	report.Dispatch(ctx, r, j.Sinks...)
	return nil
}

// HistoryPruner deletes run history older than a cutoff.
type HistoryPruner interface {
	DeleteSuiteRunsBefore(ctx context.Context, startedAt pgtype.Timestamptz) (int64, error)
}

// HistoryPruneJob deletes suite runs older than the retention period.
type HistoryPruneJob struct {
	DB        HistoryPruner
	Retention time.Duration // e.g., 30 days
}

func (j *HistoryPruneJob) Name() string { return "history_prune" }

func (j *HistoryPruneJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.Retention)
	n, err := j.DB.DeleteSuiteRunsBefore(ctx, pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Component("scheduler").Info("pruned run history", "runs", n, "before", cutoff.Format(time.RFC3339))
	}
	return nil
}
