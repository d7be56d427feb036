package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// Pool returns the underlying pgxpool.Pool if the Queries was created with one.
func (q *Queries) Pool() *pgxpool.Pool {
	if p, ok := q.db.(*pgxpool.Pool); ok {
		return p
	}
	return nil
}

// Ping pings the database.
func (q *Queries) Ping(ctx context.Context) error {
	if p := q.Pool(); p != nil {
		return p.Ping(ctx)
	}
	return nil
}

// Beginner starts transactions. *pgxpool.Pool and pgxmock pools satisfy it.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Result kinds stored in scenario_results.kind.
const (
	KindHook     = "hook"
	KindScenario = "scenario"
)

// SaveReport writes a run and all its hook and scenario results in one
// transaction.
func SaveReport(ctx context.Context, db Beginner, report *runner.Report, baseURL string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after successful commit

	q := New(tx)
	c := report.Counts()
	err = q.InsertSuiteRun(ctx, InsertSuiteRunParams{
		ID:           report.ID,
		Suite:        report.Suite,
		BaseUrl:      baseURL,
		Passed:       report.Passed(),
		PassedCount:  int32(c.Passed),
		FailedCount:  int32(c.Failed),
		SkippedCount: int32(c.Skipped),
		StartedAt:    pgtype.Timestamptz{Time: report.StartedAt, Valid: true},
		FinishedAt:   pgtype.Timestamptz{Time: report.FinishedAt, Valid: true},
	})
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.ID, err)
	}

	type row struct {
		kind string
		res  runner.Result
	}
	var rows []row
	for _, h := range report.Hooks {
		rows = append(rows, row{KindHook, h})
	}
	for _, s := range report.Scenarios {
		rows = append(rows, row{KindScenario, s})
	}
	for i, r := range rows {
		params, err := resultParams(report.ID, int32(i), r.kind, r.res)
		if err != nil {
			return err
		}
		if err := q.InsertScenarioResult(ctx, params); err != nil {
			return fmt.Errorf("insert %s %q: %w", r.kind, r.res.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit run %s: %w", report.ID, err)
	}
	return nil
}

func resultParams(runID string, pos int32, kind string, r runner.Result) (InsertScenarioResultParams, error) {
	attachments := r.Attachments
	if attachments == nil {
		attachments = []runner.Attachment{}
	}
	raw, err := json.Marshal(attachments)
	if err != nil {
		return InsertScenarioResultParams{}, fmt.Errorf("marshal attachments: %w", err)
	}
	errs := r.Errors
	if errs == nil {
		errs = []string{}
	}
	var reason *string
	if r.Reason != "" {
		reason = &r.Reason
	}
	return InsertScenarioResultParams{
		RunID:       runID,
		Position:    pos,
		Kind:        kind,
		Name:        r.Name,
		Status:      string(r.Status),
		Reason:      reason,
		Errors:      errs,
		DurationMs:  r.Duration.Milliseconds(),
		Attachments: raw,
	}, nil
}
