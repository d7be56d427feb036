package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertSuiteRun = `-- name: InsertSuiteRun :exec
INSERT INTO suite_runs (
    id, suite, base_url, passed, passed_count, failed_count, skipped_count, started_at, finished_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
)
`

type InsertSuiteRunParams struct {
	ID           string             `json:"id"`
	Suite        string             `json:"suite"`
	BaseUrl      string             `json:"base_url"`
	Passed       bool               `json:"passed"`
	PassedCount  int32              `json:"passed_count"`
	FailedCount  int32              `json:"failed_count"`
	SkippedCount int32              `json:"skipped_count"`
	StartedAt    pgtype.Timestamptz `json:"started_at"`
	FinishedAt   pgtype.Timestamptz `json:"finished_at"`
}

func (q *Queries) InsertSuiteRun(ctx context.Context, arg InsertSuiteRunParams) error {
	_, err := q.db.Exec(ctx, insertSuiteRun,
		arg.ID,
		arg.Suite,
		arg.BaseUrl,
		arg.Passed,
		arg.PassedCount,
		arg.FailedCount,
		arg.SkippedCount,
		arg.StartedAt,
		arg.FinishedAt,
	)
	return err
}

const insertScenarioResult = `-- name: InsertScenarioResult :exec
INSERT INTO scenario_results (
    run_id, position, kind, name, status, reason, errors, duration_ms, attachments
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
)
`

type InsertScenarioResultParams struct {
	RunID       string   `json:"run_id"`
	Position    int32    `json:"position"`
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Reason      *string  `json:"reason"`
	Errors      []string `json:"errors"`
	DurationMs  int64    `json:"duration_ms"`
	Attachments []byte   `json:"attachments"`
}

func (q *Queries) InsertScenarioResult(ctx context.Context, arg InsertScenarioResultParams) error {
	_, err := q.db.Exec(ctx, insertScenarioResult,
		arg.RunID,
		arg.Position,
		arg.Kind,
		arg.Name,
		arg.Status,
		arg.Reason,
		arg.Errors,
		arg.DurationMs,
		arg.Attachments,
	)
	return err
}

const listRecentSuiteRuns = `-- name: ListRecentSuiteRuns :many
SELECT id, suite, base_url, passed, passed_count, failed_count, skipped_count, started_at, finished_at
FROM suite_runs
WHERE ($1::text = '' OR suite = $1)
ORDER BY started_at DESC
LIMIT $2
`

type ListRecentSuiteRunsParams struct {
	Suite string `json:"suite"`
	Limit int32  `json:"limit"`
}

func (q *Queries) ListRecentSuiteRuns(ctx context.Context, arg ListRecentSuiteRunsParams) ([]SuiteRun, error) {
	rows, err := q.db.Query(ctx, listRecentSuiteRuns, arg.Suite, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SuiteRun
	for rows.Next() {
		var i SuiteRun
		if err := rows.Scan(
			&i.ID,
			&i.Suite,
			&i.BaseUrl,
			&i.Passed,
			&i.PassedCount,
			&i.FailedCount,
			&i.SkippedCount,
			&i.StartedAt,
			&i.FinishedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listScenarioResults = `-- name: ListScenarioResults :many
SELECT run_id, position, kind, name, status, reason, errors, duration_ms, attachments
FROM scenario_results
WHERE run_id = $1
ORDER BY position
`

func (q *Queries) ListScenarioResults(ctx context.Context, runID string) ([]ScenarioResult, error) {
	rows, err := q.db.Query(ctx, listScenarioResults, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScenarioResult
	for rows.Next() {
		var i ScenarioResult
		if err := rows.Scan(
			&i.RunID,
			&i.Position,
			&i.Kind,
			&i.Name,
			&i.Status,
			&i.Reason,
			&i.Errors,
			&i.DurationMs,
			&i.Attachments,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteSuiteRunsBefore = `-- name: DeleteSuiteRunsBefore :execrows
DELETE FROM suite_runs WHERE started_at < $1
`

func (q *Queries) DeleteSuiteRunsBefore(ctx context.Context, startedAt pgtype.Timestamptz) (int64, error) {
	result, err := q.db.Exec(ctx, deleteSuiteRunsBefore, startedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
