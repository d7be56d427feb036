package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type SuiteRun struct {
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

type ScenarioResult struct {
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
