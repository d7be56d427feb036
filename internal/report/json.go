package report

import (
	"encoding/json"
	"io"

	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

type jsonReport struct {
	*runner.Report
	Passed     bool          `json:"passed"`
	Counts     runner.Counts `json:"counts"`
	DurationMs int64         `json:"duration_ms"`
}

// WriteJSON renders r with its verdict and counts.
func WriteJSON(w io.Writer, r *runner.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Report:     r,
		Passed:     r.Passed(),
		Counts:     r.Counts(),
		DurationMs: r.Duration().Milliseconds(),
	})
}
