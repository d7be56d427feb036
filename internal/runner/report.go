package runner

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of a scenario or hook.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result describes one executed (or skipped) scenario or hook.
type Result struct {
	Name        string        `json:"name"`
	Status      Status        `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Errors      []string      `json:"errors,omitempty"`
	Output      []string      `json:"output,omitempty"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}

// Counts tallies scenario outcomes.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Total returns the number of scenarios counted.
func (c Counts) Total() int { return c.Passed + c.Failed + c.Skipped }

// Report is the outcome of one suite run.
type Report struct {
	ID         string    `json:"id"`
	Suite      string    `json:"suite"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Hooks      []Result  `json:"hooks"`
	Scenarios  []Result  `json:"scenarios"`
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration { return r.FinishedAt.Sub(r.StartedAt) }

// Counts tallies the scenario results.
func (r *Report) Counts() Counts {
	var c Counts
	for _, s := range r.Scenarios {
		switch s.Status {
		case StatusPassed:
			c.Passed++
		case StatusFailed:
			c.Failed++
		default:
			c.Skipped++
		}
	}
	return c
}

// Failures returns every failed hook and scenario, hooks first.
func (r *Report) Failures() []Result {
	var out []Result
	for _, h := range r.Hooks {
		if h.Status == StatusFailed {
			out = append(out, h)
		}
	}
	for _, s := range r.Scenarios {
		if s.Status == StatusFailed {
			out = append(out, s)
		}
	}
	return out
}

// Passed reports whether no hook or scenario failed.
func (r *Report) Passed() bool { return len(r.Failures()) == 0 }

// Err returns nil for a passing run, otherwise an error naming what failed.
func (r *Report) Err() error {
	failures := r.Failures()
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, len(failures))
	for i, f := range failures {
		names[i] = fmt.Sprintf("%q", f.Name)
	}
	return fmt.Errorf("suite %s: %d failed: %s", r.Suite, len(failures), strings.Join(names, ", "))
}

// Scenario returns the result for name.
func (r *Report) Scenario(name string) (Result, bool) {
	for _, s := range r.Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return Result{}, false
}
