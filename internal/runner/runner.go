// Package runner executes an ordered list of browser scenarios with
// before-all, after-all, before-each and after-each hooks.
//
// Scenarios run strictly one after another. A failing scenario does not stop
// the ones after it, and the after-all hook always runs once before-all has
// been attempted, so fixtures created there are torn down.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

// Hook names as they appear in reports.
const (
	BeforeAllName = "before all"
	AfterAllName  = "after all"
)

// Skip reasons.
const (
	ReasonBeforeAll   = "before all hook failed"
	ReasonFailFast    = "fail-fast after earlier failure"
	ReasonNotSelected = "not selected"
	ReasonCancelled   = "run cancelled"
)

// Func is a hook or scenario body.
type Func func(t *T)

// Scenario is one named test case.
type Scenario struct {
	Name string
	Run  Func
}

// Suite is an ordered set of scenarios sharing hooks. BeforeEach and
// AfterEach share the scenario's *T, so AfterEach can inspect t.Failed().
type Suite struct {
	Name       string
	BeforeAll  Func
	AfterAll   Func
	BeforeEach Func
	AfterEach  Func
	Scenarios  []Scenario
}

// Names returns the scenario names in declaration order.
func (s Suite) Names() []string {
	names := make([]string, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		names[i] = sc.Name
	}
	return names
}

// Validate checks scenario names are unique and non-empty and that every
// name in only refers to a scenario.
func (s Suite) Validate(only []string) error {
	seen := make(map[string]bool, len(s.Scenarios))
	var errs []error
	for i, sc := range s.Scenarios {
		switch {
		case sc.Name == "":
			errs = append(errs, fmt.Errorf("scenario %d has no name", i))
		case seen[sc.Name]:
			errs = append(errs, fmt.Errorf("duplicate scenario %q", sc.Name))
		}
		if sc.Run == nil {
			errs = append(errs, fmt.Errorf("scenario %q has no body", sc.Name))
		}
		seen[sc.Name] = true
	}
	for _, name := range only {
		if !seen[name] {
			errs = append(errs, fmt.Errorf("unknown scenario %q", name))
		}
	}
	return errors.Join(errs...)
}

// Options tune a run.
type Options struct {
	// FailFast skips the remaining scenarios after the first failure.
	FailFast bool
	// Only restricts the run to the named scenarios. Others are reported skipped.
	Only []string
	// Logger defaults to the "runner" component logger.
	Logger *log.Logger
}

// Run executes the suite and returns its report. It never returns nil.
//
// If ctx is already done no hook runs. If ctx is cancelled during the run,
// scenarios not yet started are skipped and after-all still runs on a
// context detached from the cancellation.
func Run(ctx context.Context, s Suite, opts Options) *Report {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Component("runner")
	}
	report := &Report{
		ID:        uuid.NewString(),
		Suite:     s.Name,
		StartedAt: time.Now(),
	}
	logger = logger.With("run", report.ID)
	defer func() { report.FinishedAt = time.Now() }()

	selected := selection(opts.Only)

	if ctx.Err() != nil {
		for _, sc := range s.Scenarios {
			report.Scenarios = append(report.Scenarios, skipped(sc.Name, ReasonCancelled))
		}
		return report
	}

	logger.Info("suite started", "suite", s.Name, "scenarios", len(s.Scenarios))

	setupOK := true
	if s.BeforeAll != nil {
		res := runHook(ctx, BeforeAllName, s.BeforeAll, logger)
		report.Hooks = append(report.Hooks, res)
		setupOK = res.Status == StatusPassed
	}

	failed := false
	for _, sc := range s.Scenarios {
		var reason string
		switch {
		case !setupOK:
			reason = ReasonBeforeAll
		case selected != nil && !selected[sc.Name]:
			reason = ReasonNotSelected
		case opts.FailFast && failed:
			reason = ReasonFailFast
		case ctx.Err() != nil:
			reason = ReasonCancelled
		}
		if reason != "" {
			logger.Info("scenario skipped", "scenario", sc.Name, "reason", reason)
			report.Scenarios = append(report.Scenarios, skipped(sc.Name, reason))
			continue
		}

		res := runScenario(ctx, s, sc, logger)
		if res.Status == StatusFailed {
			failed = true
		}
		report.Scenarios = append(report.Scenarios, res)
	}

	if s.AfterAll != nil {
		res := runHook(context.WithoutCancel(ctx), AfterAllName, s.AfterAll, logger)
		report.Hooks = append(report.Hooks, res)
	}

	c := report.Counts()
	logger.Info("suite finished", "suite", s.Name,
		"passed", c.Passed, "failed", c.Failed, "skipped", c.Skipped,
		"duration", time.Since(report.StartedAt).Round(time.Millisecond))
	return report
}

func runHook(ctx context.Context, name string, fn Func, logger *log.Logger) Result {
	t := newT(ctx, name, logger)
	start := time.Now()
	t.run(fn)
	t.runCleanups()
	return finish(t, start)
}

func runScenario(ctx context.Context, s Suite, sc Scenario, logger *log.Logger) Result {
	t := newT(ctx, sc.Name, logger)
	start := time.Now()
	logger.Info("scenario started", "scenario", sc.Name)

	t.run(s.BeforeEach)
	if !t.Failed() {
		t.run(sc.Run)
	}
	t.run(s.AfterEach)
	t.runCleanups()

	res := finish(t, start)
	logger.Info("scenario finished", "scenario", sc.Name, "status", res.Status,
		"duration", res.Duration.Round(time.Millisecond))
	return res
}

func finish(t *T, start time.Time) Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	status := StatusPassed
	if t.failed {
		status = StatusFailed
	}
	errs := t.errors
	if t.failed && len(errs) == 0 {
		errs = []string{"failed"}
	}
	return Result{
		Name:        t.name,
		Status:      status,
		Errors:      errs,
		Output:      t.output,
		Attachments: t.attachments,
		StartedAt:   start,
		Duration:    time.Since(start),
	}
}

func skipped(name, reason string) Result {
	return Result{Name: name, Status: StatusSkipped, Reason: reason, StartedAt: time.Now()}
}

func selection(only []string) map[string]bool {
	if len(only) == 0 {
		return nil
	}
	m := make(map[string]bool, len(only))
	for _, name := range only {
		m[name] = true
	}
	return m
}
