package runner

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

var quiet = Options{Logger: logging.Discard()}

// trace records the order in which steps execute.
type trace struct{ steps []string }

func (tr *trace) step(name string) Func {
	return func(*T) { tr.steps = append(tr.steps, name) }
}

func TestRun_HookOrder(t *testing.T) {
	tr := &trace{}
	s := Suite{
		Name:       "order",
		BeforeAll:  tr.step("before all"),
		AfterAll:   tr.step("after all"),
		BeforeEach: func(t *T) { tr.steps = append(tr.steps, "before each "+t.Name()) },
		AfterEach:  func(t *T) { tr.steps = append(tr.steps, "after each "+t.Name()) },
		Scenarios: []Scenario{
			{Name: "a", Run: tr.step("a")},
			{Name: "b", Run: tr.step("b")},
		},
	}

	report := Run(context.Background(), s, quiet)

	assert.Equal(t, []string{
		"before all",
		"before each a", "a", "after each a",
		"before each b", "b", "after each b",
		"after all",
	}, tr.steps)
	assert.True(t, report.Passed())
	assert.NoError(t, report.Err())
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, Counts{Passed: 2}, report.Counts())
	require.Len(t, report.Hooks, 2)
	assert.Equal(t, BeforeAllName, report.Hooks[0].Name)
	assert.Equal(t, AfterAllName, report.Hooks[1].Name)
}

func TestRun_FailureAbortsOnlyCurrentScenario(t *testing.T) {
	tr := &trace{}
	s := Suite{
		Name:     "isolation",
		AfterAll: tr.step("after all"),
		Scenarios: []Scenario{
			{Name: "fails", Run: func(t *T) {
				require.Equal(t, 200, 404, "status")
				tr.steps = append(tr.steps, "unreachable")
			}},
			{Name: "passes", Run: tr.step("passes")},
		},
	}

	report := Run(context.Background(), s, quiet)

	assert.Equal(t, []string{"passes", "after all"}, tr.steps)
	res, ok := report.Scenario("fails")
	require.True(t, ok)
	assert.Equal(t, StatusFailed, res.Status)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "status")

	res, _ = report.Scenario("passes")
	assert.Equal(t, StatusPassed, res.Status)
	assert.False(t, report.Passed())
	assert.EqualError(t, report.Err(), `suite isolation: 1 failed: "fails"`)
}

func TestRun_AfterEachSeesFailure(t *testing.T) {
	var sawFailure bool
	s := Suite{
		AfterEach: func(t *T) {
			sawFailure = t.Failed()
			t.Attach("screenshot", "artifacts/fails.png")
		},
		Scenarios: []Scenario{{Name: "fails", Run: func(t *T) { t.Fatalf("boom") }}},
	}

	report := Run(context.Background(), s, quiet)

	assert.True(t, sawFailure)
	res, _ := report.Scenario("fails")
	assert.Equal(t, []Attachment{{Name: "screenshot", Location: "artifacts/fails.png"}}, res.Attachments)
}

func TestRun_BeforeEachFailureSkipsBody(t *testing.T) {
	tr := &trace{}
	s := Suite{
		BeforeEach: func(t *T) { t.FailNow() },
		AfterEach:  tr.step("after each"),
		Scenarios:  []Scenario{{Name: "a", Run: tr.step("a")}},
	}

	report := Run(context.Background(), s, quiet)

	assert.Equal(t, []string{"after each"}, tr.steps)
	res, _ := report.Scenario("a")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, []string{"failed"}, res.Errors)
}

func TestRun_BeforeAllFailureSkipsScenariosButRunsAfterAll(t *testing.T) {
	tr := &trace{}
	s := Suite{
		Name:      "setup",
		BeforeAll: func(t *T) { t.Fatalf("create table: 500") },
		AfterAll:  tr.step("after all"),
		Scenarios: []Scenario{{Name: "a", Run: tr.step("a")}, {Name: "b", Run: tr.step("b")}},
	}

	report := Run(context.Background(), s, quiet)

	assert.Equal(t, []string{"after all"}, tr.steps)
	for _, res := range report.Scenarios {
		assert.Equal(t, StatusSkipped, res.Status)
		assert.Equal(t, ReasonBeforeAll, res.Reason)
	}
	assert.Equal(t, StatusFailed, report.Hooks[0].Status)
	assert.Equal(t, []string{"create table: 500"}, report.Hooks[0].Errors)
	assert.False(t, report.Passed())
}

func TestRun_AfterAllFailureFailsRun(t *testing.T) {
	s := Suite{
		Name:      "teardown",
		AfterAll:  func(t *T) { t.Errorf("hard delete: 404") },
		Scenarios: []Scenario{{Name: "a", Run: func(*T) {}}},
	}

	report := Run(context.Background(), s, quiet)

	assert.Equal(t, Counts{Passed: 1}, report.Counts())
	assert.False(t, report.Passed())
	assert.Contains(t, report.Err().Error(), AfterAllName)
}

func TestRun_PanicIsRecorded(t *testing.T) {
	s := Suite{Scenarios: []Scenario{
		{Name: "panics", Run: func(*T) { panic("nil locator") }},
		{Name: "next", Run: func(*T) {}},
	}}

	report := Run(context.Background(), s, quiet)

	res, _ := report.Scenario("panics")
	assert.Equal(t, StatusFailed, res.Status)
	require.NotEmpty(t, res.Errors)
	assert.True(t, strings.HasPrefix(res.Errors[0], "panic: nil locator"))
	res, _ = report.Scenario("next")
	assert.Equal(t, StatusPassed, res.Status)
}

func TestRun_FailFast(t *testing.T) {
	s := Suite{Scenarios: []Scenario{
		{Name: "a", Run: func(t *T) { t.Fail() }},
		{Name: "b", Run: func(*T) {}},
	}}

	report := Run(context.Background(), s, Options{FailFast: true, Logger: logging.Discard()})

	res, _ := report.Scenario("b")
	assert.Equal(t, StatusSkipped, res.Status)
	assert.Equal(t, ReasonFailFast, res.Reason)
}

func TestRun_Only(t *testing.T) {
	tr := &trace{}
	s := Suite{Scenarios: []Scenario{
		{Name: "a", Run: tr.step("a")},
		{Name: "b", Run: tr.step("b")},
	}}

	report := Run(context.Background(), s, Options{Only: []string{"b"}, Logger: logging.Discard()})

	assert.Equal(t, []string{"b"}, tr.steps)
	assert.Equal(t, Counts{Passed: 1, Skipped: 1}, report.Counts())
	res, _ := report.Scenario("a")
	assert.Equal(t, ReasonNotSelected, res.Reason)
}

func TestRun_CancelledMidRunStillTearsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var afterAllCtxErr error = context.Canceled
	s := Suite{
		AfterAll: func(t *T) { afterAllCtxErr = t.Context().Err() },
		Scenarios: []Scenario{
			{Name: "a", Run: func(*T) { cancel() }},
			{Name: "b", Run: func(*T) {}},
		},
	}

	report := Run(ctx, s, quiet)

	assert.NoError(t, afterAllCtxErr)
	res, _ := report.Scenario("b")
	assert.Equal(t, ReasonCancelled, res.Reason)
}

func TestRun_CancelledBeforeStartRunsNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ran := false
	s := Suite{
		BeforeAll: func(*T) { ran = true },
		AfterAll:  func(*T) { ran = true },
		Scenarios: []Scenario{{Name: "a", Run: func(*T) { ran = true }}},
	}

	report := Run(ctx, s, quiet)

	assert.False(t, ran)
	assert.Empty(t, report.Hooks)
	assert.Equal(t, Counts{Skipped: 1}, report.Counts())
}

func TestRun_CleanupsRunLIFO(t *testing.T) {
	tr := &trace{}
	s := Suite{
		AfterEach: tr.step("after each"),
		Scenarios: []Scenario{{Name: "a", Run: func(t *T) {
			t.Cleanup(func() { tr.steps = append(tr.steps, "first") })
			t.Cleanup(func() { tr.steps = append(tr.steps, "second") })
			t.FailNow()
		}}},
	}

	Run(context.Background(), s, quiet)

	assert.Equal(t, []string{"after each", "second", "first"}, tr.steps)
}

func TestSuite_Validate(t *testing.T) {
	noop := func(*T) {}
	s := Suite{Scenarios: []Scenario{{Name: "a", Run: noop}, {Name: "b", Run: noop}}}
	assert.NoError(t, s.Validate([]string{"b"}))
	assert.Equal(t, []string{"a", "b"}, s.Names())

	err := s.Validate([]string{"c"})
	assert.ErrorContains(t, err, `unknown scenario "c"`)

	dup := Suite{Scenarios: []Scenario{{Name: "a", Run: noop}, {Name: "a"}}}
	err = dup.Validate(nil)
	assert.ErrorContains(t, err, `duplicate scenario "a"`)
	assert.ErrorContains(t, err, `scenario "a" has no body`)
}
