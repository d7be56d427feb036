package runner

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/charmbracelet/log"
)

// Attachment is a named artifact produced by a step, such as a screenshot.
type Attachment struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// T is handed to hooks and scenario bodies. It satisfies testify's
// require.TestingT, so assertion helpers abort the current step on failure
// the way they abort a *testing.T.
type T struct {
	name   string
	ctx    context.Context
	logger *log.Logger

	mu          sync.Mutex
	failed      bool
	errors      []string
	output      []string
	attachments []Attachment
	cleanups    []func()
}

func newT(ctx context.Context, name string, logger *log.Logger) *T {
	return &T{name: name, ctx: ctx, logger: logger.With("step", name)}
}

// Name returns the scenario or hook name.
func (t *T) Name() string { return t.name }

// Context returns the context the step runs under.
func (t *T) Context() context.Context { return t.ctx }

// Helper is a no-op kept so *T satisfies helper interfaces shared with *testing.T.
func (t *T) Helper() {}

// Logf records a line in the step output.
func (t *T) Logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	t.mu.Lock()
	t.output = append(t.output, msg)
	t.mu.Unlock()
	t.logger.Debug(msg)
}

// Errorf marks the step failed and records the message. Execution continues.
func (t *T) Errorf(format string, args ...any) {
	t.record(fmt.Sprintf(format, args...))
}

// Fail marks the step failed without a message.
func (t *T) Fail() {
	t.mu.Lock()
	t.failed = true
	t.mu.Unlock()
}

// FailNow marks the step failed and stops the calling goroutine. It must be
// called from the goroutine running the step.
func (t *T) FailNow() {
	t.Fail()
	runtime.Goexit()
}

// Fatalf is Errorf followed by FailNow.
func (t *T) Fatalf(format string, args ...any) {
	t.Errorf(format, args...)
	t.FailNow()
}

// Failed reports whether the step has failed.
func (t *T) Failed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Cleanup registers fn to run after the step finishes. Cleanups run in
// last-added-first order, even when the step failed.
func (t *T) Cleanup(fn func()) {
	t.mu.Lock()
	t.cleanups = append(t.cleanups, fn)
	t.mu.Unlock()
}

// Attach records an artifact location on the result.
func (t *T) Attach(name, location string) {
	t.mu.Lock()
	t.attachments = append(t.attachments, Attachment{Name: name, Location: location})
	t.mu.Unlock()
	t.logger.Info("attached artifact", "name", name, "location", location)
}

func (t *T) record(msg string) {
	t.mu.Lock()
	t.failed = true
	t.errors = append(t.errors, msg)
	t.mu.Unlock()
	t.logger.Error(msg)
}

// run executes fn on its own goroutine so FailNow can unwind it, and waits.
func (t *T) run(fn func(*T)) {
	if fn == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				t.record(fmt.Sprintf("panic: %v\n%s", r, debug.Stack()))
			}
		}()
		fn(t)
	}()
	<-done
}

func (t *T) runCleanups() {
	for {
		t.mu.Lock()
		n := len(t.cleanups)
		if n == 0 {
			t.mu.Unlock()
			return
		}
		fn := t.cleanups[n-1]
		t.cleanups = t.cleanups[:n-1]
		t.mu.Unlock()
		t.run(func(*T) { fn() })
	}
}
