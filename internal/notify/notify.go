// Package notify announces suite failures and recoveries to chat and
// webhooks. Notifiers are report sinks.
package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// Event names sent to webhooks.
const (
	EventFailed    = "suite.failed"
	EventRecovered = "suite.recovered"
	EventPassed    = "suite.passed"
)

// gate decides whether a report is worth announcing. It remembers the last
// verdict per suite so a pass after a failure is sent as a recovery, and
// throttles repeated failures.
type gate struct {
	always   bool
	cooldown time.Duration

	mu         sync.Mutex
	lastPassed map[string]bool
	alerted    map[string]time.Time
}

func newGate(always bool, cooldown time.Duration) *gate {
	return &gate{
		always:     always,
		cooldown:   cooldown,
		lastPassed: make(map[string]bool),
		alerted:    make(map[string]time.Time),
	}
}

// event returns the event for r, or "" when nothing should be sent. It
// does not change the gate; call settle once the outcome is known.
func (g *gate) event(r *runner.Report, now time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	prev, seen := g.lastPassed[r.Suite]
	switch {
	case !r.Passed():
		if last, ok := g.alerted[r.Suite]; ok && now.Sub(last) < g.cooldown && !g.always {
			return ""
		}
		return EventFailed
	case seen && !prev:
		return EventRecovered
	case g.always:
		return EventPassed
	}
	return ""
}

// settle records that ev for r was delivered, or that nothing was due when
// ev is "". A failed delivery must not be settled so the next report retries.
func (g *gate) settle(r *runner.Report, ev string, now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastPassed[r.Suite] = r.Passed()
	switch ev {
	case EventFailed:
		g.alerted[r.Suite] = now
	case EventRecovered:
		delete(g.alerted, r.Suite)
	}
}

// deliver runs send when r is due an event and settles the gate on success.
func (g *gate) deliver(r *runner.Report, send func(ev string) error) error {
	now := time.Now()
	ev := g.event(r, now)
	if ev != "" {
		if err := send(ev); err != nil {
			return err
		}
	}
	g.settle(r, ev, now)
	return nil
}

// summary is the plain text body shared by the notifiers.
func summary(r *runner.Report, baseURL string) string {
	c := r.Counts()
	var b strings.Builder
	verdict := "passed"
	if !r.Passed() {
		verdict = "FAILED"
	}
	fmt.Fprintf(&b, "catalogcheck %s %s against %s: %d passed, %d failed, %d skipped (run %s)\n",
		r.Suite, verdict, baseURL, c.Passed, c.Failed, c.Skipped, r.ID)
	for _, f := range r.Failures() {
		msg := "failed"
		if len(f.Errors) > 0 {
			msg, _, _ = strings.Cut(f.Errors[0], "\n")
		}
		fmt.Fprintf(&b, "• %s: %s\n", f.Name, msg)
		for _, a := range f.Attachments {
			fmt.Fprintf(&b, "  %s: %s\n", a.Name, a.Location)
		}
	}
	return b.String()
}
