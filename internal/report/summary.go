package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).PaddingLeft(4)
)

func badge(s runner.Status) string {
	switch s {
	case runner.StatusPassed:
		return passStyle.Render("PASS")
	case runner.StatusFailed:
		return failStyle.Render("FAIL")
	default:
		return skipStyle.Render("SKIP")
	}
}

// WriteSummary prints a human readable summary of r.
func WriteSummary(w io.Writer, r *runner.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", titleStyle.Render(r.Suite), dimStyle.Render("run "+r.ID))

	line := func(res runner.Result, hook bool) {
		name := res.Name
		if hook {
			name = dimStyle.Render("(" + name + ")")
		}
		fmt.Fprintf(&b, "  %s  %s %s\n", badge(res.Status), name,
			dimStyle.Render(res.Duration.Round(time.Millisecond).String()))
		if res.Reason != "" {
			b.WriteString(dimStyle.PaddingLeft(4).Render(res.Reason) + "\n")
		}
		for _, e := range res.Errors {
			b.WriteString(errStyle.Render(firstLine(e)) + "\n")
		}
		for _, a := range res.Attachments {
			b.WriteString(dimStyle.PaddingLeft(4).Render(a.Name+": "+a.Location) + "\n")
		}
	}

	for _, h := range r.Hooks {
		if h.Name == runner.BeforeAllName {
			line(h, true)
		}
	}
	for _, s := range r.Scenarios {
		line(s, false)
	}
	for _, h := range r.Hooks {
		if h.Name != runner.BeforeAllName {
			line(h, true)
		}
	}

	c := r.Counts()
	verdict := passStyle.Render("PASSED")
	if !r.Passed() {
		verdict = failStyle.Render("FAILED")
	}
	fmt.Fprintf(&b, "\n%s  %d passed, %d failed, %d skipped in %s\n",
		verdict, c.Passed, c.Failed, c.Skipped, r.Duration().Round(time.Millisecond))

	_, err := io.WriteString(w, b.String())
	return err
}
