package report

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Name    string           `xml:"name,attr"`
	Tests   int              `xml:"tests,attr"`
	Fails   int              `xml:"failures,attr"`
	Skipped int              `xml:"skipped,attr"`
	Time    string           `xml:"time,attr"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	ID        string          `xml:"id,attr"`
	Tests     int             `xml:"tests,attr"`
	Fails     int             `xml:"failures,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      string          `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	Cases     []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

// WriteJUnit renders r as JUnit XML. Failed hooks appear as extra test cases
// so CI shows teardown failures.
func WriteJUnit(w io.Writer, r *runner.Report) error {
	suite := junitTestSuite{
		Name:      r.Suite,
		ID:        r.ID,
		Time:      seconds(r.Duration().Seconds()),
		Timestamp: r.StartedAt.UTC().Format("2006-01-02T15:04:05"),
	}
	for _, h := range r.Hooks {
		if h.Status == runner.StatusFailed {
			suite.Cases = append(suite.Cases, junitCase(r.Suite, h))
		}
	}
	for _, s := range r.Scenarios {
		suite.Cases = append(suite.Cases, junitCase(r.Suite, s))
	}
	for _, c := range suite.Cases {
		suite.Tests++
		switch {
		case c.Failure != nil:
			suite.Fails++
		case c.Skipped != nil:
			suite.Skipped++
		}
	}

	doc := junitTestSuites{
		Name:    "catalogcheck",
		Tests:   suite.Tests,
		Fails:   suite.Fails,
		Skipped: suite.Skipped,
		Time:    suite.Time,
		Suites:  []junitTestSuite{suite},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode junit: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func junitCase(suite string, res runner.Result) junitTestCase {
	c := junitTestCase{
		Name:      res.Name,
		Classname: suite,
		Time:      seconds(res.Duration.Seconds()),
		SystemOut: strings.Join(res.Output, "\n"),
	}
	switch res.Status {
	case runner.StatusFailed:
		msg := "failed"
		if len(res.Errors) > 0 {
			msg = firstLine(res.Errors[0])
		}
		body := strings.Join(res.Errors, "\n\n")
		for _, a := range res.Attachments {
			body += fmt.Sprintf("\n[[ATTACHMENT|%s]]", a.Location)
		}
		c.Failure = &junitFailure{Message: msg, Body: body}
	case runner.StatusSkipped:
		c.Skipped = &junitSkipped{Message: res.Reason}
	}
	return c
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

func seconds(s float64) string { return fmt.Sprintf("%.3f", s) }

// FileSink writes a rendered report to a path on every Record.
type FileSink struct {
	Path   string
	Format string // "junit" or "json"
}

func (f FileSink) Name() string { return f.Format + ":" + f.Path }

func (f FileSink) Record(_ context.Context, r *runner.Report) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(f.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch f.Format {
	case "junit":
		err = WriteJUnit(file, r)
	case "json":
		err = WriteJSON(file, r)
	default:
		err = fmt.Errorf("unknown report format %q", f.Format)
	}
	if err != nil {
		return err
	}
	return file.Close()
}
