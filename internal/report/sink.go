// Package report renders and distributes suite run reports.
package report

import (
	"context"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// Sink receives every finished report.
type Sink interface {
	Name() string
	Record(ctx context.Context, r *runner.Report) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, r *runner.Report) error
}

func (s SinkFunc) Name() string { return s.SinkName }

func (s SinkFunc) Record(ctx context.Context, r *runner.Report) error { return s.Fn(ctx, r) }

// Dispatch hands r to every sink. Sink failures are logged and never change
// the verdict of the run. It returns the number of sinks that failed.
func Dispatch(ctx context.Context, r *runner.Report, sinks ...Sink) int {
	logger := logging.Component("report")
	failed := 0
	for _, s := range sinks {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, r); err != nil {
			failed++
			logger.Warn("sink failed", "sink", s.Name(), "run", r.ID, "err", err)
			continue
		}
		logger.Debug("sink recorded", "sink", s.Name(), "run", r.ID)
	}
	return failed
}
