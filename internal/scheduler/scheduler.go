// Package scheduler runs monitor jobs on fixed intervals.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/praxisllmlab/catalogcheck/internal/logging"
)

// Job is the interface for a background job.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// entry holds a registered job and its interval.
type entry struct {
	job        Job
	interval   time.Duration
	runOnStart bool
}

// Scheduler runs background jobs at fixed intervals.
type Scheduler struct {
	entries []entry
	logger  *log.Logger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a new scheduler.
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger: logging.Component("scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers a job to run at the given interval.
func (s *Scheduler) Add(job Job, interval time.Duration) {
	s.entries = append(s.entries, entry{
		job:      job,
		interval: interval,
	})
}

// AddWithStartupRun registers a job that runs immediately at startup,
// then at the given interval. Monitor mode uses it so the first suite run
// does not wait a full interval.
func (s *Scheduler) AddWithStartupRun(job Job, interval time.Duration) {
	s.entries = append(s.entries, entry{
		job:        job,
		interval:   interval,
		runOnStart: true,
	})
}

// Start begins running all registered jobs in background goroutines.
func (s *Scheduler) Start() {
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.runJob(e)
	}
	s.logger.Info("scheduler started", "jobs", len(s.entries))
}

// Stop cancels all running jobs and waits for them to finish.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runJob(e entry) {
	defer s.wg.Done()

	if e.runOnStart {
		s.executeJob(e.job)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeJob(e.job)
		}
	}
}

func (s *Scheduler) executeJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("job panicked", "job", job.Name(), "panic", r)
		}
	}()

	start := time.Now()
	if err := job.Run(s.ctx); err != nil {
		s.logger.Error("job failed", "job", job.Name(), "err", err, "elapsed", time.Since(start))
		return
	}
	s.logger.Debug("job finished", "job", job.Name(), "elapsed", time.Since(start))
}
