// Package metrics exports suite run results to Prometheus, either scraped
// from the monitor server or pushed to a Pushgateway after a one-off run.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// Recorder owns a private registry so pushes carry only catalogcheck series.
type Recorder struct {
	registry *prometheus.Registry

	runs             *prometheus.CounterVec
	scenarios        *prometheus.CounterVec
	scenarioDuration *prometheus.HistogramVec
	runDuration      prometheus.Histogram
	lastSuccess      *prometheus.GaugeVec
	lastRun          *prometheus.GaugeVec
	hookFailures     *prometheus.CounterVec

	mu     sync.RWMutex
	latest *runner.Report
}

// NewRecorder registers the catalogcheck metrics on a fresh registry.
// withRuntime adds Go and process collectors, wanted when scraped.
func NewRecorder(withRuntime bool) *Recorder {
	buckets := []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300}

	r := &Recorder{
		registry: prometheus.NewRegistry(),

		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogcheck_runs_total",
			Help: "Suite runs by result",
		}, []string{"suite", "result"}),

		scenarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogcheck_scenarios_total",
			Help: "Scenario executions by status",
		}, []string{"suite", "scenario", "status"}),

		scenarioDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalogcheck_scenario_duration_seconds",
			Help:    "Scenario wall time",
			Buckets: buckets,
		}, []string{"suite", "scenario"}),

		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "catalogcheck_run_duration_seconds",
			Help:    "Suite run wall time including hooks",
			Buckets: buckets,
		}),

		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalogcheck_last_run_success",
			Help: "1 if the last run passed, 0 otherwise",
		}, []string{"suite"}),

		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "catalogcheck_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}, []string{"suite"}),

		hookFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalogcheck_hook_failures_total",
			Help: "Failed before-all and after-all hooks",
		}, []string{"suite", "hook"}),
	}

	r.registry.MustRegister(
		r.runs,
		r.scenarios,
		r.scenarioDuration,
		r.runDuration,
		r.lastSuccess,
		r.lastRun,
		r.hookFailures,
	)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// Observe records a finished run.
func (r *Recorder) Observe(report *runner.Report) {
	suite := report.Suite

	result := "passed"
	success := 1.0
	if !report.Passed() {
		result = "failed"
		success = 0
	}
	r.runs.WithLabelValues(suite, result).Inc()
	r.runDuration.Observe(report.Duration().Seconds())
	r.lastSuccess.WithLabelValues(suite).Set(success)
	r.lastRun.WithLabelValues(suite).Set(float64(report.FinishedAt.Unix()))

	for _, s := range report.Scenarios {
		r.scenarios.WithLabelValues(suite, s.Name, string(s.Status)).Inc()
		if s.Status != runner.StatusSkipped {
			r.scenarioDuration.WithLabelValues(suite, s.Name).Observe(s.Duration.Seconds())
		}
	}
	for _, h := range report.Hooks {
		if h.Status == runner.StatusFailed {
			r.hookFailures.WithLabelValues(suite, h.Name).Inc()
		}
	}

	r.mu.Lock()
	r.latest = report
	r.mu.Unlock()
}

// Latest returns the last observed report, or nil.
func (r *Recorder) Latest() *runner.Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Push replaces the job's metrics on the Pushgateway at url.
func (r *Recorder) Push(ctx context.Context, url, job, instance string) error {
	p := push.New(url, job).Gatherer(r.registry)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
