package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// Webhook posts a structured event to an HTTP endpoint.
type Webhook struct {
	url     string
	baseURL string
	headers map[string]string
	client  *http.Client
	gate    *gate
}

// NewWebhook creates a generic webhook notifier.
func NewWebhook(url, baseURL string, headers map[string]string, always bool, cooldown time.Duration) *Webhook {
	return &Webhook{
		url:     url,
		baseURL: baseURL,
		headers: headers,
		client:  &http.Client{Timeout: 5 * time.Second},
		gate:    newGate(always, cooldown),
	}
}

type webhookPayload struct {
	Event     string    `json:"event"`
	Suite     string    `json:"suite"`
	RunID     string    `json:"run_id"`
	BaseURL   string    `json:"base_url"`
	Passed    int       `json:"passed"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Failures  []failure `json:"failures,omitempty"`
	Duration  float64   `json:"duration_seconds"`
	Timestamp string    `json:"timestamp"`
	Summary   string    `json:"summary"`
}

type failure struct {
	Name   string   `json:"name"`
	Errors []string `json:"errors"`
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Record(ctx context.Context, r *runner.Report) error {
	return w.gate.deliver(r, func(ev string) error { return w.send(ctx, r, ev) })
}

func (w *Webhook) send(ctx context.Context, r *runner.Report, ev string) error {
	c := r.Counts()
	p := webhookPayload{
		Event:     ev,
		Suite:     r.Suite,
		RunID:     r.ID,
		BaseURL:   w.baseURL,
		Passed:    c.Passed,
		Failed:    c.Failed,
		Skipped:   c.Skipped,
		Duration:  r.Duration().Seconds(),
		Timestamp: r.FinishedAt.UTC().Format(time.RFC3339),
		Summary:   summary(r, w.baseURL),
	}
	for _, f := range r.Failures() {
		p.Failures = append(p.Failures, failure{Name: f.Name, Errors: f.Errors})
	}
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return post(ctx, w.client, w.url, body, w.headers)
}
