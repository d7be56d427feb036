package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/praxisllmlab/catalogcheck/internal/runner"
)

// Slack posts failures and recoveries to a Slack incoming webhook.
type Slack struct {
	webhookURL string
	baseURL    string
	client     *http.Client
	gate       *gate
}

// NewSlack creates a Slack notifier. Repeated failures of the same suite
// within cooldown are sent once unless always is set.
func NewSlack(webhookURL, baseURL string, always bool, cooldown time.Duration) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		gate:       newGate(always, cooldown),
	}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Record(ctx context.Context, r *runner.Report) error {
	return s.gate.deliver(r, func(ev string) error { return s.send(ctx, r, ev) })
}

func (s *Slack) send(ctx context.Context, r *runner.Report, ev string) error {
	text := summary(r, s.baseURL)
	switch ev {
	case EventFailed:
		text = ":red_circle: " + text
	case EventRecovered:
		text = ":large_green_circle: recovered: " + text
	}
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}
	return post(ctx, s.client, s.webhookURL, payload, nil)
}

func post(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify %s: status %d", url, resp.StatusCode)
	}
	return nil
}
