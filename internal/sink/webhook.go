package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/loungewatch/loungewatch/pkg/types"
)

const defaultWebhookTries = 3

// Webhook posts each logged cycle to an HTTP endpoint, either as a JSON row
// batch ("http") or as a Slack text message ("slack").
type Webhook struct {
	url      string
	kind     string
	client   *http.Client
	maxTries uint
	backoff  func() backoff.BackOff
}

// NewWebhook returns a Webhook sink. kind is "http" or "slack".
func NewWebhook(url, kind string, client *http.Client) *Webhook {
	if client == nil {
		client = http.DefaultClient
	}
	return &Webhook{
		url:      url,
		kind:     kind,
		client:   client,
		maxTries: defaultWebhookTries,
		backoff:  func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

type batchPayload struct {
	BatchID    string    `json:"batch_id"`
	CapturedAt time.Time `json:"captured_at"`
	Rows       []Row     `json:"rows"`
}

// Log delivers one cycle, retrying transient failures with exponential
// backoff. 4xx responses are not retried.
func (w *Webhook) Log(ctx context.Context, capturedAt time.Time, records []types.Record) error {
	body, err := w.payload(capturedAt, records)
	if err != nil {
		return err
	}

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, w.post(ctx, body)
	}, backoff.WithBackOff(w.backoff()), backoff.WithMaxTries(w.maxTries))
	if err != nil {
		return fmt.Errorf("sink: webhook delivery: %w", err)
	}
	slog.Debug("sink: webhook delivered", "type", w.kind, "rows", len(records))
	return nil
}

func (w *Webhook) payload(capturedAt time.Time, records []types.Record) ([]byte, error) {
	batchID := uuid.NewString()
	if w.kind == "slack" {
		return json.Marshal(map[string]string{"text": slackText(capturedAt, records)})
	}
	return json.Marshal(batchPayload{
		BatchID:    batchID,
		CapturedAt: capturedAt,
		Rows:       toRows(batchID, capturedAt, records),
	})
}

func slackText(capturedAt time.Time, records []types.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Occupancy %s*", capturedAt.Format("2006-01-02 15:04"))
	for _, r := range records {
		fmt.Fprintf(&b, "\n%s: %d women / %d men", r.Name, r.Women, r.Men)
	}
	return b.String()
}

func (w *Webhook) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return backoff.Permanent(fmt.Errorf("webhook returned HTTP %d", resp.StatusCode))
	}
	return nil
}
