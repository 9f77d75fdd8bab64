// Package webhook delivers campaign events to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/use-agent/stackscout/campaign"
)

// Event types.
const (
	EventSessionCompleted  = "session.completed"
	EventCampaignCompleted = "campaign.completed"
)

// SignatureHeader carries the HMAC-SHA256 of the body when a secret is set.
const SignatureHeader = "X-Stackscout-Signature"

// Event is the payload sent to webhook endpoints.
type Event struct {
	Type      string `json:"type"`
	RunID     string `json:"run_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data"`
}

// Deliver sends a webhook event synchronously.
// The request body is signed with HMAC-SHA256 if secret is non-empty.
// Header: X-Stackscout-Signature: sha256=<hex>
func Deliver(ctx context.Context, client *http.Client, url, secret string, event *Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Stackscout-Webhook/1.0")

	if secret != "" {
		req.Header.Set(SignatureHeader, "sha256="+Sign(secret, body))
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: deliver: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook: endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Notifier implements campaign.Notifier by posting events to one URL.
//
// Session events are delivered in the background so a slow endpoint never
// delays the next login. The campaign event is delivered synchronously and
// Wait blocks until background deliveries finish.
type Notifier struct {
	url    string
	secret string
	runID  string
	client *http.Client
	delays []time.Duration
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewNotifier creates a Notifier. runID tags every event of this process.
func NewNotifier(url, secret, runID string) *Notifier {
	return &Notifier{
		url:    url,
		secret: secret,
		runID:  runID,
		client: &http.Client{Timeout: 10 * time.Second},
		delays: []time.Duration{0, 1 * time.Second, 5 * time.Second},
		now:    time.Now,
	}
}

var _ campaign.Notifier = (*Notifier)(nil)

// SessionCompleted posts a session.completed event in the background.
func (n *Notifier) SessionCompleted(ctx context.Context, report campaign.SessionReport) {
	event := n.event(EventSessionCompleted, report)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.deliverWithRetry(context.WithoutCancel(ctx), event)
	}()
}

// CampaignCompleted posts a campaign.completed event and waits for it.
func (n *Notifier) CampaignCompleted(ctx context.Context, summary campaign.Summary) {
	n.deliverWithRetry(ctx, n.event(EventCampaignCompleted, summary))
}

// Wait blocks until every background delivery has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) event(typ string, data any) *Event {
	return &Event{
		Type:      typ,
		RunID:     n.runID,
		Timestamp: n.now().Unix(),
		Data:      data,
	}
}

// deliverWithRetry tries each delay in turn until one delivery succeeds.
func (n *Notifier) deliverWithRetry(ctx context.Context, event *Event) {
	for attempt, delay := range n.delays {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		err := Deliver(ctx, n.client, n.url, n.secret, event)
		if err == nil {
			slog.Info("webhook delivered",
				"url", n.url,
				"event", event.Type,
				"run_id", event.RunID,
				"attempt", attempt+1,
			)
			return
		}
		slog.Warn("webhook delivery failed",
			"url", n.url,
			"event", event.Type,
			"run_id", event.RunID,
			"attempt", attempt+1,
			"error", err,
		)
	}
	slog.Error("webhook delivery exhausted all retries",
		"url", n.url,
		"event", event.Type,
		"run_id", event.RunID,
	)
}
