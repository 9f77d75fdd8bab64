package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/stackscout/campaign"
	"github.com/use-agent/stackscout/models"
)

type received struct {
	event     Event
	signature string
	body      []byte
}

func newReceiver(t *testing.T, failFirst int) (*httptest.Server, func() []received) {
	t.Helper()
	var (
		mu    sync.Mutex
		got   []received
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls <= failFirst {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, err := io.ReadAll(r.Body)
		if !assert.NoError(t, err) {
			return
		}
		var ev Event
		if !assert.NoError(t, json.Unmarshal(body, &ev)) {
			return
		}
		got = append(got, received{event: ev, signature: r.Header.Get(SignatureHeader), body: body})
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []received {
		mu.Lock()
		defer mu.Unlock()
		out := make([]received, len(got))
		copy(out, got)
		return out
	}
}

func TestDeliver_SignsBody(t *testing.T) {
	srv, got := newReceiver(t, 0)

	err := Deliver(context.Background(), srv.Client(), srv.URL, "s3cret", &Event{Type: EventCampaignCompleted, RunID: "run-1"})
	require.NoError(t, err)

	events := got()
	require.Len(t, events, 1)
	assert.Equal(t, "run-1", events[0].event.RunID)
	assert.Equal(t, "sha256="+Sign("s3cret", events[0].body), events[0].signature)
}

func TestDeliver_NoSecretNoSignature(t *testing.T) {
	srv, got := newReceiver(t, 0)

	require.NoError(t, Deliver(context.Background(), srv.Client(), srv.URL, "", &Event{Type: EventSessionCompleted}))
	assert.Empty(t, got()[0].signature)
}

func TestDeliver_ErrorStatus(t *testing.T) {
	srv, _ := newReceiver(t, 1)

	err := Deliver(context.Background(), srv.Client(), srv.URL, "", &Event{Type: EventSessionCompleted})
	assert.ErrorContains(t, err, "status 503")
}

func TestNotifier_DeliversSessionAndCampaignEvents(t *testing.T) {
	srv, got := newReceiver(t, 0)
	n := NewNotifier(srv.URL, "", "run-42")

	n.SessionCompleted(context.Background(), campaign.SessionReport{
		Identity: "a@example.com",
		Login:    models.OutcomeSuccess,
		Domains:  3,
	})
	n.Wait()
	n.CampaignCompleted(context.Background(), campaign.Summary{
		Sessions:   1,
		Processed:  3,
		StopReason: campaign.StopQueueExhausted,
	})

	events := got()
	require.Len(t, events, 2)
	assert.Equal(t, EventSessionCompleted, events[0].event.Type)
	assert.Equal(t, EventCampaignCompleted, events[1].event.Type)
	assert.Equal(t, "run-42", events[1].event.RunID)

	data, ok := events[1].event.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "queue_exhausted", data["stop_reason"])
}

func TestNotifier_RetriesFailedDelivery(t *testing.T) {
	srv, got := newReceiver(t, 1)
	n := NewNotifier(srv.URL, "", "run-1")
	n.delays = []time.Duration{0, time.Millisecond}

	n.CampaignCompleted(context.Background(), campaign.Summary{StopReason: campaign.StopCanceled})

	assert.Len(t, got(), 1)
}
