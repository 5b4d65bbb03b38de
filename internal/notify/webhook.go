package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// DefaultWebhookURL is the local n8n endpoint used when none is configured.
const DefaultWebhookURL = "http://localhost:5678/webhook/upload"

const maxDrainedBody = 64 * 1024

type WebhookOptions struct {
	URL     string
	Timeout time.Duration
	// BreakerFailures consecutive failures open the circuit; 0 disables it.
	BreakerFailures uint32
	BreakerCooldown time.Duration
	Client          *http.Client
}

// Webhook POSTs each payload as JSON to a single URL. There is no retry
// and no queue; an open circuit fails immediately.
type Webhook struct {
	url     string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewWebhook(opts WebhookOptions) *Webhook {
	url := opts.URL
	if url == "" {
		url = DefaultWebhookURL
	}

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	w := &Webhook{url: url, client: client}
	if opts.BreakerFailures > 0 {
		failures := opts.BreakerFailures
		w.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "webhook",
			MaxRequests: 1,
			Timeout:     opts.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
		})
	}
	return w
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) URL() string { return w.url }

func (w *Webhook) Notify(ctx context.Context, p Payload) Outcome {
	body, err := json.Marshal(p)
	if err != nil {
		return Failed(0, fmt.Sprintf("encode payload: %v", err))
	}

	send := func() (interface{}, error) {
		return w.post(ctx, body)
	}

	var res interface{}
	if w.breaker != nil {
		res, err = w.breaker.Execute(send)
	} else {
		res, err = send()
	}

	code, _ := res.(int)
	if err != nil {
		return Failed(code, err.Error())
	}
	return Delivered(code)
}

func (w *Webhook) post(ctx context.Context, body []byte) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainedBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return resp.StatusCode, nil
}
