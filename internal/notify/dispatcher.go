package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mediadrop/internal/metrics"
)

const defaultDispatchTimeout = 15 * time.Second

// Dispatcher fans payloads out to notifiers on detached goroutines. The
// caller never waits for, or learns about, the outcome.
type Dispatcher struct {
	notifiers []Notifier
	timeout   time.Duration
	log       zerolog.Logger
	metrics   *metrics.Metrics

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

func NewDispatcher(log zerolog.Logger, m *metrics.Metrics, timeout time.Duration, notifiers ...Notifier) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	return &Dispatcher{
		notifiers: notifiers,
		timeout:   timeout,
		log:       log.With().Str("component", "notify").Logger(),
		metrics:   m,
	}
}

// Dispatch starts one delivery per notifier and returns immediately. The
// deliveries outlive ctx cancellation but keep its values.
func (d *Dispatcher) Dispatch(ctx context.Context, p Payload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn().Uint("upload_id", p.ID).Msg("dispatcher closed, notification dropped")
		return
	}

	detached := context.WithoutCancel(ctx)
	for _, n := range d.notifiers {
		d.wg.Add(1)
		go d.deliver(detached, n, p)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n Notifier, p Payload) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("notifier", n.Name()).Interface("panic", r).Msg("notifier panicked")
			d.metrics.ObserveNotification(n.Name(), false)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	out := n.Notify(ctx, p)
	d.metrics.ObserveNotification(n.Name(), out.Delivered)

	if out.Delivered {
		d.log.Info().
			Str("notifier", n.Name()).
			Uint("upload_id", p.ID).
			Str("type", p.Type).
			Str("filename", p.Filename).
			Int("status", out.StatusCode).
			Msg("notification delivered")
		return
	}
	d.log.Warn().
		Str("notifier", n.Name()).
		Uint("upload_id", p.ID).
		Str("type", p.Type).
		Str("filename", p.Filename).
		Int("status", out.StatusCode).
		Str("reason", out.Reason).
		Msg("notification failed")
}

// Wait blocks until every started delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting payloads and waits for in-flight deliveries
// until ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
