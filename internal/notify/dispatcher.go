// Package notify delivers user notifications outside the task engine's
// critical section. The Dispatcher queues them and a Sink delivers them:
// to the log, to live HTTP subscribers, or to a webhook.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rezkam/tasko/internal/domain"
)

// Default configuration values.
const (
	DefaultQueueSize       = 64
	DefaultDeliveryTimeout = 10 * time.Second
)

// Sink delivers one notification.
type Sink interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// Config holds configuration for the Dispatcher.
type Config struct {
	QueueSize       int           // Backlog length that triggers a warning
	DeliveryTimeout time.Duration // Timeout for a single delivery
}

// Dispatcher hands notifications to a Sink on a background goroutine, in
// the order they were queued. Notify never blocks and never drops a
// notification before Shutdown: a burst larger than QueueSize grows the
// backlog and is logged, so every automatic start is reported once.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration
	warnAt  int

	mu      sync.Mutex
	pending []domain.Notification
	closed  bool

	wake         chan struct{}
	shutdownChan chan struct{}
	shutdownOnce sync.Once // Ensures shutdown is idempotent
	wg           sync.WaitGroup
}

// NewDispatcher creates a dispatcher and starts its delivery goroutine.
// Zero config values get defaults.
func NewDispatcher(sink Sink, config Config) *Dispatcher {
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	if config.DeliveryTimeout <= 0 {
		config.DeliveryTimeout = DefaultDeliveryTimeout
	}

	d := &Dispatcher{
		sink:         sink,
		timeout:      config.DeliveryTimeout,
		warnAt:       config.QueueSize,
		pending:      make([]domain.Notification, 0, config.QueueSize),
		wake:         make(chan struct{}, 1),
		shutdownChan: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

// Notify queues n for delivery. Notifications arriving after Shutdown are
// dropped with a warning.
func (d *Dispatcher) Notify(ctx context.Context, n domain.Notification) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		slog.WarnContext(ctx, "Dropped notification after shutdown", "notification_id", n.ID)
		return
	}
	d.pending = append(d.pending, n)
	backlog := len(d.pending)
	d.mu.Unlock()

	if backlog == d.warnAt+1 {
		slog.WarnContext(ctx, "Notification backlog exceeds queue size",
			"queue_size", d.warnAt,
			"notification_id", n.ID)
	}

	select {
	case d.wake <- struct{}{}:
	default:
		// A wake-up is already queued and will pick this one up.
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case <-d.wake:
			d.drain()
		case <-d.shutdownChan:
			// Deliver everything queued before shutdown
			d.drain()
			return
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		batch := d.pending
		d.pending = nil
		d.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, n := range batch {
			d.deliver(n)
		}
	}
}

func (d *Dispatcher) deliver(n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sink.Deliver(ctx, n); err != nil {
		slog.WarnContext(ctx, "Failed to deliver notification",
			slog.String("notification_id", n.ID),
			slog.String("error", err.Error()))
	}
}

// Shutdown stops accepting notifications and waits for queued ones to be
// delivered. It respects the provided context's deadline and is safe to
// call more than once.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	var shutdownErr error
	d.shutdownOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.shutdownChan)

		done := make(chan struct{})
		go func() {
			d.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			shutdownErr = fmt.Errorf("shutdown timeout: %w", ctx.Err())
		}
	})
	return shutdownErr
}
