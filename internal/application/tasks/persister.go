package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rezkam/tasko/internal/domain"
)

// persister writes task collections to the store in the background.
// It holds at most one pending collection; a newer one replaces it, since
// every write carries the full collection.
type persister struct {
	store   Store
	timeout time.Duration

	mu      sync.Mutex
	pending *[]domain.Task

	wake         chan struct{}
	flushReqs    chan chan struct{}
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

func newPersister(store Store, timeout time.Duration) *persister {
	p := &persister{
		store:        store,
		timeout:      timeout,
		wake:         make(chan struct{}, 1),
		flushReqs:    make(chan chan struct{}),
		shutdownChan: make(chan struct{}),
	}

	p.wg.Add(1)
	go p.run()

	return p
}

// enqueue replaces the pending collection and never blocks.
func (p *persister) enqueue(tasks []domain.Task) {
	p.mu.Lock()
	p.pending = &tasks
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
		// A wake-up is already queued and will pick up the new collection.
	}
}

// discard drops the pending collection without writing it.
func (p *persister) discard() {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
}

func (p *persister) run() {
	defer p.wg.Done()

	for {
		select {
		case <-p.wake:
			p.writePending()
		case done := <-p.flushReqs:
			p.writePending()
			close(done)
		case <-p.shutdownChan:
			p.writePending()
			return
		}
	}
}

func (p *persister) writePending() {
	p.mu.Lock()
	tasks := p.pending
	p.pending = nil
	p.mu.Unlock()

	if tasks == nil {
		return
	}

	// Writes outlive the command that queued them.
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if !p.store.Update(ctx, domain.SnapshotUpdate{Tasks: tasks}) {
		slog.ErrorContext(ctx, "Failed to persist tasks", "tasks", len(*tasks))
	}
}

// flush waits until everything enqueued before the call has been written.
func (p *persister) flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case p.flushReqs <- done:
	case <-p.shutdownChan:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush: %w", ctx.Err())
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush: %w", ctx.Err())
	}
}

// shutdown writes the pending collection and stops the goroutine.
// It respects the provided context's deadline.
func (p *persister) shutdown(ctx context.Context) error {
	var shutdownErr error
	p.shutdownOnce.Do(func() {
		close(p.shutdownChan)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
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
