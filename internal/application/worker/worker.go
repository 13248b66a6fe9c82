package worker

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Default configuration values.
const (
	DefaultSweepInterval    = 1 * time.Second
	DefaultOperationTimeout = 5 * time.Second
)

// Sweeper is the engine operation driven by the worker.
type Sweeper interface {
	// Sweep transitions every task that is due and returns how many moved.
	Sweep(ctx context.Context) int
}

// Worker runs the automatic sweep on a fixed period for the lifetime of
// its context. Ticks run one at a time on the worker goroutine, so a slow
// sweep delays the next tick instead of overlapping it.
type Worker struct {
	target           Sweeper
	sweepInterval    time.Duration
	operationTimeout time.Duration // Timeout for a single sweep
	panicHandler     PanicHandler
	ticks            atomic.Int64
}

// Option is a functional option for configuring Worker.
type Option func(*Worker)

// WithSweepInterval sets how often the worker sweeps.
func WithSweepInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.sweepInterval = d
		}
	}
}

// WithOperationTimeout sets the timeout for a single sweep.
func WithOperationTimeout(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.operationTimeout = d
		}
	}
}

// WithPanicHandler sets the handler that receives sweep panics.
func WithPanicHandler(h PanicHandler) Option {
	return func(w *Worker) {
		if h != nil {
			w.panicHandler = h
		}
	}
}

// New creates a new Worker driving target.
func New(target Sweeper, opts ...Option) *Worker {
	w := &Worker{
		target:           target,
		sweepInterval:    DefaultSweepInterval,
		operationTimeout: DefaultOperationTimeout,
		panicHandler:     LogPanicHandler{},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Start sweeps once immediately and then on every tick until ctx is
// cancelled, when it returns nil. A panicking sweep is reported and the
// loop continues.
func (w *Worker) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "Sweep worker started", "interval", w.sweepInterval)

	w.tick(ctx)

	ticker := time.NewTicker(w.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			slog.InfoContext(ctx, "Sweep worker stopped")
			return nil
		}
	}
}

func (w *Worker) tick(ctx context.Context) {
	// A sweep in progress is not interrupted by shutdown.
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.operationTimeout)
	defer cancel()

	if _, err := w.RunSweepOnce(opCtx); err != nil {
		slog.ErrorContext(opCtx, "Sweep failed", "error", err)
	}
}

// RunSweepOnce executes a single sweep with panic recovery.
// It returns the number of tasks started.
func (w *Worker) RunSweepOnce(ctx context.Context) (started int, err error) {
	tick := w.ticks.Add(1)

	defer func() {
		if r := recover(); r != nil {
			p := SweepPanic{Tick: tick, Value: r, StackTrace: string(debug.Stack())}
			w.panicHandler.HandlePanic(ctx, p)
			err = p
		}
	}()

	started = w.target.Sweep(ctx)
	if started > 0 {
		slog.DebugContext(ctx, "Sweep started tasks", "tick", tick, "count", started)
	}
	return started, nil
}

// Ticks returns how many sweeps have run.
func (w *Worker) Ticks() int64 {
	return w.ticks.Load()
}
