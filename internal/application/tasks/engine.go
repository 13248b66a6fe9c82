// Package tasks is the task engine: it owns the in-memory task collection,
// applies the to-do → in-progress → done state machine for commands and the
// automatic sweep, and hands every change to the durable store.
package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/rezkam/tasko/internal/domain"
)

// Default configuration values.
const (
	DefaultPersistTimeout = 30 * time.Second

	instrumentationName = "github.com/rezkam/tasko/internal/application/tasks"
)

// Store is the part of the durable store the engine depends on.
type Store interface {
	Data() domain.Snapshot
	Update(ctx context.Context, u domain.SnapshotUpdate) bool
}

// Notifier receives notifications after the transition they describe has
// been applied. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotifier sets where auto-start notifications go.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone used for calendar arithmetic (daily due dates,
// deadlines).
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithIDGenerator overrides how task and notification ids are generated.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithPersistTimeout bounds each background write.
func WithPersistTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.persistTimeout = d
		}
	}
}

// Engine serializes every command and sweep behind one mutex. Persistence
// and notifications happen outside of it.
type Engine struct {
	store          Store
	notifier       Notifier
	now            func() time.Time
	loc            *time.Location
	newID          func() (string, error)
	persistTimeout time.Duration

	mu    sync.Mutex
	tasks []domain.Task

	persister *persister
	metrics   engineMetrics
}

type engineMetrics struct {
	autoStarted metric.Int64Counter
	completed   metric.Int64Counter
	spawned     metric.Int64Counter
}

// New creates an engine seeded from store.Data() and starts its persister.
// Call Shutdown to stop it.
func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		notifier:       nopNotifier{},
		now:            func() time.Time { return time.Now().UTC() },
		loc:            time.Local,
		newID:          newUUIDv7,
		persistTimeout: DefaultPersistTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.tasks = store.Data().Tasks
	e.persister = newPersister(store, e.persistTimeout)
	e.metrics = newEngineMetrics()
	return e
}

func newEngineMetrics() engineMetrics {
	meter := otel.Meter(instrumentationName)
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			slog.Warn("Failed to create counter", "name", name, "error", err)
		}
		return c
	}
	return engineMetrics{
		autoStarted: counter("tasko.tasks.auto_started", "Tasks started by the automatic sweep"),
		completed:   counter("tasko.tasks.completed", "Tasks moved to done"),
		spawned:     counter("tasko.tasks.spawned", "Daily tasks spawned on completion"),
	}
}

func add(ctx context.Context, c metric.Int64Counter, n int64) {
	if c != nil && n > 0 {
		c.Add(ctx, n)
	}
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Location returns the zone the engine does calendar arithmetic in.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Tasks returns a copy of all tasks in insertion order.
func (e *Engine) Tasks() []domain.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.CloneTasks(e.tasks)
}

// Get returns a copy of one task.
func (e *Engine) Get(id string) (domain.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return e.tasks[i].Clone(), nil
}

// TabAll selects every task in List.
const TabAll = "all"

// List returns the tasks on a tab ("all" or a status), highest priority
// first and newest first within a priority.
func (e *Engine) List(tab string) ([]domain.Task, error) {
	var status domain.Status
	if tab != "" && tab != TabAll {
		s, err := domain.NewStatus(tab)
		if err != nil {
			return nil, err
		}
		status = s
	}

	e.mu.Lock()
	out := make([]domain.Task, 0, len(e.tasks))
	for _, t := range e.tasks {
		if status == "" || t.Status == status {
			out = append(out, t.Clone())
		}
	}
	e.mu.Unlock()

	slices.SortStableFunc(out, func(a, b domain.Task) int {
		if wa, wb := a.Priority.Weight(), b.Priority.Weight(); wa != wb {
			return wb - wa
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Refresh replaces the in-memory tasks with the store's, dropping any write
// still queued. Prefer Replace when the store is changed from outside;
// Refresh alone cannot stop a write that is already in flight.
func (e *Engine) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.refreshLocked()
}

// Replace runs replace, which swaps the store's data (an import, opening a
// file), as one step with respect to the engine: queued writes land first,
// no command or sweep runs until it returns, and the engine then reloads
// from the store. The reload happens even when replace fails, since a
// failed replace may still have installed data. An error from the
// preceding flush is returned without calling replace.
func (e *Engine) Replace(ctx context.Context, replace func(context.Context) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.persister.flush(ctx); err != nil {
		return err
	}

	err := replace(ctx)
	e.refreshLocked()
	return err
}

func (e *Engine) refreshLocked() {
	e.persister.discard()
	e.tasks = e.store.Data().Tasks
}

// Flush waits until every change made so far has been handed to the store.
func (e *Engine) Flush(ctx context.Context) error {
	return e.persister.flush(ctx)
}

// Shutdown writes any pending change and stops the persister.
func (e *Engine) Shutdown(ctx context.Context) error {
	if err := e.persister.shutdown(ctx); err != nil {
		return fmt.Errorf("engine shutdown: %w", err)
	}
	return nil
}

func (e *Engine) indexOf(id string) int {
	return slices.IndexFunc(e.tasks, func(t domain.Task) bool { return t.ID == id })
}

// persistLocked queues the current collection. Callers hold e.mu.
func (e *Engine) persistLocked() {
	e.persister.enqueue(domain.CloneTasks(e.tasks))
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, domain.Notification) {}
