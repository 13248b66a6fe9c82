package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSweeper implements Sweeper for testing
type mockSweeper struct {
	sweepFunc func(ctx context.Context) int
	calls     atomic.Int64
}

func (m *mockSweeper) Sweep(ctx context.Context) int {
	m.calls.Add(1)
	if m.sweepFunc != nil {
		return m.sweepFunc(ctx)
	}
	return 0
}

type recordingHandler struct {
	mu     sync.Mutex
	panics []any
	ticks  []int64
}

func (h *recordingHandler) HandlePanic(ctx context.Context, p SweepPanic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, p.Value)
	h.ticks = append(h.ticks, p.Tick)
}

func TestNew_Defaults(t *testing.T) {
	w := New(&mockSweeper{})

	assert.Equal(t, DefaultSweepInterval, w.sweepInterval)
	assert.Equal(t, DefaultOperationTimeout, w.operationTimeout)
	assert.IsType(t, LogPanicHandler{}, w.panicHandler)
}

func TestNew_IgnoresNonPositiveDurations(t *testing.T) {
	w := New(&mockSweeper{}, WithSweepInterval(0), WithOperationTimeout(-time.Second))

	assert.Equal(t, DefaultSweepInterval, w.sweepInterval)
	assert.Equal(t, DefaultOperationTimeout, w.operationTimeout)
}

func TestRunSweepOnce_ReturnsCount(t *testing.T) {
	w := New(&mockSweeper{sweepFunc: func(ctx context.Context) int { return 3 }})

	started, err := w.RunSweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, started)
	assert.Equal(t, int64(1), w.Ticks())
}

func TestRunSweepOnce_RecoversPanic(t *testing.T) {
	handler := &recordingHandler{}
	w := New(&mockSweeper{sweepFunc: func(ctx context.Context) int {
		panic("boom")
	}}, WithPanicHandler(handler))

	started, err := w.RunSweepOnce(context.Background())

	require.Error(t, err)
	assert.True(t, IsPanic(err))
	assert.Equal(t, 0, started)

	var p SweepPanic
	require.ErrorAs(t, err, &p)
	assert.Equal(t, "boom", p.Value)
	assert.Equal(t, int64(1), p.Tick)
	assert.Contains(t, p.StackTrace, "RunSweepOnce")
	assert.EqualError(t, err, "sweep 1 panicked: boom")

	assert.Equal(t, []any{"boom"}, handler.panics)
	assert.Equal(t, []int64{1}, handler.ticks)
}

func TestRunSweepOnce_PanicWithErrorUnwraps(t *testing.T) {
	errCorrupt := errors.New("corrupt task list")
	w := New(&mockSweeper{sweepFunc: func(ctx context.Context) int {
		panic(errCorrupt)
	}}, WithPanicHandler(&recordingHandler{}))

	_, err := w.RunSweepOnce(context.Background())

	assert.True(t, IsPanic(err))
	assert.ErrorIs(t, err, errCorrupt)
}

func TestStart_SweepsImmediatelyAndOnTicks(t *testing.T) {
	sweeper := &mockSweeper{}
	w := New(sweeper, WithSweepInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestStart_TicksNeverOverlap(t *testing.T) {
	var running, maxRunning atomic.Int64
	sweeper := &mockSweeper{sweepFunc: func(ctx context.Context) int {
		n := running.Add(1)
		for {
			m := maxRunning.Load()
			if n <= m || maxRunning.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(15 * time.Millisecond)
		running.Add(-1)
		return 0
	}}
	w := New(sweeper, WithSweepInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 5 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, int64(1), maxRunning.Load())
}

func TestStart_SurvivesPanickingSweeps(t *testing.T) {
	sweeper := &mockSweeper{sweepFunc: func(ctx context.Context) int {
		panic("always")
	}}
	w := New(sweeper, WithSweepInterval(5*time.Millisecond), WithPanicHandler(&recordingHandler{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestStart_AppliesOperationTimeout(t *testing.T) {
	var bounded atomic.Bool
	sweeper := &mockSweeper{sweepFunc: func(ctx context.Context) int {
		deadline, ok := ctx.Deadline()
		bounded.Store(ok && time.Until(deadline) <= 500*time.Millisecond)
		return 0
	}}
	w := New(sweeper, WithOperationTimeout(500*time.Millisecond), WithSweepInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.True(t, bounded.Load(), "startup sweep must run under the operation timeout")
}
