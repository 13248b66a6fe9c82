package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// SweepPanic is the error RunSweepOnce returns when a sweep panics.
// The worker keeps ticking; a panic is reported, not retried.
type SweepPanic struct {
	Tick       int64
	Value      any
	StackTrace string
}

func (p SweepPanic) Error() string {
	return fmt.Sprintf("sweep %d panicked: %v", p.Tick, p.Value)
}

// Unwrap exposes the panic value when the sweep panicked with an error.
func (p SweepPanic) Unwrap() error {
	err, _ := p.Value.(error)
	return err
}

// IsPanic reports whether err came from a panicking sweep.
func IsPanic(err error) bool {
	var p SweepPanic
	return errors.As(err, &p)
}

// PanicHandler receives sweep panics before the worker moves on.
type PanicHandler interface {
	HandlePanic(ctx context.Context, p SweepPanic)
}

// LogPanicHandler logs each panic with its stack.
type LogPanicHandler struct{}

func (LogPanicHandler) HandlePanic(ctx context.Context, p SweepPanic) {
	slog.ErrorContext(ctx, "Sweep panicked",
		slog.Int64("tick", p.Tick),
		slog.Any("panic_value", p.Value),
		slog.String("stack_trace", p.StackTrace),
	)
}
