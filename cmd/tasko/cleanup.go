package main

import (
	"context"
	"log/slog"
)

// shutdownStep stops one component.
type shutdownStep struct {
	name string
	stop func(context.Context) error
}

// newCleanup returns the shutdown hook. Steps run in the given order, each
// one even if an earlier one failed, all sharing ctx's deadline.
func newCleanup(ctx context.Context, steps ...shutdownStep) func() {
	return func() {
		for _, s := range steps {
			if err := s.stop(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to shut down "+s.name, slog.String("error", err.Error()))
				continue
			}
			slog.InfoContext(ctx, s.name+" shutdown complete")
		}
	}
}

// closeStep adapts an io.Closer-like value.
func closeStep(name string, c interface{ Close() error }) shutdownStep {
	return shutdownStep{name: name, stop: func(context.Context) error { return c.Close() }}
}
