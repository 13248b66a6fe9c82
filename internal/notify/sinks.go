package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rezkam/tasko/internal/domain"
)

// Log writes notifications to the structured log.
type Log struct {
	Logger *slog.Logger // nil means slog.Default()
}

func (l Log) Deliver(ctx context.Context, n domain.Notification) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "Notification",
		slog.String("notification_id", n.ID),
		slog.String("type", string(n.Type)),
		slog.String("title", n.Title),
		slog.String("message", n.Message),
	)
	return nil
}

// Fanout delivers to every sink and joins their errors.
type Fanout []Sink

func (f Fanout) Deliver(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, s := range f {
		if err := s.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
