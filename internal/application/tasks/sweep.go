package tasks

import (
	"context"
	"log/slog"

	"github.com/rezkam/tasko/internal/domain"
)

// Sweep starts every automatic to-do task whose due date has passed and
// returns how many it started. Each started task produces exactly one
// notification, delivered after the engine lock is released. Persistence
// is queued, not awaited.
func (e *Engine) Sweep(ctx context.Context) int {
	notifications := e.sweepLocked(ctx)

	for _, n := range notifications {
		e.notifier.Notify(ctx, n)
	}
	return len(notifications)
}

func (e *Engine) sweepLocked(ctx context.Context) []domain.Notification {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var notifications []domain.Notification
	for i := range e.tasks {
		task := &e.tasks[i]
		if !task.AutoStartDue(now) {
			continue
		}

		task.Start(now)

		n := domain.TaskStartingNotification(*task, now)
		id, err := e.newID()
		if err != nil {
			slog.WarnContext(ctx, "Failed to generate notification id", "task_id", task.ID, "error", err)
			id = task.ID
		}
		n.ID = id
		notifications = append(notifications, n)

		slog.InfoContext(ctx, "Task started automatically", "task_id", task.ID, "title", task.Title)
	}

	if len(notifications) > 0 {
		add(ctx, e.metrics.autoStarted, int64(len(notifications)))
		e.persistLocked()
	}
	return notifications
}
