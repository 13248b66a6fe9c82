package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rezkam/tasko/internal/domain"
	"github.com/rezkam/tasko/internal/recurring"
)

// Create adds a task built from form. The status defaults to to-do; a form
// that asks for a later status gets the timestamps that status implies.
func (e *Engine) Create(ctx context.Context, form domain.TaskForm) (domain.Task, error) {
	fields, err := form.Parse(e.loc)
	if err != nil {
		return domain.Task{}, err
	}

	id, err := e.newID()
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to generate id: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	task := domain.Task{
		ID:        id,
		Status:    domain.StatusToDo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	fields.ApplyTo(&task)

	switch fields.Status {
	case domain.StatusInProgress:
		task.Start(now)
	case domain.StatusDone:
		// No in-progress span, so the deadline cannot have passed.
		task.Start(now)
		task.Complete(now, e.loc)
	}

	e.tasks = append(e.tasks, task)
	e.persistLocked()

	slog.InfoContext(ctx, "Task created", "task_id", task.ID, "status", task.Status)
	return task.Clone(), nil
}

// Edit replaces a task's editable fields. A status in the form may only
// move the task forward and goes through the same transitions as Advance,
// so a daily task edited to done spawns its successor. The second result is
// that successor, if any.
func (e *Engine) Edit(ctx context.Context, id string, form domain.TaskForm) (domain.Task, *domain.Task, error) {
	fields, err := form.Parse(e.loc)
	if err != nil {
		return domain.Task{}, nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return domain.Task{}, nil, domain.ErrTaskNotFound
	}
	current := e.tasks[i]
	if current.Status == domain.StatusDone {
		return domain.Task{}, nil, domain.ErrTaskDone
	}
	if fields.Status != "" && fields.Status.Before(current.Status) {
		return domain.Task{}, nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current.Status, fields.Status)
	}

	now := e.now()
	task := current.Clone()
	fields.ApplyTo(&task)
	task.UpdatedAt = now

	var spawned *domain.Task
	if fields.Status != "" && fields.Status != task.Status {
		spawned, err = e.transitionTo(ctx, &task, fields.Status, now)
		if err != nil {
			return domain.Task{}, nil, err
		}
	}

	e.tasks[i] = task
	if spawned != nil {
		e.tasks = append(e.tasks, *spawned)
	}
	e.persistLocked()

	slog.InfoContext(ctx, "Task updated", "task_id", task.ID, "status", task.Status)
	return task.Clone(), cloneTask(spawned), nil
}

// Delete removes a task in any status.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return domain.ErrTaskNotFound
	}
	e.tasks = append(e.tasks[:i], e.tasks[i+1:]...)
	e.persistLocked()

	slog.InfoContext(ctx, "Task deleted", "task_id", id)
	return nil
}

// Advance moves a task one step forward: to-do to in-progress, or
// in-progress to done. Completing a daily task also appends a new to-do
// task for the next day, returned as the second result.
func (e *Engine) Advance(ctx context.Context, id string) (domain.Task, *domain.Task, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(id)
	if i < 0 {
		return domain.Task{}, nil, domain.ErrTaskNotFound
	}

	task := e.tasks[i].Clone()
	var next domain.Status
	switch task.Status {
	case domain.StatusToDo:
		next = domain.StatusInProgress
	case domain.StatusInProgress:
		next = domain.StatusDone
	default:
		return domain.Task{}, nil, domain.ErrTaskDone
	}

	spawned, err := e.transitionTo(ctx, &task, next, e.now())
	if err != nil {
		return domain.Task{}, nil, err
	}

	e.tasks[i] = task
	if spawned != nil {
		e.tasks = append(e.tasks, *spawned)
	}
	e.persistLocked()

	slog.InfoContext(ctx, "Task advanced", "task_id", task.ID, "status", task.Status)
	return task.Clone(), cloneTask(spawned), nil
}

// transitionTo moves task forward to status. Completing a daily task
// returns its successor. Callers hold e.mu.
func (e *Engine) transitionTo(ctx context.Context, task *domain.Task, status domain.Status, now time.Time) (*domain.Task, error) {
	if status.Before(task.Status) || status == task.Status {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, task.Status, status)
	}

	if task.Status == domain.StatusToDo {
		task.Start(now)
	}
	if status != domain.StatusDone {
		return nil, nil
	}

	task.Complete(now, e.loc)
	add(ctx, e.metrics.completed, 1)

	calc := recurring.For(*task)
	if calc == nil {
		return nil, nil
	}

	id, err := e.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate id: %w", err)
	}

	next := task.Clone()
	next.ID = id
	next.Status = domain.StatusToDo
	due := calc.Next(task.DueDate, now, e.loc)
	next.DueDate = &due
	next.InProgressAt = nil
	next.CompletedAt = nil
	next.IsLate = nil
	next.CreatedAt = now
	next.UpdatedAt = now

	add(ctx, e.metrics.spawned, 1)
	slog.InfoContext(ctx, "Daily task spawned", "task_id", task.ID, "next_task_id", next.ID, "due", due.String())
	return &next, nil
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	c := t.Clone()
	return &c
}
