// Package recurring computes due dates for the successors of recurring tasks.
package recurring

import (
	"time"

	"github.com/rezkam/tasko/internal/domain"
)

// Calculator returns the due date of the task that replaces a completed one.
type Calculator interface {
	// Next returns the successor's due date. prev is the completed task's
	// due date and may be nil, in which case the schedule restarts from now.
	Next(prev *domain.DueDate, now time.Time, loc *time.Location) domain.DueDate
}

// For returns the calculator for a task, or nil if the task does not recur.
func For(t domain.Task) Calculator {
	if t.IsDaily {
		return Daily{Interval: 1}
	}
	return nil
}

// Daily repeats every Interval calendar days at the same wall-clock time.
type Daily struct {
	Interval int
}

func (d Daily) Next(prev *domain.DueDate, now time.Time, loc *time.Location) domain.DueDate {
	interval := d.Interval
	if interval <= 0 {
		interval = 1
	}
	if loc == nil {
		loc = time.Local
	}

	base := domain.DueDate{Time: now.In(loc)}
	if prev != nil && !prev.IsZero() {
		base = domain.DueDate{Time: prev.In(loc)}
	}
	return base.AddDays(interval)
}
