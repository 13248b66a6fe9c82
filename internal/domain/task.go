package domain

import (
	"time"

	"github.com/rezkam/tasko/internal/ptr"
)

// Task is the central entity tracked through to-do → in-progress → done.
//
// Invariants maintained by the engine:
//   - InProgressAt is set iff Status is in-progress or done.
//   - CompletedAt and IsLate are set iff Status is done.
//   - DeadlineHours and DeadlineMinutes are set only when HasDeadline.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// DueDate is the auto-start moment when IsAutomatic is set.
	DueDate     *DueDate `json:"dueDate,omitempty"`
	IsAutomatic bool     `json:"isAutomatic"`
	IsDaily     bool     `json:"isDaily"`

	// Deadline duration, measured from InProgressAt.
	HasDeadline     bool `json:"hasDeadline"`
	DeadlineHours   *int `json:"deadlineHours,omitempty"`
	DeadlineMinutes *int `json:"deadlineMinutes,omitempty"`

	InProgressAt *time.Time `json:"inProgressAt,omitempty"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	IsLate       *bool      `json:"isLate,omitempty"`
}

// Clone returns a deep copy so callers never share pointer fields with
// the engine's collection.
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	c.DeadlineHours = ptr.Clone(t.DeadlineHours)
	c.DeadlineMinutes = ptr.Clone(t.DeadlineMinutes)
	c.InProgressAt = ptr.Clone(t.InProgressAt)
	c.CompletedAt = ptr.Clone(t.CompletedAt)
	c.IsLate = ptr.Clone(t.IsLate)
	return c
}

// Normalize fills a missing status or priority, drops empty due dates, and
// drops deadline fields that have no deadline to belong to. Applied to
// tasks read from storage.
func (t *Task) Normalize() {
	if t.Status == "" {
		t.Status = StatusToDo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.DueDate != nil && t.DueDate.IsZero() {
		t.DueDate = nil
	}
	if !t.HasDeadline {
		t.DeadlineHours = nil
		t.DeadlineMinutes = nil
	}
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// DeadlineConfigured reports whether a deadline duration is fully set.
func (t Task) DeadlineConfigured() bool {
	return t.HasDeadline && t.DeadlineHours != nil && t.DeadlineMinutes != nil
}

// Deadline returns the instant the deadline expires: InProgressAt plus the
// configured hours and minutes, added on the wall clock in loc.
// The second result is false when no deadline applies.
func (t Task) Deadline(loc *time.Location) (time.Time, bool) {
	if !t.DeadlineConfigured() || t.InProgressAt == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	start := t.InProgressAt.In(loc)
	return time.Date(
		start.Year(), start.Month(), start.Day(),
		start.Hour()+*t.DeadlineHours, start.Minute()+*t.DeadlineMinutes,
		start.Second(), start.Nanosecond(), loc,
	), true
}

// LateAt reports whether completing the task at the given instant misses
// its deadline. Tasks without a deadline are never late.
func (t Task) LateAt(at time.Time, loc *time.Location) bool {
	deadline, ok := t.Deadline(loc)
	if !ok {
		return false
	}
	return at.After(deadline)
}

// Start moves a to-do task to in-progress.
func (t *Task) Start(now time.Time) {
	t.Status = StatusInProgress
	t.InProgressAt = ptr.To(now)
	t.UpdatedAt = now
}

// Complete moves an in-progress task to done and records lateness.
func (t *Task) Complete(now time.Time, loc *time.Location) {
	if t.InProgressAt == nil {
		t.InProgressAt = ptr.To(now)
	}
	t.Status = StatusDone
	t.CompletedAt = ptr.To(now)
	t.IsLate = ptr.To(t.LateAt(now, loc))
	t.UpdatedAt = now
}

// AutoStartDue reports whether the sweep should start this task at now.
func (t Task) AutoStartDue(now time.Time) bool {
	return t.IsAutomatic &&
		t.Status == StatusToDo &&
		t.HasDueDate() &&
		!t.DueDate.After(now)
}
