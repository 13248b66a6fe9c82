package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rezkam/tasko/internal/ptr"
)

// TaskForm is the raw input for creating or editing a task.
type TaskForm struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Priority        string `json:"priority"`
	Status          string `json:"status"`
	DueDate         string `json:"dueDate"`
	IsAutomatic     bool   `json:"isAutomatic"`
	IsDaily         bool   `json:"isDaily"`
	HasDeadline     bool   `json:"hasDeadline"`
	DeadlineHours   *int   `json:"deadlineHours"`
	DeadlineMinutes *int   `json:"deadlineMinutes"`
}

// TaskFields is a TaskForm after parsing. Status is empty when the form
// did not ask for one.
type TaskFields struct {
	Title           string
	Description     string
	Priority        Priority
	Status          Status
	DueDate         *DueDate
	IsAutomatic     bool
	IsDaily         bool
	HasDeadline     bool
	DeadlineHours   *int
	DeadlineMinutes *int
}

// Parse validates the form, reading the due date in loc.
// Deadline values are dropped unless HasDeadline is set.
func (f TaskForm) Parse(loc *time.Location) (TaskFields, error) {
	fields := TaskFields{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		IsAutomatic: f.IsAutomatic,
		IsDaily:     f.IsDaily,
		HasDeadline: f.HasDeadline,
	}

	priority, err := NewPriority(f.Priority)
	if err != nil {
		return TaskFields{}, err
	}
	fields.Priority = priority

	if strings.TrimSpace(f.Status) != "" {
		status, err := NewStatus(f.Status)
		if err != nil {
			return TaskFields{}, err
		}
		fields.Status = status
	}

	if strings.TrimSpace(f.DueDate) != "" {
		due, err := ParseDueDate(f.DueDate, loc)
		if err != nil {
			return TaskFields{}, err
		}
		fields.DueDate = &due
	}

	if f.HasDeadline {
		if ptr.Deref(f.DeadlineHours, 0) < 0 || ptr.Deref(f.DeadlineMinutes, 0) < 0 {
			return TaskFields{}, fmt.Errorf("%w: %dh %dm", ErrInvalidDeadline,
				ptr.Deref(f.DeadlineHours, 0), ptr.Deref(f.DeadlineMinutes, 0))
		}
		fields.DeadlineHours = ptr.Clone(f.DeadlineHours)
		fields.DeadlineMinutes = ptr.Clone(f.DeadlineMinutes)
	}

	return fields, nil
}

// ApplyTo overwrites the task's user-editable fields. Status is left to the
// caller since changing it has side effects.
func (f TaskFields) ApplyTo(t *Task) {
	t.Title = f.Title
	t.Description = f.Description
	t.Priority = f.Priority
	t.DueDate = nil
	if f.DueDate != nil {
		d := *f.DueDate
		t.DueDate = &d
	}
	t.IsAutomatic = f.IsAutomatic
	t.IsDaily = f.IsDaily
	t.HasDeadline = f.HasDeadline
	t.DeadlineHours = ptr.Clone(f.DeadlineHours)
	t.DeadlineMinutes = ptr.Clone(f.DeadlineMinutes)
	t.Normalize()
}
