package tasks

import (
	"fmt"
	"time"

	"github.com/rezkam/tasko/internal/domain"
)

// View is a task with the labels shown next to it in lists.
type View struct {
	domain.Task
	DeadlineLabel string `json:"deadlineLabel,omitempty"`
	RelativeDue   string `json:"relativeDue,omitempty"`
}

// NewView renders the labels for t at now.
func NewView(t domain.Task, now time.Time, loc *time.Location) View {
	return View{
		Task:          t,
		DeadlineLabel: DeadlineLabel(t, now, loc),
		RelativeDue:   RelativeDue(t, now),
	}
}

// DeadlineLabel describes a task's deadline. Before the task starts it
// shows the configured duration as-is; while in progress it counts down
// from InProgressAt. Done tasks and tasks without a deadline get "".
func DeadlineLabel(t domain.Task, now time.Time, loc *time.Location) string {
	if !t.DeadlineConfigured() {
		return ""
	}

	switch t.Status {
	case domain.StatusToDo:
		return fmt.Sprintf("Deadline: %dh %dm", *t.DeadlineHours, *t.DeadlineMinutes)
	case domain.StatusInProgress:
		deadline, ok := t.Deadline(loc)
		if !ok {
			return ""
		}
		remaining := deadline.Sub(now)
		if remaining <= 0 {
			return "Deadline passed!"
		}
		mins := int(remaining / time.Minute)
		if hours := mins / 60; hours > 0 {
			return fmt.Sprintf("Remaining: %dh %dm", hours, mins%60)
		}
		return fmt.Sprintf("Remaining: %dm", mins)
	default:
		return ""
	}
}

// RelativeDue describes when an automatic task starts, or started.
func RelativeDue(t domain.Task, now time.Time) string {
	if !t.IsAutomatic || !t.HasDueDate() {
		return ""
	}

	diff := t.DueDate.Sub(now)
	if diff < 0 {
		return "Started " + humanize(-diff) + " ago"
	}
	return "In " + humanize(diff)
}

func humanize(d time.Duration) string {
	mins := int(d / time.Minute)
	hours := mins / 60
	days := hours / 24

	switch {
	case days > 0:
		return plural(days, "day")
	case hours > 0:
		return plural(hours, "hour")
	default:
		return plural(mins, "min")
	}
}

func plural(n int, unit string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, unit)
	}
	return fmt.Sprintf("%d %s", n, unit)
}
