package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/tasko/internal/ptr"
)

func TestTask_LateAt(t *testing.T) {
	loc := time.UTC
	anchor := time.Date(2025, 6, 11, 10, 0, 0, 0, loc)

	task := Task{
		Status:          StatusInProgress,
		HasDeadline:     true,
		DeadlineHours:   ptr.To(1),
		DeadlineMinutes: ptr.To(0),
		InProgressAt:    ptr.To(anchor),
	}

	t.Run("completed after deadline is late", func(t *testing.T) {
		assert.True(t, task.LateAt(anchor.Add(61*time.Minute), loc))
	})

	t.Run("completed before deadline is not late", func(t *testing.T) {
		assert.False(t, task.LateAt(anchor.Add(59*time.Minute), loc))
	})

	t.Run("completed exactly at deadline is not late", func(t *testing.T) {
		assert.False(t, task.LateAt(anchor.Add(time.Hour), loc))
	})

	t.Run("no deadline is never late", func(t *testing.T) {
		noDeadline := task
		noDeadline.HasDeadline = false
		assert.False(t, noDeadline.LateAt(anchor.Add(100*time.Hour), loc))
	})

	t.Run("missing anchor is never late", func(t *testing.T) {
		noAnchor := task
		noAnchor.InProgressAt = nil
		assert.False(t, noAnchor.LateAt(anchor.Add(100*time.Hour), loc))
	})

	t.Run("zero hour deadline still counts", func(t *testing.T) {
		short := task
		short.DeadlineHours = ptr.To(0)
		short.DeadlineMinutes = ptr.To(30)
		assert.True(t, short.LateAt(anchor.Add(31*time.Minute), loc))
		assert.False(t, short.LateAt(anchor.Add(29*time.Minute), loc))
	})
}

func TestTask_DeadlineUsesWallClock(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2025-11-02 00:30 EDT; clocks fall back at 02:00.
	anchor := time.Date(2025, 11, 2, 0, 30, 0, 0, loc)
	task := Task{
		HasDeadline:     true,
		DeadlineHours:   ptr.To(2),
		DeadlineMinutes: ptr.To(0),
		InProgressAt:    ptr.To(anchor),
	}

	deadline, ok := task.Deadline(loc)
	require.True(t, ok)
	assert.Equal(t, 2, deadline.Hour())
	assert.Equal(t, 30, deadline.Minute())
	// Three real hours elapse because the wall clock repeats 01:00-02:00.
	assert.Equal(t, 3*time.Hour, deadline.Sub(anchor))
}

func TestTask_StartAndComplete(t *testing.T) {
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

	var task Task
	task.Status = StatusToDo
	task.Start(now)

	assert.Equal(t, StatusInProgress, task.Status)
	require.NotNil(t, task.InProgressAt)
	assert.Equal(t, now, *task.InProgressAt)
	assert.Equal(t, now, task.UpdatedAt)
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.IsLate)

	later := now.Add(time.Hour)
	task.Complete(later, time.UTC)

	assert.Equal(t, StatusDone, task.Status)
	require.NotNil(t, task.CompletedAt)
	require.NotNil(t, task.IsLate)
	assert.Equal(t, later, *task.CompletedAt)
	assert.False(t, *task.IsLate)
	assert.Equal(t, now, *task.InProgressAt, "completion keeps the original anchor")
}

func TestTask_AutoStartDue(t *testing.T) {
	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	past := &DueDate{Time: now.Add(-time.Minute)}
	future := &DueDate{Time: now.Add(time.Minute)}

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"automatic past due", Task{IsAutomatic: true, Status: StatusToDo, DueDate: past}, true},
		{"automatic due now", Task{IsAutomatic: true, Status: StatusToDo, DueDate: &DueDate{Time: now}}, true},
		{"automatic future", Task{IsAutomatic: true, Status: StatusToDo, DueDate: future}, false},
		{"manual past due", Task{Status: StatusToDo, DueDate: past}, false},
		{"already started", Task{IsAutomatic: true, Status: StatusInProgress, DueDate: past}, false},
		{"no due date", Task{IsAutomatic: true, Status: StatusToDo}, false},
		{"zero due date", Task{IsAutomatic: true, Status: StatusToDo, DueDate: &DueDate{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.AutoStartDue(now))
		})
	}
}

func TestTask_CloneDoesNotAlias(t *testing.T) {
	original := Task{
		ID:              "a",
		DueDate:         &DueDate{Time: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		DeadlineHours:   ptr.To(1),
		DeadlineMinutes: ptr.To(2),
		IsLate:          ptr.To(false),
	}

	clone := original.Clone()
	*clone.DeadlineHours = 9
	*clone.IsLate = true
	clone.DueDate.Time = clone.DueDate.AddDate(1, 0, 0)

	assert.Equal(t, 1, *original.DeadlineHours)
	assert.False(t, *original.IsLate)
	assert.Equal(t, 2025, original.DueDate.Year())
}

func TestTask_JSONShape(t *testing.T) {
	created := time.Date(2025, 6, 11, 7, 30, 25, 123_000_000, time.UTC)
	due, err := ParseDueDate("2025-06-12T08:00", time.UTC)
	require.NoError(t, err)

	task := Task{
		ID:          "0197",
		Title:       "Write report",
		Description: "Quarterly",
		Priority:    PriorityHigh,
		Status:      StatusToDo,
		CreatedAt:   created,
		UpdatedAt:   created,
		DueDate:     &due,
		IsAutomatic: true,
	}

	data, err := json.Marshal(task)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Equal(t, "to-do", raw["status"])
	assert.Equal(t, "high", raw["priority"])
	assert.Equal(t, "2025-06-12T08:00", raw["dueDate"])
	assert.Equal(t, "2025-06-11T07:30:25.123Z", raw["createdAt"])
	assert.Equal(t, true, raw["isAutomatic"])
	for _, absent := range []string{"deadlineHours", "deadlineMinutes", "inProgressAt", "completedAt", "isLate"} {
		assert.NotContains(t, raw, absent)
	}
}

func TestTask_UnmarshalEmptyDueDate(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","status":"to-do","priority":"low","dueDate":""}`), &task))
	task.Normalize()
	assert.Nil(t, task.DueDate)
	assert.False(t, task.HasDueDate())
}

func TestTask_UnmarshalRejectsUnknownStatus(t *testing.T) {
	var task Task
	err := json.Unmarshal([]byte(`{"id":"1","status":"blocked"}`), &task)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTaskStatus)
}

func TestTask_NormalizeFillsMissingEnums(t *testing.T) {
	var task Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","title":"legacy","hasDeadline":false,"deadlineHours":2}`), &task))
	task.Normalize()

	assert.Equal(t, StatusToDo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Nil(t, task.DeadlineHours)
}
