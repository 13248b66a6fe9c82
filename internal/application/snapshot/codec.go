package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/rezkam/tasko/internal/domain"
)

type rawSnapshot struct {
	Tasks    json.RawMessage `json:"tasks"`
	Theme    json.RawMessage `json:"theme"`
	Language json.RawMessage `json:"language"`
	Settings json.RawMessage `json:"settings"`
}

type rawSettings struct {
	DarkMode    json.RawMessage `json:"darkMode"`
	LastUpdated json.RawMessage `json:"lastUpdated"`
}

// decode parses a persisted or imported snapshot. It fails only when the
// input is not JSON or its root is not an object. Every field that is
// missing or has the wrong type falls back to its default, inside task
// elements too; an element is dropped only when it is not an object or
// has no id. Naive due dates are wall-clock time in loc.
//
// keepLastUpdated controls whether a valid settings.lastUpdated survives;
// otherwise it is stamped with now.
func decode(ctx context.Context, data []byte, now time.Time, loc *time.Location, keepLastUpdated bool) (domain.Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) {
		return domain.Snapshot{}, ErrInvalidJSON
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return domain.Snapshot{}, ErrNotObject
	}

	var raw rawSnapshot
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return domain.Snapshot{}, ErrInvalidJSON
	}

	snap := domain.DefaultSnapshot(now)
	snap.Tasks = decodeTasks(ctx, raw.Tasks, now, loc)

	var theme string
	if isString(raw.Theme) && json.Unmarshal(raw.Theme, &theme) == nil {
		snap.Theme = theme
	}
	var language string
	if isString(raw.Language) && json.Unmarshal(raw.Language, &language) == nil {
		snap.Language = language
	}

	var settings rawSettings
	if isObject(raw.Settings) && json.Unmarshal(raw.Settings, &settings) == nil {
		var darkMode bool
		if isBool(settings.DarkMode) && json.Unmarshal(settings.DarkMode, &darkMode) == nil {
			snap.Settings.DarkMode = darkMode
		}
		var lastUpdated time.Time
		if keepLastUpdated && isString(settings.LastUpdated) && json.Unmarshal(settings.LastUpdated, &lastUpdated) == nil {
			snap.Settings.LastUpdated = lastUpdated
		}
	}

	return snap, nil
}

func decodeTasks(ctx context.Context, raw json.RawMessage, now time.Time, loc *time.Location) []domain.Task {
	tasks := []domain.Task{}

	var elems []json.RawMessage
	if !isArray(raw) || json.Unmarshal(raw, &elems) != nil {
		if len(raw) > 0 && !isNull(raw) {
			slog.WarnContext(ctx, "Snapshot tasks field is not an array, using empty list")
		}
		return tasks
	}

	for i, elem := range elems {
		t, ok := decodeTask(ctx, elem, now, loc)
		if !ok {
			slog.WarnContext(ctx, "Dropping task that is not an object or has no id", "index", i)
			continue
		}
		tasks = append(tasks, t)
	}
	return tasks
}

type rawTask struct {
	ID              json.RawMessage `json:"id"`
	Title           json.RawMessage `json:"title"`
	Description     json.RawMessage `json:"description"`
	Priority        json.RawMessage `json:"priority"`
	Status          json.RawMessage `json:"status"`
	CreatedAt       json.RawMessage `json:"createdAt"`
	UpdatedAt       json.RawMessage `json:"updatedAt"`
	DueDate         json.RawMessage `json:"dueDate"`
	IsAutomatic     json.RawMessage `json:"isAutomatic"`
	IsDaily         json.RawMessage `json:"isDaily"`
	HasDeadline     json.RawMessage `json:"hasDeadline"`
	DeadlineHours   json.RawMessage `json:"deadlineHours"`
	DeadlineMinutes json.RawMessage `json:"deadlineMinutes"`
	InProgressAt    json.RawMessage `json:"inProgressAt"`
	CompletedAt     json.RawMessage `json:"completedAt"`
	IsLate          json.RawMessage `json:"isLate"`
}

// decodeTask reads one task field by field. A field that is missing or
// invalid takes its default; only a non-object or a missing id rejects
// the element. Naive due dates are read as wall-clock time in loc.
func decodeTask(ctx context.Context, elem json.RawMessage, now time.Time, loc *time.Location) (domain.Task, bool) {
	var raw rawTask
	if !isObject(elem) || json.Unmarshal(elem, &raw) != nil {
		return domain.Task{}, false
	}

	id, _ := stringField(raw.ID)
	if id == "" {
		return domain.Task{}, false
	}

	t := domain.Task{ID: id}
	t.Title, _ = stringField(raw.Title)
	t.Description, _ = stringField(raw.Description)

	t.Priority = domain.PriorityMedium
	if s, ok := stringField(raw.Priority); ok {
		if p, err := domain.NewPriority(s); err == nil {
			t.Priority = p
		} else {
			slog.WarnContext(ctx, "Unknown task priority, using medium", "task_id", id, "priority", s)
		}
	}

	t.Status = domain.StatusToDo
	statusValid := false
	if s, ok := stringField(raw.Status); ok {
		if st, err := domain.NewStatus(s); err == nil {
			t.Status = st
			statusValid = true
		} else {
			slog.WarnContext(ctx, "Unknown task status, using to-do", "task_id", id, "status", s)
		}
	}

	t.CreatedAt = now
	if ts := timeField(raw.CreatedAt); ts != nil {
		t.CreatedAt = *ts
	}
	t.UpdatedAt = t.CreatedAt
	if ts := timeField(raw.UpdatedAt); ts != nil {
		t.UpdatedAt = *ts
	}

	if s, ok := stringField(raw.DueDate); ok && strings.TrimSpace(s) != "" {
		due, err := domain.ParseDueDate(s, loc)
		if err == nil {
			t.DueDate = &due
		} else {
			slog.WarnContext(ctx, "Invalid task due date, clearing it", "task_id", id, "due_date", s)
		}
	}

	t.IsAutomatic, _ = boolField(raw.IsAutomatic)
	t.IsDaily, _ = boolField(raw.IsDaily)

	t.HasDeadline, _ = boolField(raw.HasDeadline)
	if t.HasDeadline {
		hours, hoursOK := intField(raw.DeadlineHours)
		minutes, minutesOK := intField(raw.DeadlineMinutes)
		if hoursOK && minutesOK {
			t.DeadlineHours = &hours
			t.DeadlineMinutes = &minutes
		} else {
			slog.WarnContext(ctx, "Invalid task deadline, clearing it", "task_id", id)
			t.HasDeadline = false
		}
	}

	// A status that had to be replaced says nothing about the lifecycle
	// timestamps, so they are not trusted either.
	if statusValid {
		t.InProgressAt = timeField(raw.InProgressAt)
		t.CompletedAt = timeField(raw.CompletedAt)
		if late, ok := boolField(raw.IsLate); ok {
			t.IsLate = &late
		}
	}

	t.Normalize()
	return t, true
}

func stringField(raw json.RawMessage) (string, bool) {
	var s string
	if !isString(raw) || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func boolField(raw json.RawMessage) (bool, bool) {
	var b bool
	if !isBool(raw) || json.Unmarshal(raw, &b) != nil {
		return false, false
	}
	return b, true
}

// intField accepts whole JSON numbers only.
func intField(raw json.RawMessage) (int, bool) {
	var n int
	if isString(raw) || isNull(raw) || json.Unmarshal(raw, &n) != nil {
		return 0, false
	}
	return n, true
}

func timeField(raw json.RawMessage) *time.Time {
	var ts time.Time
	if !isString(raw) || json.Unmarshal(raw, &ts) != nil {
		return nil
	}
	return &ts
}

// encode renders the snapshot the way it is written to user files and exports.
func encode(s domain.Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isObject(raw json.RawMessage) bool { return firstByte(raw) == '{' }
func isArray(raw json.RawMessage) bool  { return firstByte(raw) == '[' }
func isString(raw json.RawMessage) bool { return firstByte(raw) == '"' }
func isBool(raw json.RawMessage) bool {
	b := firstByte(raw)
	return b == 't' || b == 'f'
}
func isNull(raw json.RawMessage) bool { return firstByte(raw) == 'n' }
