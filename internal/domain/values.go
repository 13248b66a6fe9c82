package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status represents where a task is in its lifecycle.
// Value object - immutable string enum.
type Status string

const (
	StatusToDo       Status = "to-do"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Priority represents the priority level of a task.
// Only used for ordering; never affects transitions.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Language is one of the two supported locales.
type Language string

const (
	LanguageIndonesian Language = "id"
	LanguageEnglish    Language = "en"
)

// NewStatus validates and creates a Status.
func NewStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))

	switch status {
	case StatusToDo, StatusInProgress, StatusDone:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTaskStatus, s)
	}
}

// rank orders statuses along the only allowed direction of travel.
func (s Status) rank() int {
	switch s {
	case StatusToDo:
		return 0
	case StatusInProgress:
		return 1
	case StatusDone:
		return 2
	default:
		return -1
	}
}

// Before reports whether s comes earlier in the lifecycle than other.
func (s Status) Before(other Status) bool {
	return s.rank() < other.rank()
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status, err := NewStatus(raw)
	if err != nil {
		return err
	}
	*s = status
	return nil
}

// NewPriority validates and creates a Priority.
// Empty input defaults to medium. The Indonesian names written by
// early versions of the app are accepted as aliases.
func NewPriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return PriorityMedium, nil
	case string(PriorityLow), "rendah":
		return PriorityLow, nil
	case string(PriorityMedium), "sedang":
		return PriorityMedium, nil
	case string(PriorityHigh), "tinggi":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTaskPriority, s)
	}
}

// Weight returns the sort weight: high 3, medium 2, low 1.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	priority, err := NewPriority(raw)
	if err != nil {
		return err
	}
	*p = priority
	return nil
}

// NewLanguage validates and creates a Language.
func NewLanguage(s string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))

	switch lang {
	case LanguageIndonesian, LanguageEnglish:
		return lang, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidLanguage, s)
	}
}
