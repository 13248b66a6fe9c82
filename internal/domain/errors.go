package domain

import "errors"

// Domain errors returned by the task engine.

var (
	// ErrTaskNotFound indicates no task with the given ID exists.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskDone indicates the task is already done and cannot be advanced or edited.
	ErrTaskDone = errors.New("task is already done")

	// ErrInvalidTransition indicates a status change that would move a task backwards.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidTaskStatus indicates an unknown status value.
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// ErrInvalidTaskPriority indicates an unknown priority value.
	ErrInvalidTaskPriority = errors.New("invalid task priority")

	// ErrInvalidDueDate indicates a due date that cannot be parsed.
	ErrInvalidDueDate = errors.New("invalid due date")

	// ErrInvalidDeadline indicates negative deadline hours or minutes.
	ErrInvalidDeadline = errors.New("deadline hours and minutes must not be negative")

	// ErrInvalidLanguage indicates a language other than the supported locales.
	ErrInvalidLanguage = errors.New("unsupported language")

	// ErrTitleRequired indicates an empty task title.
	ErrTitleRequired = errors.New("title is required")
)
