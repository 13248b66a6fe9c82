package domain

import "time"

// Snapshot defaults.
const (
	DefaultTheme    = "dark"
	DefaultLanguage = string(LanguageIndonesian)
	DefaultDarkMode = true
)

// Snapshot is the full persisted state: tasks plus settings.
type Snapshot struct {
	Tasks    []Task   `json:"tasks"`
	Theme    string   `json:"theme"`
	Language string   `json:"language"`
	Settings Settings `json:"settings"`
}

// Settings are persisted alongside tasks but never affect them.
type Settings struct {
	DarkMode    bool      `json:"darkMode"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// DefaultSnapshot returns an empty snapshot stamped at now.
func DefaultSnapshot(now time.Time) Snapshot {
	return Snapshot{
		Tasks:    []Task{},
		Theme:    DefaultTheme,
		Language: DefaultLanguage,
		Settings: Settings{
			DarkMode:    DefaultDarkMode,
			LastUpdated: now,
		},
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Tasks = CloneTasks(s.Tasks)
	return c
}

// CloneTasks deep-copies a task collection. The result is never nil.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

// SnapshotUpdate is a partial snapshot. Nil fields are left untouched.
type SnapshotUpdate struct {
	Tasks    *[]Task
	Theme    *string
	Language *string
	DarkMode *bool
}

// Apply merges the update into s and stamps LastUpdated.
func (u SnapshotUpdate) Apply(s Snapshot, now time.Time) Snapshot {
	out := s.Clone()
	if u.Tasks != nil {
		out.Tasks = CloneTasks(*u.Tasks)
	}
	if u.Theme != nil {
		out.Theme = *u.Theme
	}
	if u.Language != nil {
		out.Language = *u.Language
	}
	if u.DarkMode != nil {
		out.Settings.DarkMode = *u.DarkMode
	}
	out.Settings.LastUpdated = now
	return out
}
