package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/rezkam/tasko/internal/domain"
	"github.com/rezkam/tasko/internal/ptr"
)

// Settings is the non-task part of the snapshot.
type Settings struct {
	Theme       string    `json:"theme"`
	Language    string    `json:"language"`
	DarkMode    bool      `json:"darkMode"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Settings returns the persisted settings.
func (e *Engine) Settings() Settings {
	snap := e.store.Data()
	return Settings{
		Theme:       snap.Theme,
		Language:    snap.Language,
		DarkMode:    snap.Settings.DarkMode,
		LastUpdated: snap.Settings.LastUpdated,
	}
}

// SetTheme stores the theme name. It reports whether the write was persisted.
func (e *Engine) SetTheme(ctx context.Context, theme string) bool {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = domain.DefaultTheme
	}
	return e.store.Update(ctx, domain.SnapshotUpdate{Theme: &theme})
}

// SetLanguage stores the UI language, which must be "id" or "en".
func (e *Engine) SetLanguage(ctx context.Context, lang string) (bool, error) {
	l, err := domain.NewLanguage(lang)
	if err != nil {
		return false, err
	}
	return e.store.Update(ctx, domain.SnapshotUpdate{Language: ptr.To(string(l))}), nil
}

// SetDarkMode stores the dark mode flag.
func (e *Engine) SetDarkMode(ctx context.Context, on bool) bool {
	return e.store.Update(ctx, domain.SnapshotUpdate{DarkMode: &on})
}
