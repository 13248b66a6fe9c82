package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rezkam/tasko/internal/application/tasks"
	"github.com/rezkam/tasko/internal/infrastructure/http/response"
)

// UpdateSettingsRequest changes any subset of the settings.
type UpdateSettingsRequest struct {
	Theme    *string `json:"theme"`
	Language *string `json:"language"`
	DarkMode *bool   `json:"darkMode"`
}

// SettingsResponse reports the settings after an update and whether every
// change reached durable storage.
type SettingsResponse struct {
	tasks.Settings
	Persisted bool `json:"persisted"`
}

// GetSettings handles GET /v1/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.engine.Settings())
}

// UpdateSettings handles PUT /v1/settings. The language is validated before
// anything is written.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return
	}

	ctx := r.Context()
	persisted := true

	if req.Language != nil {
		ok, err := h.engine.SetLanguage(ctx, *req.Language)
		if err != nil {
			response.FromDomainError(w, r, err)
			return
		}
		persisted = persisted && ok
	}
	if req.Theme != nil {
		persisted = h.engine.SetTheme(ctx, *req.Theme) && persisted
	}
	if req.DarkMode != nil {
		persisted = h.engine.SetDarkMode(ctx, *req.DarkMode) && persisted
	}

	response.OK(w, SettingsResponse{Settings: h.engine.Settings(), Persisted: persisted})
}
