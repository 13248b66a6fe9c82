// Package handler adapts HTTP requests to task engine and snapshot store
// calls.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/tasko/internal/application/snapshot"
	"github.com/rezkam/tasko/internal/application/tasks"
	"github.com/rezkam/tasko/internal/notify"
)

// Handler serves the /v1 API.
type Handler struct {
	engine *tasks.Engine
	store  *snapshot.Store
	hub    *notify.Hub
}

// New creates a handler.
func New(engine *tasks.Engine, store *snapshot.Store, hub *notify.Hub) *Handler {
	return &Handler{
		engine: engine,
		store:  store,
		hub:    hub,
	}
}

// Routes returns the API router. Mount it under /api.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Get("/{id}", h.GetTask)
			r.Put("/{id}", h.EditTask)
			r.Delete("/{id}", h.DeleteTask)
			r.Post("/{id}/advance", h.AdvanceTask)
		})

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Route("/storage", func(r chi.Router) {
			r.Get("/", h.StorageStatus)
			r.Post("/create", h.CreateFile)
			r.Post("/open", h.OpenFile)
			r.Get("/export", h.Export)
			r.Post("/import", h.Import)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.ListNotifications)
			r.Get("/stream", h.StreamNotifications)
			r.Delete("/{id}", h.DismissNotification)
		})
	})

	return r
}
