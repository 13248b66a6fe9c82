package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/tasko/internal/application/tasks"
	"github.com/rezkam/tasko/internal/domain"
	"github.com/rezkam/tasko/internal/infrastructure/http/response"
)

// TaskResponse wraps one task.
type TaskResponse struct {
	Task tasks.View `json:"task"`
}

// TransitionResponse is returned by edit and advance. Spawned is the next
// occurrence of a daily task that was just completed.
type TransitionResponse struct {
	Task    tasks.View  `json:"task"`
	Spawned *tasks.View `json:"spawned"`
}

// ListTasksResponse wraps a tab's tasks.
type ListTasksResponse struct {
	Tab   string       `json:"tab"`
	Tasks []tasks.View `json:"tasks"`
}

// ListTasks handles GET /v1/tasks?tab=all|todo|in-progress|done.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tab := r.URL.Query().Get("tab")
	if tab == "" {
		tab = tasks.TabAll
	}

	list, err := h.engine.List(tab)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	views := make([]tasks.View, 0, len(list))
	for _, t := range list {
		views = append(views, h.view(t))
	}
	response.OK(w, ListTasksResponse{Tab: tab, Tasks: views})
}

// CreateTask handles POST /v1/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}

	task, err := h.engine.Create(r.Context(), form)
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.Created(w, TaskResponse{Task: h.view(task)})
}

// GetTask handles GET /v1/tasks/{id}.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.engine.Get(chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, TaskResponse{Task: h.view(task)})
}

// EditTask handles PUT /v1/tasks/{id}.
func (h *Handler) EditTask(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeForm(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	task, spawned, err := h.engine.Edit(r.Context(), id, form)
	if err != nil {
		slog.WarnContext(r.Context(), "Failed to edit task via HTTP", "task_id", id, "error", err)
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, h.transition(task, spawned))
}

// DeleteTask handles DELETE /v1/tasks/{id}.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.NoContent(w)
}

// AdvanceTask handles POST /v1/tasks/{id}/advance.
func (h *Handler) AdvanceTask(w http.ResponseWriter, r *http.Request) {
	task, spawned, err := h.engine.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}
	response.OK(w, h.transition(task, spawned))
}

func decodeForm(w http.ResponseWriter, r *http.Request) (domain.TaskForm, bool) {
	var form domain.TaskForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		response.BadRequest(w, "invalid JSON")
		return domain.TaskForm{}, false
	}
	if strings.TrimSpace(form.Title) == "" {
		response.FromDomainError(w, r, domain.ErrTitleRequired)
		return domain.TaskForm{}, false
	}
	return form, true
}

func (h *Handler) view(t domain.Task) tasks.View {
	return tasks.NewView(t, h.engine.Now(), h.engine.Location())
}

func (h *Handler) transition(task domain.Task, spawned *domain.Task) TransitionResponse {
	resp := TransitionResponse{Task: h.view(task)}
	if spawned != nil {
		v := h.view(*spawned)
		resp.Spawned = &v
	}
	return resp
}
