package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/rezkam/tasko/internal/infrastructure/http/response"
)

// StorageStatusResponse describes the connected file.
type StorageStatusResponse struct {
	Supported bool   `json:"supported"`
	Connected bool   `json:"connected"`
	FileName  string `json:"fileName"`
}

// FileRequest names a file for create and open. An empty name is treated
// as a cancelled picker.
type FileRequest struct {
	Name string `json:"name"`
}

// FileResponse reports whether a create or open succeeded.
type FileResponse struct {
	OK bool `json:"ok"`
	StorageStatusResponse
}

// StorageStatus handles GET /v1/storage.
func (h *Handler) StorageStatus(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.status())
}

// CreateFile handles POST /v1/storage/create. The current data is written
// to the new file, or to the fallback if that fails.
func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFileRequest(w, r)
	if !ok {
		return
	}

	h.flush(r)
	ok = h.store.CreateNewFile(r.Context(), req.Name)
	response.OK(w, FileResponse{OK: ok, StorageStatusResponse: h.status()})
}

// OpenFile handles POST /v1/storage/open. The engine reloads whatever the
// store now holds.
func (h *Handler) OpenFile(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFileRequest(w, r)
	if !ok {
		return
	}

	var opened bool
	err := h.engine.Replace(r.Context(), func(ctx context.Context) error {
		opened = h.store.OpenFile(ctx, req.Name)
		return nil
	})
	if err != nil {
		response.InternalError(w, r, err)
		return
	}
	response.OK(w, FileResponse{OK: opened, StorageStatusResponse: h.status()})
}

// Export handles GET /v1/storage/export as a file download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	h.flush(r)
	export, err := h.store.Export(r.Context())
	if err != nil {
		response.InternalError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Name}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Data); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write export", "error", err)
	}
}

// Import handles POST /v1/storage/import?name=file.json with the file as the
// raw body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		response.BadRequest(w, "failed to read body")
		return
	}

	name, contentType := r.URL.Query().Get("name"), r.Header.Get("Content-Type")
	err = h.engine.Replace(r.Context(), func(ctx context.Context) error {
		return h.store.Import(ctx, name, contentType, data)
	})
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, ImportResponse{Tasks: len(h.engine.Tasks())})
}

// ImportResponse reports how many tasks were installed.
type ImportResponse struct {
	Tasks int `json:"tasks"`
}

// flush lets queued engine writes land before the store's data is read out
// or copied into a new file.
func (h *Handler) flush(r *http.Request) {
	if err := h.engine.Flush(r.Context()); err != nil {
		slog.WarnContext(r.Context(), "Failed to flush pending task writes", "error", err)
	}
}

func (h *Handler) status() StorageStatusResponse {
	return StorageStatusResponse{
		Supported: h.store.IsSupported(),
		Connected: h.store.IsFileConnected(),
		FileName:  h.store.FileName(),
	}
}

func decodeFileRequest(w http.ResponseWriter, r *http.Request) (FileRequest, bool) {
	var req FileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON")
		return FileRequest{}, false
	}
	return req, true
}
