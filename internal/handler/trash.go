package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"diarykeeper/internal/httputil"
)

// MoveToTrash moves an active entry into the trash
// POST /api/diaries/{id}/trash
func (h *DiaryHandler) MoveToTrash(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MoveToTrash(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, nil)
}

// ListTrash returns every trashed entry
// GET /api/trash
func (h *DiaryHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	trash, err := h.service.ListTrash(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, trash)
}

// RestoreFromTrash moves a trashed entry back into the diaries
// POST /api/trash/{id}/restore
func (h *DiaryHandler) RestoreFromTrash(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RestoreFromTrash(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, nil)
}

// PermanentDelete erases a trashed entry
// DELETE /api/trash/{id}
func (h *DiaryHandler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.PermanentDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, nil)
}

// ClearTrash empties the trash
// DELETE /api/trash
func (h *DiaryHandler) ClearTrash(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearTrash(r.Context()); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, nil)
}
