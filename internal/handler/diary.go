package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/services"
	"diarykeeper/internal/httputil"
)

// DiaryHandler handles diary and trash bridge requests
type DiaryHandler struct {
	service services.DiaryService
	logger  *slog.Logger
}

// NewDiaryHandler creates a new diary handler
func NewDiaryHandler(service services.DiaryService, logger *slog.Logger) *DiaryHandler {
	return &DiaryHandler{
		service: service,
		logger:  logger,
	}
}

// SaveDiary creates or replaces an entry
// POST /api/diaries
func (h *DiaryHandler) SaveDiary(w http.ResponseWriter, r *http.Request) {
	var req models.SaveDiaryRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	entry, err := h.service.SaveDiary(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, entry)
}

// ListDiaries returns every active entry
// GET /api/diaries
func (h *DiaryHandler) ListDiaries(w http.ResponseWriter, r *http.Request) {
	diaries, err := h.service.ListDiaries(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, diaries)
}

// LoadDiary returns one active entry; data is null when the id is unknown
// GET /api/diaries/{id}
func (h *DiaryHandler) LoadDiary(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.LoadDiary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, entry)
}

// DeleteDiary removes an active entry without trashing it
// DELETE /api/diaries/{id}
func (h *DiaryHandler) DeleteDiary(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteDiary(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, nil)
}

// GetStatistics returns entry counts
// GET /api/statistics
func (h *DiaryHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStatistics(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, stats)
}
