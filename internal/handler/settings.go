package handler

import (
	"log/slog"
	"net/http"

	"diarykeeper/internal/domain/services"
	"diarykeeper/internal/httputil"
)

// SettingsHandler handles settings bridge requests
type SettingsHandler struct {
	service services.SettingsService
	logger  *slog.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(service services.SettingsService, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger,
	}
}

// GetSettings returns the stored settings
// GET /api/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.GetSettings(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, settings)
}

// SaveSettings replaces the settings document
// PUT /api/settings
func (h *SettingsHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	raw, err := httputil.ReadJSON(w, r)
	if err != nil {
		badRequest(w, err)
		return
	}

	settings, err := h.service.SaveSettings(r.Context(), raw)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, settings)
}
