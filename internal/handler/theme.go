package handler

import (
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/services"
	"diarykeeper/internal/httputil"
)

// HostThemeState is the host theme as seen by the front end.
type HostThemeState interface {
	services.ThemeHost
	SetAmbientDark(dark bool)
	Applied() models.EffectiveTheme
}

type themeResponse struct {
	Theme       models.EffectiveTheme `json:"theme"`
	AmbientDark bool                  `json:"ambientDark"`
}

type ambientThemeRequest struct {
	Dark *bool `json:"dark"`
}

// ThemeHandler exposes the host theme
type ThemeHandler struct {
	host     HostThemeState
	settings services.SettingsService
	logger   *slog.Logger
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(host HostThemeState, settings services.SettingsService, logger *slog.Logger) *ThemeHandler {
	return &ThemeHandler{
		host:     host,
		settings: settings,
		logger:   logger,
	}
}

// GetTheme returns the applied theme
// GET /api/host/theme
func (h *ThemeHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	httputil.RespondOK(w, h.state())
}

// SetAmbientTheme records the host appearance and re-applies the stored
// theme preference against it
// PUT /api/host/ambient-theme
func (h *ThemeHandler) SetAmbientTheme(w http.ResponseWriter, r *http.Request) {
	var req ambientThemeRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Dark, validation.NotNil),
	); err != nil {
		handleError(w, h.logger, &domain.ValidationError{Message: err.Error()})
		return
	}

	h.host.SetAmbientDark(*req.Dark)

	// Loading settings applies the effective theme
	if _, err := h.settings.GetSettings(r.Context()); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, h.state())
}

func (h *ThemeHandler) state() themeResponse {
	return themeResponse{
		Theme:       h.host.Applied(),
		AmbientDark: h.host.AmbientDark(),
	}
}
