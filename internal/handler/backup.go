package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/services"
	"diarykeeper/internal/httputil"
)

// BackupHandler handles export, import and backup bridge requests
type BackupHandler struct {
	service services.BackupService
	logger  *slog.Logger
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(service services.BackupService, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{
		service: service,
		logger:  logger,
	}
}

// ExportData writes an archive to the chosen path
// POST /api/data/export
func (h *BackupHandler) ExportData(w http.ResponseWriter, r *http.Request) {
	path, ok := h.archivePath(w, r)
	if !ok {
		return
	}

	if err := h.service.Export(r.Context(), path); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, nil)
}

// ImportData replaces every document with the archive's contents
// POST /api/data/import
func (h *BackupHandler) ImportData(w http.ResponseWriter, r *http.Request) {
	path, ok := h.archivePath(w, r)
	if !ok {
		return
	}

	if err := h.service.Import(r.Context(), path); err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, nil)
}

// CreateBackup writes a timestamped archive into the backups directory
// POST /api/backups
func (h *BackupHandler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.CreateBackup(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, info)
}

// ListBackups returns existing backups, newest first
// GET /api/backups
func (h *BackupHandler) ListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.service.ListBackups(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondOK(w, backups)
}

// GetLocation reports the data folder
// GET /api/data/location
func (h *BackupHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	httputil.RespondOK(w, h.service.Location())
}

// archivePath decodes and validates the {path} payload shared by export and import
func (h *BackupHandler) archivePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req models.ArchivePathRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return "", false
	}

	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Path, validation.Required, validation.By(absolutePath)),
	); err != nil {
		handleError(w, h.logger, &domain.ValidationError{Message: err.Error()})
		return "", false
	}
	return filepath.Clean(req.Path), true
}

func absolutePath(value any) error {
	path, _ := value.(string)
	if !filepath.IsAbs(path) {
		return errors.New("must be an absolute path")
	}
	return nil
}
