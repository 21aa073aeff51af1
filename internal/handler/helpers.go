package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/httputil"
)

// handleError converts domain errors to failed bridge envelopes
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var archiveErr *domain.InvalidArchiveError

	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondFailure(w, http.StatusConflict, err.Error())
	case errors.As(err, &archiveErr):
		httputil.RespondFailure(w, http.StatusUnprocessableEntity, archiveErr.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondFailure(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondFailure(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrIO), errors.Is(err, domain.ErrParse):
		logger.Error("storage failure", "error", err)
		httputil.RespondFailure(w, http.StatusInternalServerError, err.Error())
	default:
		logger.Error("unexpected error", "error", err)
		httputil.RespondFailure(w, http.StatusInternalServerError, "internal error")
	}
}

// badRequest reports an undecodable request body
func badRequest(w http.ResponseWriter, err error) {
	httputil.RespondFailure(w, http.StatusBadRequest, "invalid request body: "+err.Error())
}
