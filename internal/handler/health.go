package handler

import (
	"net/http"
	"os"
	"time"

	"diarykeeper/internal/httputil"
)

// HealthHandler reports whether the storage root is reachable
type HealthHandler struct {
	root string
}

// NewHealthHandler creates a health handler for the storage root
func NewHealthHandler(root string) *HealthHandler {
	return &HealthHandler{root: root}
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(h.root); err != nil {
		httputil.RespondFailure(w, http.StatusServiceUnavailable, "storage root unavailable")
		return
	}

	httputil.RespondOK(w, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
