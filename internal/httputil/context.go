package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	sessionKey contextKey = "bridgeSession"
)

// WithSession adds the bridge session id to the request context
func WithSession(r *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionKey, sessionID)
	return r.WithContext(ctx)
}

// GetSession retrieves the bridge session id, empty when auth is disabled
func GetSession(r *http.Request) string {
	sessionID, _ := r.Context().Value(sessionKey).(string)
	return sessionID
}
