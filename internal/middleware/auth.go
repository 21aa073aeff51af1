package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"diarykeeper/internal/auth"
	"diarykeeper/internal/httputil"
)

// BridgeAuth validates the bridge session token from the Authorization
// header and stores the session id in the request context.
func BridgeAuth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight requests never carry credentials
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing session token")
				return
			}

			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				logger.Warn("bridge request rejected",
					"path", r.URL.Path,
					"method", r.Method,
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid session token")
				return
			}

			next.ServeHTTP(w, httputil.WithSession(r, claims.GetSessionID()))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
