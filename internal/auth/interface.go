package auth

import "diarykeeper/internal/domain/models"

// TokenVerifier validates bridge session tokens. The middleware only
// depends on this, not on how tokens are signed.
type TokenVerifier interface {
	// VerifyToken returns the claims of a valid token, or domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.SessionClaims, error)
}
