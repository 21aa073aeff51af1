package models

import "github.com/golang-jwt/jwt/v5"

// BridgeAudience is the audience of bridge session tokens.
const BridgeAudience = "diary-bridge"

// SessionClaims are the claims of a bridge session token. Subject is the
// session id, minted once per server start.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// GetSessionID returns the session id from the subject claim.
func (c *SessionClaims) GetSessionID() string {
	return c.Subject
}
