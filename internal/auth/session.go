package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"diarykeeper/internal/domain"
	"diarykeeper/internal/domain/models"
)

// SessionFileName is written to the data directory so the launching shell
// can pick up the token.
const SessionFileName = ".bridge-session"

const issuer = "diarykeeper"

// SessionManager mints and verifies HS256 bridge session tokens.
type SessionManager struct {
	secret    []byte
	sessionID string
	ttl       time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

var _ TokenVerifier = (*SessionManager)(nil)

// NewSessionManager creates a manager signing with secret. An empty secret
// is replaced by 32 random bytes. Every token is bound to a session id
// minted here, so tokens never outlive the process. A zero ttl issues
// tokens without an expiry; a positive ttl bounds them further.
func NewSessionManager(secret string, ttl time.Duration, logger *slog.Logger) (*SessionManager, error) {
	if ttl < 0 {
		return nil, errors.New("session ttl must not be negative")
	}

	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}

	sessionID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	return &SessionManager{
		secret:    key,
		sessionID: sessionID.String(),
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// Issue mints a token for this process's session.
func (m *SessionManager) Issue() (string, error) {
	now := m.now()
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  m.sessionID,
			Issuer:   issuer,
			Audience: jwt.ClaimStrings{models.BridgeAudience},
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	if claims.ExpiresAt != nil {
		m.logger.Info("bridge session issued", "session_id", claims.Subject, "expires_at", claims.ExpiresAt.Time)
	} else {
		m.logger.Info("bridge session issued", "session_id", claims.Subject)
	}
	return signed, nil
}

// VerifyToken validates signature, issuer, audience and session id, and
// expiry when the manager issues expiring tokens.
func (m *SessionManager) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(models.BridgeAudience),
		jwt.WithTimeFunc(m.now),
	}
	if m.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{},
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		opts...,
	)
	if err != nil {
		m.logger.Debug("session token rejected", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid || claims.Subject != m.sessionID {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// WriteSessionFile stores token in dir with owner-only permissions.
func WriteSessionFile(dir, token string) (string, error) {
	path := filepath.Join(dir, SessionFileName)
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write session file: %w", err)
	}
	return path, nil
}
