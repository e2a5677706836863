package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/medfront/medfront/internal/config"
)

// DefaultTokenTTL is the access token lifetime when the configuration does
// not set one.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken reports a token that failed signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies HS256 access tokens whose subject is the
// authenticated username.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a TokenManager from configuration.
func NewTokenManager(cfg config.AuthConfig) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(cfg.Secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a new access token for the user and returns it with its
// lifetime in seconds.
func (m *TokenManager) Issue(username string) (string, int, error) {
	now := m.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return signed, int(m.ttl.Seconds()), nil
}

// Verify checks the token signature and expiry and returns the subject
// username.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
