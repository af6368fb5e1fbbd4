// Package auth issues and verifies the bearer tokens that identify API
// callers, and provides the HTTP middleware that resolves them to users.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/foxobr/ficha-rpg/internal/config"
)

// ErrInvalidToken is returned when a token fails verification for any
// reason: bad signature, wrong algorithm, expiry, or malformed input.
var ErrInvalidToken = errors.New("auth: invalid token")

// TokenManager mints and verifies HMAC-signed JWTs carrying the user id
// in the subject claim.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager from the auth configuration.
//
// Precondition: cfg.JWTSecret must be non-empty; cfg.TokenTTL must be
// positive.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Mint signs a fresh token for the given user id.
//
// Postcondition: The returned token verifies until the configured TTL
// elapses.
func (m *TokenManager) Mint(userID string) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the user id
// it was minted for.
//
// Postcondition: Returns ErrInvalidToken for anything but a live,
// correctly signed token.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
