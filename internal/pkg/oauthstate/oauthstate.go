// Package oauthstate signs and verifies the state parameter carried through
// OAuth authorization redirects, binding each callback to the flow that
// started it.
package oauthstate

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidState = errors.New("invalid oauth state")

const stateTTL = 10 * time.Minute

type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

type stateClaims struct {
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// Issue creates a short-lived state token for the given provider ("gmail",
// "slack", ...).
func (s *Signer) Issue(provider string) (string, error) {
	now := time.Now()
	claims := stateClaims{
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(stateTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign oauth state failed: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and returns the provider the
// flow was started for.
func (s *Signer) Verify(state string) (string, error) {
	var claims stateClaims
	token, err := jwt.ParseWithClaims(state, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidState
	}
	if claims.Provider == "" {
		return "", ErrInvalidState
	}
	return claims.Provider, nil
}
