package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoToken is returned when a token source has no credential to offer.
var ErrNoToken = errors.New("no bearer token configured")

// TokenSource supplies the bearer credential attached to every exam service
// call. Token refresh is entirely the identity provider's concern; callers
// just ask again per request.
type TokenSource interface {
	Token() (string, error)
}

// StaticTokenSource returns a fixed token, e.g. one read from the environment.
type StaticTokenSource string

func (s StaticTokenSource) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Claims is the subset of the service's student token claims the client
// cares about.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
	UserID    int    `json:"user_id"`
	ClassID   int    `json:"class_id,omitempty"`
}

// PeekClaims decodes token claims WITHOUT verifying the signature. The client
// holds no key material — verification is the server's job. Used only to
// derive user_id for the submit payload and to warn about imminent expiry.
func PeekClaims(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	return claims, nil
}

// ExpiresWithin reports whether the token expires within d from now.
// Tokens without an exp claim never report imminent expiry.
func (c *Claims) ExpiresWithin(d time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return time.Until(c.ExpiresAt.Time) < d
}
