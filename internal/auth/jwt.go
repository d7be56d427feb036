package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims holds the session token claims catalogcheck cares about.
type Claims struct {
	Email    string `json:"email"`
	IsBot    bool   `json:"isBot"`
	TokenTyp string `json:"tokenType"`
	jwt.RegisteredClaims
}

// ErrNotJWT is returned when a token cannot be decoded as a JWT.
var ErrNotJWT = errors.New("session token is not a JWT")

// ParseClaims decodes token claims without verifying the signature. The
// runner is a client of the catalog, not a verifier; it only needs the
// principal and expiry.
func ParseClaims(raw string) (*Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}
	return &claims, nil
}

// Principal returns the best human-readable identity in the claims.
func (c *Claims) Principal() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

// ExpiresAt returns the expiry time, or the zero time when the token has none.
func (c *Claims) ExpiresAt() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}
