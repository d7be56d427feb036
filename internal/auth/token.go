// Package auth extracts and inspects the session token a logged-in browser holds.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoToken is returned when browser storage holds no session token.
var ErrNoToken = errors.New("no session token in browser storage")

// ErrTokenExpired is returned when the session token is already expired.
var ErrTokenExpired = errors.New("session token expired")

// Token is an opaque bearer credential read from browser storage after login.
type Token struct {
	Raw    string
	Claims *Claims // nil when the token is not a JWT
}

// Bearer returns the Authorization header value.
func (t Token) Bearer() string {
	return "Bearer " + t.Raw
}

// Principal returns the token owner, or "unknown" for opaque tokens.
func (t Token) Principal() string {
	if t.Claims == nil || t.Claims.Principal() == "" {
		return "unknown"
	}
	return t.Claims.Principal()
}

// Expired reports whether the token has an expiry at or before now.
func (t Token) Expired(now time.Time) bool {
	if t.Claims == nil {
		return false
	}
	exp := t.Claims.ExpiresAt()
	return !exp.IsZero() && !now.Before(exp)
}

// FromStorage picks the session token out of a local storage snapshot.
// The value under key is used as is, or, when it holds a JSON object, the
// field of the same name inside it.
func FromStorage(storage map[string]string, key string, now time.Time) (Token, error) {
	raw := strings.TrimSpace(storage[key])
	if raw == "" {
		return Token{}, fmt.Errorf("%w (key %q)", ErrNoToken, key)
	}
	if strings.HasPrefix(raw, "{") {
		var nested map[string]any
		if err := json.Unmarshal([]byte(raw), &nested); err == nil {
			s, _ := nested[key].(string)
			if s == "" {
				return Token{}, fmt.Errorf("%w (key %q holds an object without it)", ErrNoToken, key)
			}
			raw = s
		}
	}
	raw = strings.TrimPrefix(raw, "Bearer ")

	tok := Token{Raw: raw}
	if claims, err := ParseClaims(raw); err == nil {
		tok.Claims = claims
	}
	if tok.Expired(now) {
		return Token{}, fmt.Errorf("%w at %s", ErrTokenExpired, tok.Claims.ExpiresAt().Format(time.RFC3339))
	}
	return tok, nil
}
