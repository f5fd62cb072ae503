// Package auth inspects the bearer token returned by POST /admin/login.
//
// The console never holds the backend's signing key, so tokens are decoded
// without signature verification. The result is informational only (whoami
// and the expiry warning); the backend remains the authority.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNotJWT is returned when the token is opaque rather than a JWT.
var ErrNotJWT = errors.New("auth: token is not a JWT")

// Claims holds the fields the KU-MAN backend is known to put in admin tokens.
type Claims struct {
	AdminID  any    `json:"adminId,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Inspect decodes token without verifying its signature.
func Inspect(token string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrNotJWT
		}
		return nil, fmt.Errorf("auth: inspect: %w", err)
	}
	return claims, nil
}

// Expiry returns the exp claim; ok is false when the token carries none.
func (c *Claims) Expiry() (t time.Time, ok bool) {
	if c.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.ExpiresAt.Time, true
}

// ExpiresWithin reports whether the token expires before now+d. Tokens
// without an exp claim never expire.
func (c *Claims) ExpiresWithin(now time.Time, d time.Duration) bool {
	exp, ok := c.Expiry()
	return ok && exp.Before(now.Add(d))
}

// Expired reports whether exp lies in the past.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresWithin(now, 0)
}

// DisplayName returns the best available identifier for display.
func (c *Claims) DisplayName() string {
	switch {
	case c.Username != "":
		return c.Username
	case c.RegisteredClaims.Subject != "":
		return c.RegisteredClaims.Subject
	case c.AdminID != nil:
		return fmt.Sprint(c.AdminID)
	default:
		return "unknown"
	}
}
