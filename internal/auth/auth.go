// Package auth reads the claims of the member token issued after account
// creation. Tokens are verified by the GraphQL backend; this package only
// decides whether a token is worth sending.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultLeeway treats tokens expiring within this window as expired, so a
// multi-request step does not fail halfway.
const DefaultLeeway = 30 * time.Second

// ErrMissingToken is returned by Inspect for empty tokens.
var ErrMissingToken = errors.New("auth: missing token")

// Claims are the member token claims the wizard reads.
type Claims struct {
	MemberID string `json:"memberId,omitempty"`
	jwt.RegisteredClaims
}

// Member returns the member id, falling back to the registered subject.
func (c Claims) Member() string {
	if c.MemberID != "" {
		return c.MemberID
	}
	return c.RegisteredClaims.Subject
}

// Inspect decodes the claims of token without verifying its signature.
func Inspect(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrMissingToken
	}
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Claims{}, fmt.Errorf("auth: %w", err)
	}
	return claims, nil
}

// Checker decides whether a stored token is still usable.
type Checker struct {
	Leeway time.Duration
	Now    func() time.Time
}

// NewChecker returns a checker with DefaultLeeway and the wall clock.
func NewChecker() Checker {
	return Checker{Leeway: DefaultLeeway, Now: time.Now}
}

// Usable reports whether token may be sent to the backend. Opaque tokens that
// are not JWTs and JWTs without an expiry are usable; the backend rejects
// them if they are not.
func (c Checker) Usable(token string) bool {
	claims, err := Inspect(token)
	if errors.Is(err, ErrMissingToken) {
		return false
	}
	if err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().Add(c.Leeway).Before(claims.ExpiresAt.Time)
}
