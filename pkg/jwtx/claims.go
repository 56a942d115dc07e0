package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is used when minting tokens without an explicit lifetime.
const DefaultTokenTTL = 15 * time.Minute

// Claims are the bearer-token claims the intake API relies on. Tokens are
// minted by the external auth service; only sub and role matter here.
type Claims struct {
	jwt.RegisteredClaims

	// Role is "admin" or "client".
	Role string `json:"role,omitempty"`

	Username string `json:"username,omitempty"`
}

// NewClaims builds claims for subject with role, valid from now for ttl.
func NewClaims(subject, role, issuer string, audience []string, ttl time.Duration, now time.Time) Claims {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Role: role,
	}
}

// NewJTI returns a random URL-safe token id.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer is a no-op when expected is empty.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected != "" && c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience passes if any expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry checks exp and nbf against now, allowing leeway either side.
func (c *Claims) ValidateExpiry(leeway time.Duration) error {
	now := time.Now().UTC()
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
