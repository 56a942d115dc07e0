package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestValidateExpiryLeeway(t *testing.T) {
	now := time.Now()
	c := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
	}}

	require.ErrorIs(t, c.ValidateExpiry(0), ErrExpired)
	require.NoError(t, c.ValidateExpiry(time.Minute))

	c = Claims{RegisteredClaims: jwt.RegisteredClaims{
		NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
	}}
	require.ErrorIs(t, c.ValidateExpiry(time.Minute), ErrNotYetValid)
}

func TestValidateAudienceAndIssuer(t *testing.T) {
	c := NewClaims("u", "client", "iss", []string{"a", "b"}, time.Minute, time.Now())

	require.NoError(t, c.ValidateAudience(nil))
	require.NoError(t, c.ValidateAudience([]string{"z", "b"}))
	require.ErrorIs(t, c.ValidateAudience([]string{"z"}), ErrAudience)

	require.NoError(t, c.ValidateIssuer(""))
	require.NoError(t, c.ValidateIssuer("iss"))
	require.ErrorIs(t, c.ValidateIssuer("other"), ErrIssuer)
}

func TestNewClaimsDefaultsTTL(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	c := NewClaims("u", "admin", "", nil, 0, now)
	require.Equal(t, now.Add(DefaultTokenTTL).Unix(), c.ExpiresAt.Unix())
}
