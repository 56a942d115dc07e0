package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	issuer   = "https://auth.example.test"
	audience = "intake"
)

func newEdDSA(t *testing.T, kid string) (*jwtx.EdDSASigner, *jwtx.KeySet) {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddJWK(signer.PublicJWK()))
	return signer, keys
}

func TestEdDSARoundTrip(t *testing.T) {
	t.Parallel()

	signer, keys := newEdDSA(t, "k1")
	v := jwtx.NewVerifierEdDSA(keys, issuer, []string{audience})

	tok, err := signer.Sign(jwtx.NewClaims("user-1", "client", issuer, []string{audience}, time.Minute, time.Now()))
	require.NoError(t, err)

	claims, err := v.Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "client", claims.Role)
	require.NotEmpty(t, claims.ID)
}

func TestEdDSARejects(t *testing.T) {
	t.Parallel()

	signer, keys := newEdDSA(t, "k1")
	other, _ := newEdDSA(t, "k2")
	v := jwtx.NewVerifierEdDSA(keys, issuer, []string{audience})
	now := time.Now()

	sign := func(s *jwtx.EdDSASigner, c jwtx.Claims) string {
		tok, err := s.Sign(c)
		require.NoError(t, err)
		return tok
	}

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"unknown kid", sign(other, jwtx.NewClaims("u", "client", issuer, []string{audience}, time.Minute, now)), jwtx.ErrUnknownKID},
		{"wrong issuer", sign(signer, jwtx.NewClaims("u", "client", "https://evil", []string{audience}, time.Minute, now)), jwtx.ErrIssuer},
		{"wrong audience", sign(signer, jwtx.NewClaims("u", "client", issuer, []string{"billing"}, time.Minute, now)), jwtx.ErrAudience},
		{"expired", sign(signer, jwtx.NewClaims("u", "client", issuer, []string{audience}, time.Minute, now.Add(-time.Hour))), jwtx.ErrExpired},
		{"no subject", sign(signer, jwtx.NewClaims("", "client", issuer, []string{audience}, time.Minute, now)), jwtx.ErrNoSubject},
		{"garbage", "not.a.jwt", jwtx.ErrMalformed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := v.Verify(tc.token)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestHS256RoundTripAndAlgPinning(t *testing.T) {
	t.Parallel()

	secret := []byte(strings.Repeat("s", 32))
	hs, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)

	tok, err := hs.Sign(jwtx.NewClaims("admin-1", "admin", "", nil, time.Minute, time.Now()))
	require.NoError(t, err)

	claims, err := jwtx.NewVerifierHS256(secret, "", nil).Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Role)

	// An HS256 token must not pass an EdDSA verifier.
	_, keys := newEdDSA(t, "k1")
	_, err = jwtx.NewVerifierEdDSA(keys, "", nil).Verify(tok)
	require.Error(t, err)

	_, err = jwtx.NewSignerHS256([]byte("short"))
	require.Error(t, err)
}
