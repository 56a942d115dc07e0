package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitVerifierJWKS(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("k1", pemKey)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, jwtx.JWKS{Keys: []jwtx.JWK{signer.PublicJWK()}})
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.AuthJWKSURL = srv.URL
	cfg.JWKSRefreshEvery = 0

	v, err := InitVerifier(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	raw, err := signer.Sign(jwtx.NewClaims("user-1", "client", cfg.AuthIssuer, cfg.AuthAudience, time.Minute, time.Now()))
	require.NoError(t, err)

	claims, err := v.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
}

func TestInitVerifierJWKSUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.AuthJWKSURL = srv.URL

	_, err := InitVerifier(context.Background(), cfg, discardLogger())
	require.Error(t, err)
}

func TestInitVerifierHS256(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AuthHS256Secret = testSecret

	v, err := InitVerifier(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	signer, err := jwtx.NewSignerHS256([]byte(testSecret))
	require.NoError(t, err)
	raw, err := signer.Sign(jwtx.NewClaims("admin-1", "admin", cfg.AuthIssuer, cfg.AuthAudience, time.Minute, time.Now()))
	require.NoError(t, err)

	claims, err := v.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, "admin", claims.Role)

	_, err = v.Verify(raw + "x")
	require.Error(t, err)
}
