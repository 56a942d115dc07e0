package jwtx_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestFetchJWKS(t *testing.T) {
	t.Parallel()

	signer, _ := newEdDSA(t, "served")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(jwtx.JWKS{Keys: []jwtx.JWK{signer.PublicJWK()}})
	}))
	t.Cleanup(srv.Close)

	set, err := jwtx.FetchJWKS(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	require.Len(t, set.Keys, 1)

	keys := jwtx.NewKeySet()
	require.False(t, keys.IsReady())
	require.NoError(t, keys.ResetFromJWKS(set))
	require.True(t, keys.IsReady())

	_, err = keys.Get("served")
	require.NoError(t, err)
	_, err = keys.Get("missing")
	require.ErrorIs(t, err, jwtx.ErrNoKey)
}

func TestFetchJWKSBadStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	_, err := jwtx.FetchJWKS(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
}

func TestResetFromJWKSIsAllOrNothing(t *testing.T) {
	t.Parallel()

	signer, keys := newEdDSA(t, "good")
	err := keys.ResetFromJWKS(jwtx.JWKS{Keys: []jwtx.JWK{
		signer.PublicJWK(),
		{Kty: "RSA", Kid: "rsa"},
	}})
	require.Error(t, err)

	_, err = keys.Get("good")
	require.NoError(t, err)
}

func TestRefreshKeySet(t *testing.T) {
	t.Parallel()

	signer, _ := newEdDSA(t, "rotated")
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(jwtx.JWKS{Keys: []jwtx.JWK{signer.PublicJWK()}})
	}))
	t.Cleanup(srv.Close)

	keys := jwtx.NewKeySet()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	go jwtx.RefreshKeySet(ctx, keys, srv.Client(), srv.URL, 10*time.Millisecond, log)

	require.Eventually(t, keys.IsReady, 2*time.Second, 10*time.Millisecond)
	require.Positive(t, hits.Load())
}
