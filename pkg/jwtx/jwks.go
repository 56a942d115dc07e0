package jwtx

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// JWK is a public key in RFC 7517 form. Only Ed25519 (kty OKP) is accepted.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Alg string `json:"alg,omitempty"`
	Kid string `json:"kid,omitempty"`
	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
}

type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewEd25519JWK builds the OKP JWK for pub.
func NewEd25519JWK(kid string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: "sig",
		Alg: "EdDSA",
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}

func (j JWK) publicKey() (ed25519.PublicKey, error) {
	if j.Kty != "OKP" || j.Crv != "Ed25519" {
		return nil, fmt.Errorf("jwtx: unsupported key %s/%s", j.Kty, j.Crv)
	}
	raw, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode x: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, errors.New("jwtx: invalid Ed25519 public key size")
	}
	return ed25519.PublicKey(raw), nil
}

// FetchJWKS downloads a key set from url.
func FetchJWKS(ctx context.Context, client *http.Client, url string) (JWKS, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return JWKS{}, fmt.Errorf("jwtx: build jwks request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return JWKS{}, fmt.Errorf("jwtx: fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return JWKS{}, fmt.Errorf("jwtx: fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var out JWKS
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return JWKS{}, fmt.Errorf("jwtx: decode jwks: %w", err)
	}
	return out, nil
}

// RefreshKeySet reloads keys from url every interval until ctx is done.
// Fetch failures keep the previous keys.
func RefreshKeySet(ctx context.Context, keys *KeySet, client *http.Client, url string, interval time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			set, err := FetchJWKS(ctx, client, url)
			if err != nil {
				log.Warn("jwks refresh failed", slog.String("url", url), slog.Any("error", err))
				continue
			}
			if err := keys.ResetFromJWKS(set); err != nil {
				log.Warn("jwks refresh rejected", slog.Any("error", err))
				continue
			}
			log.Debug("jwks refreshed", slog.Int("keys", len(set.Keys)))
		}
	}
}
