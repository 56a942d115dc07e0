package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
)

// InitVerifier builds the bearer token verifier.
//
// Modes:
//   - JWKS: Ed25519 keys are fetched from the auth service at startup and
//     refreshed in the background until ctx is done. Fetch failures during
//     refresh keep the previous keys.
//   - HS256: a shared secret, for development and tests. Used only when no
//     JWKS URL is configured.
func InitVerifier(ctx context.Context, cfg Config, logger *slog.Logger) (jwtx.Verifier, error) {
	if cfg.AuthJWKSURL == "" {
		logger.Warn("verifying bearer tokens with a shared HS256 secret",
			"issuer", cfg.AuthIssuer,
			"audience", cfg.AuthAudience,
		)
		return jwtx.NewVerifierHS256([]byte(cfg.AuthHS256Secret), cfg.AuthIssuer, cfg.AuthAudience), nil
	}

	client := &http.Client{Timeout: 10 * time.Second}

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	set, err := jwtx.FetchJWKS(fetchCtx, client, cfg.AuthJWKSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch signing keys: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.ResetFromJWKS(set); err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	logger.Info("loaded signing keys",
		"url", cfg.AuthJWKSURL,
		"num_keys", len(set.Keys),
		"issuer", cfg.AuthIssuer,
	)

	if cfg.JWKSRefreshEvery > 0 {
		go jwtx.RefreshKeySet(ctx, keys, client, cfg.AuthJWKSURL, cfg.JWKSRefreshEvery, logger)
	}

	return jwtx.NewVerifierEdDSA(keys, cfg.AuthIssuer, cfg.AuthAudience), nil
}
