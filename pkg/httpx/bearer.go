package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/aussiebroadwan/leadflow/pkg/slogx"
)

// Bearer verifies an Authorization bearer token when one is present. A
// request without the header passes through anonymously; a header that
// fails verification is rejected with 401.
func Bearer(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				writeBearerError(w, "malformed authorization header")
				return
			}

			claims, err := v.Verify(strings.TrimSpace(raw))
			if err != nil {
				slogx.FromContext(r.Context()).Warn("bearer token rejected", "error", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx := slogx.With(ContextWithClaims(r.Context(), claims), "sub", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireBearer rejects requests that did not present a valid token.
func RequireBearer() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := ClaimsFromContext(r.Context()); !ok {
				writeBearerError(w, "missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RFC 6750 challenge on 401.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
