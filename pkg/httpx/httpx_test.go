package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/httpx"
	"github.com/aussiebroadwan/leadflow/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })

func TestChainOrder(t *testing.T) {
	var trail []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trail = append(trail, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(ok, mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, trail)
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote addr", nil, "192.0.2.1"},
		{"forwarded first hop", map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"}, "203.0.113.1"},
		{"real ip", map[string]string{"X-Real-IP": " 203.0.113.2 "}, "203.0.113.2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = "192.0.2.1:4711"
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			require.Equal(t, tc.want, httpx.ClientIP(r))
		})
	}
}

func TestLimitRejectsAfterBurst(t *testing.T) {
	h := httpx.Limit(httpx.RateLimit{Requests: 2, Window: time.Minute, Burst: 2}, httpx.ClientIP)(ok)

	call := func(ip string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.RemoteAddr = ip + ":1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec
	}

	require.Equal(t, http.StatusNoContent, call("198.51.100.1").Code)
	require.Equal(t, http.StatusNoContent, call("198.51.100.1").Code)

	rec := call("198.51.100.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

	// Buckets are per key.
	require.Equal(t, http.StatusNoContent, call("198.51.100.2").Code)
}

func TestLimitSkipsEmptyKey(t *testing.T) {
	h := httpx.Limit(httpx.RateLimit{Requests: 1, Window: time.Hour, Burst: 1}, httpx.Subject)(ok)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestRateLimitFromEnv(t *testing.T) {
	t.Setenv("RATELIMIT_UNIT_REQUESTS", "7")
	t.Setenv("RATELIMIT_UNIT_WINDOW_SEC", "30")
	t.Setenv("RATELIMIT_UNIT_BURST", "-1")

	got := httpx.RateLimitFromEnv("UNIT", httpx.RateLimit{Requests: 1, Window: time.Minute, Burst: 3})
	require.Equal(t, httpx.RateLimit{Requests: 7, Window: 30 * time.Second, Burst: 3}, got)
}

func TestKeysJoinsNonEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.9:1"
	r.SetPathValue("id", "ch-1")

	require.Equal(t, "192.0.2.9:ch-1", httpx.Keys(httpx.ClientIP, httpx.Subject, httpx.PathValue("id"))(r))
}

func TestBearer(t *testing.T) {
	secret := []byte(strings.Repeat("k", 32))
	signer, err := jwtx.NewSignerHS256(secret)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256(secret, "", nil)

	token := func(role string) string {
		tok, err := signer.Sign(jwtx.NewClaims("user-7", role, "", nil, time.Minute, time.Now()))
		require.NoError(t, err)
		return tok
	}

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, ok := httpx.ClaimsFromContext(r.Context()); ok {
			seen = c.Subject
		}
		w.WriteHeader(http.StatusOK)
	})

	serve := func(h http.Handler, auth string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			r.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		return rec.Code
	}

	optional := httpx.Chain(inner, httpx.Bearer(verifier))
	require.Equal(t, http.StatusOK, serve(optional, ""))
	require.Empty(t, seen)
	require.Equal(t, http.StatusUnauthorized, serve(optional, "Bearer nope"))
	require.Equal(t, http.StatusUnauthorized, serve(optional, "Basic Zm9vOmJhcg=="))
	require.Equal(t, http.StatusOK, serve(optional, "Bearer "+token("client")))
	require.Equal(t, "user-7", seen)

	required := httpx.Chain(inner, httpx.Bearer(verifier), httpx.RequireBearer())
	require.Equal(t, http.StatusUnauthorized, serve(required, ""))
	require.Equal(t, http.StatusOK, serve(required, "Bearer "+token("admin")))
}
