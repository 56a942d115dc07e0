package httpx

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimit is a token bucket: Requests per Window, with Burst available
// up front.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Burst    int
}

// Profiles. Each can be overridden with RATELIMIT_<NAME>_REQUESTS,
// RATELIMIT_<NAME>_WINDOW_SEC and RATELIMIT_<NAME>_BURST.
var (
	// ClaimLimit guards account creation through the claim endpoint.
	ClaimLimit = RateLimit{Requests: 5, Window: time.Minute, Burst: 5}

	// IntakeLimit guards anonymous submissions.
	IntakeLimit = RateLimit{Requests: 10, Window: time.Minute, Burst: 10}

	// APILimit applies to authenticated calls, keyed by subject.
	APILimit = RateLimit{Requests: 120, Window: time.Minute, Burst: 60}

	// PublicLimit applies to health and docs.
	PublicLimit = RateLimit{Requests: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	ClaimLimit = RateLimitFromEnv("CLAIM", ClaimLimit)
	IntakeLimit = RateLimitFromEnv("INTAKE", IntakeLimit)
	APILimit = RateLimitFromEnv("API", APILimit)
	PublicLimit = RateLimitFromEnv("PUBLIC", PublicLimit)
}

// RateLimitFromEnv overlays RATELIMIT_<name>_* variables on def. Values
// that are missing, malformed or not positive are ignored.
func RateLimitFromEnv(name string, def RateLimit) RateLimit {
	positive := func(key string) (int, bool) {
		n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + name + "_" + key))
		return n, err == nil && n > 0
	}

	out := def
	if n, ok := positive("REQUESTS"); ok {
		out.Requests = n
	}
	if n, ok := positive("WINDOW_SEC"); ok {
		out.Window = time.Duration(n) * time.Second
	}
	if n, ok := positive("BURST"); ok {
		out.Burst = n
	}
	return out
}

// KeyFunc groups requests into buckets. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// ClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket peer.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Subject keys by the bearer subject, if any.
func Subject(r *http.Request) string {
	if c, ok := ClaimsFromContext(r.Context()); ok {
		return c.Subject
	}
	return ""
}

// PathValue keys by a ServeMux wildcard, e.g. the challenge id.
func PathValue(name string) KeyFunc {
	return func(r *http.Request) string { return r.PathValue(name) }
}

// Keys joins the non-empty parts produced by fns with ":".
func Keys(fns ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(fns))
		for _, fn := range fns {
			if k := fn(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, ":")
	}
}

type buckets struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[string]*bucket
	swept   time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

const bucketIdle = 10 * time.Minute

func (b *buckets) get(key string, now time.Time) *rate.Limiter {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.Sub(b.swept) > bucketIdle {
		for k, e := range b.entries {
			if now.Sub(e.seen) > bucketIdle {
				delete(b.entries, k)
			}
		}
		b.swept = now
	}

	e, ok := b.entries[key]
	if !ok {
		e = &bucket{lim: rate.NewLimiter(b.limit, b.burst)}
		b.entries[key] = e
	}
	e.seen = now
	return e.lim
}

// Limit rejects requests beyond cfg with 429 and a Retry-After header.
func Limit(cfg RateLimit, key KeyFunc) Middleware {
	b := &buckets{
		limit:   rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:   cfg.Burst,
		entries: make(map[string]*bucket),
		swept:   time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				next.ServeHTTP(w, r)
				return
			}

			now := time.Now()
			lim := b.get(k, now)
			if lim.AllowN(now, 1) {
				next.ServeHTTP(w, r)
				return
			}

			res := lim.ReserveN(now, 1)
			wait := res.DelayFrom(now)
			res.CancelAt(now)

			retry := max(int(wait.Seconds()+0.5), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retry))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Requests))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retry,
			)
			WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please try again later.")
		})
	}
}
