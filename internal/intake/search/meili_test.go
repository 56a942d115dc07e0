package search_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/leadflow/internal/intake/search"
	"github.com/stretchr/testify/require"
)

// fakeMeili serves the subset of the Meilisearch API the index uses.
type fakeMeili struct {
	mu      sync.Mutex
	docs    map[string]map[string]map[string]any
	failing atomic.Bool
}

func newFakeMeili(t *testing.T) (*fakeMeili, *httptest.Server) {
	t.Helper()
	f := &fakeMeili{docs: map[string]map[string]map[string]any{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeMeili) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if f.failing.Load() {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"down","code":"internal","type":"internal","link":""}`)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.URL.Path == "/health":
		_, _ = io.WriteString(w, `{"status":"available"}`)
	case len(parts) == 3 && parts[2] == "documents" && r.Method == http.MethodPost:
		var batch []map[string]any
		_ = json.NewDecoder(r.Body).Decode(&batch)
		f.mu.Lock()
		if f.docs[parts[1]] == nil {
			f.docs[parts[1]] = map[string]map[string]any{}
		}
		for _, d := range batch {
			f.docs[parts[1]][d["id"].(string)] = d
		}
		f.mu.Unlock()
		writeTask(w, parts[1])
	case len(parts) == 3 && parts[2] == "search":
		var req struct {
			Q      string `json:"q"`
			Filter []any  `json:"filter"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		hits := f.search(parts[1], req.Q, req.Filter)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits":               hits,
			"estimatedTotalHits": len(hits),
			"query":              req.Q,
			"processingTimeMs":   1,
		})
	default:
		index := ""
		if len(parts) > 1 {
			index = parts[1]
		}
		writeTask(w, index)
	}
}

func writeTask(w http.ResponseWriter, index string) {
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"taskUid":    1,
		"indexUid":   index,
		"status":     "enqueued",
		"type":       "documentAdditionOrUpdate",
		"enqueuedAt": time.Now().UTC().Format(time.RFC3339),
	})
}

func (f *fakeMeili) search(index, q string, filters []any) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []map[string]any
	for _, d := range f.docs[index] {
		if !matches(d, q) || !passes(d, filters) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i]["id"].(string) < out[j]["id"].(string) })
	return out
}

func matches(d map[string]any, q string) bool {
	if q == "" {
		return true
	}
	for _, v := range d {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), strings.ToLower(q)) {
			return true
		}
	}
	return false
}

func passes(d map[string]any, filters []any) bool {
	for _, f := range filters {
		key, value, _ := strings.Cut(f.(string), " = ")
		if d[key] != strings.Trim(value, `"`) {
			return false
		}
	}
	return true
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestMeiliUsers(t *testing.T) {
	_, srv := newFakeMeili(t)
	idx := search.NewMeili(srv.URL, "master-key", time.Hour, discard())
	t.Cleanup(idx.Close)
	require.True(t, idx.Healthy())

	ctx := context.Background()
	require.NoError(t, idx.IndexUsers(ctx,
		search.UserRecord{ID: "u1", Email: "jane@example.com", Username: "jane-doe-ab12", Name: "Jane Doe", Role: "client"},
		search.UserRecord{ID: "u2", Email: "ops@example.com", Username: "ops", Name: "Operator", Role: "admin"},
	))

	hits, err := idx.SearchUsers(ctx, search.Query{Text: "jane"})
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, hits.IDs)
	require.Equal(t, 1, hits.Total)

	hits, err = idx.SearchUsers(ctx, search.Query{Filters: map[string]string{"role": "admin"}})
	require.NoError(t, err)
	require.Equal(t, []string{"u2"}, hits.IDs)
}

func TestMeiliChallengesFilterByStatus(t *testing.T) {
	_, srv := newFakeMeili(t)
	idx := search.NewMeili(srv.URL, "", time.Hour, discard())
	t.Cleanup(idx.Close)

	ctx := context.Background()
	require.NoError(t, idx.IndexChallenges(ctx,
		search.ChallengeRecord{ID: "c1", Name: "Jane", Email: "jane@example.com", Status: "verified"},
		search.ChallengeRecord{ID: "c2", Name: "John", Email: "john@example.com", Status: "pending_verification"},
	))

	hits, err := idx.SearchChallenges(ctx, search.Query{
		Text:    "example.com",
		Filters: map[string]string{"status": "pending_verification", "userId": ""},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"c2"}, hits.IDs)
}

func TestMeiliFailureMarksUnhealthy(t *testing.T) {
	fake, srv := newFakeMeili(t)
	idx := search.NewMeili(srv.URL, "", time.Hour, discard())
	t.Cleanup(idx.Close)
	require.True(t, idx.Healthy())

	fake.failing.Store(true)
	_, err := idx.SearchUsers(context.Background(), search.Query{Text: "x"})
	require.Error(t, err)
	require.False(t, idx.Healthy())

	_, err = idx.SearchUsers(context.Background(), search.Query{Text: "x"})
	require.ErrorIs(t, err, search.ErrUnavailable)
}

func TestMeiliUnreachableStartsUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	idx := search.NewMeili(url, "", time.Hour, discard())
	t.Cleanup(idx.Close)
	require.False(t, idx.Healthy())
}

func TestDisabled(t *testing.T) {
	var idx search.Index = search.Disabled{}
	require.False(t, idx.Healthy())
	require.NoError(t, idx.IndexUsers(context.Background(), search.UserRecord{ID: "u1"}))
	_, err := idx.SearchChallenges(context.Background(), search.Query{})
	require.ErrorIs(t, err, search.ErrUnavailable)
}
