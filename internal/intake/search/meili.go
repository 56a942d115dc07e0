package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxUsers      = "leadflow_users"
	idxChallenges = "leadflow_challenges"
)

// Meili implements Index via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	logger  *slog.Logger
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili connects to Meilisearch, configures the indexes when reachable and
// starts a health monitor polling every interval (10s when zero). An
// unreachable server is not an error: the index reports unhealthy until it
// recovers.
func NewMeili(url, apiKey string, interval time.Duration, logger *slog.Logger) *Meili {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	m := &Meili{
		client: meili.New(url, meili.WithAPIKey(apiKey)),
		logger: logger,
		done:   make(chan struct{}),
	}

	if _, err := m.client.Health(); err != nil {
		logger.Warn("meilisearch unavailable", slog.String("url", url), slog.Any("error", err))
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop(interval)
	return m
}

func (m *Meili) configureIndexes() {
	indexes := []struct {
		uid        string
		filterable []string
		searchable []string
		sortable   []string
	}{
		{
			uid:        idxUsers,
			filterable: []string{"role"},
			searchable: []string{"name", "email", "username"},
		},
		{
			uid:        idxChallenges,
			filterable: []string{"status", "userId"},
			searchable: []string{"name", "email"},
			sortable:   []string{"submittedAt"},
		},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: idx.uid, PrimaryKey: "id"}); err != nil {
			m.logger.Debug("create index (may already exist)", slog.String("index", idx.uid), slog.Any("error", err))
		}

		index := m.client.Index(idx.uid)
		filterable := make([]interface{}, len(idx.filterable))
		for i, v := range idx.filterable {
			filterable[i] = v
		}
		if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
			m.logger.Warn("update filterable attributes", slog.String("index", idx.uid), slog.Any("error", err))
		}
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			m.logger.Warn("update searchable attributes", slog.String("index", idx.uid), slog.Any("error", err))
		}
		if len(idx.sortable) > 0 {
			if _, err := index.UpdateSortableAttributes(&idx.sortable); err != nil {
				m.logger.Warn("update sortable attributes", slog.String("index", idx.uid), slog.Any("error", err))
			}
		}
	}
}

func (m *Meili) healthLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			was := m.healthy.Swap(err == nil)
			if err == nil && !was {
				m.logger.Info("meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the health monitor.
func (m *Meili) Close() { close(m.done) }

func (m *Meili) Healthy() bool { return m.healthy.Load() }

func (m *Meili) IndexUsers(_ context.Context, users ...UserRecord) error {
	if len(users) == 0 {
		return nil
	}
	_, err := m.client.Index(idxUsers).AddDocuments(users, nil)
	return m.check(err)
}

func (m *Meili) IndexChallenges(_ context.Context, challenges ...ChallengeRecord) error {
	if len(challenges) == 0 {
		return nil
	}
	_, err := m.client.Index(idxChallenges).AddDocuments(challenges, nil)
	return m.check(err)
}

func (m *Meili) SearchUsers(_ context.Context, q Query) (Hits, error) {
	return m.search(idxUsers, q, nil)
}

func (m *Meili) SearchChallenges(_ context.Context, q Query) (Hits, error) {
	return m.search(idxChallenges, q, []string{"submittedAt:desc"})
}

func (m *Meili) search(uid string, q Query, sortBy []string) (Hits, error) {
	if !m.healthy.Load() {
		return Hits{}, ErrUnavailable
	}
	limit := int64(q.Limit)
	if limit <= 0 {
		limit = 20
	}
	req := &meili.SearchRequest{
		Limit:  limit,
		Offset: int64(q.Offset),
		Sort:   sortBy,
	}
	if f := filterExpr(q.Filters); len(f) > 0 {
		req.Filter = f
	}

	resp, err := m.client.Index(uid).Search(q.Text, req)
	if err != nil {
		return Hits{}, m.check(fmt.Errorf("meilisearch search %s: %w", uid, err))
	}

	hits := Hits{Total: int(resp.EstimatedTotalHits), IDs: make([]string, 0, len(resp.Hits))}
	for _, hit := range resp.Hits {
		if id := decodeString(hit, "id"); id != "" {
			hits.IDs = append(hits.IDs, id)
		}
	}
	return hits, nil
}

// check marks the index unhealthy on failure so callers fall back until the
// health monitor sees it recover.
func (m *Meili) check(err error) error {
	if err != nil {
		m.healthy.Store(false)
	}
	return err
}

// filterExpr renders filters as an AND list in key order.
func filterExpr(filters map[string]string) []string {
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if strings.TrimSpace(v) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s = %q", k, filters[k]))
	}
	return out
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}
