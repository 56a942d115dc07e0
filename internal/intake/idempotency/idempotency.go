// Package idempotency remembers the outcome of intake submissions keyed by a
// caller-supplied Idempotency-Key so a retried submission replays the first
// successful result instead of creating a second challenge.
package idempotency

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aussiebroadwan/leadflow/pkg/cryptox"
)

// DefaultTTL bounds how long a completed result is replayed.
const DefaultTTL = 24 * time.Hour

var ErrInProgress = errors.New("idempotency: request with this key is in progress")

// Store reserves keys, records completed results and releases keys whose
// request failed.
type Store interface {
	// Begin reserves key. When a result was already completed under key it is
	// returned with replay set. A key held by an unfinished request yields
	// ErrInProgress.
	Begin(ctx context.Context, key string) (result []byte, replay bool, err error)
	Complete(ctx context.Context, key string, result []byte) error
	Release(ctx context.Context, key string) error
}

// storageKey hashes the caller's key so arbitrary header values map to a
// fixed-size key.
func storageKey(key string) string {
	return cryptox.FingerprintToken(key)
}

type memoryEntry struct {
	result    []byte
	done      bool
	expiresAt time.Time
}

// Memory is a process-local Store.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{ttl: ttl, entries: map[string]memoryEntry{}, now: time.Now}
}

func (m *Memory) Begin(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := storageKey(key)
	now := m.now()
	if e, ok := m.entries[k]; ok && now.Before(e.expiresAt) {
		if !e.done {
			return nil, false, ErrInProgress
		}
		return append([]byte(nil), e.result...), true, nil
	}
	m.entries[k] = memoryEntry{expiresAt: now.Add(m.ttl)}
	return nil, false, nil
}

func (m *Memory) Complete(_ context.Context, key string, result []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[storageKey(key)] = memoryEntry{
		result:    append([]byte(nil), result...),
		done:      true,
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *Memory) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, storageKey(key))
	return nil
}
