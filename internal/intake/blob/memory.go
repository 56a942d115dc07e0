package blob

import (
	"context"
	"slices"
	"sync"
	"time"
)

// Memory keeps blobs in process. Used for development and tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{blobs: make(map[string][]byte), now: time.Now}
}

func (m *Memory) Put(ctx context.Context, data []byte, _, filename string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	loc := NewLocator(m.now(), filename)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[loc] = slices.Clone(data)
	return Object{Locator: loc, Size: int64(len(data))}, nil
}

func (m *Memory) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[locator]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(data), nil
}

func (m *Memory) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blobs[locator]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, locator)
	return nil
}

// Len reports how many blobs are stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
