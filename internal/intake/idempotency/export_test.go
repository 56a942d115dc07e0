package idempotency

import "time"

// Advance moves the memory store's clock forward.
func Advance(m *Memory, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := m.now
	m.now = func() time.Time { return base().Add(d) }
}
