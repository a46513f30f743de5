// Package cache is the read-through cache in front of the slow, rarely
// changing backend reads (statistics, lenders, admin dashboard).
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

const keyPrefix = "cashloan:"

type Cache interface {
	// Get reports a miss as ok=false with a nil error.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// DeletePrefix drops every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// Key joins parts under the service prefix: Key("stats", fp) -> "cashloan:stats:fp".
func Key(parts ...string) string {
	return keyPrefix + strings.Join(parts, ":")
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) DeletePrefix(context.Context, string) error { return nil }

type memoryItem struct {
	val     []byte
	expires time.Time
}

// sweepInterval bounds how often Set scans for expired entries.
const sweepInterval = time.Minute

// Memory is an in-process cache used when Redis is not configured. Expired
// entries are dropped on read and by a periodic sweep on write, since keys
// are per session and would otherwise pile up.
type Memory struct {
	mu        sync.Mutex
	items     map[string]memoryItem
	now       func() time.Time
	lastSweep time.Time
}

func NewMemory() *Memory {
	return &Memory{items: map[string]memoryItem{}, now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !it.expires.IsZero() && !m.now().Before(it.expires) {
		delete(m.items, key)
		return nil, false, nil
	}
	return append([]byte(nil), it.val...), true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweepLocked(now)
	}
	it := memoryItem{val: append([]byte(nil), val...)}
	if ttl > 0 {
		it.expires = now.Add(ttl)
	}
	m.items[key] = it
	return nil
}

func (m *Memory) sweepLocked(now time.Time) {
	for k, it := range m.items {
		if !it.expires.IsZero() && !now.Before(it.expires) {
			delete(m.items, k)
		}
	}
	m.lastSweep = now
}

func (m *Memory) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
		}
	}
	return nil
}
