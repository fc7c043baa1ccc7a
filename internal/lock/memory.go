package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// entry is a held key: the token that holds it and when it expires.
type entry struct {
	token   string
	expires time.Time
}

// memoryManager is an in-process mutex+map implementation of Manager, used
// for unit tests and single-node deployments that don't run Redis. Stdlib
// sync is the right tool here: there is no third-party alternative that
// fits an in-memory fake exercised only by this process.
type memoryManager struct {
	mu    sync.Mutex
	held  map[string]entry
	ttl   time.Duration
	clock func() time.Time
}

// NewMemoryManager returns an in-memory Manager with the given lock TTL.
func NewMemoryManager(ttl time.Duration) Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &memoryManager{held: make(map[string]entry), ttl: ttl, clock: time.Now}
}

func (m *memoryManager) AcquireSectorLocks(ctx context.Context, sectorID string, start, end time.Time) (Handle, error) {
	return m.acquire(sectorKeys(sectorID, start, end))
}

func (m *memoryManager) AcquireRestaurantLocks(ctx context.Context, restaurantID string, start, end time.Time) (Handle, error) {
	return m.acquire(restaurantKeys(restaurantID, start, end))
}

// isHeld reports whether key is currently held, sweeping it away first if
// its TTL has lapsed — the in-memory analogue of Redis's own TTL eviction.
func (m *memoryManager) isHeld(key string, now time.Time) bool {
	e, ok := m.held[key]
	if !ok {
		return false
	}
	if !now.Before(e.expires) {
		delete(m.held, key)
		return false
	}
	return true
}

func (m *memoryManager) acquire(keys []string) (Handle, error) {
	token := uuid.NewString()
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		if m.isHeld(key, now) {
			// Fail fast: roll back whatever we already set in this attempt.
			for _, acquiredKey := range keys {
				if acquiredKey == key {
					break
				}
				if e, ok := m.held[acquiredKey]; ok && e.token == token {
					delete(m.held, acquiredKey)
				}
			}
			return nil, ErrBusy
		}
		m.held[key] = entry{token: token, expires: now.Add(m.ttl)}
	}

	return &memoryHandle{manager: m, keys: keys, token: token}, nil
}

func (m *memoryManager) release(keys []string, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		if e, ok := m.held[key]; ok && e.token == token {
			delete(m.held, key)
		}
	}
}

type memoryHandle struct {
	manager *memoryManager
	keys    []string
	token   string
}

func (h *memoryHandle) Release(ctx context.Context) error {
	h.manager.release(h.keys, h.token)
	return nil
}
