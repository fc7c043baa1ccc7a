package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes a key only if its value still equals the token
// that acquired it, guarding against releasing a lock someone else
// acquired after our TTL expired and they re-acquired the same key.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

type redisManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisManager returns a Manager backed by go-redis, using SET-NX/EVAL
// for acquisition and token-conditioned release.
func NewRedisManager(client *redis.Client, ttl time.Duration) Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &redisManager{client: client, ttl: ttl}
}

func (m *redisManager) AcquireSectorLocks(ctx context.Context, sectorID string, start, end time.Time) (Handle, error) {
	return m.acquire(ctx, sectorKeys(sectorID, start, end))
}

func (m *redisManager) AcquireRestaurantLocks(ctx context.Context, restaurantID string, start, end time.Time) (Handle, error) {
	return m.acquire(ctx, restaurantKeys(restaurantID, start, end))
}

// acquire attempts each key in sorted order with SET NX PX; on the first
// failure, conditionally delete every key acquired so far and fail the
// whole attempt.
func (m *redisManager) acquire(ctx context.Context, keys []string) (Handle, error) {
	token := uuid.NewString()
	acquired := make([]string, 0, len(keys))

	for _, key := range keys {
		ok, err := m.client.SetNX(ctx, key, token, m.ttl).Result()
		if err != nil {
			m.rollback(ctx, acquired, token)
			return nil, fmt.Errorf("lock: acquire %q failed: %w", key, err)
		}
		if !ok {
			m.rollback(ctx, acquired, token)
			return nil, ErrBusy
		}
		acquired = append(acquired, key)
	}

	return &redisHandle{client: m.client, keys: acquired, token: token}, nil
}

func (m *redisManager) rollback(ctx context.Context, keys []string, token string) {
	for _, key := range keys {
		releaseScript.Run(ctx, m.client, []string{key}, token)
	}
}

type redisHandle struct {
	client *redis.Client
	keys   []string
	token  string
}

func (h *redisHandle) Release(ctx context.Context) error {
	var firstErr error
	for _, key := range h.keys {
		if _, err := releaseScript.Run(ctx, h.client, []string{key}, h.token).Result(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("lock: release %q failed: %w", key, err)
			}
		}
	}
	return firstErr
}
