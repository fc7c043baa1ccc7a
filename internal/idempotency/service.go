package idempotency

import (
	"context"
	"errors"
	"time"
)

// Service caches successful write responses by a client-supplied key:
// before processing a request that carries one, look up the key; on hit,
// return the cached response as-is. On miss, run fn and cache its response
// only if it succeeded with a 2xx status.
type Service interface {
	Execute(ctx context.Context, key string, fn func() (statusCode int, payload []byte, err error)) (statusCode int, payload []byte, err error)
}

type service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, clock: time.Now}
}

func (s *service) Execute(ctx context.Context, key string, fn func() (int, []byte, error)) (int, []byte, error) {
	if key == "" {
		return fn()
	}

	if rec, err := s.repo.Get(ctx, key); err != nil {
		return 0, nil, err
	} else if rec != nil {
		return rec.StatusCode, rec.Payload, nil
	}

	status, payload, err := fn()
	if err != nil {
		return status, payload, err
	}
	if status < 200 || status >= 300 {
		// Non-2xx responses are not cached.
		return status, payload, nil
	}

	rec := &Record{Key: key, StatusCode: status, Payload: payload, CreatedAt: s.clock()}
	if putErr := s.repo.Put(ctx, rec); putErr != nil {
		if errors.Is(putErr, ErrKeyExists) {
			// Lost the race to another writer with the same key;
			// return the winner's persisted response instead of ours.
			winner, getErr := s.repo.Get(ctx, key)
			if getErr != nil {
				return status, payload, getErr
			}
			if winner != nil {
				return winner.StatusCode, winner.Payload, nil
			}
		}
		return status, payload, putErr
	}

	return status, payload, nil
}
