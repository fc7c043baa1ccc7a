package idempotency

import (
	"context"
	"sync"
)

// memoryRepository is an in-process fake satisfying Repository, used by
// Service tests and by deployments with no Postgres-backed idempotency
// table configured.
type memoryRepository struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryRepository returns an in-memory Repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{records: make(map[string]*Record)}
}

func (r *memoryRepository) Get(ctx context.Context, key string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[key]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, nil
}

func (r *memoryRepository) Put(ctx context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.Key]; ok {
		return ErrKeyExists
	}
	cp := *rec
	r.records[rec.Key] = &cp
	return nil
}
