package repository

import (
	"context"
	"sync"
)

// memoryRepository implements StateRepository with an in-process map.
type memoryRepository struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryRepository creates an empty in-memory state repository.
func NewMemoryRepository() StateRepository {
	return &memoryRepository{
		values: make(map[string][]byte),
	}
}

func (r *memoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.values[key]
	if !ok {
		return nil, ErrNotFound
	}

	// Callers may mutate what they get back
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (r *memoryRepository) Set(ctx context.Context, key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	r.mu.Lock()
	r.values[key] = stored
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	delete(r.values, key)
	r.mu.Unlock()
	return nil
}
