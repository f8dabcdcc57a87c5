package apikey

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu       sync.RWMutex
	byPrefix map[string]Key
}

// NewMemoryRepository builds an in-memory key store.
func NewMemoryRepository() Repository {
	return &memoryRepository{byPrefix: make(map[string]Key)}
}

func (r *memoryRepository) Create(_ context.Context, key Key) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byPrefix[key.Prefix]; exists {
		return ErrPrefixTaken
	}
	r.byPrefix[key.Prefix] = key
	return nil
}

func (r *memoryRepository) FindByPrefix(_ context.Context, prefix string) (Key, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.byPrefix[prefix]
	if !ok {
		return Key{}, ErrNotFound
	}
	return key, nil
}

func (r *memoryRepository) Revoke(_ context.Context, accountID, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for prefix, key := range r.byPrefix {
		if key.ID != id || key.AccountID != accountID || key.Revoked() {
			continue
		}
		revokedAt := at.UTC()
		key.RevokedAt = &revokedAt
		r.byPrefix[prefix] = key
		return nil
	}
	return ErrNotFound
}
