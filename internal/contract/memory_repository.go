package contract

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu        sync.RWMutex
	contracts []Contract
}

// NewMemoryRepository builds an in-memory contract store.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, c Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = append(r.contracts, c)
	return nil
}

func (r *memoryRepository) ListByAccount(_ context.Context, accountID string) ([]Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Contract
	for _, c := range r.contracts {
		if c.AccountID == accountID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}
