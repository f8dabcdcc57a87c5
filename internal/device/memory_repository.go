package device

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu   sync.RWMutex
	regs []Registration
}

// NewMemoryRepository builds an in-memory registration store.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (r *memoryRepository) Create(_ context.Context, reg Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg.Payload = append([]byte(nil), reg.Payload...)
	r.regs = append(r.regs, reg)
	return nil
}

func (r *memoryRepository) ListByAccount(_ context.Context, accountID string) ([]Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Registration
	for i := len(r.regs) - 1; i >= 0; i-- {
		if r.regs[i].AccountID == accountID {
			out = append(out, r.regs[i])
		}
	}
	return out, nil
}
