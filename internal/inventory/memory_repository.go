package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu        sync.RWMutex
	locations map[string]Location
}

// NewMemoryRepository builds an in-memory location store.
func NewMemoryRepository() Repository {
	return &memoryRepository{locations: make(map[string]Location)}
}

func (r *memoryRepository) FindOrCreate(_ context.Context, loc Location) (Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := loc.AccountID + ":" + loc.Name
	if existing, ok := r.locations[key]; ok {
		return existing, nil
	}
	loc.ID = uuid.NewString()
	loc.CreatedAt = time.Now().UTC()
	r.locations[key] = loc
	return loc, nil
}

func (r *memoryRepository) ListByAccount(_ context.Context, accountID string) ([]Location, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var locations []Location
	for _, loc := range r.locations {
		if loc.AccountID == accountID {
			locations = append(locations, loc)
		}
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].Name < locations[j].Name })
	return locations, nil
}
