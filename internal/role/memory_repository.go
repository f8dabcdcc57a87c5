package role

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	roles map[string]Role
}

// NewMemoryRepository builds an in-memory role store.
func NewMemoryRepository() Repository {
	return &memoryRepository{roles: make(map[string]Role)}
}

func (r *memoryRepository) FindOrCreate(_ context.Context, accountID, name string, permissions []string) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := accountID + ":" + name
	if existing, ok := r.roles[key]; ok {
		return existing, nil
	}
	role := Role{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Name:        name,
		Permissions: append([]string(nil), permissions...),
		CreatedAt:   time.Now().UTC(),
	}
	r.roles[key] = role
	return role, nil
}

func (r *memoryRepository) ListByAccount(_ context.Context, accountID string) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var roles []Role
	for _, role := range r.roles {
		if role.AccountID == accountID {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, nil
}
