package client

import (
	"context"
	"errors"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewMemoryRepository constructs an in-memory repository for tests and development.
func NewMemoryRepository() Repository {
	return &memoryRepository{clients: make(map[string]Client)}
}

func (r *memoryRepository) Create(_ context.Context, c Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c.ID]; exists {
		return errors.New("client exists")
	}
	r.clients[c.ID] = c
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	if !ok {
		return Client{}, ErrNotFound
	}
	return c, nil
}
