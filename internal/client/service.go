package client

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNameRequired is returned when a client is created without a name.
var ErrNameRequired = errors.New("client name is required")

// Service manages tenant clients.
type Service struct {
	repo Repository
}

// NewService builds a client service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput captures data required to create a client.
type CreateInput struct {
	Name    string
	Address string
	City    string
	State   string
	Country string
	Zipcode string
}

// Create registers a new client.
func (s *Service) Create(ctx context.Context, input CreateInput) (Client, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Client{}, ErrNameRequired
	}

	c := Client{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   strings.TrimSpace(input.Address),
		City:      strings.TrimSpace(input.City),
		State:     strings.TrimSpace(input.State),
		Country:   strings.TrimSpace(input.Country),
		Zipcode:   strings.TrimSpace(input.Zipcode),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Client{}, err
	}
	return c, nil
}

// Get retrieves a client.
func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	return s.repo.Get(ctx, id)
}
