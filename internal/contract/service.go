package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service manages account contracts.
type Service struct {
	repo Repository
}

// NewService creates a contract service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create parses the raw columns and stores a contract for the account.
func (s *Service) Create(ctx context.Context, accountID string, cols map[string]string) (Contract, error) {
	c, err := FromColumns(cols)
	if err != nil {
		return Contract{}, err
	}
	c.ID = uuid.NewString()
	c.AccountID = accountID
	c.CreatedAt = time.Now().UTC()
	if err := s.repo.Create(ctx, c); err != nil {
		return Contract{}, err
	}
	return c, nil
}

// List returns the account's contracts.
func (s *Service) List(ctx context.Context, accountID string) ([]Contract, error) {
	return s.repo.ListByAccount(ctx, accountID)
}
