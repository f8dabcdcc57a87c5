package inventory

import "context"

// Address is the postal address a default location is seeded from.
type Address struct {
	Address1 string
	City     string
	State    string
	Country  string
	Zipcode  string
}

// Service manages inventory locations.
type Service struct {
	repo Repository
}

// NewService creates an inventory service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureDefault creates the account's "default" location from addr unless it
// already exists, in which case the stored location is returned unchanged.
func (s *Service) EnsureDefault(ctx context.Context, accountID string, addr Address) (Location, error) {
	return s.repo.FindOrCreate(ctx, Location{
		AccountID: accountID,
		Name:      DefaultLocationName,
		Address1:  addr.Address1,
		City:      addr.City,
		State:     addr.State,
		Country:   addr.Country,
		Zipcode:   addr.Zipcode,
	})
}

// List returns the account's locations.
func (s *Service) List(ctx context.Context, accountID string) ([]Location, error) {
	return s.repo.ListByAccount(ctx, accountID)
}
