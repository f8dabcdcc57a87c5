package role

import "context"

// Service manages account roles.
type Service struct {
	repo Repository
}

// NewService creates a role service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// EnsureDefaults creates any missing default roles for the account. It is safe
// to call repeatedly.
func (s *Service) EnsureDefaults(ctx context.Context, accountID string) ([]Role, error) {
	roles := make([]Role, 0, len(Defaults))
	for _, d := range Defaults {
		role, err := s.repo.FindOrCreate(ctx, accountID, d.Name, d.Permissions)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// List returns the roles of an account.
func (s *Service) List(ctx context.Context, accountID string) ([]Role, error) {
	return s.repo.ListByAccount(ctx, accountID)
}
