package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opshub/opshub/internal/changelog"
	"github.com/opshub/opshub/internal/client"
	"github.com/opshub/opshub/internal/inventory"
	"github.com/opshub/opshub/internal/logging"
	"github.com/opshub/opshub/internal/notification"
	"github.com/opshub/opshub/internal/role"
)

const recordType = "account"

var (
	ErrNotFound      = errors.New("account not found")
	ErrNameRequired  = errors.New("name can't be blank")
	ErrInvalidName   = errors.New("name only allows lower case letters, numbers and hyphens")
	ErrNameTaken     = errors.New("name has already been taken")
	ErrInvalidStatus = errors.New("invalid account status")
)

// Service manages the account lifecycle, including the default records every
// account is created with.
type Service struct {
	repo      Repository
	clients   *client.Service
	roles     *role.Service
	locations *inventory.Service
	changes   changelog.Recorder
	notifier  notification.Notifier
	logger    *slog.Logger
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo      Repository
	Clients   *client.Service
	Roles     *role.Service
	Locations *inventory.Service
	Changes   changelog.Recorder
	Notifier  notification.Notifier
	Logger    *slog.Logger
}

// NewService creates an account service.
func NewService(d Deps) *Service {
	return &Service{
		repo:      d.Repo,
		clients:   d.Clients,
		roles:     d.Roles,
		locations: d.Locations,
		changes:   d.Changes,
		notifier:  d.Notifier,
		logger:    logging.WithComponent(d.Logger, "account"),
	}
}

// CreateInput captures data required to create an account.
type CreateInput struct {
	ClientID string
	Name     string
	Timezone string
}

// Create normalizes and validates the name, stores the account and then
// bootstraps its default roles and inventory location.
func (s *Service) Create(ctx context.Context, input CreateInput) (Account, error) {
	owner, err := s.clients.Get(ctx, input.ClientID)
	if err != nil {
		return Account{}, err
	}

	name := NormalizeName(input.Name)
	if err := ValidateName(name); err != nil {
		return Account{}, err
	}
	if _, err := s.repo.FindByName(ctx, owner.ID, name); err == nil {
		return Account{}, ErrNameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Account{}, err
	}

	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = DefaultTimezone
	}

	a := Account{
		ID:        uuid.NewString(),
		ClientID:  owner.ID,
		Name:      name,
		Status:    StatusActive,
		Timezone:  timezone,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Account{}, err
	}

	if err := s.bootstrap(ctx, a, owner); err != nil {
		err = fmt.Errorf("bootstrap account %s: %w", a.ID, err)
		// roll back so the name can be reused by a retry
		if delErr := s.repo.Delete(context.WithoutCancel(ctx), a.ID); delErr != nil {
			s.logger.Error("account rollback failed", slog.String("account_id", a.ID), slog.Any("error", delErr))
			return Account{}, errors.Join(err, delErr)
		}
		return Account{}, err
	}

	s.record(ctx, a.ID, changelog.ActionCreate, map[string]any{
		"client_id": a.ClientID,
		"name":      a.Name,
		"status":    string(a.Status),
		"timezone":  a.Timezone,
	})

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindAccountCreated,
			Destination: owner.ID,
			Body:        fmt.Sprintf("Account %s created for %s", a.Name, owner.Name),
		})
	}

	s.logger.Info("account created",
		slog.String("account_id", a.ID),
		slog.String("client_id", a.ClientID),
		slog.String("name", a.Name),
	)
	return a, nil
}

func (s *Service) bootstrap(ctx context.Context, a Account, owner client.Client) error {
	if s.roles != nil {
		if _, err := s.roles.EnsureDefaults(ctx, a.ID); err != nil {
			return fmt.Errorf("default roles: %w", err)
		}
	}
	if s.locations != nil {
		if _, err := s.locations.EnsureDefault(ctx, a.ID, inventory.Address{
			Address1: owner.Address,
			City:     owner.City,
			State:    owner.State,
			Country:  owner.Country,
			Zipcode:  owner.Zipcode,
		}); err != nil {
			return fmt.Errorf("default inventory location: %w", err)
		}
	}
	return nil
}

// Get retrieves an account.
func (s *Service) Get(ctx context.Context, id string) (Account, error) {
	return s.repo.Get(ctx, id)
}

// Collection lists every account labelled "<client name> - <account name>",
// ordered by account name.
func (s *Service) Collection(ctx context.Context) ([]Summary, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	clientNames := make(map[string]string)
	out := make([]Summary, 0, len(accounts))
	for _, a := range accounts {
		name, ok := clientNames[a.ClientID]
		if !ok {
			c, err := s.clients.Get(ctx, a.ClientID)
			if err != nil {
				return nil, fmt.Errorf("client for account %s: %w", a.ID, err)
			}
			name = c.Name
			clientNames[a.ClientID] = name
		}
		out = append(out, Summary{ID: a.ID, Label: name + " - " + a.Name})
	}
	return out, nil
}

// UpdateStatus moves an account to a new status and logs the change.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Account, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Account{}, err
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return Account{}, err
	}
	if a.Status == status {
		return a, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return Account{}, err
	}

	s.record(ctx, id, changelog.ActionUpdate, map[string]any{
		"status": []string{string(a.Status), string(status)},
	})
	a.Status = status
	return a, nil
}

// History returns the account's changelog.
func (s *Service) History(ctx context.Context, id string) ([]changelog.Entry, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.changes == nil {
		return nil, nil
	}
	return s.changes.List(ctx, recordType, id)
}

// record is best effort: a changelog failure never undoes the mutation.
func (s *Service) record(ctx context.Context, id, action string, changes map[string]any) {
	if s.changes == nil {
		return
	}
	if _, err := s.changes.Record(ctx, changelog.Entry{
		RecordType: recordType,
		RecordID:   id,
		Action:     action,
		Changes:    changes,
	}); err != nil {
		s.logger.Warn("changelog record failed", slog.String("account_id", id), slog.Any("error", err))
	}
}
