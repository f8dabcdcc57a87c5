package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opshub/opshub/internal/account"
	"github.com/opshub/opshub/internal/changelog"
	"github.com/opshub/opshub/internal/kaiterra"
	"github.com/opshub/opshub/internal/logging"
	"github.com/opshub/opshub/internal/notification"
)

const recordType = "device_registration"

// ErrAccountInactive is returned when a non-active account tries to register a device.
var ErrAccountInactive = errors.New("account is not active")

// Accounts resolves the account a registration is made for.
type Accounts interface {
	Get(ctx context.Context, id string) (account.Account, error)
}

// Registrar performs the vendor registration.
type Registrar interface {
	Register(ctx context.Context, req kaiterra.Request) (kaiterra.Result, error)
}

// Deps groups the collaborators of Service.
type Deps struct {
	Repo      Repository
	Accounts  Accounts
	Registrar Registrar
	Changes   changelog.Recorder
	Notifier  notification.Notifier
	Logger    *slog.Logger
}

// Service provisions devices for accounts.
type Service struct {
	repo      Repository
	accounts  Accounts
	registrar Registrar
	changes   changelog.Recorder
	notifier  notification.Notifier
	logger    *slog.Logger
}

// NewService creates a device service.
func NewService(d Deps) *Service {
	return &Service{
		repo:      d.Repo,
		accounts:  d.Accounts,
		registrar: d.Registrar,
		changes:   d.Changes,
		notifier:  d.Notifier,
		logger:    logging.WithComponent(d.Logger, "device"),
	}
}

// RegisterKaiterra registers the UDID on the customer's Kaiterra account and
// keeps a record of the vendor's reply. Vendor failures are returned as the
// registrar's *kaiterra.Error, unwrapped.
func (s *Service) RegisterKaiterra(ctx context.Context, accountID string, req kaiterra.Request) (Registration, error) {
	a, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return Registration{}, err
	}
	if !a.Active() {
		return Registration{}, ErrAccountInactive
	}

	res, err := s.registrar.Register(ctx, req)
	if err != nil {
		return Registration{}, err
	}

	reg := Registration{
		ID:        uuid.NewString(),
		AccountID: a.ID,
		Vendor:    VendorKaiterra,
		UDID:      req.UDID,
		Payload:   res.Payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, reg); err != nil {
		return Registration{}, fmt.Errorf("store registration: %w", err)
	}

	s.record(ctx, reg)

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindDeviceRegistered,
			Destination: a.ID,
			Body:        fmt.Sprintf("Device %s registered with %s", reg.UDID, reg.Vendor),
			Attributes: map[string]string{
				"account":         a.Name,
				"registration_id": reg.ID,
			},
		})
	}

	s.logger.Info("device registered",
		slog.String("account_id", a.ID),
		slog.String("vendor", reg.Vendor),
		slog.String("udid", reg.UDID),
	)
	return reg, nil
}

// List returns the account's registrations.
func (s *Service) List(ctx context.Context, accountID string) ([]Registration, error) {
	if _, err := s.accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	return s.repo.ListByAccount(ctx, accountID)
}

func (s *Service) record(ctx context.Context, reg Registration) {
	if s.changes == nil {
		return
	}
	if _, err := s.changes.Record(ctx, changelog.Entry{
		RecordType: recordType,
		RecordID:   reg.ID,
		Action:     changelog.ActionCreate,
		Changes: map[string]any{
			"account_id": reg.AccountID,
			"vendor":     reg.Vendor,
			"udid":       reg.UDID,
		},
	}); err != nil {
		s.logger.Warn("changelog record failed", slog.String("registration_id", reg.ID), slog.Any("error", err))
	}
}
