package device

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists device registrations.
type Repository interface {
	Create(ctx context.Context, reg Registration) error
	ListByAccount(ctx context.Context, accountID string) ([]Registration, error)
}

// PostgresRepository stores registrations in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed registration repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a registration.
func (r *PostgresRepository) Create(ctx context.Context, reg Registration) error {
	id, err := uuid.Parse(reg.ID)
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(reg.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO device_registrations (id, account_id, vendor, udid, payload, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, accountID, reg.Vendor, reg.UDID, []byte(reg.Payload), reg.CreatedAt.UTC())
	return err
}

// ListByAccount returns the account's registrations, newest first.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]Registration, error) {
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, account_id, vendor, udid, payload, created_at
        FROM device_registrations WHERE account_id = $1 ORDER BY created_at DESC`, acctID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []Registration
	for rows.Next() {
		var (
			reg       Registration
			id        uuid.UUID
			acct      uuid.UUID
			payload   []byte
			createdAt time.Time
		)
		if err := rows.Scan(&id, &acct, &reg.Vendor, &reg.UDID, &payload, &createdAt); err != nil {
			return nil, err
		}
		reg.ID = id.String()
		reg.AccountID = acct.String()
		reg.Payload = payload
		reg.CreatedAt = createdAt.UTC()
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}
