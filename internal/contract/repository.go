package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists contracts.
type Repository interface {
	Create(ctx context.Context, c Contract) error
	ListByAccount(ctx context.Context, accountID string) ([]Contract, error)
}

// PostgresRepository stores contracts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed contract repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a contract.
func (r *PostgresRepository) Create(ctx context.Context, c Contract) error {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(c.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO contracts (id, account_id, year, starts_on, ends_on, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, accountID, c.Year, c.StartsOn, c.EndsOn, c.CreatedAt.UTC())
	return err
}

// ListByAccount returns contracts newest year first.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]Contract, error) {
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, account_id, year, starts_on, ends_on, created_at
        FROM contracts WHERE account_id = $1 ORDER BY year DESC, created_at DESC`, acctID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		var (
			c         Contract
			id        uuid.UUID
			acct      uuid.UUID
			createdAt time.Time
		)
		if err := rows.Scan(&id, &acct, &c.Year, &c.StartsOn, &c.EndsOn, &createdAt); err != nil {
			return nil, err
		}
		c.ID = id.String()
		c.AccountID = acct.String()
		c.CreatedAt = createdAt.UTC()
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}
