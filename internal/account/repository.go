package account

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository persists accounts.
type Repository interface {
	Create(ctx context.Context, account Account) error
	Get(ctx context.Context, id string) (Account, error)
	FindByName(ctx context.Context, clientID, name string) (Account, error)
	List(ctx context.Context) ([]Account, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// Delete removes an account together with its bootstrapped defaults.
	Delete(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectAccount = `SELECT id, client_id, name, status, timezone, created_at FROM accounts`

// Create inserts a new account. A name clash within the client maps to ErrNameTaken.
func (r *PostgresRepository) Create(ctx context.Context, a Account) error {
	accountID, err := uuid.Parse(a.ID)
	if err != nil {
		return err
	}
	clientID, err := uuid.Parse(a.ClientID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO accounts (id, client_id, name, status, timezone, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, accountID, clientID, a.Name, string(a.Status), a.Timezone, a.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrNameTaken
	}
	return err
}

// Get fetches an account by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Account, error) {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return Account{}, ErrNotFound
	}
	return scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE id = $1`, accountID))
}

// FindByName looks an account up by its client-scoped name.
func (r *PostgresRepository) FindByName(ctx context.Context, clientID, name string) (Account, error) {
	cid, err := uuid.Parse(clientID)
	if err != nil {
		return Account{}, ErrNotFound
	}
	return scanAccount(r.db.QueryRow(ctx, selectAccount+` WHERE client_id = $1 AND name = $2`, cid, name))
}

// List returns every account ordered by name.
func (r *PostgresRepository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, selectAccount+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// UpdateStatus changes an account's status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET status = $1 WHERE id = $2`, string(status), accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the account, its roles and inventory locations in one transaction.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	accountID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM roles WHERE account_id = $1`, accountID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM inventory_locations WHERE account_id = $1`, accountID); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, accountID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func scanAccount(row pgx.Row) (Account, error) {
	var (
		a         Account
		id        uuid.UUID
		clientID  uuid.UUID
		status    string
		createdAt time.Time
	)
	if err := row.Scan(&id, &clientID, &a.Name, &status, &a.Timezone, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	a.ID = id.String()
	a.ClientID = clientID.String()
	a.Status = Status(status)
	a.CreatedAt = createdAt.UTC()
	return a, nil
}
