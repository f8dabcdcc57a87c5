package role

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists account roles.
type Repository interface {
	// FindOrCreate returns the role named name on the account, inserting it
	// with the given permissions when missing. Existing roles keep their permissions.
	FindOrCreate(ctx context.Context, accountID, name string, permissions []string) (Role, error)
	ListByAccount(ctx context.Context, accountID string) ([]Role, error)
}

// PostgresRepository stores roles in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed role repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindOrCreate upserts by (account_id, name) without touching existing rows.
func (r *PostgresRepository) FindOrCreate(ctx context.Context, accountID, name string, permissions []string) (Role, error) {
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return Role{}, err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO roles (id, account_id, name, permissions, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (account_id, name) DO NOTHING`, uuid.New(), acctID, name, permissions, time.Now().UTC())
	if err != nil {
		return Role{}, err
	}

	row := r.db.QueryRow(ctx, `SELECT id, account_id, name, permissions, created_at
        FROM roles WHERE account_id = $1 AND name = $2`, acctID, name)
	return scanRole(row)
}

// ListByAccount returns the account's roles ordered by name.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]Role, error) {
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, account_id, name, permissions, created_at
        FROM roles WHERE account_id = $1 ORDER BY name ASC`, acctID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func scanRole(row pgx.Row) (Role, error) {
	var (
		role      Role
		id        uuid.UUID
		accountID uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &accountID, &role.Name, &role.Permissions, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, errors.New("role not found")
		}
		return Role{}, err
	}
	role.ID = id.String()
	role.AccountID = accountID.String()
	role.CreatedAt = createdAt.UTC()
	return role, nil
}
