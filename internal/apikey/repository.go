package apikey

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists API keys.
type Repository interface {
	Create(ctx context.Context, key Key) error
	FindByPrefix(ctx context.Context, prefix string) (Key, error)
	Revoke(ctx context.Context, accountID, id string, at time.Time) error
}

// PostgresRepository stores API keys in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed key repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a key. A prefix collision maps to ErrPrefixTaken.
func (r *PostgresRepository) Create(ctx context.Context, key Key) error {
	id, err := uuid.Parse(key.ID)
	if err != nil {
		return err
	}
	accountID, err := uuid.Parse(key.AccountID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO api_keys (id, account_id, name, prefix, secret_hash, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, accountID, key.Name, key.Prefix, key.SecretHash, key.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrPrefixTaken
	}
	return err
}

// FindByPrefix loads a key by its public prefix.
func (r *PostgresRepository) FindByPrefix(ctx context.Context, prefix string) (Key, error) {
	var (
		key       Key
		id        uuid.UUID
		accountID uuid.UUID
	)
	err := r.db.QueryRow(ctx, `SELECT id, account_id, name, prefix, secret_hash, created_at, revoked_at
        FROM api_keys WHERE prefix = $1`, prefix).
		Scan(&id, &accountID, &key.Name, &key.Prefix, &key.SecretHash, &key.CreatedAt, &key.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Key{}, ErrNotFound
		}
		return Key{}, err
	}
	key.ID = id.String()
	key.AccountID = accountID.String()
	return key, nil
}

// Revoke marks an active key of the account as revoked.
func (r *PostgresRepository) Revoke(ctx context.Context, accountID, id string, at time.Time) error {
	keyID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `UPDATE api_keys SET revoked_at = $1
        WHERE id = $2 AND account_id = $3 AND revoked_at IS NULL`, at.UTC(), keyID, acctID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
