package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no client matches the lookup.
var ErrNotFound = errors.New("client not found")

// Repository persists clients.
type Repository interface {
	Create(ctx context.Context, client Client) error
	Get(ctx context.Context, id string) (Client, error)
}

// PostgresRepository stores clients in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a client record.
func (r *PostgresRepository) Create(ctx context.Context, c Client) error {
	clientID, err := uuid.Parse(c.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO clients (id, name, address, city, state, country, zipcode, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		clientID, c.Name, c.Address, c.City, c.State, c.Country, c.Zipcode, c.CreatedAt.UTC())
	return err
}

// Get fetches a client by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Client, error) {
	clientID, err := uuid.Parse(id)
	if err != nil {
		return Client{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, name, address, city, state, country, zipcode, created_at
        FROM clients WHERE id = $1`, clientID)
	var (
		c         Client
		idVal     uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&idVal, &c.Name, &c.Address, &c.City, &c.State, &c.Country, &c.Zipcode, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, ErrNotFound
		}
		return Client{}, err
	}
	c.ID = idVal.String()
	c.CreatedAt = createdAt.UTC()
	return c, nil
}
