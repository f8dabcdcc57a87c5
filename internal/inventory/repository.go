package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists inventory locations.
type Repository interface {
	// FindOrCreate returns the location with the same (AccountID, Name),
	// inserting loc when none exists.
	FindOrCreate(ctx context.Context, loc Location) (Location, error)
	ListByAccount(ctx context.Context, accountID string) ([]Location, error)
}

// PostgresRepository stores locations in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed location repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectLocation = `SELECT id, account_id, name, address1, city, state, country, zipcode, created_at
        FROM inventory_locations`

// FindOrCreate upserts by (account_id, name) leaving existing rows untouched.
func (r *PostgresRepository) FindOrCreate(ctx context.Context, loc Location) (Location, error) {
	acctID, err := uuid.Parse(loc.AccountID)
	if err != nil {
		return Location{}, err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO inventory_locations
        (id, account_id, name, address1, city, state, country, zipcode, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (account_id, name) DO NOTHING`,
		uuid.New(), acctID, loc.Name, loc.Address1, loc.City, loc.State, loc.Country, loc.Zipcode, time.Now().UTC())
	if err != nil {
		return Location{}, err
	}
	row := r.db.QueryRow(ctx, selectLocation+` WHERE account_id = $1 AND name = $2`, acctID, loc.Name)
	return scanLocation(row)
}

// ListByAccount returns the account's locations ordered by name.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]Location, error) {
	acctID, err := uuid.Parse(accountID)
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, selectLocation+` WHERE account_id = $1 ORDER BY name ASC`, acctID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func scanLocation(row pgx.Row) (Location, error) {
	var (
		loc       Location
		id        uuid.UUID
		accountID uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &accountID, &loc.Name, &loc.Address1, &loc.City, &loc.State, &loc.Country, &loc.Zipcode, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Location{}, errors.New("inventory location not found")
		}
		return Location{}, err
	}
	loc.ID = id.String()
	loc.AccountID = accountID.String()
	loc.CreatedAt = createdAt.UTC()
	return loc, nil
}
