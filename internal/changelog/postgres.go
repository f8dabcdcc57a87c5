package changelog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRecorder persists changelog entries in PostgreSQL.
type PostgresRecorder struct {
	db *pgxpool.Pool
}

// NewPostgresRecorder constructs a Postgres-backed changelog.
func NewPostgresRecorder(db *pgxpool.Pool) *PostgresRecorder {
	return &PostgresRecorder{db: db}
}

// Record appends an entry; changes are stored as JSONB.
func (r *PostgresRecorder) Record(ctx context.Context, entry Entry) (Entry, error) {
	if err := validate(entry); err != nil {
		return Entry{}, err
	}
	if entry.Changes == nil {
		entry.Changes = map[string]any{}
	}
	id := uuid.New()
	entry.CreatedAt = time.Now().UTC()
	if _, err := r.db.Exec(ctx, `INSERT INTO changelog_entries (id, record_type, record_id, action, changes, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, id, entry.RecordType, entry.RecordID, entry.Action, entry.Changes, entry.CreatedAt); err != nil {
		return Entry{}, err
	}
	entry.ID = id.String()
	return entry, nil
}

// List returns a record's entries ordered by creation time.
func (r *PostgresRecorder) List(ctx context.Context, recordType, recordID string) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, record_type, record_id, action, changes, created_at
        FROM changelog_entries
        WHERE record_type = $1 AND record_id = $2
        ORDER BY created_at ASC, id ASC`, recordType, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			id        uuid.UUID
			createdAt time.Time
		)
		if err := rows.Scan(&id, &e.RecordType, &e.RecordID, &e.Action, &e.Changes, &createdAt); err != nil {
			return nil, err
		}
		e.ID = id.String()
		e.CreatedAt = createdAt.UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
