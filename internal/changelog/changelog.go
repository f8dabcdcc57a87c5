package changelog

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidEntry is returned when an entry lacks its record reference or action.
var ErrInvalidEntry = errors.New("changelog entry requires record type, record id and action")

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// Entry is one append-only record of a mutation.
type Entry struct {
	ID         string
	RecordType string
	RecordID   string
	Action     string
	Changes    map[string]any
	CreatedAt  time.Time
}

// Recorder defines the contract implemented by changelog backends (e.g. Postgres).
type Recorder interface {
	Record(ctx context.Context, entry Entry) (Entry, error)
	// List returns a record's entries, oldest first.
	List(ctx context.Context, recordType, recordID string) ([]Entry, error)
}

func validate(entry Entry) error {
	if entry.RecordType == "" || entry.RecordID == "" || entry.Action == "" {
		return ErrInvalidEntry
	}
	return nil
}
