package changelog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemoryRecorder struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewInMemory creates a concurrency-safe in-memory changelog useful for unit tests.
func NewInMemory() Recorder {
	return &inMemoryRecorder{}
}

func (r *inMemoryRecorder) Record(_ context.Context, entry Entry) (Entry, error) {
	if err := validate(entry); err != nil {
		return Entry{}, err
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now().UTC()
	entry.Changes = copyChanges(entry.Changes)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *inMemoryRecorder) List(_ context.Context, recordType, recordID string) ([]Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Entry
	for _, e := range r.entries {
		if e.RecordType == recordType && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}

func copyChanges(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
