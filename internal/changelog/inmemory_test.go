package changelog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryRecorder_RecordAndList(t *testing.T) {
	r := NewInMemory()
	ctx := context.Background()

	changes := map[string]any{"status": "active"}
	if _, err := r.Record(ctx, Entry{RecordType: "account", RecordID: "a", Action: ActionCreate, Changes: changes}); err != nil {
		t.Fatalf("record create: %v", err)
	}
	changes["status"] = "mutated after record"

	if _, err := r.Record(ctx, Entry{RecordType: "account", RecordID: "a", Action: ActionUpdate}); err != nil {
		t.Fatalf("record update: %v", err)
	}
	if _, err := r.Record(ctx, Entry{RecordType: "account", RecordID: "b", Action: ActionCreate}); err != nil {
		t.Fatalf("record other: %v", err)
	}

	entries, err := r.List(ctx, "account", "a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != ActionCreate || entries[1].Action != ActionUpdate {
		t.Fatalf("unexpected order: %+v", entries)
	}
	if entries[0].Changes["status"] != "active" {
		t.Fatalf("stored changes aliased caller map: %v", entries[0].Changes)
	}
}

func TestInMemoryRecorder_RejectsIncompleteEntry(t *testing.T) {
	r := NewInMemory()
	if _, err := r.Record(context.Background(), Entry{RecordType: "account"}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestInMemoryRecorder_ConcurrentRecords(t *testing.T) {
	r := NewInMemory()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.Record(ctx, Entry{RecordType: "device", RecordID: "d", Action: fmt.Sprintf("update-%d", i)}); err != nil {
				t.Errorf("record %d failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	entries, _ := r.List(ctx, "device", "d")
	if len(entries) != workers {
		t.Fatalf("expected %d entries, got %d", workers, len(entries))
	}
}
