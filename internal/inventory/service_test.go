package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestEnsureDefaultKeepsFirstAddress(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	accountID := uuid.NewString()

	first, err := svc.EnsureDefault(ctx, accountID, Address{Address1: "1 Main St", City: "Boston"})
	if err != nil {
		t.Fatalf("ensure default: %v", err)
	}
	if first.Name != DefaultLocationName {
		t.Fatalf("expected default name, got %s", first.Name)
	}

	second, err := svc.EnsureDefault(ctx, accountID, Address{Address1: "9 Elm St", City: "Denver"})
	if err != nil {
		t.Fatalf("ensure default again: %v", err)
	}
	if second.ID != first.ID || second.City != "Boston" {
		t.Fatalf("default location was replaced: %+v", second)
	}

	locations, err := svc.List(ctx, accountID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(locations) != 1 {
		t.Fatalf("expected 1 location, got %d", len(locations))
	}
}
