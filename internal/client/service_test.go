package client

import (
	"context"
	"errors"
	"testing"
)

func TestServiceCreateAndGet(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "  Acme Corp ", City: "Boston", Country: "US"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	if created.Name != "Acme Corp" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	fetched, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if fetched.City != "Boston" {
		t.Fatalf("expected city Boston, got %s", fetched.City)
	}
}

func TestServiceCreateRequiresName(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.Create(context.Background(), CreateInput{Name: " "}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestServiceGetMissing(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
