package customers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/repository/memory"
)

func ptr[T any](v T) *T { return &v }

func TestCustomersAreOwnerScoped(t *testing.T) {
	svc := NewService(memory.NewStore(time.UTC).Customers, nil)
	ctx := context.Background()

	alice, err := svc.Create(ctx, "owner-1", Input{Name: ptr("Alice"), Email: ptr(" Alice@Example.com ")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if alice.Email != "alice@example.com" {
		t.Fatalf("email = %q", alice.Email)
	}
	if _, err := svc.Create(ctx, "owner-2", Input{Name: ptr("Bob")}); err != nil {
		t.Fatal(err)
	}

	mine, err := svc.List(ctx, "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != alice.ID {
		t.Fatalf("owner-1 sees %+v", mine)
	}

	if _, err := svc.Update(ctx, "owner-2", alice.ID, Input{City: ptr("Kandy")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cross-owner update should be not found, got %v", err)
	}
	if _, err := svc.Update(ctx, "owner-1", alice.ID, Input{Name: ptr("  ")}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("blank name should fail validation, got %v", err)
	}

	updated, err := svc.Update(ctx, "owner-1", alice.ID, Input{City: ptr("Kandy")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Alice" || updated.City != "Kandy" {
		t.Fatalf("unexpected customer %+v", updated)
	}

	if err := svc.Delete(ctx, "owner-2", alice.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("cross-owner delete should be not found, got %v", err)
	}
}
