package company

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/repository/memory"
)

func ptr[T any](v T) *T { return &v }

func TestTaxIDUniqueAcrossOwners(t *testing.T) {
	svc := NewService(memory.NewStore(time.UTC).Companies, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-1", Input{BusinessName: ptr("Lanka Foods"), TaxID: ptr("  ab   123 ")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.TaxID != "ab 123" || created.TaxIDLower != "ab 123" {
		t.Fatalf("tax id not normalized: %q / %q", created.TaxID, created.TaxIDLower)
	}

	_, err = svc.Create(ctx, "owner-2", Input{BusinessName: ptr("Copycat"), TaxID: ptr("AB 123")})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("same tax id with different case must conflict, got %v", err)
	}

	_, err = svc.Create(ctx, "owner-2", Input{BusinessName: ptr("Copycat"), TaxID: ptr("AB\t 123")})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("same tax id with different whitespace must conflict, got %v", err)
	}

	if _, err := svc.Create(ctx, "owner-2", Input{BusinessName: ptr("Other"), TaxID: ptr("XY-9")}); err != nil {
		t.Fatalf("distinct tax id should be accepted: %v", err)
	}
	if _, err := svc.Update(ctx, "owner-2", Input{TaxID: ptr("ab 123")}); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("update onto a taken tax id must conflict, got %v", err)
	}
	if _, err := svc.Update(ctx, "owner-1", Input{TaxID: ptr("AB 123"), City: ptr("Galle")}); err != nil {
		t.Fatalf("owner keeps its own tax id: %v", err)
	}
}

func TestOneCompanyPerOwner(t *testing.T) {
	svc := NewService(memory.NewStore(time.UTC).Companies, nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "owner-1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found before creation, got %v", err)
	}
	if _, err := svc.Create(ctx, "owner-1", Input{BusinessName: ptr("First"), TaxID: ptr("T1")}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Create(ctx, "owner-1", Input{BusinessName: ptr("Second"), TaxID: ptr("T2")})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second company must conflict, got %v", err)
	}
	if _, err := svc.Create(ctx, "owner-3", Input{TaxID: ptr("T3")}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("missing business name should fail validation, got %v", err)
	}
}
