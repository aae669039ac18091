package inventory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/repository/memory"
)

func ptr[T any](v T) *T { return &v }

func newTestService() *Service {
	return NewService(memory.NewStore(time.UTC).Inventory, nil)
}

func TestCreateDerivesProfit(t *testing.T) {
	svc := newTestService()

	item, err := svc.Create(context.Background(), "owner-1", CreateInput{
		ProductName:   "  Basmati Rice ",
		Quantity:      10,
		PurchasePrice: 200,
		SellingPrice:  250,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if item.ProductName != "Basmati Rice" || item.ProductNameLower != "basmati rice" {
		t.Fatalf("unexpected names %q / %q", item.ProductName, item.ProductNameLower)
	}
	if item.Profit != 50 || item.ProfitPct != 25 {
		t.Fatalf("profit = %v (%v%%), want 50 (25%%)", item.Profit, item.ProfitPct)
	}
	if item.MinQuantity != 0 {
		t.Fatalf("min quantity should default to 0, got %v", item.MinQuantity)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		name string
		in   CreateInput
	}{
		{name: "missing name", in: CreateInput{Quantity: 1}},
		{name: "zero quantity", in: CreateInput{ProductName: "Salt"}},
		{name: "negative purchase price", in: CreateInput{ProductName: "Salt", Quantity: 1, PurchasePrice: -1}},
		{name: "infinite selling price", in: CreateInput{ProductName: "Salt", Quantity: 1, SellingPrice: math.Inf(1)}},
		{name: "negative min quantity", in: CreateInput{ProductName: "Salt", Quantity: 1, MinQuantity: ptr(-3.0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "owner-1", tt.in); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateIsPartialAndRecomputes(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	item, err := svc.Create(ctx, "owner-1", CreateInput{ProductName: "Sugar", Quantity: 5, PurchasePrice: 100, SellingPrice: 120})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.Update(ctx, "owner-1", item.ID, UpdateInput{SellingPrice: ptr(150.0), Quantity: ptr(0.0)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ProductName != "Sugar" || updated.PurchasePrice != 100 {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
	if updated.Profit != 50 || updated.ProfitPct != 50 || updated.Quantity != 0 {
		t.Fatalf("unexpected derived fields: %+v", updated)
	}

	if _, err := svc.Update(ctx, "owner-1", item.ID, UpdateInput{PurchasePrice: ptr(-1.0)}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Update(ctx, "owner-2", item.ID, UpdateInput{Variant: ptr("1kg")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign owner should see not found, got %v", err)
	}
}

func TestSearchLowStockAndDelete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	rice, _ := svc.Create(ctx, "owner-1", CreateInput{ProductName: "Rice", Quantity: 2, MinQuantity: ptr(5.0)})
	if _, err := svc.Create(ctx, "owner-1", CreateInput{ProductName: "Ricotta", Quantity: 9, MinQuantity: ptr(1.0)}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, "owner-1", CreateInput{ProductName: "Flour", Quantity: 1}); err != nil {
		t.Fatal(err)
	}

	found, err := svc.List(ctx, "owner-1", "RIC")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 {
		t.Fatalf("prefix search returned %d items, want 2", len(found))
	}

	low, err := svc.LowStock(ctx, "owner-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != 1 || low[0].ID != rice.ID {
		t.Fatalf("low stock = %+v", low)
	}

	if err := svc.Delete(ctx, "owner-2", rice.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign delete should be not found, got %v", err)
	}
	if err := svc.Delete(ctx, "owner-1", rice.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, "owner-1", rice.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("deleted item still found: %v", err)
	}
}
