package invoicing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository/memory"
)

func price(v float64) *float64 { return &v }

func TestComputeAppliesTaxThenDiscount(t *testing.T) {
	calc := NewCalculator(memory.NewStore(time.UTC).Products)

	totals, err := calc.Compute(context.Background(), "owner-1", []models.LineItemInput{
		{Description: "Consulting", Quantity: 1, Price: price(1000)},
	}, 10, 50)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if totals.Subtotal != 1000 || totals.TaxAmount != 100 || totals.DiscountAmount != 500 || totals.Total != 600 {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if totals.Currency != "LKR" {
		t.Fatalf("currency = %q", totals.Currency)
	}
}

func TestComputeClampsRatesAndFloorsTotal(t *testing.T) {
	calc := NewCalculator(memory.NewStore(time.UTC).Products)
	items := []models.LineItemInput{{Description: "Box", Quantity: 2, Price: price(25)}}

	tests := []struct {
		name          string
		tax, discount float64
		wantTaxRate   float64
		wantDiscRate  float64
		wantTotal     float64
	}{
		{name: "over 100 clamps", tax: 250, discount: 0, wantTaxRate: 100, wantTotal: 100},
		{name: "negative clamps to zero", tax: -5, discount: -5, wantTotal: 50},
		{name: "nan is zero", tax: math.NaN(), discount: math.Inf(1), wantTotal: 50},
		{name: "full discount", tax: 0, discount: 100, wantDiscRate: 100, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := calc.Compute(context.Background(), "owner-1", items, tt.tax, tt.discount)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if totals.TaxRate != tt.wantTaxRate || totals.DiscountRate != tt.wantDiscRate {
				t.Fatalf("rates = %v/%v, want %v/%v", totals.TaxRate, totals.DiscountRate, tt.wantTaxRate, tt.wantDiscRate)
			}
			if totals.Total != tt.wantTotal || totals.Total < 0 {
				t.Fatalf("total = %v, want %v", totals.Total, tt.wantTotal)
			}
		})
	}
}

func TestComputeRoundsToCents(t *testing.T) {
	calc := NewCalculator(memory.NewStore(time.UTC).Products)

	totals, err := calc.Compute(context.Background(), "owner-1", []models.LineItemInput{
		{Description: "Thread", Quantity: 3, Price: price(0.1)},
	}, 7.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if totals.Subtotal != 0.3 || totals.TaxAmount != 0.02 || totals.Total != 0.32 {
		t.Fatalf("unexpected rounding %+v", totals)
	}
}

func TestComputeSumsBeforeRounding(t *testing.T) {
	calc := NewCalculator(memory.NewStore(time.UTC).Products)

	tests := []struct {
		name         string
		items        []models.LineItemInput
		wantLine     float64
		wantSubtotal float64
	}{
		{
			name: "half cents",
			items: []models.LineItemInput{
				{Description: "Stamp", Quantity: 1, Price: price(0.125)},
				{Description: "Stamp", Quantity: 1, Price: price(0.125)},
			},
			wantLine:     0.13,
			wantSubtotal: 0.25,
		},
		{
			name: "fractional quantities",
			items: []models.LineItemInput{
				{Description: "Rice", Quantity: 0.5, Price: price(0.01)},
				{Description: "Rice", Quantity: 0.5, Price: price(0.01)},
				{Description: "Rice", Quantity: 0.5, Price: price(0.01)},
			},
			wantLine:     0.01,
			wantSubtotal: 0.02,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := calc.Compute(context.Background(), "owner-1", tt.items, 0, 0)
			if err != nil {
				t.Fatalf("Compute: %v", err)
			}
			if totals.Items[0].LineTotal != tt.wantLine {
				t.Fatalf("line total = %v, want %v", totals.Items[0].LineTotal, tt.wantLine)
			}
			if totals.Subtotal != tt.wantSubtotal || totals.Total != tt.wantSubtotal {
				t.Fatalf("subtotal/total = %v/%v, want %v", totals.Subtotal, totals.Total, tt.wantSubtotal)
			}
		})
	}
}

func TestComputeResolvesOwnedProducts(t *testing.T) {
	store := memory.NewStore(time.UTC)
	ctx := context.Background()

	tea := &models.Product{OwnerID: "owner-1", Name: "Tea", Price: 450}
	if err := store.Products.Create(ctx, tea); err != nil {
		t.Fatal(err)
	}
	foreign := &models.Product{OwnerID: "owner-2", Name: "Coffee", Price: 900}
	if err := store.Products.Create(ctx, foreign); err != nil {
		t.Fatal(err)
	}

	calc := NewCalculator(store.Products)

	totals, err := calc.Compute(ctx, "owner-1", []models.LineItemInput{
		{ProductID: tea.ID, Quantity: 2},
		{ProductID: tea.ID, Description: "Tea (gift)", Quantity: 1, Price: price(0), Unit: "KG"},
	}, 0, 0)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	first, second := totals.Items[0], totals.Items[1]
	if first.Description != "Tea" || first.UnitPrice != 450 || first.LineTotal != 900 || first.Unit != models.UnitNumber {
		t.Fatalf("product defaults not applied: %+v", first)
	}
	if second.Description != "Tea (gift)" || second.UnitPrice != 0 || second.Unit != models.UnitKilogram {
		t.Fatalf("explicit values should win: %+v", second)
	}
	if totals.Subtotal != 900 {
		t.Fatalf("subtotal = %v", totals.Subtotal)
	}

	_, err = calc.Compute(ctx, "owner-1", []models.LineItemInput{{ProductID: foreign.ID, Quantity: 1}}, 0, 0)
	if !errors.Is(err, apperr.ErrNotFound) || apperr.Message(err) != "Product not found or not owned by user" {
		t.Fatalf("foreign product should not resolve, got %v", err)
	}
}

func TestComputeValidation(t *testing.T) {
	calc := NewCalculator(memory.NewStore(time.UTC).Products)

	tests := []struct {
		name  string
		items []models.LineItemInput
		msg   string
	}{
		{name: "no items", items: nil, msg: "At least one line item is required"},
		{name: "zero quantity", items: []models.LineItemInput{{Description: "A", Price: price(1)}}, msg: "Quantity must be greater than zero"},
		{name: "no description", items: []models.LineItemInput{{Quantity: 1, Price: price(1)}}, msg: "Description is required for each line item"},
		{name: "no price", items: []models.LineItemInput{{Description: "A", Quantity: 1}}, msg: "Invalid price on item"},
		{name: "negative price", items: []models.LineItemInput{{Description: "A", Quantity: 1, Price: price(-1)}}, msg: "Invalid price on item"},
		{name: "bad unit", items: []models.LineItemInput{{Description: "A", Quantity: 1, Price: price(1), Unit: "stone"}}, msg: "Invalid unit on item"},
		{
			name: "first invalid item wins",
			items: []models.LineItemInput{
				{Description: "A", Quantity: 1, Price: price(1), Unit: "stone"},
				{Description: "B", Quantity: 0, Price: price(1)},
			},
			msg: "Invalid unit on item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Compute(context.Background(), "owner-1", tt.items, 0, 0)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := apperr.Message(err); got != tt.msg {
				t.Fatalf("message = %q, want %q", got, tt.msg)
			}
		})
	}
}
