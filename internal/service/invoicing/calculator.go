package invoicing

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
)

// ProductLookup resolves product references for a single owner.
type ProductLookup interface {
	FindOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]models.Product, error)
}

// Calculator resolves line items and computes invoice totals. Amounts are
// computed in decimal and rounded to two places.
type Calculator struct {
	products ProductLookup
}

// NewCalculator builds a calculator resolving references through products.
func NewCalculator(products ProductLookup) *Calculator {
	return &Calculator{products: products}
}

var hundred = decimal.NewFromInt(100)

func finiteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// clampRate bounds a percentage to [0, 100]. Non-finite rates become 0.
func clampRate(rate float64) float64 {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0
	}
	return math.Min(math.Max(rate, 0), 100)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// Compute validates items in order and returns the resolved items with totals.
// The first invalid item fails the whole computation.
func (c *Calculator) Compute(ctx context.Context, ownerID string, items []models.LineItemInput, taxRate, discountRate float64) (models.Totals, error) {
	if len(items) == 0 {
		return models.Totals{}, apperr.Validation("At least one line item is required")
	}

	products, err := c.lookup(ctx, ownerID, items)
	if err != nil {
		return models.Totals{}, err
	}

	resolved := make([]models.LineItem, 0, len(items))
	subtotal := decimal.Zero
	for _, in := range items {
		if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity <= 0 {
			return models.Totals{}, apperr.Validation("Quantity must be greater than zero")
		}

		description := strings.TrimSpace(in.Description)
		price := math.NaN()
		if in.Price != nil {
			price = *in.Price
		}

		productID := strings.TrimSpace(in.ProductID)
		if productID != "" {
			product, ok := products[productID]
			if !ok {
				return models.Totals{}, apperr.NotFound("Product not found or not owned by user")
			}
			if description == "" {
				description = product.Name
			}
			if !finiteNonNegative(price) {
				price = product.Price
			}
		}

		if description == "" {
			return models.Totals{}, apperr.Validation("Description is required for each line item")
		}
		if !finiteNonNegative(price) {
			return models.Totals{}, apperr.Validation("Invalid price on item")
		}

		unit := models.Unit(strings.ToLower(strings.TrimSpace(in.Unit)))
		if unit == "" {
			unit = models.UnitNumber
		}
		if !unit.Valid() {
			return models.Totals{}, apperr.Validation("Invalid unit on item")
		}

		// Line totals stay exact in the subtotal and are rounded only for display.
		lineTotal := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(in.Quantity))
		subtotal = subtotal.Add(lineTotal)

		resolved = append(resolved, models.LineItem{
			ProductID:   productID,
			Description: description,
			Quantity:    in.Quantity,
			UnitPrice:   price,
			Unit:        unit,
			LineTotal:   money(lineTotal),
		})
	}

	taxRate = clampRate(taxRate)
	discountRate = clampRate(discountRate)
	taxAmount := subtotal.Mul(decimal.NewFromFloat(taxRate)).Div(hundred).Round(2)
	discountAmount := subtotal.Mul(decimal.NewFromFloat(discountRate)).Div(hundred).Round(2)

	total := subtotal.Add(taxAmount).Sub(discountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return models.Totals{
		Items:          resolved,
		Subtotal:       money(subtotal),
		TaxRate:        taxRate,
		TaxAmount:      money(taxAmount),
		DiscountRate:   discountRate,
		DiscountAmount: money(discountAmount),
		Total:          money(total),
		Currency:       models.Currency,
	}, nil
}

// lookup fetches the referenced products that belong to ownerID, keyed by id.
func (c *Calculator) lookup(ctx context.Context, ownerID string, items []models.LineItemInput) (map[string]models.Product, error) {
	seen := make(map[string]struct{})
	var ids []string
	for _, in := range items {
		id := strings.TrimSpace(in.ProductID)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	byID := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	products, err := c.products.FindOwnedByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("load line item products: %w", err)
	}
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID, nil
}
