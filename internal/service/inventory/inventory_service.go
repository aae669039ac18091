// Package inventory manages stocked items and their derived profit figures.
package inventory

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

// CreateInput describes a new stock item.
type CreateInput struct {
	CompanyName   string   `json:"companyName"`
	ProductName   string   `json:"productName"`
	Variant       string   `json:"variant"`
	Quantity      float64  `json:"quantity"`
	PurchasePrice float64  `json:"purchasePrice"`
	SellingPrice  float64  `json:"sellingPrice"`
	MinQuantity   *float64 `json:"minQuantity"`
	PurchaseUnit  string   `json:"purchaseUnit"`
}

// UpdateInput carries the fields to change. Nil fields are left untouched.
type UpdateInput struct {
	CompanyName   *string  `json:"companyName"`
	ProductName   *string  `json:"productName"`
	Variant       *string  `json:"variant"`
	Quantity      *float64 `json:"quantity"`
	PurchasePrice *float64 `json:"purchasePrice"`
	SellingPrice  *float64 `json:"sellingPrice"`
	MinQuantity   *float64 `json:"minQuantity"`
	PurchaseUnit  *string  `json:"purchaseUnit"`
}

// Service validates inventory changes before they reach the repository.
type Service struct {
	repo   repository.InventoryRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new inventory service instance.
func NewService(repo repository.InventoryRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(in.ProductName)
	switch {
	case name == "":
		return nil, apperr.Validation("Product name is required")
	case !nonNegative(in.Quantity) || in.Quantity == 0:
		return nil, apperr.Validation("Quantity must be greater than zero")
	case !nonNegative(in.PurchasePrice):
		return nil, apperr.Validation("Purchase price must be zero or more")
	case !nonNegative(in.SellingPrice):
		return nil, apperr.Validation("Selling price must be zero or more")
	}

	var minQty float64
	if in.MinQuantity != nil {
		if !nonNegative(*in.MinQuantity) {
			return nil, apperr.Validation("Minimum quantity must be zero or more")
		}
		minQty = *in.MinQuantity
	}

	now := s.now()
	item := &models.InventoryItem{
		OwnerID:       ownerID,
		CompanyName:   strings.TrimSpace(in.CompanyName),
		ProductName:   name,
		Variant:       strings.TrimSpace(in.Variant),
		Quantity:      in.Quantity,
		PurchasePrice: in.PurchasePrice,
		SellingPrice:  in.SellingPrice,
		MinQuantity:   minQty,
		PurchaseUnit:  strings.TrimSpace(in.PurchaseUnit),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	item.Recalculate()

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("store inventory item: %w", err)
	}
	return item, nil
}

// Update applies the provided fields, each validated on its own.
func (s *Service) Update(ctx context.Context, ownerID, id string, in UpdateInput) (*models.InventoryItem, error) {
	item, err := s.repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.ProductName != nil {
		name := strings.TrimSpace(*in.ProductName)
		if name == "" {
			return nil, apperr.Validation("Product name is required")
		}
		item.ProductName = name
	}
	if in.CompanyName != nil {
		item.CompanyName = strings.TrimSpace(*in.CompanyName)
	}
	if in.Variant != nil {
		item.Variant = strings.TrimSpace(*in.Variant)
	}
	if in.PurchaseUnit != nil {
		item.PurchaseUnit = strings.TrimSpace(*in.PurchaseUnit)
	}
	if in.Quantity != nil {
		if !nonNegative(*in.Quantity) {
			return nil, apperr.Validation("Quantity must be zero or more")
		}
		item.Quantity = *in.Quantity
	}
	if in.PurchasePrice != nil {
		if !nonNegative(*in.PurchasePrice) {
			return nil, apperr.Validation("Purchase price must be zero or more")
		}
		item.PurchasePrice = *in.PurchasePrice
	}
	if in.SellingPrice != nil {
		if !nonNegative(*in.SellingPrice) {
			return nil, apperr.Validation("Selling price must be zero or more")
		}
		item.SellingPrice = *in.SellingPrice
	}
	if in.MinQuantity != nil {
		if !nonNegative(*in.MinQuantity) {
			return nil, apperr.Validation("Minimum quantity must be zero or more")
		}
		item.MinQuantity = *in.MinQuantity
	}

	item.Recalculate()
	item.UpdatedAt = s.now()
	if err := s.repo.UpdateOwned(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.InventoryItem, error) {
	return s.repo.FindOwned(ctx, ownerID, id)
}

// List returns the owner's items, optionally narrowed to a product-name prefix.
func (s *Service) List(ctx context.Context, ownerID, namePrefix string) ([]models.InventoryItem, error) {
	if strings.TrimSpace(namePrefix) == "" {
		return s.repo.ListOwned(ctx, ownerID)
	}
	return s.repo.Search(ctx, ownerID, models.InventoryFilter{NamePrefix: namePrefix})
}

// LowStock lists items at or below their minimum quantity.
func (s *Service) LowStock(ctx context.Context, ownerID string) ([]models.InventoryItem, error) {
	return s.repo.LowStock(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.DeleteOwned(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("inventory item deleted", zap.String("owner_id", ownerID), zap.String("id", id))
	return nil
}
