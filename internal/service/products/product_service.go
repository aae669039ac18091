// Package products manages the catalogue line items can reference.
package products

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

// Input is the editable shape of a product. On update nil fields keep their value.
type Input struct {
	Name        *string  `json:"name"`
	SKU         *string  `json:"sku"`
	Price       *float64 `json:"price"`
	Description *string  `json:"description"`
}

func (in Input) apply(p *models.Product) error {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if p.Name == "" {
		return apperr.Validation("Product name is required")
	}
	if in.Price != nil {
		price := *in.Price
		if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			return apperr.Validation("Price must be zero or more")
		}
		p.Price = price
	}
	if in.SKU != nil {
		p.SKU = strings.TrimSpace(*in.SKU)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	return nil
}

// Service is the product CRUD surface.
type Service struct {
	repo   repository.ProductRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new product service instance.
func NewService(repo repository.ProductRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*models.Product, error) {
	now := s.now()
	product := &models.Product{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(product); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("store product: %w", err)
	}
	return product, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.Product, error) {
	return s.repo.FindOwned(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]models.Product, error) {
	return s.repo.ListOwned(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, id string, in Input) (*models.Product, error) {
	product, err := s.repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(product); err != nil {
		return nil, err
	}
	product.UpdatedAt = s.now()
	if err := s.repo.UpdateOwned(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.DeleteOwned(ctx, ownerID, id)
}
