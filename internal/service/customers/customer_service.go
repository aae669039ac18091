// Package customers manages the people invoices are issued to.
package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

// Input is the editable shape of a customer. On update nil fields keep their value.
type Input struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	Zip     *string `json:"zip"`
}

func (in Input) apply(c *models.Customer) error {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if c.Name == "" {
		return apperr.Validation("Customer name is required")
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&c.Email, in.Email)
	set(&c.Phone, in.Phone)
	set(&c.Address, in.Address)
	set(&c.City, in.City)
	set(&c.Zip, in.Zip)
	c.Email = strings.ToLower(c.Email)
	return nil
}

// Service is the customer CRUD surface.
type Service struct {
	repo   repository.CustomerRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new customer service instance.
func NewService(repo repository.CustomerRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*models.Customer, error) {
	now := s.now()
	customer := &models.Customer{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(customer); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("store customer: %w", err)
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.Customer, error) {
	return s.repo.FindOwned(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]models.Customer, error) {
	return s.repo.ListOwned(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, ownerID, id string, in Input) (*models.Customer, error) {
	customer, err := s.repo.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(customer); err != nil {
		return nil, err
	}
	customer.UpdatedAt = s.now()
	if err := s.repo.UpdateOwned(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.DeleteOwned(ctx, ownerID, id)
}
