// Package company manages the single business profile each user owns.
package company

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

// Input is the editable shape of a company profile. On update nil fields keep their value.
type Input struct {
	BusinessName         *string `json:"businessName"`
	Address              *string `json:"address"`
	Country              *string `json:"country"`
	State                *string `json:"state"`
	City                 *string `json:"city"`
	Email                *string `json:"email"`
	Phone                *string `json:"phone"`
	Region               *string `json:"region"`
	TaxID                *string `json:"taxId"`
	Logo                 *string `json:"logo"`
	ManufacturingEnabled *bool   `json:"manufacturingEnabled"`
	SetupComplete        *bool   `json:"setupComplete"`
}

func (in Input) apply(c *models.Company) error {
	if in.BusinessName != nil {
		c.BusinessName = strings.TrimSpace(*in.BusinessName)
	}
	if c.BusinessName == "" {
		return apperr.Validation("Business name is required")
	}
	if in.TaxID != nil {
		c.SetTaxID(*in.TaxID)
	}
	if c.TaxID == "" {
		return apperr.Validation("Tax ID is required")
	}

	for dst, src := range map[*string]*string{
		&c.Address: in.Address,
		&c.Country: in.Country,
		&c.State:   in.State,
		&c.City:    in.City,
		&c.Email:   in.Email,
		&c.Phone:   in.Phone,
		&c.Region:  in.Region,
	} {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	if in.Logo != nil {
		c.Logo = *in.Logo
	}
	if in.ManufacturingEnabled != nil {
		c.ManufacturingEnabled = *in.ManufacturingEnabled
	}
	if in.SetupComplete != nil {
		c.SetupComplete = *in.SetupComplete
	}
	return nil
}

// Service manages company profiles. Tax ids are unique across all owners,
// compared case-insensitively after whitespace normalization.
type Service struct {
	repo   repository.CompanyRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new company service instance.
func NewService(repo repository.CompanyRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) Get(ctx context.Context, ownerID string) (*models.Company, error) {
	return s.repo.FindByOwner(ctx, ownerID)
}

func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*models.Company, error) {
	if _, err := s.repo.FindByOwner(ctx, ownerID); err == nil {
		return nil, apperr.Conflict("Company already exists for this user")
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	now := s.now()
	company := &models.Company{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	if err := in.apply(company); err != nil {
		return nil, err
	}
	if err := s.ensureTaxIDFree(ctx, company); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, company); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("store company: %w", err)
	}
	s.logger.Info("company created", zap.String("owner_id", ownerID))
	return company, nil
}

func (s *Service) Update(ctx context.Context, ownerID string, in Input) (*models.Company, error) {
	company, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(company); err != nil {
		return nil, err
	}
	if in.TaxID != nil {
		if err := s.ensureTaxIDFree(ctx, company); err != nil {
			return nil, err
		}
	}

	company.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

func (s *Service) ensureTaxIDFree(ctx context.Context, company *models.Company) error {
	taken, err := s.repo.TaxIDTaken(ctx, company.TaxIDLower, company.OwnerID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("Tax ID is already registered")
	}
	return nil
}
