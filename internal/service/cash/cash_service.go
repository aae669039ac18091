// Package cash records cash drawer counts.
package cash

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

// CreateInput is a drawer count as submitted by the client.
type CreateInput struct {
	Direction     string                   `json:"direction"`
	Denominations models.DenominationCounts `json:"denominations"`
	Note          string                   `json:"note"`
}

// Service validates and stores cash entries.
type Service struct {
	repo   repository.CashEntryRepository
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new cash service instance. Listing windows are read in loc.
func NewService(repo repository.CashEntryRepository, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, loc: loc, logger: logger, now: time.Now}
}

// Create totals the denominations and stores the entry.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.CashEntry, error) {
	direction := models.CashDirection(strings.ToLower(strings.TrimSpace(in.Direction)))
	if !direction.Valid() {
		return nil, apperr.Validation("Direction must be 'in' or 'out'")
	}

	total := models.TotalDenominations(in.Denominations)
	if total <= 0 {
		return nil, apperr.Validation("Total amount must be greater than zero")
	}

	entry := &models.CashEntry{
		OwnerID:       ownerID,
		Direction:     direction,
		Denominations: models.NormalizeDenominations(in.Denominations),
		TotalAmount:   total,
		Note:          strings.TrimSpace(in.Note),
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("store cash entry: %w", err)
	}

	s.logger.Info("cash entry recorded",
		zap.String("owner_id", ownerID),
		zap.String("direction", string(direction)),
		zap.Float64("total", total))
	return entry, nil
}

// List returns the owner's entries, newest first. Unparseable bounds are ignored.
func (s *Service) List(ctx context.Context, ownerID, rawFrom, rawTo string) ([]models.CashEntry, error) {
	var period models.Period
	if from, ok := calendar.ParseDate(rawFrom, s.loc); ok {
		period.From = from
	}
	if to, ok := calendar.ParseEndDate(rawTo, s.loc); ok {
		period.To = to
	}

	entries, err := s.repo.ListOwned(ctx, ownerID, period)
	if err != nil {
		return nil, fmt.Errorf("list cash entries: %w", err)
	}
	return entries, nil
}
