package firestore

import (
	"context"
	"time"

	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository/aggregate"
)

// ReportRepository loads the window's documents and buckets them in Go.
type ReportRepository struct {
	cash     *CashEntryRepository
	invoices *InvoiceRepository
	loc      *time.Location
}

func (r *ReportRepository) CashBuckets(ctx context.Context, ownerID string, period models.Period, g calendar.Granularity) ([]models.CashBucket, error) {
	entries, err := r.cash.ListOwned(ctx, ownerID, period)
	if err != nil {
		return nil, err
	}
	return aggregate.CashBuckets(entries, g, r.loc), nil
}

func (r *ReportRepository) SalesBuckets(ctx context.Context, ownerID string, period models.Period, g calendar.Granularity) ([]models.SalesBucket, error) {
	invoices, err := r.invoices.between(ctx, ownerID, period)
	if err != nil {
		return nil, err
	}
	return aggregate.SalesBuckets(invoices, g, r.loc), nil
}

func (r *ReportRepository) DailyTopInvoices(ctx context.Context, ownerID string, period models.Period) ([]models.TopInvoice, error) {
	invoices, err := r.invoices.between(ctx, ownerID, period)
	if err != nil {
		return nil, err
	}
	return aggregate.DailyTopInvoices(invoices, r.loc), nil
}

func (r *ReportRepository) DailyTopProducts(ctx context.Context, ownerID string, period models.Period) ([]models.TopProduct, error) {
	invoices, err := r.invoices.between(ctx, ownerID, period)
	if err != nil {
		return nil, err
	}
	return aggregate.DailyTopProducts(invoices, r.loc), nil
}

func (r *ReportRepository) PaymentModes(ctx context.Context, ownerID string, period models.Period) ([]models.PaymentModeTotal, error) {
	invoices, err := r.invoices.between(ctx, ownerID, period)
	if err != nil {
		return nil, err
	}
	return aggregate.PaymentModes(invoices), nil
}
