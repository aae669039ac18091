package memory

import (
	"context"
	"sort"
	"time"

	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository/aggregate"
)

// ReportRepository aggregates the in-memory cash entries and invoices.
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

func (r *ReportRepository) SalesBuckets(_ context.Context, ownerID string, period models.Period, g calendar.Granularity) ([]models.SalesBucket, error) {
	return aggregate.SalesBuckets(r.invoicesInOrder(ownerID, period), g, r.loc), nil
}

func (r *ReportRepository) DailyTopInvoices(_ context.Context, ownerID string, period models.Period) ([]models.TopInvoice, error) {
	return aggregate.DailyTopInvoices(r.invoicesInOrder(ownerID, period), r.loc), nil
}

func (r *ReportRepository) DailyTopProducts(_ context.Context, ownerID string, period models.Period) ([]models.TopProduct, error) {
	return aggregate.DailyTopProducts(r.invoicesInOrder(ownerID, period), r.loc), nil
}

func (r *ReportRepository) PaymentModes(_ context.Context, ownerID string, period models.Period) ([]models.PaymentModeTotal, error) {
	return aggregate.PaymentModes(r.invoicesInOrder(ownerID, period)), nil
}

// invoicesInOrder returns the window's invoices oldest first, mirroring insertion order.
func (r *ReportRepository) invoicesInOrder(ownerID string, period models.Period) []models.Invoice {
	rows := r.invoices.between(ownerID, period)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows
}
