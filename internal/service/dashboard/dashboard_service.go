// Package dashboard rolls an owner's invoices, products and customers up into
// the landing page summary.
package dashboard

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

const recentLimit = 5

// Service reads the dashboard summary.
type Service struct {
	invoices  repository.InvoiceRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	logger    *zap.Logger
}

// NewService wires a new dashboard service instance.
func NewService(invoices repository.InvoiceRepository, products repository.ProductRepository, customers repository.CustomerRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{invoices: invoices, products: products, customers: customers, logger: logger}
}

// Summary computes the dashboard of ownerID. Statuses outside the four known
// values are left out of every count and total.
func (s *Service) Summary(ctx context.Context, ownerID string) (*models.DashboardSummary, error) {
	var (
		statuses      []models.StatusTotal
		productCount  int64
		customerCount int64
		recent        []models.Invoice
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		statuses, err = s.invoices.StatusTotals(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		productCount, err = s.products.CountOwned(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		customerCount, err = s.customers.CountOwned(gctx, ownerID)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.invoices.Recent(gctx, ownerID, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard summary: %w", err)
	}

	summary := &models.DashboardSummary{
		ByStatus:      make(map[models.InvoiceStatus]models.StatusSummary, len(models.InvoiceStatuses)),
		ProductCount:  productCount,
		CustomerCount: customerCount,
	}
	for _, status := range models.InvoiceStatuses {
		summary.ByStatus[status] = models.StatusSummary{}
	}

	amounts := make(map[models.InvoiceStatus]decimal.Decimal, len(models.InvoiceStatuses))
	for _, st := range statuses {
		if !st.Status.Valid() {
			continue
		}
		bucket := summary.ByStatus[st.Status]
		bucket.Count += st.Count
		amounts[st.Status] = amounts[st.Status].Add(decimal.NewFromFloat(st.Total))
		bucket.Total = amounts[st.Status].Round(2).InexactFloat64()
		summary.ByStatus[st.Status] = bucket
		summary.Total += st.Count
	}
	summary.PaidTotal = amounts[models.InvoiceStatusPaid].Round(2).InexactFloat64()
	summary.OutstandingTotal = amounts[models.InvoiceStatusSent].
		Add(amounts[models.InvoiceStatusOverdue]).Round(2).InexactFloat64()

	refs, err := s.customerRefs(ctx, ownerID, recent)
	if err != nil {
		return nil, err
	}
	summary.RecentInvoices = make([]models.RecentInvoice, 0, len(recent))
	for _, inv := range recent {
		summary.RecentInvoices = append(summary.RecentInvoices, models.RecentInvoice{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			Status:        inv.Status,
			Total:         inv.Total,
			InvoiceDate:   inv.InvoiceDate,
			CreatedAt:     inv.CreatedAt,
			Customer:      refs[inv.CustomerID],
		})
	}
	return summary, nil
}

// customerRefs resolves the customers of invoices. Ids that do not resolve for
// the owner are absent from the result.
func (s *Service) customerRefs(ctx context.Context, ownerID string, invoices []models.Invoice) (map[string]*models.CustomerRef, error) {
	seen := make(map[string]struct{}, len(invoices))
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		if inv.CustomerID == "" {
			continue
		}
		if _, ok := seen[inv.CustomerID]; ok {
			continue
		}
		seen[inv.CustomerID] = struct{}{}
		ids = append(ids, inv.CustomerID)
	}

	refs := make(map[string]*models.CustomerRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	customers, err := s.customers.FindOwnedByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve dashboard customers: %w", err)
	}
	for _, c := range customers {
		refs[c.ID] = &models.CustomerRef{ID: c.ID, Name: c.Name}
	}
	return refs, nil
}
