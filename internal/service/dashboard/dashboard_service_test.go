package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
	"github.com/mamadbah2/billing/internal/repository/memory"
)

func seed(t *testing.T, store *repository.Store, invoices ...models.Invoice) {
	t.Helper()
	for i := range invoices {
		if err := store.Invoices.Create(context.Background(), &invoices[i]); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSummaryExcludesUnknownStatuses(t *testing.T) {
	store := memory.NewStore(time.UTC)
	svc := NewService(store.Invoices, store.Products, store.Customers, nil)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	seed(t, store,
		models.Invoice{OwnerID: "owner-1", Status: models.InvoiceStatusPaid, Total: 100.1, CreatedAt: base},
		models.Invoice{OwnerID: "owner-1", Status: models.InvoiceStatusPaid, Total: 0.2, CreatedAt: base.Add(time.Minute)},
		models.Invoice{OwnerID: "owner-1", Status: models.InvoiceStatusSent, Total: 40, CreatedAt: base.Add(2 * time.Minute)},
		models.Invoice{OwnerID: "owner-1", Status: models.InvoiceStatusOverdue, Total: 10, CreatedAt: base.Add(3 * time.Minute)},
		models.Invoice{OwnerID: "owner-1", Status: "cancelled", Total: 999, CreatedAt: base.Add(4 * time.Minute)},
		models.Invoice{OwnerID: "owner-2", Status: models.InvoiceStatusPaid, Total: 5000, CreatedAt: base},
	)
	if err := store.Products.Create(ctx, &models.Product{OwnerID: "owner-1", Name: "Tea"}); err != nil {
		t.Fatal(err)
	}

	summary, err := svc.Summary(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	if summary.Total != 4 {
		t.Fatalf("total = %d, want 4", summary.Total)
	}
	if _, ok := summary.ByStatus["cancelled"]; ok {
		t.Fatal("unknown status must not appear in the status buckets")
	}
	if got := summary.ByStatus[models.InvoiceStatusDraft]; got.Count != 0 || got.Total != 0 {
		t.Fatalf("draft bucket should be present and empty, got %+v", got)
	}
	if got := summary.ByStatus[models.InvoiceStatusPaid]; got.Count != 2 || got.Total != 100.3 {
		t.Fatalf("paid bucket = %+v", got)
	}
	if summary.PaidTotal != 100.3 || summary.OutstandingTotal != 50 {
		t.Fatalf("paid/outstanding = %v/%v", summary.PaidTotal, summary.OutstandingTotal)
	}
	if summary.ProductCount != 1 || summary.CustomerCount != 0 {
		t.Fatalf("counts = %d/%d", summary.ProductCount, summary.CustomerCount)
	}
	if len(summary.RecentInvoices) != 5 || summary.RecentInvoices[0].Status != "cancelled" {
		t.Fatalf("recent invoices should list the five newest, got %+v", summary.RecentInvoices)
	}
}

func TestSummaryRecentInvoiceCustomers(t *testing.T) {
	store := memory.NewStore(time.UTC)
	svc := NewService(store.Invoices, store.Products, store.Customers, nil)
	ctx := context.Background()

	mine := &models.Customer{OwnerID: "owner-1", Name: "Kumari"}
	theirs := &models.Customer{OwnerID: "owner-2", Name: "Stranger"}
	for _, c := range []*models.Customer{mine, theirs} {
		if err := store.Customers.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	seed(t, store,
		models.Invoice{OwnerID: "owner-1", CustomerID: mine.ID, Status: models.InvoiceStatusDraft, CreatedAt: base},
		models.Invoice{OwnerID: "owner-1", CustomerID: theirs.ID, Status: models.InvoiceStatusDraft, CreatedAt: base.Add(time.Hour)},
		models.Invoice{OwnerID: "owner-1", CustomerID: "deleted", Status: models.InvoiceStatusDraft, CreatedAt: base.Add(2 * time.Hour)},
	)

	summary, err := svc.Summary(ctx, "owner-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	recent := summary.RecentInvoices
	if len(recent) != 3 {
		t.Fatalf("recent = %d", len(recent))
	}
	if recent[0].Customer != nil || recent[1].Customer != nil {
		t.Fatal("customers missing or owned by someone else must resolve to null")
	}
	if recent[2].Customer == nil || *recent[2].Customer != (models.CustomerRef{ID: mine.ID, Name: "Kumari"}) {
		t.Fatalf("own customer = %+v", recent[2].Customer)
	}
	if summary.CustomerCount != 1 {
		t.Fatalf("customer count = %d", summary.CustomerCount)
	}
}

type brokenProducts struct {
	repository.ProductRepository
}

func (brokenProducts) CountOwned(context.Context, string) (int64, error) {
	return 0, errors.New("connection reset")
}

func TestSummaryFailsWhenAnyReadFails(t *testing.T) {
	store := memory.NewStore(time.UTC)
	svc := NewService(store.Invoices, brokenProducts{store.Products}, store.Customers, nil)

	if _, err := svc.Summary(context.Background(), "owner-1"); err == nil {
		t.Fatal("expected an error")
	}
}
