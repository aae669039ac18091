package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
	"github.com/mamadbah2/billing/internal/repository/memory"
)

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) InvoiceSent(_ context.Context, inv *models.Invoice, customer *models.Customer) error {
	n.sent = append(n.sent, inv.InvoiceNumber+"->"+customer.Phone)
	return n.err
}

type fixture struct {
	svc      *Service
	store    *repository.Store
	notifier *recordingNotifier
	customer *models.Customer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Colombo")
	if err != nil {
		t.Fatal(err)
	}
	store := memory.NewStore(loc)
	notifier := &recordingNotifier{}
	svc := NewService(store.Invoices, store.Customers, store.Products, notifier, loc, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, loc) }

	customer := &models.Customer{OwnerID: "owner-1", Name: "Nimal", Phone: "+94770000000"}
	if err := store.Customers.Create(context.Background(), customer); err != nil {
		t.Fatal(err)
	}
	return fixture{svc: svc, store: store, notifier: notifier, customer: customer}
}

func TestCreateRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "owner-1", CreateInput{
		CustomerID: f.customer.ID,
		Items: []models.LineItemInput{
			{Description: "A", Quantity: 2, Price: price(50)},
			{Description: "B", Quantity: 1, Price: price(30)},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := f.svc.Get(ctx, "owner-1", created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Subtotal != 130 || stored.Total != 130 {
		t.Fatalf("subtotal/total = %v/%v, want 130/130", stored.Subtotal, stored.Total)
	}
	if stored.Status != models.InvoiceStatusDraft || stored.PaymentMode != "cash" || stored.Currency != "LKR" {
		t.Fatalf("unexpected defaults %+v", stored)
	}
	if stored.InvoiceNumber != "INV-2024-0001" {
		t.Fatalf("invoice number = %q", stored.InvoiceNumber)
	}
	if len(stored.Items) != 2 || stored.Items[0].LineTotal != 100 {
		t.Fatalf("items = %+v", stored.Items)
	}
}

func TestCreateRejectsForeignCustomerAndDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	items := []models.LineItemInput{{Description: "A", Quantity: 1, Price: price(10)}}

	_, err := f.svc.Create(ctx, "owner-2", CreateInput{CustomerID: f.customer.ID, Items: items})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("foreign customer should be not found, got %v", err)
	}

	if _, err := f.svc.Create(ctx, "owner-1", CreateInput{CustomerID: f.customer.ID, InvoiceNumber: "A-1", Items: items}); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.Create(ctx, "owner-1", CreateInput{CustomerID: f.customer.ID, InvoiceNumber: "A-1", Items: items})
	if !errors.Is(err, apperr.ErrConflict) || apperr.Message(err) != "Invoice number already exists" {
		t.Fatalf("duplicate number should conflict, got %v", err)
	}

	next, err := f.svc.Create(ctx, "owner-1", CreateInput{CustomerID: f.customer.ID, Items: items})
	if err != nil {
		t.Fatal(err)
	}
	if next.InvoiceNumber != "INV-2024-0002" {
		t.Fatalf("generated number = %q", next.InvoiceNumber)
	}
}

func TestUpdateRecomputesOnlyWhenPricingChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "owner-1", CreateInput{
		CustomerID: f.customer.ID,
		Items:      []models.LineItemInput{{Description: "A", Quantity: 1, Price: price(1000)}},
		TaxRate:    10,
	})
	if err != nil {
		t.Fatal(err)
	}

	notes := "thanks"
	updated, err := f.svc.Update(ctx, "owner-1", created.ID, UpdateInput{Notes: &notes})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Total != 1100 || updated.Notes != "thanks" {
		t.Fatalf("notes-only update changed totals: %+v", updated)
	}

	discount := 50.0
	updated, err = f.svc.Update(ctx, "owner-1", created.ID, UpdateInput{DiscountRate: &discount})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.TaxAmount != 100 || updated.DiscountAmount != 500 || updated.Total != 600 {
		t.Fatalf("rate update should recompute with stored items and tax: %+v", updated)
	}

	_, err = f.svc.Update(ctx, "owner-1", created.ID, UpdateInput{Items: []models.LineItemInput{}})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("empty items should fail validation, got %v", err)
	}

	bad := "cancelled"
	if _, err := f.svc.Update(ctx, "owner-1", created.ID, UpdateInput{Status: &bad}); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("unknown status should fail validation, got %v", err)
	}
}

func TestUpdateRatesKeepsDeletedProductItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tea := &models.Product{OwnerID: "owner-1", Name: "Tea", Price: 450}
	if err := f.store.Products.Create(ctx, tea); err != nil {
		t.Fatal(err)
	}
	created, err := f.svc.Create(ctx, "owner-1", CreateInput{
		CustomerID: f.customer.ID,
		Items: []models.LineItemInput{
			{ProductID: tea.ID, Quantity: 2},
			{Description: "Delivery", Quantity: 1, Price: price(100)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.store.Products.DeleteOwned(ctx, "owner-1", tea.ID); err != nil {
		t.Fatal(err)
	}

	tax := 10.0
	updated, err := f.svc.Update(ctx, "owner-1", created.ID, UpdateInput{TaxRate: &tax})
	if err != nil {
		t.Fatalf("re-rating after the product was deleted: %v", err)
	}
	if updated.Subtotal != 1000 || updated.TaxAmount != 100 || updated.Total != 1100 {
		t.Fatalf("unexpected totals %+v", updated)
	}
	first := updated.Items[0]
	if first.ProductID != tea.ID || first.Description != "Tea" || first.UnitPrice != 450 {
		t.Fatalf("stored item should keep its product reference: %+v", first)
	}
	if updated.Items[1].ProductID != "" {
		t.Fatalf("free text item gained a product id: %+v", updated.Items[1])
	}

	// New items still have to reference existing products.
	_, err = f.svc.Update(ctx, "owner-1", created.ID, UpdateInput{
		Items: []models.LineItemInput{{ProductID: tea.ID, Quantity: 1}},
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("replacing items with a deleted product should be not found, got %v", err)
	}
}

func TestSendAndMarkOverdue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "owner-1", CreateInput{
		CustomerID: f.customer.ID,
		DueDate:    "2024-06-20",
		Items:      []models.LineItemInput{{Description: "A", Quantity: 1, Price: price(10)}},
	})
	if err != nil {
		t.Fatal(err)
	}

	f.notifier.err = errors.New("whatsapp down")
	sent, err := f.svc.Send(ctx, "owner-1", created.ID)
	if err != nil {
		t.Fatalf("notice failures must not fail Send: %v", err)
	}
	if sent.Status != models.InvoiceStatusSent || len(f.notifier.sent) != 1 {
		t.Fatalf("status = %s, notices = %v", sent.Status, f.notifier.sent)
	}

	if changed, err := f.svc.MarkOverdue(ctx); err != nil || changed != 0 {
		t.Fatalf("nothing is due yet: changed=%d err=%v", changed, err)
	}

	f.svc.now = func() time.Time { return time.Date(2024, 6, 21, 0, 30, 0, 0, f.svc.loc) }
	changed, err := f.svc.MarkOverdue(ctx)
	if err != nil || changed != 1 {
		t.Fatalf("expected one overdue invoice, changed=%d err=%v", changed, err)
	}
	stored, _ := f.svc.Get(ctx, "owner-1", created.ID)
	if stored.Status != models.InvoiceStatusOverdue {
		t.Fatalf("status = %s", stored.Status)
	}

	if _, err := f.svc.Send(ctx, "owner-1", created.ID); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("overdue invoices cannot be sent, got %v", err)
	}
}
