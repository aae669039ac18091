package whatsapp

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mamadbah2/billing/internal/domain/models"
	client "github.com/mamadbah2/billing/pkg/clients/whatsapp"
)

type stubClient struct {
	requests []client.SendTextMessageRequest
	err      error
}

func (s *stubClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &client.SendTextMessageResponse{}, nil
}

func TestInvoiceSent(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Colombo")
	if err != nil {
		t.Fatal(err)
	}
	stub := &stubClient{}
	notifier := NewInvoiceNotifier(stub, loc, nil)

	// 20:00 UTC on the 19th is already the 20th in Colombo.
	due := time.Date(2024, 6, 19, 20, 0, 0, 0, time.UTC)
	inv := &models.Invoice{ID: "inv-1", InvoiceNumber: "INV-2024-0007", Total: 1250.5, Currency: "LKR", DueDate: &due}
	customer := &models.Customer{ID: "c-1", Name: "Nimal", Phone: "+94 77 000 0000"}

	if err := notifier.InvoiceSent(context.Background(), inv, customer); err != nil {
		t.Fatalf("InvoiceSent: %v", err)
	}
	if len(stub.requests) != 1 {
		t.Fatalf("requests = %d", len(stub.requests))
	}
	req := stub.requests[0]
	if req.To != customer.Phone {
		t.Fatalf("to = %q", req.To)
	}
	for _, want := range []string{"Hello Nimal", "INV-2024-0007", "LKR 1250.50", "due on 2024-06-20"} {
		if !strings.Contains(req.Body, want) {
			t.Errorf("body %q missing %q", req.Body, want)
		}
	}
}

func TestInvoiceSentSkipsMissingPhone(t *testing.T) {
	stub := &stubClient{}
	notifier := NewInvoiceNotifier(stub, time.UTC, nil)

	if err := notifier.InvoiceSent(context.Background(), &models.Invoice{}, &models.Customer{Name: "No Phone"}); err != nil {
		t.Fatal(err)
	}
	if len(stub.requests) != 0 {
		t.Fatal("no message should be sent without a phone")
	}
}

func TestInvoiceSentWrapsClientErrors(t *testing.T) {
	stub := &stubClient{err: errors.New("rate limited")}
	notifier := NewInvoiceNotifier(stub, time.UTC, nil)

	err := notifier.InvoiceSent(context.Background(), &models.Invoice{InvoiceNumber: "INV-1"}, &models.Customer{Phone: "94770000000"})
	if err == nil || !strings.Contains(err.Error(), "INV-1") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
