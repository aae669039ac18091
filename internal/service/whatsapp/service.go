// Package whatsapp sends invoice notices to customers over the WhatsApp Cloud API.
package whatsapp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
	client "github.com/mamadbah2/billing/pkg/clients/whatsapp"
)

const sendTimeout = 10 * time.Second

// InvoiceNotifier tells customers an invoice was issued to them.
type InvoiceNotifier struct {
	client client.Client
	loc    *time.Location
	logger *zap.Logger
}

// NewInvoiceNotifier wires a new notifier instance. Due dates are printed in loc.
func NewInvoiceNotifier(client client.Client, loc *time.Location, logger *zap.Logger) *InvoiceNotifier {
	n := &InvoiceNotifier{
		client: client,
		loc:    loc,
		logger: logger,
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	return n
}

// InvoiceSent messages the customer's phone. Customers without a phone are skipped.
func (n *InvoiceNotifier) InvoiceSent(ctx context.Context, inv *models.Invoice, customer *models.Customer) error {
	if strings.TrimSpace(customer.Phone) == "" {
		n.logger.Debug("customer has no phone, notice skipped",
			zap.String("invoice_id", inv.ID),
			zap.String("customer_id", customer.ID))
		return nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := n.client.SendTextMessage(ctxWithTimeout, client.SendTextMessageRequest{
		To:   customer.Phone,
		Body: n.message(inv, customer),
	})
	if err != nil {
		return fmt.Errorf("notify invoice %s: %w", inv.InvoiceNumber, err)
	}

	messageID := ""
	if len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}
	n.logger.Info("invoice notice sent",
		zap.String("invoice_id", inv.ID),
		zap.String("message_id", messageID))
	return nil
}

func (n *InvoiceNotifier) message(inv *models.Invoice, customer *models.Customer) string {
	var b strings.Builder
	name := strings.TrimSpace(customer.Name)
	if name == "" {
		name = "there"
	}
	fmt.Fprintf(&b, "Hello %s,\n", name)
	fmt.Fprintf(&b, "Invoice %s for %s %s has been issued to you.",
		inv.InvoiceNumber, inv.Currency, decimal.NewFromFloat(inv.Total).StringFixed(2))
	if inv.DueDate != nil {
		fmt.Fprintf(&b, "\nPayment is due on %s.", inv.DueDate.In(n.loc).Format(calendar.DayLayout))
	}
	return b.String()
}
