// Package invoicing creates invoices with server-computed totals and moves
// them through their lifecycle.
package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

const numberPrefix = "INV"

// Notifier tells a customer that an invoice was issued.
type Notifier interface {
	InvoiceSent(ctx context.Context, invoice *models.Invoice, customer *models.Customer) error
}

type nopNotifier struct{}

func (nopNotifier) InvoiceSent(context.Context, *models.Invoice, *models.Customer) error { return nil }

// CreateInput is an invoice as submitted by the client.
type CreateInput struct {
	CustomerID    string                 `json:"customerId"`
	InvoiceNumber string                 `json:"invoiceNumber"`
	Status        string                 `json:"status"`
	InvoiceDate   string                 `json:"invoiceDate"`
	DueDate       string                 `json:"dueDate"`
	Items         []models.LineItemInput `json:"items"`
	TaxRate       float64                `json:"taxRate"`
	DiscountRate  float64                `json:"discountRate"`
	PaymentMode   string                 `json:"paymentMode"`
	Notes         string                 `json:"notes"`
}

// UpdateInput carries the fields to change. Totals are recomputed only when
// Items, TaxRate or DiscountRate is present.
type UpdateInput struct {
	CustomerID    *string                `json:"customerId"`
	InvoiceNumber *string                `json:"invoiceNumber"`
	Status        *string                `json:"status"`
	InvoiceDate   *string                `json:"invoiceDate"`
	DueDate       *string                `json:"dueDate"`
	Items         []models.LineItemInput `json:"items"`
	TaxRate       *float64               `json:"taxRate"`
	DiscountRate  *float64               `json:"discountRate"`
	PaymentMode   *string                `json:"paymentMode"`
	Notes         *string                `json:"notes"`
}

// Service manages invoices.
type Service struct {
	invoices   repository.InvoiceRepository
	customers  repository.CustomerRepository
	calculator *Calculator
	notifier   Notifier
	loc        *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires a new invoice service. A nil notifier disables customer notices.
func NewService(invoices repository.InvoiceRepository, customers repository.CustomerRepository, products repository.ProductRepository, notifier Notifier, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		invoices:   invoices,
		customers:  customers,
		calculator: NewCalculator(products),
		notifier:   notifier,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Invoice, error) {
	now := s.now()
	invoice := &models.Invoice{
		OwnerID:     ownerID,
		Status:      models.InvoiceStatusDraft,
		InvoiceDate: now,
		PaymentMode: models.DefaultPaymentMode,
		Notes:       strings.TrimSpace(in.Notes),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.setCustomer(ctx, invoice, in.CustomerID); err != nil {
		return nil, err
	}
	if in.Status != "" {
		if err := setStatus(invoice, in.Status); err != nil {
			return nil, err
		}
	}
	if in.InvoiceDate != "" {
		if err := s.setInvoiceDate(invoice, in.InvoiceDate); err != nil {
			return nil, err
		}
	}
	if err := s.setDueDate(invoice, in.DueDate); err != nil {
		return nil, err
	}
	if mode := strings.TrimSpace(in.PaymentMode); mode != "" {
		invoice.PaymentMode = strings.ToLower(mode)
	}

	totals, err := s.calculator.Compute(ctx, ownerID, in.Items, in.TaxRate, in.DiscountRate)
	if err != nil {
		return nil, err
	}
	invoice.ApplyTotals(totals)

	if err := s.setNumber(ctx, invoice, in.InvoiceNumber); err != nil {
		return nil, err
	}

	if err := s.invoices.Create(ctx, invoice); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("Invoice number already exists")
		}
		return nil, fmt.Errorf("store invoice: %w", err)
	}

	s.logger.Info("invoice created",
		zap.String("owner_id", ownerID),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Float64("total", invoice.Total))
	return invoice, nil
}

func (s *Service) Update(ctx context.Context, ownerID, id string, in UpdateInput) (*models.Invoice, error) {
	invoice, err := s.invoices.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.CustomerID != nil {
		if err := s.setCustomer(ctx, invoice, *in.CustomerID); err != nil {
			return nil, err
		}
	}
	if in.Status != nil {
		if err := setStatus(invoice, *in.Status); err != nil {
			return nil, err
		}
	}
	if in.InvoiceDate != nil {
		if err := s.setInvoiceDate(invoice, *in.InvoiceDate); err != nil {
			return nil, err
		}
	}
	if in.DueDate != nil {
		if err := s.setDueDate(invoice, *in.DueDate); err != nil {
			return nil, err
		}
	}
	if in.PaymentMode != nil {
		invoice.PaymentMode = strings.ToLower(strings.TrimSpace(*in.PaymentMode))
	}
	if in.Notes != nil {
		invoice.Notes = strings.TrimSpace(*in.Notes)
	}

	if in.Items != nil || in.TaxRate != nil || in.DiscountRate != nil {
		items, rerate := in.Items, in.Items == nil
		if rerate {
			items = storedItems(invoice.Items)
		}
		taxRate := invoice.TaxRate
		if in.TaxRate != nil {
			taxRate = *in.TaxRate
		}
		discountRate := invoice.DiscountRate
		if in.DiscountRate != nil {
			discountRate = *in.DiscountRate
		}

		totals, err := s.calculator.Compute(ctx, ownerID, items, taxRate, discountRate)
		if err != nil {
			return nil, err
		}
		if rerate {
			for i := range totals.Items {
				totals.Items[i].ProductID = invoice.Items[i].ProductID
			}
		}
		invoice.ApplyTotals(totals)
	}

	if in.InvoiceNumber != nil && strings.TrimSpace(*in.InvoiceNumber) != invoice.InvoiceNumber {
		if err := s.setNumber(ctx, invoice, *in.InvoiceNumber); err != nil {
			return nil, err
		}
	}

	invoice.UpdatedAt = s.now()
	if err := s.invoices.UpdateOwned(ctx, invoice); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("Invoice number already exists")
		}
		return nil, err
	}
	return invoice, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id string) (*models.Invoice, error) {
	return s.invoices.FindOwned(ctx, ownerID, id)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]models.Invoice, error) {
	return s.invoices.ListOwned(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.invoices.DeleteOwned(ctx, ownerID, id)
}

// Send marks a draft invoice as sent and notifies the customer. Sending an
// already sent invoice repeats the notice. Notice failures are logged only.
func (s *Service) Send(ctx context.Context, ownerID, id string) (*models.Invoice, error) {
	invoice, err := s.invoices.FindOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case models.InvoiceStatusDraft:
		invoice.Status = models.InvoiceStatusSent
		invoice.UpdatedAt = s.now()
		if err := s.invoices.UpdateOwned(ctx, invoice); err != nil {
			return nil, err
		}
	case models.InvoiceStatusSent:
	default:
		return nil, apperr.Validation(fmt.Sprintf("Cannot send an invoice that is %s", invoice.Status))
	}

	customer, err := s.customers.FindOwned(ctx, ownerID, invoice.CustomerID)
	if err != nil {
		s.logger.Warn("invoice customer missing, notice skipped",
			zap.String("invoice_id", invoice.ID), zap.Error(err))
		return invoice, nil
	}
	if err := s.notifier.InvoiceSent(ctx, invoice, customer); err != nil {
		s.logger.Warn("invoice notice failed",
			zap.String("invoice_id", invoice.ID), zap.Error(err))
	}
	return invoice, nil
}

// MarkOverdue moves every sent invoice whose due date has passed to overdue.
func (s *Service) MarkOverdue(ctx context.Context) (int64, error) {
	changed, err := s.invoices.MarkOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.logger.Info("invoices marked overdue", zap.Int64("count", changed))
	}
	return changed, nil
}

func (s *Service) setCustomer(ctx context.Context, invoice *models.Invoice, customerID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return apperr.Validation("Customer is required")
	}
	if _, err := s.customers.FindOwned(ctx, invoice.OwnerID, customerID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.NotFound("Customer not found")
		}
		return err
	}
	invoice.CustomerID = customerID
	return nil
}

func setStatus(invoice *models.Invoice, raw string) error {
	status := models.InvoiceStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return apperr.Validation("Status must be one of draft, sent, paid or overdue")
	}
	invoice.Status = status
	return nil
}

func (s *Service) setInvoiceDate(invoice *models.Invoice, raw string) error {
	t, ok := calendar.ParseDate(raw, s.loc)
	if !ok {
		return apperr.Validation("Invalid invoice date")
	}
	invoice.InvoiceDate = t
	return nil
}

// setDueDate clears the due date when raw is blank.
func (s *Service) setDueDate(invoice *models.Invoice, raw string) error {
	if strings.TrimSpace(raw) == "" {
		invoice.DueDate = nil
		return nil
	}
	t, ok := calendar.ParseEndDate(raw, s.loc)
	if !ok {
		return apperr.Validation("Invalid due date")
	}
	invoice.DueDate = &t
	return nil
}

// setNumber assigns the requested number, or the next free INV-YYYY-NNNN when blank.
func (s *Service) setNumber(ctx context.Context, invoice *models.Invoice, requested string) error {
	number := strings.TrimSpace(requested)
	if number == "" {
		generated, err := s.nextNumber(ctx, invoice)
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = generated
		return nil
	}

	taken, err := s.invoices.NumberTaken(ctx, invoice.OwnerID, number, invoice.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("Invoice number already exists")
	}
	invoice.InvoiceNumber = number
	return nil
}

func (s *Service) nextNumber(ctx context.Context, invoice *models.Invoice) (string, error) {
	count, err := s.invoices.CountOwned(ctx, invoice.OwnerID)
	if err != nil {
		return "", fmt.Errorf("count invoices: %w", err)
	}

	year := invoice.InvoiceDate.In(s.loc).Year()
	for seq := count + 1; ; seq++ {
		candidate := fmt.Sprintf("%s-%d-%04d", numberPrefix, year, seq)
		taken, err := s.invoices.NumberTaken(ctx, invoice.OwnerID, candidate, invoice.ID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

// storedItems turns persisted line items back into calculator input. Product
// ids are left out because the stored description and price are already
// resolved; the caller puts the ids back on the computed items.
func storedItems(items []models.LineItem) []models.LineItemInput {
	out := make([]models.LineItemInput, 0, len(items))
	for _, item := range items {
		price := item.UnitPrice
		out = append(out, models.LineItemInput{
			Description: item.Description,
			Quantity:    item.Quantity,
			Price:       &price,
			Unit:        string(item.Unit),
		})
	}
	return out
}
