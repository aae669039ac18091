package models

import "time"

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft   InvoiceStatus = "draft"
	InvoiceStatusSent    InvoiceStatus = "sent"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// InvoiceStatuses lists the recognised statuses in display order.
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue}

// Valid reports whether s is one of the recognised statuses.
func (s InvoiceStatus) Valid() bool {
	for _, known := range InvoiceStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Unit is the measure a line item quantity is expressed in.
type Unit string

const (
	UnitNumber     Unit = "number"
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLitre      Unit = "l"
	UnitMillilitre Unit = "ml"
)

// Valid reports whether u is a supported unit.
func (u Unit) Valid() bool {
	switch u {
	case UnitNumber, UnitKilogram, UnitGram, UnitLitre, UnitMillilitre:
		return true
	}
	return false
}

const (
	// Currency is the only currency invoices are issued in.
	Currency = "LKR"

	// DefaultPaymentMode applies when an invoice does not name one.
	DefaultPaymentMode = "cash"
)

// LineItem is one resolved row of an invoice.
type LineItem struct {
	ProductID   string  `json:"productId,omitempty" bson:"productId,omitempty" firestore:"productId"`
	Description string  `json:"description" bson:"description" firestore:"description"`
	Quantity    float64 `json:"quantity" bson:"quantity" firestore:"quantity"`
	UnitPrice   float64 `json:"price" bson:"price" firestore:"price"`
	Unit        Unit    `json:"unit" bson:"unit" firestore:"unit"`
	LineTotal   float64 `json:"lineTotal" bson:"lineTotal" firestore:"lineTotal"`
}

// Invoice is a bill issued to a customer.
type Invoice struct {
	ID             string        `json:"id" bson:"_id,omitempty" firestore:"-"`
	OwnerID        string        `json:"ownerId" bson:"ownerId" firestore:"ownerId"`
	CustomerID     string        `json:"customerId" bson:"customerId" firestore:"customerId"`
	InvoiceNumber  string        `json:"invoiceNumber" bson:"invoiceNumber" firestore:"invoiceNumber"`
	Status         InvoiceStatus `json:"status" bson:"status" firestore:"status"`
	InvoiceDate    time.Time     `json:"invoiceDate" bson:"invoiceDate" firestore:"invoiceDate"`
	DueDate        *time.Time    `json:"dueDate,omitempty" bson:"dueDate,omitempty" firestore:"dueDate"`
	Items          []LineItem    `json:"items" bson:"items" firestore:"items"`
	Subtotal       float64       `json:"subtotal" bson:"subtotal" firestore:"subtotal"`
	TaxRate        float64       `json:"taxRate" bson:"taxRate" firestore:"taxRate"`
	TaxAmount      float64       `json:"taxAmount" bson:"taxAmount" firestore:"taxAmount"`
	DiscountRate   float64       `json:"discountRate" bson:"discountRate" firestore:"discountRate"`
	DiscountAmount float64       `json:"discountAmount" bson:"discountAmount" firestore:"discountAmount"`
	Total          float64       `json:"total" bson:"total" firestore:"total"`
	Currency       string        `json:"currency" bson:"currency" firestore:"currency"`
	PaymentMode    string        `json:"paymentMode" bson:"paymentMode" firestore:"paymentMode"`
	Notes          string        `json:"notes,omitempty" bson:"notes,omitempty" firestore:"notes"`
	CreatedAt      time.Time     `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt" bson:"updatedAt" firestore:"updatedAt"`
}

func (i *Invoice) GetID() string           { return i.ID }
func (i *Invoice) SetID(id string)         { i.ID = id }
func (i *Invoice) GetOwnerID() string      { return i.OwnerID }
func (i *Invoice) GetCreatedAt() time.Time { return i.CreatedAt }

// ApplyTotals copies computed totals onto the invoice.
func (i *Invoice) ApplyTotals(t Totals) {
	i.Items = t.Items
	i.Subtotal = t.Subtotal
	i.TaxRate = t.TaxRate
	i.TaxAmount = t.TaxAmount
	i.DiscountRate = t.DiscountRate
	i.DiscountAmount = t.DiscountAmount
	i.Total = t.Total
	i.Currency = t.Currency
}

// Mode returns the payment mode, falling back to cash.
func (i *Invoice) Mode() string {
	if i.PaymentMode == "" {
		return DefaultPaymentMode
	}
	return i.PaymentMode
}

// LineItemInput is a caller supplied line item before resolution.
type LineItemInput struct {
	ProductID   string   `json:"productId"`
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	Price       *float64 `json:"price"`
	Unit        string   `json:"unit"`
}

// Totals is the output of the invoice total calculator.
type Totals struct {
	Items          []LineItem
	Subtotal       float64
	TaxRate        float64
	TaxAmount      float64
	DiscountRate   float64
	DiscountAmount float64
	Total          float64
	Currency       string
}

// StatusTotal is the count and amount of an owner's invoices with one status.
type StatusTotal struct {
	Status InvoiceStatus `json:"status" bson:"_id"`
	Count  int64         `json:"count" bson:"count"`
	Total  float64       `json:"total" bson:"total"`
}
