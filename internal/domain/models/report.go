package models

import "time"

// CashBucket is the cash movement of one day or month.
type CashBucket struct {
	Key string  `json:"key" bson:"_id"`
	In  float64 `json:"in" bson:"in"`
	Out float64 `json:"out" bson:"out"`
}

// SalesBucket is the invoiced amount of one day or month.
type SalesBucket struct {
	Key   string  `json:"key" bson:"_id"`
	Total float64 `json:"total" bson:"total"`
	Count int64   `json:"count" bson:"count"`
}

// TopInvoice is the highest-value invoice of a day.
type TopInvoice struct {
	Day           string  `json:"-" bson:"_id"`
	InvoiceID     string  `json:"id" bson:"invoiceId"`
	InvoiceNumber string  `json:"invoiceNumber" bson:"invoiceNumber"`
	Total         float64 `json:"total" bson:"total"`
}

// TopProduct is the line item description sold in the largest quantity on a day.
type TopProduct struct {
	Day         string  `json:"-" bson:"_id"`
	Description string  `json:"description" bson:"description"`
	Quantity    float64 `json:"quantity" bson:"quantity"`
}

// PaymentModeTotal aggregates invoices by payment mode.
type PaymentModeTotal struct {
	Mode  string  `json:"mode" bson:"_id"`
	Total float64 `json:"total" bson:"total"`
	Count int64   `json:"count" bson:"count"`
}

// DailyReport is one zero-filled day of the report.
type DailyReport struct {
	Day        string      `json:"day"`
	CashIn     float64     `json:"cashIn"`
	CashOut    float64     `json:"cashOut"`
	NetCash    float64     `json:"netCash"`
	SalesTotal float64     `json:"salesTotal"`
	BillCount  int64       `json:"billCount"`
	TopInvoice *TopInvoice `json:"topInvoice"`
	TopProduct *TopProduct `json:"topProduct"`
}

// MonthlyReport is one zero-filled month of the report.
type MonthlyReport struct {
	Month      string  `json:"month"`
	CashIn     float64 `json:"cashIn"`
	CashOut    float64 `json:"cashOut"`
	NetCash    float64 `json:"netCash"`
	SalesTotal float64 `json:"salesTotal"`
	BillCount  int64   `json:"billCount"`
}

// Report is the full time-bucketed report of an owner.
type Report struct {
	From         time.Time          `json:"from"`
	To           time.Time          `json:"to"`
	Timezone     string             `json:"timezone"`
	Months       int                `json:"months"`
	Daily        []DailyReport      `json:"daily"`
	Monthly      []MonthlyReport    `json:"monthly"`
	PaymentModes []PaymentModeTotal `json:"paymentModes"`
}

// StatusSummary is one dashboard status bucket.
type StatusSummary struct {
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

// RecentInvoice is the trimmed invoice shape shown on the dashboard.
type RecentInvoice struct {
	ID            string        `json:"id"`
	InvoiceNumber string        `json:"invoiceNumber"`
	Status        InvoiceStatus `json:"status"`
	Total         float64       `json:"total"`
	InvoiceDate   time.Time     `json:"invoiceDate"`
	CreatedAt     time.Time     `json:"createdAt"`
	Customer      *CustomerRef  `json:"customer"`
}

// DashboardSummary is the landing page roll-up of an owner.
type DashboardSummary struct {
	Total            int64                           `json:"total"`
	ByStatus         map[InvoiceStatus]StatusSummary `json:"byStatus"`
	PaidTotal        float64                         `json:"paidTotal"`
	OutstandingTotal float64                         `json:"outstandingTotal"`
	ProductCount     int64                           `json:"productCount"`
	CustomerCount    int64                           `json:"customerCount"`
	RecentInvoices   []RecentInvoice                 `json:"recentInvoices"`
}
