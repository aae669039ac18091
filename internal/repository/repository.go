// Package repository declares the storage contracts every backend implements.
//
// Every method taking an ownerID filters by it. A record owned by someone else
// is reported exactly like a missing one (apperr.ErrNotFound).
package repository

import (
	"context"
	"time"

	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
)

// Owned is the CRUD surface shared by owner-scoped entities.
type Owned[T any] interface {
	Create(ctx context.Context, doc *T) error
	FindOwned(ctx context.Context, ownerID, id string) (*T, error)
	ListOwned(ctx context.Context, ownerID string) ([]T, error)
	UpdateOwned(ctx context.Context, doc *T) error
	DeleteOwned(ctx context.Context, ownerID, id string) error
	CountOwned(ctx context.Context, ownerID string) (int64, error)
}

// CashEntryRepository stores drawer counts. Entries are never updated.
type CashEntryRepository interface {
	Create(ctx context.Context, entry *models.CashEntry) error
	ListOwned(ctx context.Context, ownerID string, period models.Period) ([]models.CashEntry, error)
}

// InventoryRepository stores stocked items.
type InventoryRepository interface {
	Owned[models.InventoryItem]
	Search(ctx context.Context, ownerID string, filter models.InventoryFilter) ([]models.InventoryItem, error)
	LowStock(ctx context.Context, ownerID string) ([]models.InventoryItem, error)
}

// CustomerRepository stores customers.
type CustomerRepository interface {
	Owned[models.Customer]
	FindOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]models.Customer, error)
}

// ProductRepository stores catalogue products.
type ProductRepository interface {
	Owned[models.Product]
	FindOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]models.Product, error)
}

// InvoiceRepository stores invoices.
type InvoiceRepository interface {
	Owned[models.Invoice]
	// NumberTaken reports whether another invoice of the owner uses number.
	NumberTaken(ctx context.Context, ownerID, number, exceptID string) (bool, error)
	StatusTotals(ctx context.Context, ownerID string) ([]models.StatusTotal, error)
	Recent(ctx context.Context, ownerID string, limit int) ([]models.Invoice, error)
	// MarkOverdue moves sent invoices due before now to overdue, across all owners.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

// CompanyRepository stores the single company profile of each owner.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	FindByOwner(ctx context.Context, ownerID string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	// TaxIDTaken checks the lower-cased tax id across all owners except exceptOwnerID.
	TaxIDTaken(ctx context.Context, taxIDLower, exceptOwnerID string) (bool, error)
}

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// ReportRepository runs the bucketed aggregations behind reports. Bucket keys are
// computed in the location the backend was built with.
type ReportRepository interface {
	CashBuckets(ctx context.Context, ownerID string, period models.Period, g calendar.Granularity) ([]models.CashBucket, error)
	SalesBuckets(ctx context.Context, ownerID string, period models.Period, g calendar.Granularity) ([]models.SalesBucket, error)
	DailyTopInvoices(ctx context.Context, ownerID string, period models.Period) ([]models.TopInvoice, error)
	DailyTopProducts(ctx context.Context, ownerID string, period models.Period) ([]models.TopProduct, error)
	PaymentModes(ctx context.Context, ownerID string, period models.Period) ([]models.PaymentModeTotal, error)
}

// Store bundles one backend's repositories.
type Store struct {
	Cash      CashEntryRepository
	Inventory InventoryRepository
	Customers CustomerRepository
	Products  ProductRepository
	Invoices  InvoiceRepository
	Companies CompanyRepository
	Users     UserRepository
	Reports   ReportRepository

	// Close releases the backend connection.
	Close func(ctx context.Context) error
}
