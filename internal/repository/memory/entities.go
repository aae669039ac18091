package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository/aggregate"
)

// CashEntryRepository keeps drawer counts in memory.
type CashEntryRepository struct {
	*table[models.CashEntry, *models.CashEntry]
}

func (r *CashEntryRepository) ListOwned(_ context.Context, ownerID string, period models.Period) ([]models.CashEntry, error) {
	return r.filter(ownerID, func(e *models.CashEntry) bool { return period.Contains(e.CreatedAt) }), nil
}

// InventoryRepository keeps stock items in memory.
type InventoryRepository struct {
	*table[models.InventoryItem, *models.InventoryItem]
}

func (r *InventoryRepository) Search(_ context.Context, ownerID string, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	prefix := strings.ToLower(strings.TrimSpace(filter.NamePrefix))
	return r.filter(ownerID, func(item *models.InventoryItem) bool {
		return strings.HasPrefix(item.ProductNameLower, prefix)
	}), nil
}

func (r *InventoryRepository) LowStock(_ context.Context, ownerID string) ([]models.InventoryItem, error) {
	return r.filter(ownerID, func(item *models.InventoryItem) bool { return item.LowStock() }), nil
}

// CustomerRepository keeps customers in memory.
type CustomerRepository struct {
	*table[models.Customer, *models.Customer]
}

// ProductRepository keeps products in memory.
type ProductRepository struct {
	*table[models.Product, *models.Product]
}

// InvoiceRepository keeps invoices in memory.
type InvoiceRepository struct {
	*table[models.Invoice, *models.Invoice]
}

func (r *InvoiceRepository) NumberTaken(_ context.Context, ownerID, number, exceptID string) (bool, error) {
	matches := r.filter(ownerID, func(inv *models.Invoice) bool {
		return inv.InvoiceNumber == number && inv.ID != exceptID
	})
	return len(matches) > 0, nil
}

func (r *InvoiceRepository) StatusTotals(_ context.Context, ownerID string) ([]models.StatusTotal, error) {
	return aggregate.StatusTotals(r.filter(ownerID, nil)), nil
}

func (r *InvoiceRepository) Recent(_ context.Context, ownerID string, limit int) ([]models.Invoice, error) {
	rows := r.filter(ownerID, nil)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (r *InvoiceRepository) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for id, inv := range r.rows {
		if inv.Status != models.InvoiceStatusSent || inv.DueDate == nil || !inv.DueDate.Before(now) {
			continue
		}
		inv.Status = models.InvoiceStatusOverdue
		inv.UpdatedAt = now
		r.rows[id] = inv
		changed++
	}
	return changed, nil
}

// between returns the owner's invoices dated inside period.
func (r *InvoiceRepository) between(ownerID string, period models.Period) []models.Invoice {
	return r.filter(ownerID, func(inv *models.Invoice) bool { return period.Contains(inv.InvoiceDate) })
}

// CompanyRepository keeps company profiles in memory.
type CompanyRepository struct {
	*table[models.Company, *models.Company]
}

func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if existing, _ := r.FindByOwner(ctx, company.OwnerID); existing != nil {
		return apperr.Conflict("Company already exists for this user")
	}
	return r.table.Create(ctx, company)
}

func (r *CompanyRepository) FindByOwner(_ context.Context, ownerID string) (*models.Company, error) {
	rows := r.filter(ownerID, nil)
	if len(rows) == 0 {
		return nil, apperr.NotFound("Company not found")
	}
	return &rows[0], nil
}

func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	return r.UpdateOwned(ctx, company)
}

func (r *CompanyRepository) TaxIDTaken(_ context.Context, taxIDLower, exceptOwnerID string) (bool, error) {
	for _, c := range r.all() {
		if c.TaxIDLower == taxIDLower && c.OwnerID != exceptOwnerID {
			return true, nil
		}
	}
	return false, nil
}

// UserRepository keeps accounts in memory, unique by email.
type UserRepository struct {
	mu   sync.RWMutex
	rows map[string]models.User
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.rows {
		if existing.Email == user.Email {
			return apperr.Conflict("Email already registered")
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.rows[user.ID] = *user
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.rows[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.rows {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFound("User not found")
}
