// Package memory is an in-process backend for local runs and tests. Data is
// lost on restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

type entityPtr[T any] interface {
	*T
	models.Entity
}

// table is an owner-scoped collection of T guarded by its own lock.
type table[T any, P entityPtr[T]] struct {
	mu       sync.RWMutex
	rows     map[string]T
	notFound string
}

func newTable[T any, P entityPtr[T]](notFound string) *table[T, P] {
	return &table[T, P]{rows: make(map[string]T), notFound: notFound}
}

func (t *table[T, P]) Create(_ context.Context, doc *T) error {
	e := P(doc)
	if e.GetID() == "" {
		e.SetID(uuid.NewString())
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.rows[e.GetID()]; exists {
		return apperr.Conflict("duplicate id")
	}
	t.rows[e.GetID()] = *doc
	return nil
}

func (t *table[T, P]) FindOwned(_ context.Context, ownerID, id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok || P(&row).GetOwnerID() != ownerID {
		return nil, apperr.NotFound(t.notFound)
	}
	return &row, nil
}

func (t *table[T, P]) ListOwned(_ context.Context, ownerID string) ([]T, error) {
	return t.filter(ownerID, nil), nil
}

func (t *table[T, P]) UpdateOwned(_ context.Context, doc *T) error {
	e := P(doc)

	t.mu.Lock()
	defer t.mu.Unlock()
	current, ok := t.rows[e.GetID()]
	if !ok || P(&current).GetOwnerID() != e.GetOwnerID() {
		return apperr.NotFound(t.notFound)
	}
	t.rows[e.GetID()] = *doc
	return nil
}

func (t *table[T, P]) DeleteOwned(_ context.Context, ownerID, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok || P(&row).GetOwnerID() != ownerID {
		return apperr.NotFound(t.notFound)
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T, P]) CountOwned(_ context.Context, ownerID string) (int64, error) {
	return int64(len(t.filter(ownerID, nil))), nil
}

func (t *table[T, P]) FindOwnedByIDs(_ context.Context, ownerID string, ids []string) ([]T, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	return t.filter(ownerID, func(row *T) bool {
		_, ok := wanted[P(row).GetID()]
		return ok
	}), nil
}

// filter returns the owner's rows accepted by keep, newest first.
func (t *table[T, P]) filter(ownerID string, keep func(*T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0)
	for _, row := range t.rows {
		if P(&row).GetOwnerID() != ownerID {
			continue
		}
		if keep != nil && !keep(&row) {
			continue
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := P(&out[i]).GetCreatedAt(), P(&out[j]).GetCreatedAt()
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return P(&out[i]).GetID() < P(&out[j]).GetID()
	})
	return out
}

// all returns every row regardless of owner.
func (t *table[T, P]) all() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, row)
	}
	return out
}

// NewStore builds a memory backed store. Report buckets are keyed in loc.
func NewStore(loc *time.Location) *repository.Store {
	invoices := &InvoiceRepository{table: newTable[models.Invoice]("Invoice not found")}
	cash := &CashEntryRepository{table: newTable[models.CashEntry]("Cash entry not found")}

	return &repository.Store{
		Cash:      cash,
		Inventory: &InventoryRepository{table: newTable[models.InventoryItem]("Inventory item not found")},
		Customers: &CustomerRepository{table: newTable[models.Customer]("Customer not found")},
		Products:  &ProductRepository{table: newTable[models.Product]("Product not found")},
		Invoices:  invoices,
		Companies: &CompanyRepository{table: newTable[models.Company]("Company not found")},
		Users:     &UserRepository{rows: make(map[string]models.User)},
		Reports:   &ReportRepository{cash: cash, invoices: invoices, loc: loc},
		Close:     func(context.Context) error { return nil },
	}
}
