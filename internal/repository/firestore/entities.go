package firestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository/aggregate"
)

// withinPeriod narrows q to documents whose field falls inside p.
func withinPeriod(q firestore.Query, field string, p models.Period) firestore.Query {
	if !p.From.IsZero() {
		q = q.Where(field, ">=", p.From)
	}
	if !p.To.IsZero() {
		q = q.Where(field, "<=", p.To)
	}
	return q
}

// CashEntryRepository stores drawer counts.
type CashEntryRepository struct {
	*collection[models.CashEntry, *models.CashEntry]
}

func (r *CashEntryRepository) ListOwned(ctx context.Context, ownerID string, period models.Period) ([]models.CashEntry, error) {
	q := withinPeriod(r.owned(ownerID), "createdAt", period)
	return r.query(ctx, q.OrderBy("createdAt", firestore.Desc))
}

// InventoryRepository stores stock items.
type InventoryRepository struct {
	*collection[models.InventoryItem, *models.InventoryItem]
}

func (r *InventoryRepository) Search(ctx context.Context, ownerID string, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	q := r.owned(ownerID)
	if prefix := strings.ToLower(strings.TrimSpace(filter.NamePrefix)); prefix != "" {
		// \uf8ff sorts after every other code point, closing the prefix range.
		q = q.Where("productNameLower", ">=", prefix).Where("productNameLower", "<", prefix+"\uf8ff")
	}
	return r.query(ctx, q.OrderBy("productNameLower", firestore.Asc))
}

// LowStock compares two fields of the same document, which Firestore cannot
// express in a query, so the owner's items are filtered here.
func (r *InventoryRepository) LowStock(ctx context.Context, ownerID string) ([]models.InventoryItem, error) {
	items, err := r.query(ctx, r.owned(ownerID))
	if err != nil {
		return nil, err
	}
	out := make([]models.InventoryItem, 0)
	for i := range items {
		if items[i].LowStock() {
			out = append(out, items[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

// CustomerRepository stores customers.
type CustomerRepository struct {
	*collection[models.Customer, *models.Customer]
}

// ProductRepository stores catalogue products.
type ProductRepository struct {
	*collection[models.Product, *models.Product]
}

// InvoiceRepository stores invoices.
type InvoiceRepository struct {
	*collection[models.Invoice, *models.Invoice]
}

func (r *InvoiceRepository) NumberTaken(ctx context.Context, ownerID, number, exceptID string) (bool, error) {
	matches, err := r.query(ctx, r.owned(ownerID).Where("invoiceNumber", "==", number).Limit(2))
	if err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	for _, inv := range matches {
		if inv.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *InvoiceRepository) StatusTotals(ctx context.Context, ownerID string) ([]models.StatusTotal, error) {
	invoices, err := r.query(ctx, r.owned(ownerID).OrderBy("createdAt", firestore.Asc))
	if err != nil {
		return nil, err
	}
	return aggregate.StatusTotals(invoices), nil
}

func (r *InvoiceRepository) Recent(ctx context.Context, ownerID string, limit int) ([]models.Invoice, error) {
	q := r.owned(ownerID).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.query(ctx, q)
}

func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	iter := r.ref().
		Where("status", "==", string(models.InvoiceStatusSent)).
		Where("dueDate", "<", now).
		Documents(ctx)
	snaps, err := iter.GetAll()
	if err != nil {
		return 0, fmt.Errorf("query overdue invoices: %w", err)
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(snaps))
	for _, snap := range snaps {
		job, err := bw.Update(snap.Ref, []firestore.Update{
			{Path: "status", Value: string(models.InvoiceStatusOverdue)},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("queue overdue update: %w", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var changed int64
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return changed, fmt.Errorf("mark invoice overdue: %w", err)
		}
		changed++
	}
	return changed, nil
}

// between returns the owner's invoices dated inside period, oldest first.
func (r *InvoiceRepository) between(ctx context.Context, ownerID string, period models.Period) ([]models.Invoice, error) {
	rows, err := r.query(ctx, withinPeriod(r.owned(ownerID), "invoiceDate", period))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows, nil
}

// CompanyRepository stores company profiles. The document id is the owner id,
// which keeps one profile per owner.
type CompanyRepository struct {
	*collection[models.Company, *models.Company]
}

func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	company.ID = company.OwnerID
	err := r.collection.Create(ctx, company)
	if errors.Is(err, apperr.ErrConflict) {
		return apperr.Conflict("Company already exists for this user")
	}
	return err
}

func (r *CompanyRepository) FindByOwner(ctx context.Context, ownerID string) (*models.Company, error) {
	return r.FindOwned(ctx, ownerID, ownerID)
}

func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	return r.UpdateOwned(ctx, company)
}

func (r *CompanyRepository) TaxIDTaken(ctx context.Context, taxIDLower, exceptOwnerID string) (bool, error) {
	matches, err := r.query(ctx, r.ref().Where("taxIdLower", "==", taxIDLower).Limit(2))
	if err != nil {
		return false, fmt.Errorf("check tax id: %w", err)
	}
	for _, c := range matches {
		if c.OwnerID != exceptOwnerID {
			return true, nil
		}
	}
	return false, nil
}

// UserRepository stores accounts.
type UserRepository struct {
	client *firestore.Client
}

func (r *UserRepository) ref() *firestore.CollectionRef {
	return r.client.Collection(userCollection)
}

// Create runs in a transaction so two registrations cannot claim the same email.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	docRef := r.ref().NewDoc()
	if user.ID != "" {
		docRef = r.ref().Doc(user.ID)
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Documents(r.ref().Where("email", "==", user.Email).Limit(1)).GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			return apperr.Conflict("Email already registered")
		}
		return tx.Create(docRef, user)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return err
		}
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = docRef.ID
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, apperr.NotFound("User not found")
	}
	snap, err := r.ref().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return decodeUser(snap)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	snaps, err := r.ref().Where("email", "==", email).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if len(snaps) == 0 {
		return nil, apperr.NotFound("User not found")
	}
	return decodeUser(snaps[0])
}

func decodeUser(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var user models.User
	if err := snap.DataTo(&user); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", snap.Ref.ID, err)
	}
	user.ID = snap.Ref.ID
	return &user, nil
}
