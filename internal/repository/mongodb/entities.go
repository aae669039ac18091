package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
)

// periodFilter renders a models.Period as a range condition. It returns nil when both ends are open.
func periodFilter(p models.Period) bson.M {
	cond := bson.M{}
	if !p.From.IsZero() {
		cond["$gte"] = p.From
	}
	if !p.To.IsZero() {
		cond["$lte"] = p.To
	}
	if len(cond) == 0 {
		return nil
	}
	return cond
}

// CashEntryRepository stores drawer counts in the cash_entries collection.
type CashEntryRepository struct {
	*ownedCollection[models.CashEntry, *models.CashEntry]
}

func (r *CashEntryRepository) ListOwned(ctx context.Context, ownerID string, period models.Period) ([]models.CashEntry, error) {
	filter := bson.M{"ownerId": ownerID}
	if cond := periodFilter(period); cond != nil {
		filter["createdAt"] = cond
	}
	return r.find(ctx, filter, options.Find().SetSort(newestFirst))
}

// InventoryRepository stores stock items in the inventory_items collection.
type InventoryRepository struct {
	*ownedCollection[models.InventoryItem, *models.InventoryItem]
}

func (r *InventoryRepository) Search(ctx context.Context, ownerID string, filter models.InventoryFilter) ([]models.InventoryItem, error) {
	query := bson.M{"ownerId": ownerID}
	if prefix := strings.ToLower(strings.TrimSpace(filter.NamePrefix)); prefix != "" {
		query["productNameLower"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "productNameLower", Value: 1}}))
}

func (r *InventoryRepository) LowStock(ctx context.Context, ownerID string) ([]models.InventoryItem, error) {
	query := bson.M{
		"ownerId": ownerID,
		"$expr":   bson.M{"$lte": bson.A{"$quantity", "$minQuantity"}},
	}
	return r.find(ctx, query, options.Find().SetSort(bson.D{{Key: "quantity", Value: 1}}))
}

// CustomerRepository stores customers.
type CustomerRepository struct {
	*ownedCollection[models.Customer, *models.Customer]
}

// ProductRepository stores catalogue products.
type ProductRepository struct {
	*ownedCollection[models.Product, *models.Product]
}

// InvoiceRepository stores invoices.
type InvoiceRepository struct {
	*ownedCollection[models.Invoice, *models.Invoice]
}

func (r *InvoiceRepository) NumberTaken(ctx context.Context, ownerID, number, exceptID string) (bool, error) {
	filter := bson.M{"ownerId": ownerID, "invoiceNumber": number}
	if exceptID != "" {
		filter["_id"] = bson.M{"$ne": exceptID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return n > 0, nil
}

func (r *InvoiceRepository) StatusTotals(ctx context.Context, ownerID string) ([]models.StatusTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"ownerId": ownerID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"total": bson.M{"$sum": "$total"},
		}}},
	}
	out := make([]models.StatusTotal, 0)
	if err := aggregateInto(ctx, r.coll, pipeline, &out); err != nil {
		return nil, fmt.Errorf("invoice status totals: %w", err)
	}
	return out, nil
}

func (r *InvoiceRepository) Recent(ctx context.Context, ownerID string, limit int) ([]models.Invoice, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"ownerId": ownerID}, opts)
}

func (r *InvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"status": models.InvoiceStatusSent, "dueDate": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.InvoiceStatusOverdue, "updatedAt": now}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark overdue invoices: %w", err)
	}
	return res.ModifiedCount, nil
}

// CompanyRepository stores company profiles, one per owner.
type CompanyRepository struct {
	coll *mongo.Collection
}

// companyTaxIDIndex is the server's default name for the unique taxIdLower index.
const companyTaxIDIndex = "taxIdLower_1"

// companyConflict tells which unique company index a duplicate key error hit.
// It returns nil for any other error.
func companyConflict(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	taxID := false
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 && strings.Contains(e.Message, companyTaxIDIndex) {
				taxID = true
			}
		}
	} else {
		taxID = strings.Contains(err.Error(), companyTaxIDIndex)
	}
	if taxID {
		return apperr.Conflict("Tax ID is already registered")
	}
	return apperr.Conflict("Company already exists for this user")
}

func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		company.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, company); err != nil {
		if conflict := companyConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *CompanyRepository) FindByOwner(ctx context.Context, ownerID string) (*models.Company, error) {
	var company models.Company
	err := r.coll.FindOne(ctx, bson.M{"ownerId": ownerID}).Decode(&company)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("Company not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	return &company, nil
}

func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	res, err := r.coll.ReplaceOne(ctx, ownedFilter(company.OwnerID, company.ID), company)
	if err != nil {
		if conflict := companyConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("update company: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Company not found")
	}
	return nil
}

func (r *CompanyRepository) TaxIDTaken(ctx context.Context, taxIDLower, exceptOwnerID string) (bool, error) {
	filter := bson.M{"taxIdLower": taxIDLower}
	if exceptOwnerID != "" {
		filter["ownerId"] = bson.M{"$ne": exceptOwnerID}
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check tax id: %w", err)
	}
	return n > 0, nil
}

// UserRepository stores accounts.
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("Email already registered")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func aggregateInto(ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline, out any) error {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}
