package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

const (
	cashCollection      = "cash_entries"
	inventoryCollection = "inventory_items"
	customerCollection  = "customers"
	productCollection   = "products"
	invoiceCollection   = "invoices"
	companyCollection   = "companies"
	userCollection      = "users"
)

// MongoDBRepository owns the client shared by every collection repository.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// EnsureIndexes creates the owner and uniqueness indexes the repositories rely on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string][]mongo.IndexModel{
		cashCollection: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
		inventoryCollection: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "productNameLower", Value: 1}}},
		},
		customerCollection: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		productCollection: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		invoiceCollection: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "invoiceNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "invoiceDate", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}},
		},
		companyCollection: {
			{Keys: bson.D{{Key: "ownerId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "taxIdLower", Value: 1}}, Options: unique},
		},
		userCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
	}

	for name, specs := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	r.logger.Info("mongodb indexes ensured", zap.Int("collections", len(indexes)))
	return nil
}

// Store exposes the repositories backed by this connection. Report buckets are keyed in loc.
func (r *MongoDBRepository) Store(loc *time.Location) *repository.Store {
	invoices := r.db.Collection(invoiceCollection)
	cash := r.db.Collection(cashCollection)

	return &repository.Store{
		Cash:      &CashEntryRepository{ownedCollection: newOwned[models.CashEntry](cash, "Cash entry not found")},
		Inventory: &InventoryRepository{ownedCollection: newOwned[models.InventoryItem](r.db.Collection(inventoryCollection), "Inventory item not found")},
		Customers: &CustomerRepository{ownedCollection: newOwned[models.Customer](r.db.Collection(customerCollection), "Customer not found")},
		Products:  &ProductRepository{ownedCollection: newOwned[models.Product](r.db.Collection(productCollection), "Product not found")},
		Invoices:  &InvoiceRepository{ownedCollection: newOwned[models.Invoice](invoices, "Invoice not found")},
		Companies: &CompanyRepository{coll: r.db.Collection(companyCollection)},
		Users:     &UserRepository{coll: r.db.Collection(userCollection)},
		Reports:   &ReportRepository{cash: cash, invoices: invoices, loc: loc},
		Close:     r.Close,
	}
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
