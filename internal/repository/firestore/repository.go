// Package firestore stores billing data in Cloud Firestore. Firestore has no
// server-side grouping, so report buckets are computed in Go over the
// documents of the requested window.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mamadbah2/billing/internal/config"
	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

const (
	cashCollection      = "cashEntries"
	inventoryCollection = "inventoryItems"
	customerCollection  = "customers"
	productCollection   = "products"
	invoiceCollection   = "invoices"
	companyCollection   = "companies"
	userCollection      = "users"

	// getAllBatch bounds the number of document refs fetched per GetAll call.
	getAllBatch = 100
)

// FirestoreRepository owns the Firestore client shared by the collection repositories.
type FirestoreRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreRepository builds a client for the configured project.
func NewFirestoreRepository(ctx context.Context, cfg config.FirestoreConfig, logger *zap.Logger) (*FirestoreRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}

	return &FirestoreRepository{client: client, logger: logger}, nil
}

// Store exposes the repositories backed by this client. Report buckets are keyed in loc.
func (r *FirestoreRepository) Store(loc *time.Location) *repository.Store {
	cash := &CashEntryRepository{collection: newCollection[models.CashEntry](r.client, cashCollection, "Cash entry not found")}
	invoices := &InvoiceRepository{collection: newCollection[models.Invoice](r.client, invoiceCollection, "Invoice not found")}

	return &repository.Store{
		Cash:      cash,
		Inventory: &InventoryRepository{collection: newCollection[models.InventoryItem](r.client, inventoryCollection, "Inventory item not found")},
		Customers: &CustomerRepository{collection: newCollection[models.Customer](r.client, customerCollection, "Customer not found")},
		Products:  &ProductRepository{collection: newCollection[models.Product](r.client, productCollection, "Product not found")},
		Invoices:  invoices,
		Companies: &CompanyRepository{collection: newCollection[models.Company](r.client, companyCollection, "Company not found")},
		Users:     &UserRepository{client: r.client},
		Reports:   &ReportRepository{cash: cash, invoices: invoices, loc: loc},
		Close:     r.Close,
	}
}

// Close releases the Firestore client.
func (r *FirestoreRepository) Close(context.Context) error {
	return r.client.Close()
}

type entityPtr[T any] interface {
	*T
	models.Entity
}

// collection implements owner-scoped CRUD over one Firestore collection.
type collection[T any, P entityPtr[T]] struct {
	client   *firestore.Client
	name     string
	notFound string
}

func newCollection[T any, P entityPtr[T]](client *firestore.Client, name, notFound string) *collection[T, P] {
	return &collection[T, P]{client: client, name: name, notFound: notFound}
}

func (c *collection[T, P]) ref() *firestore.CollectionRef {
	return c.client.Collection(c.name)
}

func (c *collection[T, P]) owned(ownerID string) firestore.Query {
	return c.ref().Where("ownerId", "==", ownerID)
}

func (c *collection[T, P]) Create(ctx context.Context, doc *T) error {
	e := P(doc)
	var docRef *firestore.DocumentRef
	if e.GetID() == "" {
		docRef = c.ref().NewDoc()
		e.SetID(docRef.ID)
	} else {
		docRef = c.ref().Doc(e.GetID())
	}

	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return apperr.Conflict("duplicate id")
		}
		return fmt.Errorf("create %s document: %w", c.name, err)
	}
	return nil
}

func (c *collection[T, P]) FindOwned(ctx context.Context, ownerID, id string) (*T, error) {
	if id == "" {
		return nil, apperr.NotFound(c.notFound)
	}
	snap, err := c.ref().Doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, apperr.NotFound(c.notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s document: %w", c.name, err)
	}

	doc, err := decode[T, P](snap)
	if err != nil {
		return nil, err
	}
	if P(doc).GetOwnerID() != ownerID {
		return nil, apperr.NotFound(c.notFound)
	}
	return doc, nil
}

func (c *collection[T, P]) ListOwned(ctx context.Context, ownerID string) ([]T, error) {
	return c.query(ctx, c.owned(ownerID).OrderBy("createdAt", firestore.Desc))
}

func (c *collection[T, P]) UpdateOwned(ctx context.Context, doc *T) error {
	e := P(doc)
	if _, err := c.FindOwned(ctx, e.GetOwnerID(), e.GetID()); err != nil {
		return err
	}
	if _, err := c.ref().Doc(e.GetID()).Set(ctx, doc); err != nil {
		return fmt.Errorf("set %s document: %w", c.name, err)
	}
	return nil
}

func (c *collection[T, P]) DeleteOwned(ctx context.Context, ownerID, id string) error {
	if _, err := c.FindOwned(ctx, ownerID, id); err != nil {
		return err
	}
	if _, err := c.ref().Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s document: %w", c.name, err)
	}
	return nil
}

func (c *collection[T, P]) CountOwned(ctx context.Context, ownerID string) (int64, error) {
	snaps, err := c.owned(ownerID).Select().Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("count %s documents: %w", c.name, err)
	}
	return int64(len(snaps)), nil
}

func (c *collection[T, P]) FindOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]T, error) {
	out := make([]T, 0, len(ids))
	for start := 0; start < len(ids); start += getAllBatch {
		end := min(start+getAllBatch, len(ids))
		refs := make([]*firestore.DocumentRef, 0, end-start)
		for _, id := range ids[start:end] {
			if id != "" {
				refs = append(refs, c.ref().Doc(id))
			}
		}
		if len(refs) == 0 {
			continue
		}

		snaps, err := c.client.GetAll(ctx, refs)
		if err != nil {
			return nil, fmt.Errorf("get %s documents: %w", c.name, err)
		}
		for _, snap := range snaps {
			if !snap.Exists() {
				continue
			}
			doc, err := decode[T, P](snap)
			if err != nil {
				return nil, err
			}
			if P(doc).GetOwnerID() == ownerID {
				out = append(out, *doc)
			}
		}
	}
	return out, nil
}

func (c *collection[T, P]) query(ctx context.Context, q firestore.Query) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	out := make([]T, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", c.name, err)
		}
		doc, err := decode[T, P](snap)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, nil
}

func decode[T any, P entityPtr[T]](snap *firestore.DocumentSnapshot) (*T, error) {
	var doc T
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", snap.Ref.ID, err)
	}
	P(&doc).SetID(snap.Ref.ID)
	return &doc, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
