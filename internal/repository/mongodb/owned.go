package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/models"
)

type entityPtr[T any] interface {
	*T
	models.Entity
}

// ownedCollection implements the owner-scoped CRUD shared by entity repositories.
// Documents are keyed by hex ObjectID strings.
type ownedCollection[T any, P entityPtr[T]] struct {
	coll     *mongo.Collection
	notFound string
}

func newOwned[T any, P entityPtr[T]](coll *mongo.Collection, notFound string) *ownedCollection[T, P] {
	return &ownedCollection[T, P]{coll: coll, notFound: notFound}
}

func ownedFilter(ownerID, id string) bson.M {
	return bson.M{"_id": id, "ownerId": ownerID}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

func (c *ownedCollection[T, P]) Create(ctx context.Context, doc *T) error {
	e := P(doc)
	if e.GetID() == "" {
		e.SetID(primitive.NewObjectID().Hex())
	}
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("duplicate key")
		}
		return fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	return nil
}

func (c *ownedCollection[T, P]) FindOwned(ctx context.Context, ownerID, id string) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, ownedFilter(ownerID, id)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(c.notFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}
	return &doc, nil
}

func (c *ownedCollection[T, P]) ListOwned(ctx context.Context, ownerID string) ([]T, error) {
	return c.find(ctx, bson.M{"ownerId": ownerID}, options.Find().SetSort(newestFirst))
}

func (c *ownedCollection[T, P]) UpdateOwned(ctx context.Context, doc *T) error {
	e := P(doc)
	res, err := c.coll.ReplaceOne(ctx, ownedFilter(e.GetOwnerID(), e.GetID()), doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("duplicate key")
		}
		return fmt.Errorf("replace in %s: %w", c.coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(c.notFound)
	}
	return nil
}

func (c *ownedCollection[T, P]) DeleteOwned(ctx context.Context, ownerID, id string) error {
	res, err := c.coll.DeleteOne(ctx, ownedFilter(ownerID, id))
	if err != nil {
		return fmt.Errorf("delete from %s: %w", c.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(c.notFound)
	}
	return nil
}

func (c *ownedCollection[T, P]) CountOwned(ctx context.Context, ownerID string) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M{"ownerId": ownerID})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", c.coll.Name(), err)
	}
	return n, nil
}

func (c *ownedCollection[T, P]) FindOwnedByIDs(ctx context.Context, ownerID string, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	return c.find(ctx, bson.M{"ownerId": ownerID, "_id": bson.M{"$in": ids}})
}

func (c *ownedCollection[T, P]) find(ctx context.Context, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", c.coll.Name(), err)
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
	}
	return out, nil
}
