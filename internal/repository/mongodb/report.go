package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
)

// ReportRepository runs report aggregations as MongoDB pipelines. Bucket keys
// are rendered by $dateToString in loc.
type ReportRepository struct {
	cash     *mongo.Collection
	invoices *mongo.Collection
	loc      *time.Location
}

func (r *ReportRepository) matchStage(ownerID, dateField string, period models.Period) bson.D {
	filter := bson.M{"ownerId": ownerID}
	if cond := periodFilter(period); cond != nil {
		filter[dateField] = cond
	}
	return bson.D{{Key: "$match", Value: filter}}
}

func (r *ReportRepository) bucketKey(dateField string, g calendar.Granularity) bson.M {
	return bson.M{"$dateToString": bson.M{
		"format":   g.MongoFormat(),
		"date":     "$" + dateField,
		"timezone": r.loc.String(),
	}}
}

func sumWhen(field, value, amountField string) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$" + field, value}},
		"$" + amountField,
		0,
	}}}
}

var byKeyAsc = bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}}

func (r *ReportRepository) CashBuckets(ctx context.Context, ownerID string, period models.Period, g calendar.Granularity) ([]models.CashBucket, error) {
	pipeline := mongo.Pipeline{
		r.matchStage(ownerID, "createdAt", period),
		{{Key: "$group", Value: bson.M{
			"_id": r.bucketKey("createdAt", g),
			"in":  sumWhen("direction", string(models.CashIn), "totalAmount"),
			"out": sumWhen("direction", string(models.CashOut), "totalAmount"),
		}}},
		byKeyAsc,
	}
	out := make([]models.CashBucket, 0)
	if err := aggregateInto(ctx, r.cash, pipeline, &out); err != nil {
		return nil, fmt.Errorf("cash buckets: %w", err)
	}
	return out, nil
}

func (r *ReportRepository) SalesBuckets(ctx context.Context, ownerID string, period models.Period, g calendar.Granularity) ([]models.SalesBucket, error) {
	pipeline := mongo.Pipeline{
		r.matchStage(ownerID, "invoiceDate", period),
		{{Key: "$group", Value: bson.M{
			"_id":   r.bucketKey("invoiceDate", g),
			"total": bson.M{"$sum": "$total"},
			"count": bson.M{"$sum": 1},
		}}},
		byKeyAsc,
	}
	out := make([]models.SalesBucket, 0)
	if err := aggregateInto(ctx, r.invoices, pipeline, &out); err != nil {
		return nil, fmt.Errorf("sales buckets: %w", err)
	}
	return out, nil
}

func (r *ReportRepository) DailyTopInvoices(ctx context.Context, ownerID string, period models.Period) ([]models.TopInvoice, error) {
	out := make([]models.TopInvoice, 0)
	if err := aggregateInto(ctx, r.invoices, r.topInvoicesPipeline(ownerID, period), &out); err != nil {
		return nil, fmt.Errorf("daily top invoices: %w", err)
	}
	return out, nil
}

// topInvoicesPipeline picks the largest invoice per day. Equal totals go to the
// earliest created invoice, then the lowest id.
func (r *ReportRepository) topInvoicesPipeline(ownerID string, period models.Period) mongo.Pipeline {
	return mongo.Pipeline{
		r.matchStage(ownerID, "invoiceDate", period),
		{{Key: "$addFields", Value: bson.M{"day": r.bucketKey("invoiceDate", calendar.Day)}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "day", Value: 1},
			{Key: "total", Value: -1},
			{Key: "createdAt", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$day",
			"invoiceId":     bson.M{"$first": "$_id"},
			"invoiceNumber": bson.M{"$first": "$invoiceNumber"},
			"total":         bson.M{"$first": "$total"},
		}}},
		byKeyAsc,
	}
}

func (r *ReportRepository) DailyTopProducts(ctx context.Context, ownerID string, period models.Period) ([]models.TopProduct, error) {
	out := make([]models.TopProduct, 0)
	if err := aggregateInto(ctx, r.invoices, r.topProductsPipeline(ownerID, period), &out); err != nil {
		return nil, fmt.Errorf("daily top products: %w", err)
	}
	return out, nil
}

// topProductsPipeline sums quantities per day and description and keeps the
// largest. Equal quantities go to the description that appeared first, ordered
// by invoice creation, invoice id and then position on the invoice.
func (r *ReportRepository) topProductsPipeline(ownerID string, period models.Period) mongo.Pipeline {
	return mongo.Pipeline{
		r.matchStage(ownerID, "invoiceDate", period),
		{{Key: "$addFields", Value: bson.M{"day": r.bucketKey("invoiceDate", calendar.Day)}}},
		{{Key: "$unwind", Value: bson.M{"path": "$items", "includeArrayIndex": "itemIndex"}}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"day": "$day", "description": "$items.description"},
			"quantity": bson.M{"$sum": "$items.quantity"},
			// Embedded documents compare field by field, so the order here is the tie-break order.
			"firstSeen": bson.M{"$min": bson.D{
				{Key: "at", Value: "$createdAt"},
				{Key: "id", Value: "$_id"},
				{Key: "idx", Value: "$itemIndex"},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.day", Value: 1},
			{Key: "quantity", Value: -1},
			{Key: "firstSeen", Value: 1},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$_id.day",
			"description": bson.M{"$first": "$_id.description"},
			"quantity":    bson.M{"$first": "$quantity"},
		}}},
		byKeyAsc,
	}
}

func (r *ReportRepository) PaymentModes(ctx context.Context, ownerID string, period models.Period) ([]models.PaymentModeTotal, error) {
	pipeline := mongo.Pipeline{
		r.matchStage(ownerID, "invoiceDate", period),
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{bson.M{"$ifNull": bson.A{"$paymentMode", ""}}, bson.A{"", nil}}},
				models.DefaultPaymentMode,
				"$paymentMode",
			}},
			"total": bson.M{"$sum": "$total"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	out := make([]models.PaymentModeTotal, 0)
	if err := aggregateInto(ctx, r.invoices, pipeline, &out); err != nil {
		return nil, fmt.Errorf("payment modes: %w", err)
	}
	return out, nil
}
