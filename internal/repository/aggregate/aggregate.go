// Package aggregate computes report buckets in Go for backends that cannot
// aggregate server side. Results match the Mongo pipelines: keys ascending,
// ties resolved by creation time and then id, whatever order the backend
// returned its rows in.
package aggregate

import (
	"sort"
	"time"

	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
)

// CashBuckets sums cash in and out per bucket.
func CashBuckets(entries []models.CashEntry, g calendar.Granularity, loc *time.Location) []models.CashBucket {
	byKey := make(map[string]*models.CashBucket)
	for _, e := range entries {
		key := g.Key(e.CreatedAt, loc)
		bucket, ok := byKey[key]
		if !ok {
			bucket = &models.CashBucket{Key: key}
			byKey[key] = bucket
		}
		switch e.Direction {
		case models.CashIn:
			bucket.In += e.TotalAmount
		case models.CashOut:
			bucket.Out += e.TotalAmount
		}
	}

	out := make([]models.CashBucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// SalesBuckets sums invoice totals and counts per bucket of invoice date.
func SalesBuckets(invoices []models.Invoice, g calendar.Granularity, loc *time.Location) []models.SalesBucket {
	byKey := make(map[string]*models.SalesBucket)
	for _, inv := range invoices {
		key := g.Key(inv.InvoiceDate, loc)
		bucket, ok := byKey[key]
		if !ok {
			bucket = &models.SalesBucket{Key: key}
			byKey[key] = bucket
		}
		bucket.Total += inv.Total
		bucket.Count++
	}

	out := make([]models.SalesBucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// DailyTopInvoices picks the highest-total invoice of each day. Invoices are
// ordered by day ascending then total descending; the first of each day wins.
func DailyTopInvoices(invoices []models.Invoice, loc *time.Location) []models.TopInvoice {
	type keyed struct {
		day string
		inv models.Invoice
	}
	rows := make([]keyed, 0, len(invoices))
	for _, inv := range byCreation(invoices) {
		rows = append(rows, keyed{day: calendar.Day.Key(inv.InvoiceDate, loc), inv: inv})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].day != rows[j].day {
			return rows[i].day < rows[j].day
		}
		return rows[i].inv.Total > rows[j].inv.Total
	})

	var out []models.TopInvoice
	for _, r := range rows {
		if len(out) > 0 && out[len(out)-1].Day == r.day {
			continue
		}
		out = append(out, models.TopInvoice{
			Day:           r.day,
			InvoiceID:     r.inv.ID,
			InvoiceNumber: r.inv.InvoiceNumber,
			Total:         r.inv.Total,
		})
	}
	return out
}

// byCreation returns a copy of invoices ordered oldest first, then by id.
func byCreation(invoices []models.Invoice) []models.Invoice {
	out := append([]models.Invoice(nil), invoices...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// DailyTopProducts sums line item quantities per day and description and keeps
// the largest of each day. Items sharing a description are merged even when
// they reference different products.
func DailyTopProducts(invoices []models.Invoice, loc *time.Location) []models.TopProduct {
	type dayTally struct {
		order []string
		qty   map[string]float64
	}
	days := make(map[string]*dayTally)
	for _, inv := range byCreation(invoices) {
		day := calendar.Day.Key(inv.InvoiceDate, loc)
		tally, ok := days[day]
		if !ok {
			tally = &dayTally{qty: make(map[string]float64)}
			days[day] = tally
		}
		for _, item := range inv.Items {
			if _, seen := tally.qty[item.Description]; !seen {
				tally.order = append(tally.order, item.Description)
			}
			tally.qty[item.Description] += item.Quantity
		}
	}

	out := make([]models.TopProduct, 0, len(days))
	for day, tally := range days {
		if len(tally.order) == 0 {
			continue
		}
		names := append([]string(nil), tally.order...)
		sort.SliceStable(names, func(i, j int) bool { return tally.qty[names[i]] > tally.qty[names[j]] })
		out = append(out, models.TopProduct{Day: day, Description: names[0], Quantity: tally.qty[names[0]]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// PaymentModes totals invoices per payment mode, largest amount first.
func PaymentModes(invoices []models.Invoice) []models.PaymentModeTotal {
	byMode := make(map[string]*models.PaymentModeTotal)
	for i := range invoices {
		mode := invoices[i].Mode()
		bucket, ok := byMode[mode]
		if !ok {
			bucket = &models.PaymentModeTotal{Mode: mode}
			byMode[mode] = bucket
		}
		bucket.Total += invoices[i].Total
		bucket.Count++
	}

	out := make([]models.PaymentModeTotal, 0, len(byMode))
	for _, b := range byMode {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Mode < out[j].Mode
	})
	return out
}

// StatusTotals counts and sums invoices per raw status value.
func StatusTotals(invoices []models.Invoice) []models.StatusTotal {
	byStatus := make(map[models.InvoiceStatus]*models.StatusTotal)
	var order []models.InvoiceStatus
	for _, inv := range invoices {
		bucket, ok := byStatus[inv.Status]
		if !ok {
			bucket = &models.StatusTotal{Status: inv.Status}
			byStatus[inv.Status] = bucket
			order = append(order, inv.Status)
		}
		bucket.Count++
		bucket.Total += inv.Total
	}

	out := make([]models.StatusTotal, 0, len(order))
	for _, status := range order {
		out = append(out, *byStatus[status])
	}
	return out
}
