// Package reporting builds the day and month bucketed cash and sales report.
package reporting

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mamadbah2/billing/internal/domain/apperr"
	"github.com/mamadbah2/billing/internal/domain/calendar"
	"github.com/mamadbah2/billing/internal/domain/models"
	"github.com/mamadbah2/billing/internal/repository"
)

const (
	defaultMonths = 12
	maxMonths     = 24

	// maxWindowDays bounds the daily series to roughly three years.
	maxWindowDays = 1096

	exportRange = "Reports!A:I"
)

// Exporter appends rows to an external spreadsheet.
type Exporter interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]any) error
}

// Query holds the raw window parameters of a report request.
type Query struct {
	From   string
	To     string
	Months string
}

// ExportResult summarises an export.
type ExportResult struct {
	Rows   int            `json:"rows"`
	Report *models.Report `json:"report"`
}

// Service assembles reports from repository buckets.
type Service struct {
	repo     repository.ReportRepository
	exporter Exporter
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance. A nil exporter disables Export.
func NewService(repo repository.ReportRepository, exporter Exporter, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, exporter: exporter, loc: loc, logger: logger, now: time.Now}
}

type window struct {
	from, to time.Time
	months   int
}

// resolve turns the raw query into a window. Unparseable values fall back to
// defaults: the current month to date and 12 months.
func (s *Service) resolve(q Query) window {
	now := s.now().In(s.loc)

	from, ok := calendar.ParseDate(q.From, s.loc)
	if !ok {
		from = calendar.StartOfMonth(now, s.loc)
	}
	to, ok := calendar.ParseDate(q.To, s.loc)
	if !ok {
		to = now
	}
	if from.After(to) {
		from, to = to, from
	}
	from = calendar.StartOfDay(from, s.loc)
	to = calendar.EndOfDay(to, s.loc)

	if earliest := calendar.StartOfDay(to, s.loc).AddDate(0, 0, -(maxWindowDays - 1)); from.Before(earliest) {
		from = earliest
	}

	months, err := strconv.Atoi(strings.TrimSpace(q.Months))
	if err != nil {
		months = defaultMonths
	}
	months = min(max(months, 1), maxMonths)

	return window{from: from, to: to, months: months}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func netAmount(in, out float64) float64 {
	return decimal.NewFromFloat(in).Sub(decimal.NewFromFloat(out)).Round(2).InexactFloat64()
}

// Build produces the daily, monthly and payment-mode report of ownerID. Any
// failing aggregation fails the whole report.
func (s *Service) Build(ctx context.Context, ownerID string, q Query) (*models.Report, error) {
	w := s.resolve(q)
	daily := models.Period{From: w.from, To: w.to}
	monthly := models.Period{
		From: calendar.StartOfMonth(w.to, s.loc).AddDate(0, -(w.months - 1), 0),
		To:   w.to,
	}

	var (
		dayCash     []models.CashBucket
		daySales    []models.SalesBucket
		topInvoices []models.TopInvoice
		topProducts []models.TopProduct
		monthCash   []models.CashBucket
		monthSales  []models.SalesBucket
		modes       []models.PaymentModeTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dayCash, err = s.repo.CashBuckets(gctx, ownerID, daily, calendar.Day)
		return err
	})
	g.Go(func() (err error) {
		daySales, err = s.repo.SalesBuckets(gctx, ownerID, daily, calendar.Day)
		return err
	})
	g.Go(func() (err error) {
		topInvoices, err = s.repo.DailyTopInvoices(gctx, ownerID, daily)
		return err
	})
	g.Go(func() (err error) {
		topProducts, err = s.repo.DailyTopProducts(gctx, ownerID, daily)
		return err
	})
	g.Go(func() (err error) {
		monthCash, err = s.repo.CashBuckets(gctx, ownerID, monthly, calendar.Month)
		return err
	})
	g.Go(func() (err error) {
		monthSales, err = s.repo.SalesBuckets(gctx, ownerID, monthly, calendar.Month)
		return err
	})
	g.Go(func() (err error) {
		modes, err = s.repo.PaymentModes(gctx, ownerID, daily)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build report: %w", err)
	}

	report := &models.Report{
		From:         w.from,
		To:           w.to,
		Timezone:     s.loc.String(),
		Months:       w.months,
		Daily:        s.dailySeries(w, dayCash, daySales, topInvoices, topProducts),
		Monthly:      s.monthlySeries(w, monthCash, monthSales),
		PaymentModes: make([]models.PaymentModeTotal, 0, len(modes)),
	}
	for _, m := range modes {
		m.Total = round2(m.Total)
		report.PaymentModes = append(report.PaymentModes, m)
	}
	return report, nil
}

func (s *Service) dailySeries(w window, cash []models.CashBucket, sales []models.SalesBucket, tops []models.TopInvoice, products []models.TopProduct) []models.DailyReport {
	cashByDay := make(map[string]models.CashBucket, len(cash))
	for _, b := range cash {
		cashByDay[b.Key] = b
	}
	salesByDay := make(map[string]models.SalesBucket, len(sales))
	for _, b := range sales {
		salesByDay[b.Key] = b
	}
	topByDay := make(map[string]models.TopInvoice, len(tops))
	for _, t := range tops {
		topByDay[t.Day] = t
	}
	productByDay := make(map[string]models.TopProduct, len(products))
	for _, p := range products {
		productByDay[p.Day] = p
	}

	keys := calendar.DayKeys(w.from, w.to, s.loc)
	out := make([]models.DailyReport, 0, len(keys))
	for _, day := range keys {
		c := cashByDay[day]
		sb := salesByDay[day]
		row := models.DailyReport{
			Day:        day,
			CashIn:     round2(c.In),
			CashOut:    round2(c.Out),
			NetCash:    netAmount(c.In, c.Out),
			SalesTotal: round2(sb.Total),
			BillCount:  sb.Count,
		}
		if top, ok := topByDay[day]; ok {
			row.TopInvoice = &top
		}
		if product, ok := productByDay[day]; ok {
			row.TopProduct = &product
		}
		out = append(out, row)
	}
	return out
}

func (s *Service) monthlySeries(w window, cash []models.CashBucket, sales []models.SalesBucket) []models.MonthlyReport {
	cashByMonth := make(map[string]models.CashBucket, len(cash))
	for _, b := range cash {
		cashByMonth[b.Key] = b
	}
	salesByMonth := make(map[string]models.SalesBucket, len(sales))
	for _, b := range sales {
		salesByMonth[b.Key] = b
	}

	keys := calendar.MonthKeys(w.to, w.months, s.loc)
	out := make([]models.MonthlyReport, 0, len(keys))
	for _, month := range keys {
		c := cashByMonth[month]
		sb := salesByMonth[month]
		out = append(out, models.MonthlyReport{
			Month:      month,
			CashIn:     round2(c.In),
			CashOut:    round2(c.Out),
			NetCash:    netAmount(c.In, c.Out),
			SalesTotal: round2(sb.Total),
			BillCount:  sb.Count,
		})
	}
	return out
}

// Export builds the report and appends its monthly series to the report sheet.
func (s *Service) Export(ctx context.Context, ownerID string, q Query) (*ExportResult, error) {
	if s.exporter == nil {
		return nil, apperr.Validation("Report export is not configured")
	}

	report, err := s.Build(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}

	exportedAt := s.now().In(s.loc).Format(time.RFC3339)
	rows := make([][]any, 0, len(report.Monthly))
	for _, m := range report.Monthly {
		rows = append(rows, []any{exportedAt, ownerID, m.Month, m.CashIn, m.CashOut, m.NetCash, m.SalesTotal, m.BillCount, report.Timezone})
	}

	if err := s.exporter.AppendRows(ctx, exportRange, rows); err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}
	s.logger.Info("report exported", zap.String("owner_id", ownerID), zap.Int("rows", len(rows)))
	return &ExportResult{Rows: len(rows), Report: report}, nil
}
