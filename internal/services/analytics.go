package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/models"
)

// positive renders the spend contribution of col: credit notes count as zero.
func positive(col string) string {
	return fmt.Sprintf("CASE WHEN %[1]s > 0 THEN %[1]s ELSE 0 END", col)
}

// AnalyticsService runs the read-only dashboard aggregations. Queries never
// depend on the caller; masking happens on the returned DTOs.
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

// WithClock returns a copy using now as the current time.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	cp := *s
	cp.now = now
	return &cp
}

// Now returns the service clock's current time.
func (s *AnalyticsService) Now() time.Time { return s.now() }

// Stats computes invoice and document counts, the year-to-date positive spend
// and the all-time average positive invoice total.
func (s *AnalyticsService) Stats(ctx context.Context) (Stats, error) {
	db := s.db.WithContext(ctx)
	now := s.now()
	startOfYear := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())

	var out Stats
	if err := db.Model(&models.Invoice{}).Count(&out.TotalInvoicesProcessed).Error; err != nil {
		return Stats{}, fmt.Errorf("count invoices: %w", err)
	}
	if err := db.Model(&models.Document{}).Count(&out.DocumentsUploaded).Error; err != nil {
		return Stats{}, fmt.Errorf("count documents: %w", err)
	}

	var agg struct {
		Total float64
	}
	if err := db.Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("invoice_date >= ? AND total_amount > 0", startOfYear).
		Scan(&agg).Error; err != nil {
		return Stats{}, fmt.Errorf("sum spend ytd: %w", err)
	}
	out.TotalSpendYTD = agg.Total

	agg.Total = 0
	if err := db.Model(&models.Invoice{}).
		Select("COALESCE(AVG(total_amount), 0) AS total").
		Where("total_amount > 0").
		Scan(&agg).Error; err != nil {
		return Stats{}, fmt.Errorf("average invoice value: %w", err)
	}
	out.AverageInvoiceValue = agg.Total
	return out, nil
}

// Trends returns invoice count and positive spend per month, oldest first.
// Invoices without a date are skipped.
func (s *AnalyticsService) Trends(ctx context.Context) ([]TrendPoint, error) {
	db := s.db.WithContext(ctx)
	q := fmt.Sprintf(`SELECT %s AS month,
		COUNT(*) AS invoice_count,
		COALESCE(SUM(%s), 0) AS total_spend
	FROM invoices
	WHERE invoice_date IS NOT NULL
	GROUP BY 1
	ORDER BY 1 ASC`, monthExpr(db, "invoice_date"), positive("total_amount"))

	var rows []TrendPoint
	if err := db.Raw(q).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("invoice trends: %w", err)
	}
	return nonNil(rows), nil
}

// TopVendors ranks vendors by positive spend, at most 10 rows.
func (s *AnalyticsService) TopVendors(ctx context.Context) ([]VendorSpend, error) {
	q := fmt.Sprintf(`SELECT v.name AS vendor,
		COALESCE(SUM(%s), 0) AS spend
	FROM invoices i
	LEFT JOIN vendors v ON v.id = i.vendor_id
	GROUP BY v.name
	ORDER BY spend DESC NULLS LAST
	LIMIT 10`, positive("i.total_amount"))

	var rows []VendorSpend
	if err := s.db.WithContext(ctx).Raw(q).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("top vendors: %w", err)
	}
	return nonNil(rows), nil
}

// CategorySpend sums absolute line item totals per category. Line items
// without a category land in "Uncategorized".
func (s *AnalyticsService) CategorySpend(ctx context.Context) ([]CategorySpend, error) {
	const q = `SELECT COALESCE(category, 'Uncategorized') AS category,
		COALESCE(SUM(ABS(total_price)), 0) AS amount
	FROM line_items
	GROUP BY 1
	ORDER BY amount DESC`

	var rows []CategorySpend
	if err := s.db.WithContext(ctx).Raw(q).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("category spend: %w", err)
	}
	return nonNil(rows), nil
}

// Outflow bucket labels, in window order.
var OutflowBucketLabels = [4]string{"0 - 7 days", "8 - 30 days", "31 - 60 days", "60+ days"}

// CashOutflowBuckets sums positive totals of invoices due in [start, end]
// (by calendar date) into four windows measured in days from start's date:
// up to 7, 8 to 30, 31 to 60, beyond 60.
func (s *AnalyticsService) CashOutflowBuckets(ctx context.Context, start, end time.Time) ([]OutflowBucket, error) {
	startDay := dateOf(start)
	endDay := dateOf(end.In(start.Location()))

	var sums [4]decimal.Decimal
	if !endDay.Before(startDay) {
		var rows []struct {
			DueDate     time.Time
			TotalAmount decimal.NullDecimal
		}
		err := s.db.WithContext(ctx).Model(&models.Invoice{}).
			Select("due_date, total_amount").
			Where("due_date IS NOT NULL AND due_date >= ? AND due_date < ?", startDay, endDay.AddDate(0, 0, 1)).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("cash outflow buckets: %w", err)
		}
		for _, r := range rows {
			inv := models.Invoice{TotalAmount: r.TotalAmount}
			b := bucketFor(daysBetween(startDay, r.DueDate.In(start.Location())))
			sums[b] = sums[b].Add(inv.PositiveTotal())
		}
	}

	out := make([]OutflowBucket, len(OutflowBucketLabels))
	for i, label := range OutflowBucketLabels {
		out[i] = OutflowBucket{Label: label, Amount: sums[i].InexactFloat64()}
	}
	return out, nil
}

func bucketFor(days int) int {
	switch {
	case days <= 7:
		return 0
	case days <= 30:
		return 1
	case days <= 60:
		return 2
	default:
		return 3
	}
}

// CashOutflowDaily returns one row per day stepping from start to end
// inclusive, with the positive totals due that day. Days with nothing due
// are present with zero outflow. end before start yields no rows.
func (s *AnalyticsService) CashOutflowDaily(ctx context.Context, start, end time.Time) ([]DailyOutflow, error) {
	var days []string
	for t := start; !t.After(end); t = t.AddDate(0, 0, 1) {
		days = append(days, t.Format(time.DateOnly))
	}
	if len(days) == 0 {
		return []DailyOutflow{}, nil
	}

	db := s.db.WithContext(ctx)
	first := dateOf(start)
	last, _ := time.ParseInLocation(time.DateOnly, days[len(days)-1], start.Location())
	q := fmt.Sprintf(`SELECT %s AS day,
		COALESCE(SUM(%s), 0) AS outflow
	FROM invoices
	WHERE due_date IS NOT NULL AND due_date >= ? AND due_date < ?
	GROUP BY 1`, dayExpr(db, "due_date"), positive("total_amount"))

	var rows []struct {
		Day     string
		Outflow float64
	}
	if err := db.Raw(q, first, last.AddDate(0, 0, 1)).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("cash outflow daily: %w", err)
	}
	byDay := make(map[string]float64, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Outflow
	}

	out := make([]DailyOutflow, 0, len(days))
	for _, d := range days {
		out = append(out, DailyOutflow{Date: d, Outflow: byDay[d]})
	}
	return out, nil
}

// InvoiceQuery selects a page of the invoice listing.
type InvoiceQuery struct {
	Search   string
	Page     int
	PageSize int
	// Sort is "field:direction", e.g. "invoiceDate:desc".
	Sort string
}

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultSort     = "invoiceDate:desc"
)

var invoiceSortColumns = map[string]string{
	"id":            "invoices.id",
	"invoiceDate":   "invoices.invoice_date",
	"invoiceNumber": "invoices.invoice_number",
	"totalAmount":   "invoices.total_amount",
	"dueDate":       "invoices.due_date",
	"status":        "invoices.status",
	"createdAt":     "invoices.id",
}

// Normalize clamps page to at least 1 and page size into [1, MaxPageSize].
func (q InvoiceQuery) Normalize() InvoiceQuery {
	q.Page = max(q.Page, 1)
	q.PageSize = min(max(q.PageSize, 1), MaxPageSize)
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	return q
}

// orderClause maps the requested sort onto a whitelisted column. Unknown
// fields fall back to the invoice date; direction is ascending only when
// exactly "asc".
func (q InvoiceQuery) orderClause() string {
	field, dir, _ := strings.Cut(q.Sort, ":")
	col, ok := invoiceSortColumns[field]
	if !ok {
		col = invoiceSortColumns["invoiceDate"]
	}
	if dir == "asc" {
		return col + " ASC"
	}
	return col + " DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListInvoices returns one page of invoices matching the search term on
// invoice number, vendor name or customer name, case-insensitively. The term
// is matched as given, surrounding spaces included.
func (s *AnalyticsService) ListInvoices(ctx context.Context, q InvoiceQuery) (InvoicePage, error) {
	q = q.Normalize()
	base := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Joins("LEFT JOIN vendors ON vendors.id = invoices.vendor_id").
		Joins("LEFT JOIN customers ON customers.id = invoices.customer_id")
	if q.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(q.Search)) + "%"
		base = base.Where(
			`LOWER(invoices.invoice_number) LIKE ? ESCAPE '\' OR LOWER(vendors.name) LIKE ? ESCAPE '\' OR LOWER(customers.name) LIKE ? ESCAPE '\'`,
			like, like, like,
		)
	}

	page := InvoicePage{Page: q.Page, PageSize: q.PageSize, Items: []InvoiceRow{}}
	if err := base.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return InvoicePage{}, fmt.Errorf("count invoices: %w", err)
	}

	var invoices []models.Invoice
	err := base.Session(&gorm.Session{}).
		Select("invoices.*").
		Preload("Vendor").
		Order(q.orderClause()).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&invoices).Error
	if err != nil {
		return InvoicePage{}, fmt.Errorf("list invoices: %w", err)
	}
	for _, inv := range invoices {
		row := InvoiceRow{
			ID:            inv.ID,
			InvoiceDate:   inv.InvoiceDate,
			InvoiceNumber: inv.InvoiceNumber,
			Amount:        inv.TotalAmount,
			Status:        inv.Status,
		}
		if inv.Vendor != nil && inv.Vendor.Name != "" {
			name := inv.Vendor.Name
			row.Vendor = &name
		}
		page.Items = append(page.Items, row)
	}
	return page, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, both truncated to dates.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
