package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// View is implemented by every aggregation DTO: Admin is the unrestricted
// projection, Masked hides monetary data while keeping the row shape.
type View[T any] interface {
	Admin() T
	Masked() T
}

// Project picks the projection for a caller.
func Project[T View[T]](canViewAmounts bool, v T) T {
	if canViewAmounts {
		return v.Admin()
	}
	return v.Masked()
}

// ProjectAll applies Project to every row. The result is never nil.
func ProjectAll[T View[T]](canViewAmounts bool, rows []T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, Project(canViewAmounts, r))
	}
	return out
}

// Stats is the dashboard summary card set.
type Stats struct {
	TotalSpendYTD          float64 `json:"totalSpendYTD"`
	TotalInvoicesProcessed int64   `json:"totalInvoicesProcessed"`
	DocumentsUploaded      int64   `json:"documentsUploaded"`
	AverageInvoiceValue    float64 `json:"averageInvoiceValue"`
}

func (s Stats) Admin() Stats { return s }

func (s Stats) Masked() Stats {
	s.TotalSpendYTD = 0
	s.AverageInvoiceValue = 0
	return s
}

// TrendPoint is one month of invoice activity.
type TrendPoint struct {
	Month        string  `json:"month"`
	InvoiceCount int64   `json:"invoice_count"`
	TotalSpend   float64 `json:"total_spend"`
}

func (p TrendPoint) Admin() TrendPoint { return p }

func (p TrendPoint) Masked() TrendPoint {
	p.TotalSpend = 0
	return p
}

// VendorSpend is one row of the top vendors ranking. Vendor is null for
// invoices without a vendor.
type VendorSpend struct {
	Vendor *string `json:"vendor"`
	Spend  float64 `json:"spend"`
}

func (v VendorSpend) Admin() VendorSpend { return v }

func (v VendorSpend) Masked() VendorSpend {
	v.Spend = 0
	return v
}

// CategorySpend is the absolute line item spend for one category.
type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

func (c CategorySpend) Admin() CategorySpend { return c }

func (c CategorySpend) Masked() CategorySpend {
	c.Amount = 0
	return c
}

// OutflowBucket is the amount due inside one day-offset window.
type OutflowBucket struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

func (b OutflowBucket) Admin() OutflowBucket { return b }

func (b OutflowBucket) Masked() OutflowBucket {
	b.Amount = 0
	return b
}

// DailyOutflow is the amount due on one calendar day.
type DailyOutflow struct {
	Date    string  `json:"date"`
	Outflow float64 `json:"outflow"`
}

func (d DailyOutflow) Admin() DailyOutflow { return d }

func (d DailyOutflow) Masked() DailyOutflow {
	d.Outflow = 0
	return d
}

// InvoiceRow is one line of the invoice listing. Unlike the aggregates, the
// masked view nulls amount and status instead of zeroing them.
type InvoiceRow struct {
	ID            uint                `json:"id"`
	Vendor        *string             `json:"vendor"`
	InvoiceDate   *time.Time          `json:"invoiceDate"`
	InvoiceNumber *string             `json:"invoiceNumber"`
	Amount        decimal.NullDecimal `json:"amount"`
	Status        *string             `json:"status"`
}

func (r InvoiceRow) Admin() InvoiceRow { return r }

func (r InvoiceRow) Masked() InvoiceRow {
	r.Amount = decimal.NullDecimal{}
	r.Status = nil
	return r
}

// InvoicePage is a page of the invoice listing.
type InvoicePage struct {
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
	Total    int64        `json:"total"`
	Items    []InvoiceRow `json:"items"`
}

func (p InvoicePage) Admin() InvoicePage { return p }

func (p InvoicePage) Masked() InvoicePage {
	p.Items = ProjectAll(false, p.Items)
	return p
}
