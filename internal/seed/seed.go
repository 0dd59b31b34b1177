// Package seed loads the document export into the relational schema.
// Every record is upserted, so a run can be repeated against the same
// database.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shockerli/cvt"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/models"
)

// Result counts what one run wrote.
type Result struct {
	Documents int `json:"documents"`
	Invoices  int `json:"invoices"`
	LineItems int `json:"lineItems"`
}

// record is one exported document, kept loosely typed since the export
// mixes strings, numbers and extended JSON wrappers for the same field.
type record map[string]any

// RunFile seeds from the export at path.
func RunFile(ctx context.Context, db *gorm.DB, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("dataset not found at %s", path)
		}
		return Result{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	slog.Info("seeding", "path", path)
	return Run(ctx, db, f)
}

// Run seeds every document in the JSON array read from r. Each document is
// written in its own transaction.
func Run(ctx context.Context, db *gorm.DB, r io.Reader) (Result, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var docs []record
	if err := dec.Decode(&docs); err != nil {
		return Result{}, fmt.Errorf("decode dataset: %w", err)
	}

	var res Result
	for _, doc := range docs {
		id := text(doc["_id"])
		if id == nil {
			slog.Warn("skipping document without _id")
			continue
		}
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			items, err := seedDocument(tx, *id, doc)
			if err != nil {
				return err
			}
			res.LineItems += items
			return nil
		})
		if err != nil {
			return res, fmt.Errorf("seed document %s: %w", *id, err)
		}
		res.Documents++
		res.Invoices++
	}
	slog.Info("seeding completed", "documents", res.Documents, "invoices", res.Invoices, "lineItems", res.LineItems)
	return res, nil
}

func seedDocument(tx *gorm.DB, id string, doc record) (int, error) {
	extracted := dig(doc, "extractedData")
	llm := dig(extracted, "llmData")

	document := models.Document{
		ID:                 id,
		Name:               str(doc["name"]),
		FilePath:           str(doc["filePath"]),
		FileType:           str(doc["fileType"]),
		FileSize:           fileSize(doc["fileSize"]),
		Status:             str(doc["status"]),
		OrganizationID:     str(doc["organizationId"]),
		DepartmentID:       str(doc["departmentId"]),
		CreatedAt:          date(doc["createdAt"]),
		UpdatedAt:          date(doc["updatedAt"]),
		ProcessedAt:        date(doc["processedAt"]),
		IsValidatedByHuman: cvt.Bool(doc["isValidatedByHuman"]),
		SavedAt:            date(dig(extracted, "savedAt")),
		SavedBy:            str(dig(extracted, "savedBy")),
		LastValidatedAt:    date(dig(extracted, "lastValidatedAt")),
		ValidatedBy:        str(dig(extracted, "validatedBy")),
		AnalyticsID:        str(doc["analyticsId"]),
		MetadataJSON:       rawJSON(doc["metadata"]),
		LLMRawJSON:         rawJSON(llm),
	}
	var stored models.Document
	if err := tx.Where(models.Document{ID: id}).Assign(document).FirstOrCreate(&stored).Error; err != nil {
		return 0, fmt.Errorf("upsert document: %w", err)
	}

	vendorID, err := upsertVendor(tx, value(llm, "vendor"))
	if err != nil {
		return 0, err
	}
	customerID, err := upsertCustomer(tx, value(llm, "customer"))
	if err != nil {
		return 0, err
	}

	invoiceVal := value(llm, "invoice")
	paymentVal := value(llm, "payment")
	summaryVal := value(llm, "summary")

	status := text(dig(doc, "validatedData", "status"))
	if status == nil {
		status = text(doc["status"])
	}

	invoice := models.Invoice{
		DocumentID:         id,
		InvoiceNumber:      text(value(invoiceVal, "invoiceId")),
		InvoiceDate:        date(value(invoiceVal, "invoiceDate")),
		DeliveryDate:       date(value(invoiceVal, "deliveryDate")),
		VendorID:           vendorID,
		CustomerID:         customerID,
		SubTotal:           number(value(summaryVal, "subTotal")),
		TotalTax:           number(value(summaryVal, "totalTax")),
		TotalAmount:        number(value(summaryVal, "invoiceTotal")),
		CurrencySymbol:     text(value(summaryVal, "currencySymbol")),
		Status:             status,
		DueDate:            date(value(paymentVal, "dueDate")),
		PaymentTerms:       text(value(paymentVal, "paymentTerms")),
		BankAccountNumber:  text(value(paymentVal, "bankAccountNumber")),
		BIC:                text(value(paymentVal, "BIC")),
		AccountName:        text(value(paymentVal, "accountName")),
		NetDays:            intOf(value(paymentVal, "netDays")),
		DiscountPercentage: number(value(paymentVal, "discountPercentage")),
		DiscountDays:       intOf(value(paymentVal, "discountDays")),
		DiscountDueDate:    date(value(paymentVal, "discountDueDate")),
		DiscountedTotal:    number(value(paymentVal, "discountedTotal")),
	}
	var storedInvoice models.Invoice
	if err := tx.Where(models.Invoice{DocumentID: id}).Assign(invoice).FirstOrCreate(&storedInvoice).Error; err != nil {
		return 0, fmt.Errorf("upsert invoice: %w", err)
	}

	items := lineItems(storedInvoice.ID, value(dig(llm, "lineItems", "value"), "items"))
	if len(items) == 0 {
		return 0, nil
	}
	if err := tx.Where("invoice_id = ?", storedInvoice.ID).Delete(&models.LineItem{}).Error; err != nil {
		return 0, fmt.Errorf("clear line items: %w", err)
	}
	if err := tx.Create(&items).Error; err != nil {
		return 0, fmt.Errorf("insert line items: %w", err)
	}
	return len(items), nil
}

// upsertVendor matches on (name, tax id) when a tax id is present and on
// name alone otherwise. A known address replaces the stored one.
func upsertVendor(tx *gorm.DB, v any) (*uint, error) {
	name := text(value(v, "vendorName"))
	if name == nil {
		return nil, nil
	}
	where := models.Vendor{Name: *name, TaxID: text(value(v, "vendorTaxId"))}
	var vendor models.Vendor
	err := tx.Where(where).
		Assign(models.Vendor{Address: text(value(v, "vendorAddress"))}).
		FirstOrCreate(&vendor).Error
	if err != nil {
		return nil, fmt.Errorf("upsert vendor: %w", err)
	}
	return &vendor.ID, nil
}

func upsertCustomer(tx *gorm.DB, v any) (*uint, error) {
	name := text(value(v, "customerName"))
	if name == nil {
		return nil, nil
	}
	var customer models.Customer
	err := tx.Where(models.Customer{Name: *name}).
		Assign(models.Customer{Address: text(value(v, "customerAddress"))}).
		FirstOrCreate(&customer).Error
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return &customer.ID, nil
}

func lineItems(invoiceID uint, v any) []models.LineItem {
	raw, _ := v.([]any)
	items := make([]models.LineItem, 0, len(raw))
	for _, it := range raw {
		sachkonto := untrimmed(value(it, "Sachkonto"))
		items = append(items, models.LineItem{
			InvoiceID:    invoiceID,
			SrNo:         intOf(value(it, "srNo")),
			Description:  untrimmed(value(it, "description")),
			Quantity:     number(value(it, "quantity")),
			UnitPrice:    number(value(it, "unitPrice")),
			TotalPrice:   number(value(it, "totalPrice")),
			Sachkonto:    sachkonto,
			BUSchluessel: untrimmed(value(it, "BUSchluessel")),
			Category:     sachkonto,
		})
	}
	return items
}

// dig walks nested objects; any missing step yields nil.
func dig(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			if r, isRecord := v.(record); isRecord {
				m = r
			} else {
				return nil
			}
		}
		v = m[k]
	}
	return v
}

// value reads the {"<key>": {"value": ...}} wrapper the extractor emits.
func value(v any, key string) any {
	return dig(v, key, "value")
}

func untrimmed(v any) *string {
	if v == nil {
		return nil
	}
	var s string
	if n, ok := v.(json.Number); ok {
		s = n.String()
	} else {
		var err error
		if s, err = cvt.StringE(v); err != nil {
			return nil
		}
	}
	if s == "" {
		return nil
	}
	return &s
}

// text is the trimmed string form of v, nil when empty.
func text(v any) *string {
	s := untrimmed(v)
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func str(v any) string {
	if s := untrimmed(v); s != nil {
		return *s
	}
	return ""
}

// number accepts JSON numbers and strings with thousands separators.
func number(v any) decimal.NullDecimal {
	s := text(v)
	if s == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(*s, ",", ""))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func intOf(v any) *int {
	n := number(v)
	if !n.Valid {
		return nil
	}
	i := int(n.Decimal.IntPart())
	return &i
}

func int64Of(v any) *int64 {
	s := text(v)
	if s == nil {
		return nil
	}
	n, err := cvt.Int64E(*s)
	if err != nil {
		return nil
	}
	return &n
}

// fileSize reads {"$numberLong": "..."} or a plain number.
func fileSize(v any) *int64 {
	if wrapped := dig(v, "$numberLong"); wrapped != nil {
		return int64Of(wrapped)
	}
	return int64Of(v)
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", time.DateOnly}

// date accepts ISO strings, {"$date": ...} wrappers and epoch milliseconds.
func date(v any) *time.Time {
	switch d := v.(type) {
	case nil:
		return nil
	case string:
		if d == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return &t
			}
		}
		return nil
	case json.Number:
		ms, err := d.Int64()
		if err != nil {
			return nil
		}
		t := time.UnixMilli(ms).UTC()
		return &t
	case map[string]any:
		if inner, ok := d["$date"]; ok {
			return date(inner)
		}
		if ms, ok := d["$numberLong"]; ok {
			return date(json.Number(str(ms)))
		}
	}
	return nil
}

func rawJSON(v any) datatypes.JSON {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
