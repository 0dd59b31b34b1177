package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestInvoice_PositiveTotal(t *testing.T) {
	tests := []struct {
		name  string
		total decimal.NullDecimal
		want  string
	}{
		{"positive", decimal.NewNullDecimal(decimal.RequireFromString("120.50")), "120.5"},
		{"credit note", decimal.NewNullDecimal(decimal.NewFromInt(-40)), "0"},
		{"zero", decimal.NewNullDecimal(decimal.Zero), "0"},
		{"missing", decimal.NullDecimal{}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &Invoice{TotalAmount: tt.total}
			if got := inv.PositiveTotal().String(); got != tt.want {
				t.Errorf("PositiveTotal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestInvoice_OnePerDocument(t *testing.T) {
	db := setupDB(t)
	doc := Document{ID: "doc-1", Name: "a.pdf"}
	if err := db.Create(&doc).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}
	if err := db.Create(&Invoice{DocumentID: doc.ID}).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	if err := db.Create(&Invoice{DocumentID: doc.ID}).Error; err == nil {
		t.Error("expected unique violation for a second invoice on the same document")
	}
}

func TestInvoice_DecimalRoundTrip(t *testing.T) {
	db := setupDB(t)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	db.Create(&Document{ID: "doc-2"})
	inv := Invoice{
		DocumentID:  "doc-2",
		InvoiceDate: &now,
		TotalAmount: decimal.NewNullDecimal(decimal.RequireFromString("1234.56")),
		LineItems: []LineItem{
			{TotalPrice: decimal.NewNullDecimal(decimal.NewFromInt(10))},
		},
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	var got Invoice
	if err := db.Preload("LineItems").First(&got, inv.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.TotalAmount.Valid || !got.TotalAmount.Decimal.Equal(decimal.RequireFromString("1234.56")) {
		t.Errorf("TotalAmount = %v", got.TotalAmount)
	}
	if got.SubTotal.Valid {
		t.Error("SubTotal should stay NULL")
	}
	if len(got.LineItems) != 1 {
		t.Errorf("line items = %d, want 1", len(got.LineItems))
	}
}
