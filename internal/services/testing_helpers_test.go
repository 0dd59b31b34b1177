package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func money(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func str(s string) *string { return &s }

type invoiceFixture struct {
	doc      string
	number   string
	vendor   *models.Vendor
	customer *models.Customer
	date     *time.Time
	due      *time.Time
	total    string
	status   string
}

func createInvoice(t *testing.T, db *gorm.DB, f invoiceFixture) models.Invoice {
	t.Helper()
	if err := db.Create(&models.Document{ID: f.doc, Name: f.doc + ".pdf"}).Error; err != nil {
		t.Fatalf("create document: %v", err)
	}
	inv := models.Invoice{
		DocumentID:  f.doc,
		InvoiceDate: f.date,
		DueDate:     f.due,
		TotalAmount: money(f.total),
	}
	if f.number != "" {
		inv.InvoiceNumber = str(f.number)
	}
	if f.status != "" {
		inv.Status = str(f.status)
	}
	if f.vendor != nil {
		inv.VendorID = &f.vendor.ID
	}
	if f.customer != nil {
		inv.CustomerID = &f.customer.ID
	}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("create invoice: %v", err)
	}
	return inv
}

func createVendor(t *testing.T, db *gorm.DB, name string) *models.Vendor {
	t.Helper()
	v := &models.Vendor{Name: name}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create vendor: %v", err)
	}
	return v
}
