package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/models"
)

const export = `[
  {
    "_id": "doc-1",
    "name": "rechnung-1.pdf",
    "fileSize": {"$numberLong": "20480"},
    "status": "processed",
    "createdAt": {"$date": "2025-01-05T10:00:00.000Z"},
    "isValidatedByHuman": true,
    "metadata": {"pages": 2},
    "extractedData": {
      "savedAt": "2025-01-06T08:30:00Z",
      "llmData": {
        "invoice": {"value": {"invoiceId": {"value": " R-1001 "}, "invoiceDate": {"value": "2025-01-03"}}},
        "vendor": {"value": {"vendorName": {"value": "Muster GmbH"}, "vendorTaxId": {"value": "DE123"}, "vendorAddress": {"value": "Berlin"}}},
        "customer": {"value": {"customerName": {"value": "Flowbit AG"}}},
        "summary": {"value": {"invoiceTotal": {"value": "1,190.00"}, "subTotal": {"value": 1000}, "totalTax": {"value": 190}, "currencySymbol": {"value": "EUR"}}},
        "payment": {"value": {"dueDate": {"value": "2025-02-02"}, "netDays": {"value": "30"}, "BIC": {"value": "BELADEBEXXX"}}},
        "lineItems": {"value": {"items": {"value": [
          {"srNo": {"value": 1}, "description": {"value": "Beratung"}, "quantity": {"value": 10}, "unitPrice": {"value": 100}, "totalPrice": {"value": 1000}, "Sachkonto": {"value": "4930"}, "BUSchluessel": {"value": "9"}},
          {"srNo": {"value": 2}, "description": {"value": "Reise"}, "totalPrice": {"value": "190"}}
        ]}}}
      }
    },
    "validatedData": {"status": "approved"}
  },
  {
    "_id": "doc-2",
    "name": "gutschrift.pdf",
    "status": "processed",
    "extractedData": {
      "llmData": {
        "vendor": {"value": {"vendorName": {"value": "Muster GmbH"}}},
        "summary": {"value": {"invoiceTotal": {"value": -50}}}
      }
    }
  }
]`

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestRunMapsExport(t *testing.T) {
	db := setupDB(t)

	res, err := Run(context.Background(), db, strings.NewReader(export))
	require.NoError(t, err)
	assert.Equal(t, Result{Documents: 2, Invoices: 2, LineItems: 2}, res)

	var doc models.Document
	require.NoError(t, db.First(&doc, "id = ?", "doc-1").Error)
	require.NotNil(t, doc.FileSize)
	assert.EqualValues(t, 20480, *doc.FileSize)
	require.NotNil(t, doc.CreatedAt)
	assert.Equal(t, 2025, doc.CreatedAt.Year())
	assert.True(t, doc.IsValidatedByHuman)
	assert.JSONEq(t, `{"pages":2}`, string(doc.MetadataJSON))

	var inv models.Invoice
	require.NoError(t, db.Preload("Vendor").Preload("Customer").Preload("LineItems").
		First(&inv, "document_id = ?", "doc-1").Error)
	assert.Equal(t, "R-1001", *inv.InvoiceNumber)
	assert.Equal(t, "1190", inv.TotalAmount.Decimal.String())
	assert.Equal(t, "approved", *inv.Status)
	assert.Equal(t, 30, *inv.NetDays)
	assert.Equal(t, "BELADEBEXXX", *inv.BIC)
	assert.Equal(t, "Muster GmbH", inv.Vendor.Name)
	assert.Equal(t, "DE123", *inv.Vendor.TaxID)
	assert.Equal(t, "Flowbit AG", inv.Customer.Name)
	require.Len(t, inv.LineItems, 2)

	var consulting models.LineItem
	require.NoError(t, db.First(&consulting, "sr_no = ?", 1).Error)
	assert.Equal(t, "4930", *consulting.Category)
	assert.Equal(t, "9", *consulting.BUSchluessel)

	var credit models.Invoice
	require.NoError(t, db.First(&credit, "document_id = ?", "doc-2").Error)
	assert.True(t, credit.TotalAmount.Decimal.IsNegative())
	assert.Equal(t, "processed", *credit.Status)
	require.NotNil(t, credit.VendorID)
	assert.Equal(t, *inv.VendorID, *credit.VendorID, "name-only vendor reuses the existing row")
}

func TestRunIsIdempotent(t *testing.T) {
	db := setupDB(t)

	for range 2 {
		_, err := Run(context.Background(), db, strings.NewReader(export))
		require.NoError(t, err)
	}

	assert.EqualValues(t, 2, count(t, db, &models.Document{}))
	assert.EqualValues(t, 2, count(t, db, &models.Invoice{}))
	assert.EqualValues(t, 1, count(t, db, &models.Vendor{}))
	assert.EqualValues(t, 1, count(t, db, &models.Customer{}))
	assert.EqualValues(t, 2, count(t, db, &models.LineItem{}))
}

func TestRunFileMissing(t *testing.T) {
	_, err := RunFile(context.Background(), setupDB(t), filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset not found")
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o600))

	res, err := RunFile(context.Background(), setupDB(t), path)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Documents)
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"iso", "2025-01-03T12:00:00Z", "2025-01-03"},
		{"date only", "2025-01-03", "2025-01-03"},
		{"wrapped", map[string]any{"$date": "2025-01-03T00:00:00.000Z"}, "2025-01-03"},
		{"garbage", "soon", ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := date(tt.in)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1234.5", number("1,234.50").Decimal.String())
	assert.False(t, number("").Valid)
	assert.False(t, number("n/a").Valid)
	assert.False(t, number(nil).Valid)
}
