package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vendor is unique by (name, tax id) when a tax id is known, otherwise by name.
type Vendor struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"size:255;not null;uniqueIndex:idx_vendor_name_tax" json:"name"`
	TaxID   *string `gorm:"size:64;uniqueIndex:idx_vendor_name_tax" json:"taxId,omitempty"`
	Address *string `gorm:"size:1000" json:"address,omitempty"`
}

// Customer is unique by name.
type Customer struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Name    string  `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Address *string `gorm:"size:1000" json:"address,omitempty"`
}

// Invoice is extracted from exactly one Document.
type Invoice struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID string    `gorm:"size:64;not null;uniqueIndex" json:"documentId"`
	Document   *Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`

	InvoiceNumber *string    `gorm:"size:100;index" json:"invoiceNumber"`
	InvoiceDate   *time.Time `gorm:"index" json:"invoiceDate"`
	DeliveryDate  *time.Time `json:"deliveryDate,omitempty"`

	VendorID   *uint     `gorm:"index" json:"vendorId,omitempty"`
	Vendor     *Vendor   `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	CustomerID *uint     `gorm:"index" json:"customerId,omitempty"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	SubTotal       decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"subTotal"`
	TotalTax       decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"totalTax"`
	TotalAmount    decimal.NullDecimal `gorm:"type:decimal(14,2);index" json:"totalAmount"`
	CurrencySymbol *string             `gorm:"size:10" json:"currencySymbol,omitempty"`
	Status         *string             `gorm:"size:50" json:"status"`

	// Payment
	DueDate           *time.Time `gorm:"index" json:"dueDate,omitempty"`
	PaymentTerms      *string    `gorm:"size:500" json:"paymentTerms,omitempty"`
	BankAccountNumber *string    `gorm:"size:64" json:"bankAccountNumber,omitempty"`
	BIC               *string    `gorm:"column:bic;size:32" json:"bic,omitempty"`
	AccountName       *string    `gorm:"size:255" json:"accountName,omitempty"`
	NetDays           *int       `json:"netDays,omitempty"`

	// Discount terms
	DiscountPercentage decimal.NullDecimal `gorm:"type:decimal(7,4)" json:"discountPercentage"`
	DiscountDays       *int                `json:"discountDays,omitempty"`
	DiscountDueDate    *time.Time          `json:"discountDueDate,omitempty"`
	DiscountedTotal    decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"discountedTotal"`

	LineItems []LineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lineItems,omitempty"`
}

// PositiveTotal returns the invoice total when it counts as spend, zero otherwise.
// Credit notes and missing totals never contribute to spend or outflow.
func (i *Invoice) PositiveTotal() decimal.Decimal {
	if !i.TotalAmount.Valid || !i.TotalAmount.Decimal.IsPositive() {
		return decimal.Zero
	}
	return i.TotalAmount.Decimal
}

// LineItem belongs to one invoice and is replaced wholesale on re-seed.
type LineItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	InvoiceID uint `gorm:"index;not null" json:"invoiceId"`

	SrNo        *int                `json:"srNo,omitempty"`
	Description *string             `gorm:"type:text" json:"description,omitempty"`
	Quantity    decimal.NullDecimal `gorm:"type:decimal(14,4)" json:"quantity"`
	UnitPrice   decimal.NullDecimal `gorm:"type:decimal(14,4)" json:"unitPrice"`
	TotalPrice  decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"totalPrice"`

	// Sachkonto is the booking account code; BUSchluessel the tax key.
	Sachkonto    *string `gorm:"size:32" json:"sachkonto,omitempty"`
	BUSchluessel *string `gorm:"column:bu_schluessel;size:32" json:"buSchluessel,omitempty"`
	Category     *string `gorm:"size:100;index" json:"category,omitempty"`
}
