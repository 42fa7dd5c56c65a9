package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount types accepted on an invoice.
const (
	DiscountFixed      = "fixed"
	DiscountPercentage = "percentage"
)

// Invoice is the committed sale header. Rows are created exactly once by the
// commit pipeline and never updated or deleted afterwards.
type Invoice struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CustomerName   string          `gorm:"size:255;default:''" json:"customer_name"`
	CustomerPhone  string          `gorm:"size:50;default:''" json:"customer_phone"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"subtotal"`
	DiscountType   string          `gorm:"size:20;not null;default:'fixed'" json:"discount_type"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount_value"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"discount_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total"`
	Items          []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// InvoiceItem is one sold line. NameSnapshot and UnitPriceSnapshot capture the
// product at the moment of sale so later catalog edits never rewrite history.
type InvoiceItem struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	InvoiceID         uint            `gorm:"not null;index" json:"invoice_id"`
	ProductID         uint            `gorm:"not null;index" json:"product_id"`
	NameSnapshot      string          `gorm:"size:255;not null" json:"name_snapshot"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price_snapshot"`
	Quantity          int             `gorm:"not null" json:"quantity"`
	LineTotal         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"line_total"`
}
