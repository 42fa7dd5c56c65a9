package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Return records a refund against a committed invoice. ReturnCode is the
// human-shareable reference printed on the refund slip.
type Return struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	OriginalInvoiceID uint            `gorm:"not null;index" json:"original_invoice_id"`
	CustomerName      string          `gorm:"size:255;default:''" json:"customer_name"`
	CustomerPhone     string          `gorm:"size:50;default:''" json:"customer_phone"`
	ReturnCode        string          `gorm:"size:40;not null;unique" json:"return_code"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_amount"`
	Items             []ReturnItem    `gorm:"foreignKey:ReturnID" json:"items,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ReturnItem mirrors the invoice item it refunds; price comes from the invoice
// item's snapshot, never from the live product.
type ReturnItem struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ReturnID          uint            `gorm:"not null;index" json:"return_id"`
	ProductID         uint            `gorm:"not null;index" json:"product_id"`
	NameSnapshot      string          `gorm:"size:255;not null" json:"name_snapshot"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price_snapshot"`
	Quantity          int             `gorm:"not null" json:"quantity"`
	ItemTotal         decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"item_total"`
}
